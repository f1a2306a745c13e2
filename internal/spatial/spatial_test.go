package spatial

import (
	"math"
	"testing"

	"github.com/smurfolan/likkle-backend/internal/models"
)

func makeArea(id uint, lat, lon float64, radius models.AreaRadius, active bool) models.Area {
	return models.Area{ID: id, Latitude: lat, Longitude: lon, Radius: radius, IsActive: active}
}

func TestDistanceMeters(t *testing.T) {
	sofia := Point{Latitude: 42.6977, Longitude: 23.3219}

	if d := DistanceMeters(sofia, sofia); d != 0 {
		t.Errorf("distance to self = %v, want 0", d)
	}

	plovdiv := Point{Latitude: 42.1354, Longitude: 24.7453}
	d1 := DistanceMeters(sofia, plovdiv)
	d2 := DistanceMeters(plovdiv, sofia)
	if d1 != d2 {
		t.Errorf("distance not symmetric: %v vs %v", d1, d2)
	}
	// Sofia to Plovdiv is roughly 133 km as the crow flies.
	if d1 < 125000 || d1 > 140000 {
		t.Errorf("Sofia-Plovdiv distance = %v m, want ~133 km", d1)
	}
}

func TestAreasContainingMatchesDistancePredicate(t *testing.T) {
	areas := []models.Area{
		makeArea(1, 42.626229, 23.38143, models.RadiusFiftyMeters, true),
		makeArea(2, 42.62523, 23.381371, models.RadiusFiveHundredMeters, true),
		makeArea(3, 42.70000, 23.40000, models.RadiusFiftyMeters, true),
	}
	ix := NewIndex(areas, nil)

	points := []Point{
		{Latitude: 42.626391, Longitude: 23.381071},
		{Latitude: 42.626229, Longitude: 23.38143},
		{Latitude: 42.0, Longitude: 23.0},
	}

	// Reachability symmetry: an area is returned iff the point is within
	// its radius of its center.
	for _, p := range points {
		got := make(map[uint]bool)
		for _, a := range ix.AreasContaining(p, false) {
			got[a.ID] = true
		}
		for _, a := range areas {
			center := Point{Latitude: a.Latitude, Longitude: a.Longitude}
			want := DistanceMeters(p, center) <= float64(a.Radius)
			if got[a.ID] != want {
				t.Errorf("point %+v area %d: in result = %v, within radius = %v", p, a.ID, got[a.ID], want)
			}
		}
	}
}

func TestAreasContainingEmptySystem(t *testing.T) {
	ix := NewIndex(nil, nil)
	if got := ix.AreasContaining(Point{Latitude: 42.6, Longitude: 23.3}, true); len(got) != 0 {
		t.Errorf("expected no areas, got %d", len(got))
	}
	if got := ix.GroupsContaining(Point{Latitude: 42.6, Longitude: 23.3}, true); len(got) != 0 {
		t.Errorf("expected no groups, got %d", len(got))
	}
}

func TestGroupsContainingDeduplicatesAndFilters(t *testing.T) {
	a1 := makeArea(1, 42.626229, 23.38143, models.RadiusFiveHundredMeters, true)
	a2 := makeArea(2, 42.62523, 23.381371, models.RadiusFiveHundredMeters, true)
	a3 := makeArea(3, 42.626, 23.3812, models.RadiusHundredFiftyM, false)

	groups := []models.Group{
		// Spans both active areas; must appear once.
		{ID: 10, Name: "both", IsActive: true, Areas: []models.Area{a1, a2}},
		{ID: 11, Name: "dormant", IsActive: false, Areas: []models.Area{a1}},
		{ID: 12, Name: "inactive-area-only", IsActive: true, Areas: []models.Area{a3}},
	}
	ix := NewIndex([]models.Area{a1, a2, a3}, groups)
	p := Point{Latitude: 42.626391, Longitude: 23.381071}

	active := ix.GroupsContaining(p, true)
	if len(active) != 1 || active[0].ID != 10 {
		t.Fatalf("active GroupsContaining = %v, want just group 10", ids(active))
	}

	all := ix.GroupsContaining(p, false)
	if len(all) != 3 {
		t.Fatalf("unfiltered GroupsContaining = %v, want groups 10, 11, 12", ids(all))
	}
}

func TestGroupReachableFromSpanningAreas(t *testing.T) {
	near := makeArea(1, 10.0, 10.0, models.RadiusFiftyMeters, true)
	far := makeArea(2, 15.0, 15.0, models.RadiusFiftyMeters, true)
	groups := []models.Group{
		{ID: 1, Name: "spanning", IsActive: true, Areas: []models.Area{near, far}},
	}
	ix := NewIndex([]models.Area{near, far}, groups)

	// Reachable from either of its areas, dropped only outside both.
	if !ix.GroupReachableFrom(1, Point{Latitude: 10.0, Longitude: 10.0}) {
		t.Error("group should be reachable from first area")
	}
	if !ix.GroupReachableFrom(1, Point{Latitude: 15.0, Longitude: 15.0}) {
		t.Error("group should be reachable from second area")
	}
	if ix.GroupReachableFrom(1, Point{Latitude: 20.0, Longitude: 20.0}) {
		t.Error("group should not be reachable outside both areas")
	}
}

func TestSecondsToNearestBoundarySentinel(t *testing.T) {
	ix := NewIndex(nil, nil)
	if got := ix.SecondsToNearestBoundary(Point{Latitude: 1, Longitude: 1}, 5); got != DefaultBoundarySeconds {
		t.Errorf("no areas: got %v, want %v", got, DefaultBoundarySeconds)
	}

	// Inactive areas don't count either.
	ix = NewIndex([]models.Area{makeArea(1, 1, 1, models.RadiusFiftyMeters, false)}, nil)
	if got := ix.SecondsToNearestBoundary(Point{Latitude: 1, Longitude: 1}, 5); got != DefaultBoundarySeconds {
		t.Errorf("only inactive areas: got %v, want %v", got, DefaultBoundarySeconds)
	}
}

func TestSecondsToNearestBoundaryScenario(t *testing.T) {
	ix := NewIndex([]models.Area{
		makeArea(1, 42.626229, 23.38143, models.RadiusFiftyMeters, true),
		makeArea(2, 42.62523, 23.381371, models.RadiusFiveHundredMeters, true),
	}, nil)

	got := ix.SecondsToNearestBoundary(Point{Latitude: 42.626391, Longitude: 23.381071}, 5)
	if math.Abs(got-11.17) > 0.1 {
		t.Errorf("SecondsToNearestBoundary = %v, want ~11.17", got)
	}
}

func ids(groups []*models.Group) []uint {
	out := make([]uint, 0, len(groups))
	for _, g := range groups {
		out = append(out, g.ID)
	}
	return out
}
