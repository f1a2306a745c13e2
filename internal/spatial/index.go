package spatial

import (
	"github.com/smurfolan/likkle-backend/internal/models"
)

// Index is a point-in-time snapshot of every area and group, held as two
// by-id maps plus both directions of the area↔group relation. A
// reconciliation computes all of its decisions against one Index so the
// leave/join diff never mixes two reads of the store.
//
// Lookup is a linear scan over all areas, which is intentional for system
// sizes in the low thousands.
type Index struct {
	areas  map[uint]*models.Area
	groups map[uint]*models.Group

	areaGroups map[uint][]uint
	groupAreas map[uint][]uint
}

// NewIndex builds an Index from a full read of areas and groups. Groups are
// expected to carry their Areas association; both relation directions are
// derived from it.
func NewIndex(areas []models.Area, groups []models.Group) *Index {
	ix := &Index{
		areas:      make(map[uint]*models.Area, len(areas)),
		groups:     make(map[uint]*models.Group, len(groups)),
		areaGroups: make(map[uint][]uint),
		groupAreas: make(map[uint][]uint),
	}
	for i := range areas {
		ix.areas[areas[i].ID] = &areas[i]
	}
	for i := range groups {
		g := &groups[i]
		ix.groups[g.ID] = g
		for _, a := range g.Areas {
			ix.groupAreas[g.ID] = append(ix.groupAreas[g.ID], a.ID)
			ix.areaGroups[a.ID] = append(ix.areaGroups[a.ID], g.ID)
		}
	}
	return ix
}

// Area returns the snapshot's area with the given id.
func (ix *Index) Area(id uint) (*models.Area, bool) {
	a, ok := ix.areas[id]
	return a, ok
}

// Group returns the snapshot's group with the given id.
func (ix *Index) Group(id uint) (*models.Group, bool) {
	g, ok := ix.groups[id]
	return g, ok
}

// GroupsOfArea returns the ids of the groups attached to an area.
func (ix *Index) GroupsOfArea(areaID uint) []uint {
	return ix.areaGroups[areaID]
}

// AreasOfGroup returns the ids of the areas a group spans.
func (ix *Index) AreasOfGroup(groupID uint) []uint {
	return ix.groupAreas[groupID]
}

// MemberCount returns the snapshot member count for a group, 0 for unknown
// ids.
func (ix *Index) MemberCount(groupID uint) int {
	if g, ok := ix.groups[groupID]; ok {
		return len(g.Members)
	}
	return 0
}

// contains reports whether p lies within the area's radius of its center.
func contains(a *models.Area, p Point) bool {
	center := Point{Latitude: a.Latitude, Longitude: a.Longitude}
	return DistanceMeters(p, center) <= float64(a.Radius)
}

// AreasContaining returns every area whose circle covers p. With activeOnly
// set, inactive areas are skipped. Zero areas in the snapshot yields an
// empty result, not an error.
func (ix *Index) AreasContaining(p Point, activeOnly bool) []*models.Area {
	var out []*models.Area
	for _, a := range ix.areas {
		if activeOnly && !a.IsActive {
			continue
		}
		if contains(a, p) {
			out = append(out, a)
		}
	}
	return out
}

// GroupsContaining returns the de-duplicated union of groups attached to the
// areas covering p. With activeOnly set, both inactive areas and inactive
// groups are skipped — the filtering auto-subscription candidate resolution
// uses. Explicit reconciliation passes false so a dormant group stays
// rejoinable.
func (ix *Index) GroupsContaining(p Point, activeOnly bool) []*models.Group {
	seen := make(map[uint]struct{})
	var out []*models.Group
	for _, a := range ix.AreasContaining(p, activeOnly) {
		for _, gid := range ix.areaGroups[a.ID] {
			if _, dup := seen[gid]; dup {
				continue
			}
			seen[gid] = struct{}{}
			g := ix.groups[gid]
			if activeOnly && !g.IsActive {
				continue
			}
			out = append(out, g)
		}
	}
	return out
}

// GroupReachableFrom reports whether any of the group's own areas covers p.
// A group spanning several areas therefore stays reachable until the user is
// outside all of them; this is the breadth-of-coverage rule the leave set of
// a location update is built on.
func (ix *Index) GroupReachableFrom(groupID uint, p Point) bool {
	for _, aid := range ix.groupAreas[groupID] {
		if a, ok := ix.areas[aid]; ok && contains(a, p) {
			return true
		}
	}
	return false
}
