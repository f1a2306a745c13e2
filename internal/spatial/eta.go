package spatial

import "math"

// DefaultBoundarySeconds is returned when no active areas exist: one hour,
// an "effectively never" sentinel clients can treat as "don't bother
// re-polling soon".
const DefaultBoundarySeconds = 3600.0

// SecondsToNearestBoundary estimates the seconds until p crosses the nearest
// active area boundary, assuming a worst-case straight-line walk at
// walkingSpeedKmh. Being inside an area walking out and being outside
// walking in count as the same kind of event, so the distance to each
// boundary is |radius - distanceToCenter|. This is a lower bound, not a
// heading prediction.
func (ix *Index) SecondsToNearestBoundary(p Point, walkingSpeedKmh float64) float64 {
	nearest := math.MaxFloat64
	for _, a := range ix.areas {
		if !a.IsActive {
			continue
		}
		center := Point{Latitude: a.Latitude, Longitude: a.Longitude}
		d := math.Abs(float64(a.Radius) - DistanceMeters(p, center))
		if d < nearest {
			nearest = d
		}
	}
	if nearest == math.MaxFloat64 {
		return DefaultBoundarySeconds
	}
	metersPerSecond := walkingSpeedKmh * 1000 / 3600
	return nearest / metersPerSecond
}
