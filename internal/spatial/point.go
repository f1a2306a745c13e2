// Package spatial holds the in-memory geo math the subscription engine runs
// on: great-circle distance, point-in-area resolution over a snapshot of all
// areas and groups, and the time-to-boundary estimate. Nothing in here
// touches the network or the database; callers fetch state first and hand it
// in.
package spatial

import "math"

// earthRadiusMeters is the mean earth radius used by the haversine formula.
const earthRadiusMeters = 6371000.0

// Point is a WGS84 coordinate in decimal degrees. Range validation happens
// at the HTTP boundary; code in this package assumes valid input.
type Point struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// DistanceMeters returns the great-circle distance between two points using
// the haversine formula.
func DistanceMeters(a, b Point) float64 {
	latA := a.Latitude * math.Pi / 180
	latB := b.Latitude * math.Pi / 180
	dLat := (b.Latitude - a.Latitude) * math.Pi / 180
	dLon := (b.Longitude - a.Longitude) * math.Pi / 180

	sinLat := math.Sin(dLat / 2)
	sinLon := math.Sin(dLon / 2)
	h := sinLat*sinLat + math.Cos(latA)*math.Cos(latB)*sinLon*sinLon

	return 2 * earthRadiusMeters * math.Asin(math.Sqrt(h))
}
