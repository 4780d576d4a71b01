package geo

import "math"

const earthRadiusKm = 6371

// Point is a position in decimal degrees.
type Point struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Geofence is a circular perimeter around a center coordinate.
type Geofence struct {
	Center   Point
	RadiusKm float64
}

// Contains reports whether p lies within the fence radius, boundary inclusive.
func (f Geofence) Contains(p Point) bool {
	return Distance(f.Center, p) <= f.RadiusKm
}

// Distance returns the great-circle distance between two points in kilometers,
// computed with the haversine formula.
func Distance(a, b Point) float64 {
	dLat := radians(b.Latitude - a.Latitude)
	dLon := radians(b.Longitude - a.Longitude)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(radians(a.Latitude))*math.Cos(radians(b.Latitude))*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusKm * c
}

func radians(degrees float64) float64 {
	return degrees * (math.Pi / 180)
}
