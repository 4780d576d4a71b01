package geo

import (
	"math"
	"testing"
)

func TestDistance_SamePoint(t *testing.T) {
	p := Point{Latitude: 22.2887936, Longitude: 70.7854336}

	if d := Distance(p, p); d != 0 {
		t.Errorf("Distance(p, p) = %f, expected 0", d)
	}
}

func TestDistance_OneDegreeAtEquator(t *testing.T) {
	a := Point{Latitude: 0, Longitude: 0}
	b := Point{Latitude: 0, Longitude: 1}

	d := Distance(a, b)
	if math.Abs(d-111.19) > 0.1 {
		t.Errorf("Distance = %f km, expected ~111.19 km", d)
	}
}

func TestDistance_Symmetric(t *testing.T) {
	a := Point{Latitude: 22.2887936, Longitude: 70.7854336}
	b := Point{Latitude: 22.3, Longitude: 70.8}

	if d1, d2 := Distance(a, b), Distance(b, a); d1 != d2 {
		t.Errorf("Distance not symmetric: %f vs %f", d1, d2)
	}
}

func TestGeofence_Contains(t *testing.T) {
	fence := Geofence{
		Center:   Point{Latitude: 22.2887936, Longitude: 70.7854336},
		RadiusKm: 0.1,
	}

	// One degree of latitude is ~111.195 km, so 0.00045 deg ~ 50 m and
	// 0.0045 deg ~ 500 m.
	tests := []struct {
		name    string
		point   Point
		allowed bool
	}{
		{"center", fence.Center, true},
		{"50m north", Point{Latitude: 22.2887936 + 0.00045, Longitude: 70.7854336}, true},
		{"500m north", Point{Latitude: 22.2887936 + 0.0045, Longitude: 70.7854336}, false},
		{"500m south", Point{Latitude: 22.2887936 - 0.0045, Longitude: 70.7854336}, false},
		{"far away", Point{Latitude: 23.0, Longitude: 71.0}, false},
	}

	for _, tt := range tests {
		if got := fence.Contains(tt.point); got != tt.allowed {
			t.Errorf("%s: Contains = %v, expected %v (distance %f km)",
				tt.name, got, tt.allowed, Distance(fence.Center, tt.point))
		}
	}
}
