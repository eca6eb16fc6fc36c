package geofence

import (
	"testing"

	"github.com/UnmannedAerialSystems/PSUUAS-monorepo-2025/internal/geo"
)

func square() []geo.Coordinate {
	return []geo.Coordinate{
		{Latitude: 0, Longitude: 0},
		{Latitude: 0, Longitude: 1},
		{Latitude: 1, Longitude: 1},
		{Latitude: 1, Longitude: 0},
	}
}

func TestFence_Contains(t *testing.T) {
	tests := []struct {
		name string
		f    Fence
		c    geo.Coordinate
		want bool
	}{
		{"no fence loaded", Fence{}, geo.Coordinate{Latitude: 500, Longitude: 500}, true},
		{"inside square", Fence{Points: square()}, geo.Coordinate{Latitude: 0.5, Longitude: 0.5}, true},
		{"outside square", Fence{Points: square()}, geo.Coordinate{Latitude: 2, Longitude: 2}, false},
		{"on vertex treated as outside or inside, just must not panic", Fence{Points: square()}, geo.Coordinate{Latitude: 0, Longitude: 0}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.f.Contains(tt.c); got != tt.want {
				t.Errorf("Contains() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFence_AltitudeBand(t *testing.T) {
	min, max := 10.0, 100.0
	f := Fence{Points: square(), MinAltitude: &min, MaxAltitude: &max}

	inside := geo.Coordinate{Latitude: 0.5, Longitude: 0.5, Altitude: 50}
	if !f.Contains(inside) {
		t.Error("expected point within altitude band to be inside")
	}

	tooLow := geo.Coordinate{Latitude: 0.5, Longitude: 0.5, Altitude: 5}
	if f.Contains(tooLow) {
		t.Error("expected point below MinAltitude to be outside")
	}

	tooHigh := geo.Coordinate{Latitude: 0.5, Longitude: 0.5, Altitude: 500}
	if f.Contains(tooHigh) {
		t.Error("expected point above MaxAltitude to be outside")
	}
}
