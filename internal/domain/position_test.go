package domain

import (
	"math"
	"testing"
)

func TestHaversine(t *testing.T) {
	tests := []struct {
		name      string
		a, b      GeoPosition
		want      float64
		tolerance float64
	}{
		{
			name:      "same point",
			a:         GeoPosition{Lat: 52.52, Lng: 13.405},
			b:         GeoPosition{Lat: 52.52, Lng: 13.405},
			want:      0,
			tolerance: 0.001,
		},
		{
			name:      "one degree of latitude at equator",
			a:         GeoPosition{Lat: 0, Lng: 0},
			b:         GeoPosition{Lat: 1, Lng: 0},
			want:      111195,
			tolerance: 100,
		},
		{
			name:      "berlin to paris",
			a:         GeoPosition{Lat: 52.52, Lng: 13.405},
			b:         GeoPosition{Lat: 48.8566, Lng: 2.3522},
			want:      877460,
			tolerance: 5000,
		},
		{
			name:      "small offset",
			a:         GeoPosition{Lat: 0, Lng: 0},
			b:         GeoPosition{Lat: 0, Lng: 0.0001},
			want:      11.1,
			tolerance: 0.5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Haversine(tt.a, tt.b)
			if math.Abs(got-tt.want) > tt.tolerance {
				t.Errorf("Haversine() = %.2f, want %.2f (±%.2f)", got, tt.want, tt.tolerance)
			}
		})
	}
}

func TestHaversineSymmetric(t *testing.T) {
	a := GeoPosition{Lat: 40.7128, Lng: -74.0060}
	b := GeoPosition{Lat: 51.5074, Lng: -0.1278}

	if d1, d2 := Haversine(a, b), Haversine(b, a); math.Abs(d1-d2) > 1e-9 {
		t.Errorf("Haversine not symmetric: %f vs %f", d1, d2)
	}
}

func TestCentroid(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		got := Centroid(nil)
		if got.Lat != 0 || got.Lng != 0 {
			t.Errorf("Centroid(nil) = %+v, want origin", got)
		}
	})

	t.Run("single point", func(t *testing.T) {
		got := Centroid([]GeoPosition{{Lat: 10, Lng: 20}})
		if got.Lat != 10 || got.Lng != 20 {
			t.Errorf("Centroid() = %+v, want {10 20}", got)
		}
	})

	t.Run("average of points", func(t *testing.T) {
		got := Centroid([]GeoPosition{
			{Lat: 0, Lng: 0},
			{Lat: 2, Lng: 4},
		})
		if got.Lat != 1 || got.Lng != 2 {
			t.Errorf("Centroid() = %+v, want {1 2}", got)
		}
	})
}
