package domain

import "math"

// GeoPosition is a geographic coordinate in degrees
type GeoPosition struct {
	Lat float64 `json:"lat" yaml:"lat"`
	Lng float64 `json:"lng" yaml:"lng"`
}

// CanvasPosition is a position on the host rendering surface
type CanvasPosition struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

const earthRadiusM = 6371000.0

// Haversine returns the great-circle distance between two positions in meters
func Haversine(a, b GeoPosition) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusM * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// Centroid returns the arithmetic center of the given positions.
// Adequate for the small cluster radii resonance detection works with;
// no antimeridian handling.
func Centroid(positions []GeoPosition) GeoPosition {
	if len(positions) == 0 {
		return GeoPosition{}
	}
	var lat, lng float64
	for _, p := range positions {
		lat += p.Lat
		lng += p.Lng
	}
	n := float64(len(positions))
	return GeoPosition{Lat: lat / n, Lng: lng / n}
}
