// Package geo provides geographic utility functions for itinerary planning.
//
// All distance calculations use the Haversine formula on WGS-84 coordinates.
package geo

import (
	"math"

	"github.com/shiva/wanderplan/internal/model"
)

// ─── Constants ──────────────────────────────────────────────

const (
	// EarthRadiusKm is the mean radius of Earth in kilometers.
	EarthRadiusKm = 6371.0
)

// ─── Distance ───────────────────────────────────────────────

// HaversineKm returns the great-circle distance between two points in kilometers.
//
// Complexity: O(1)
func HaversineKm(a, b model.Coordinates) float64 {
	dLat := degToRad(b.Lat - a.Lat)
	dLng := degToRad(b.Lng - a.Lng)

	sinLat := math.Sin(dLat / 2)
	sinLng := math.Sin(dLng / 2)

	h := sinLat*sinLat +
		math.Cos(degToRad(a.Lat))*math.Cos(degToRad(b.Lat))*sinLng*sinLng

	// Rounding can push h a hair past 1 for antipodal points.
	h = math.Min(1, h)

	return 2 * EarthRadiusKm * math.Asin(math.Sqrt(h))
}

// DistanceKm is HaversineKm for optional coordinates. ok is false when either
// point is missing.
func DistanceKm(a, b *model.Coordinates) (km float64, ok bool) {
	if a == nil || b == nil {
		return 0, false
	}
	return HaversineKm(*a, *b), true
}

// RouteDistanceKm returns the total distance of an ordered route in kilometers.
//
// Complexity: O(S) where S = number of stops.
func RouteDistanceKm(route []model.Coordinates) float64 {
	total := 0.0
	for i := 0; i < len(route)-1; i++ {
		total += HaversineKm(route[i], route[i+1])
	}
	return total
}

// ─── Helpers ────────────────────────────────────────────────

func degToRad(deg float64) float64 {
	return deg * (math.Pi / 180.0)
}
