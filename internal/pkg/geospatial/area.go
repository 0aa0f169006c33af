package geospatial

import (
	"math"

	"github.com/samirrijal/areaselect/internal/core/domain"
)

// MaxAnalysisAreaKm2 is the largest ground area accepted for a single analysis request.
const MaxAnalysisAreaKm2 = 20.0

// meanEarthRadiusMeters is used by PolygonArea. Distances use the same radius (see Haversine).
const meanEarthRadiusMeters = earthRadiusKm * 1000

const sqMetersPerSqKm = 1_000_000

// CircleArea returns the area in km² of a circle with the given radius in meters.
func CircleArea(radiusMeters float64) float64 {
	return math.Pi * radiusMeters * radiusMeters / sqMetersPerSqKm
}

// HexagonArea returns the area in km² of a regular hexagon whose circumradius is radiusMeters.
func HexagonArea(radiusMeters float64) float64 {
	return (3 * math.Sqrt(3) / 2) * radiusMeters * radiusMeters / sqMetersPerSqKm
}

// RectangleArea returns the area in km² of a width × height rectangle given in meters.
func RectangleArea(widthMeters, heightMeters float64) float64 {
	return widthMeters * heightMeters / sqMetersPerSqKm
}

// PolygonArea approximates the ground area in km² enclosed by vertices.
//
// Each edge contributes Δλ·(2 + sin φ1 + sin φ2); the sum is scaled by R²/2.
// It is accurate for small regions (tens of km²) and independent of winding
// order. Fewer than three vertices enclose nothing and yield 0.
func PolygonArea(vertices []domain.GeoPoint) float64 {
	n := len(vertices)
	if n < 3 {
		return 0
	}

	var sum float64
	for i := 0; i < n; i++ {
		p1 := vertices[i]
		p2 := vertices[(i+1)%n]
		sum += toRad(p2.Lon-p1.Lon) * (2 + math.Sin(toRad(p1.Lat)) + math.Sin(toRad(p2.Lat)))
	}

	area := sum * meanEarthRadiusMeters * meanEarthRadiusMeters / 2
	return math.Abs(area) / sqMetersPerSqKm
}

// WithinLimit reports whether areaKm2 is acceptable for analysis.
func WithinLimit(areaKm2 float64) bool {
	return areaKm2 <= MaxAnalysisAreaKm2
}
