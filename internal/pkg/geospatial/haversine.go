package geospatial

import (
	"math"

	"github.com/samirrijal/areaselect/internal/core/domain"
)

const earthRadiusKm = 6371.0

// Approximate metres per degree of latitude.
const metersPerDegree = 111320.0

// Haversine calculates the great-circle distance in meters between two points.
func Haversine(a, b domain.GeoPoint) float64 {
	dLat := toRad(b.Lat - a.Lat)
	dLon := toRad(b.Lon - a.Lon)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(a.Lat))*math.Cos(toRad(b.Lat))*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return earthRadiusKm * c * 1000 // meters
}

// RingLength returns the closed perimeter in meters of the ring through points.
func RingLength(points []domain.GeoPoint) float64 {
	if len(points) < 2 {
		return 0
	}
	var total float64
	for i := range points {
		total += Haversine(points[i], points[(i+1)%len(points)])
	}
	return total
}

// Offset returns the point reached by moving northMeters and eastMeters from p,
// using a local equirectangular approximation.
func Offset(p domain.GeoPoint, northMeters, eastMeters float64) domain.GeoPoint {
	latDelta := northMeters / metersPerDegree
	lonDelta := eastMeters / (metersPerDegree * math.Cos(toRad(p.Lat)))
	return domain.GeoPoint{Lat: p.Lat + latDelta, Lon: p.Lon + lonDelta}
}

// BoundingBox returns a bounding box around a point with the given half extents in meters.
func BoundingBox(center domain.GeoPoint, halfWidthMeters, halfHeightMeters float64) domain.Bounds {
	sw := Offset(center, -halfHeightMeters, -halfWidthMeters)
	ne := Offset(center, halfHeightMeters, halfWidthMeters)
	return domain.Bounds{MinLat: sw.Lat, MinLon: sw.Lon, MaxLat: ne.Lat, MaxLon: ne.Lon}
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}
