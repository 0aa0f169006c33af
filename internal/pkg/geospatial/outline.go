package geospatial

import (
	"math"

	"github.com/paulmach/orb"

	"github.com/samirrijal/areaselect/internal/core/domain"
)

// CircleSegments is the number of vertices used to draw a circle outline.
const CircleSegments = 64

// ShapeOutline returns the closed ring the map surface draws for shape.
// Rectangles are axis aligned; a vertical rectangle lays its width along
// the north–south axis.
func ShapeOutline(shape domain.ShapeDescriptor) orb.Ring {
	center := shape.Anchor.Position

	switch d := shape.Dimensions.(type) {
	case domain.RadiusDimensions:
		if shape.Kind == domain.ShapeHexagon {
			return radialRing(center, d.RadiusMeters, 6)
		}
		return radialRing(center, d.RadiusMeters, CircleSegments)
	case domain.SquareDimensions:
		return boxRing(BoundingBox(center, d.WidthMeters/2, d.WidthMeters/2))
	case domain.RectDimensions:
		if shape.Kind == domain.ShapeRectVertical {
			return boxRing(BoundingBox(center, d.HeightMeters/2, d.WidthMeters/2))
		}
		return boxRing(BoundingBox(center, d.WidthMeters/2, d.HeightMeters/2))
	}
	return nil
}

// PolygonRing closes the vertex list into a ring. Fewer than three vertices
// do not make a ring and yield nil.
func PolygonRing(vertices []domain.GeoPoint) orb.Ring {
	if len(vertices) < 3 {
		return nil
	}
	ring := make(orb.Ring, 0, len(vertices)+1)
	for _, v := range vertices {
		ring = append(ring, ToPoint(v))
	}
	return append(ring, ring[0])
}

// ToPoint converts a GeoPoint to an orb point (lon, lat).
func ToPoint(p domain.GeoPoint) orb.Point {
	return orb.Point{p.Lon, p.Lat}
}

// FromRing converts an orb ring back to GeoPoints, dropping the closing vertex.
func FromRing(r orb.Ring) []domain.GeoPoint {
	if len(r) > 1 && r.Closed() {
		r = r[:len(r)-1]
	}
	out := make([]domain.GeoPoint, len(r))
	for i, p := range r {
		out[i] = domain.GeoPoint{Lat: p.Lat(), Lon: p.Lon()}
	}
	return out
}

func radialRing(center domain.GeoPoint, radiusMeters float64, segments int) orb.Ring {
	ring := make(orb.Ring, 0, segments+1)
	for i := 0; i < segments; i++ {
		angle := 2 * math.Pi * float64(i) / float64(segments)
		p := Offset(center, radiusMeters*math.Cos(angle), radiusMeters*math.Sin(angle))
		ring = append(ring, ToPoint(p))
	}
	return append(ring, ring[0])
}

func boxRing(b domain.Bounds) orb.Ring {
	return orb.Ring{
		{b.MinLon, b.MinLat},
		{b.MaxLon, b.MinLat},
		{b.MaxLon, b.MaxLat},
		{b.MinLon, b.MaxLat},
		{b.MinLon, b.MinLat},
	}
}
