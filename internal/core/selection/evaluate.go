package selection

import (
	"github.com/samirrijal/areaselect/internal/core/domain"
	"github.com/samirrijal/areaselect/internal/pkg/geospatial"
)

// CanAnalyze reports whether state holds a sized shape or a polygon of at
// least three vertices.
func CanAnalyze(state domain.SelectionState) bool {
	if state.Shape != nil && state.Shape.Dimensions != nil {
		return true
	}
	return len(state.Polygon()) >= 3
}

// Evaluate measures the selection held in state against the analysis
// policy. It returns nil when there is nothing to measure: no shape and a
// polygon with fewer than three vertices.
func Evaluate(state domain.SelectionState) *domain.Evaluation {
	if state.Shape != nil {
		area := ShapeArea(*state.Shape)
		return &domain.Evaluation{
			Source:      "shape",
			Kind:        state.Shape.Kind,
			AreaKm2:     area,
			MaxAreaKm2:  geospatial.MaxAnalysisAreaKm2,
			WithinLimit: geospatial.WithinLimit(area),
		}
	}

	if polygon := state.Polygon(); len(polygon) >= 3 {
		area := geospatial.PolygonArea(polygon)
		return &domain.Evaluation{
			Source:      "polygon",
			AreaKm2:     area,
			MaxAreaKm2:  geospatial.MaxAnalysisAreaKm2,
			WithinLimit: geospatial.WithinLimit(area),
		}
	}

	return nil
}

// ShapeArea returns the ground area of shape in km².
func ShapeArea(shape domain.ShapeDescriptor) float64 {
	switch d := shape.Dimensions.(type) {
	case domain.RadiusDimensions:
		if shape.Kind == domain.ShapeHexagon {
			return geospatial.HexagonArea(d.RadiusMeters)
		}
		return geospatial.CircleArea(d.RadiusMeters)
	case domain.SquareDimensions:
		return geospatial.RectangleArea(d.WidthMeters, d.WidthMeters)
	case domain.RectDimensions:
		return geospatial.RectangleArea(d.WidthMeters, d.HeightMeters)
	}
	return 0
}
