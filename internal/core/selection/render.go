package selection

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/samirrijal/areaselect/internal/core/domain"
	"github.com/samirrijal/areaselect/internal/pkg/geospatial"
)

// GeoJSON renders state for the map surface: one Point feature per pin and,
// when present, a Polygon feature for the shape outline or the traced polygon.
func GeoJSON(state domain.SelectionState) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()

	for _, pin := range state.Pins {
		f := geojson.NewFeature(geospatial.ToPoint(pin.Position))
		f.ID = pin.ID
		f.Properties["role"] = "pin"
		if pin.Number > 0 {
			f.Properties["number"] = pin.Number
		}
		fc.Append(f)
	}

	if state.Shape != nil {
		ring := geospatial.ShapeOutline(*state.Shape)
		if ring != nil {
			f := geojson.NewFeature(orb.Polygon{ring})
			f.ID = state.Shape.ID
			f.Properties["role"] = "shape"
			f.Properties["kind"] = string(state.Shape.Kind)
			f.Properties["area_km2"] = ShapeArea(*state.Shape)
			f.Properties["perimeter_m"] = geospatial.RingLength(geospatial.FromRing(ring))
			fc.Append(f)
		}
		return fc
	}

	polygon := state.Polygon()
	if ring := geospatial.PolygonRing(polygon); ring != nil {
		f := geojson.NewFeature(orb.Polygon{ring})
		f.Properties["role"] = "polygon"
		f.Properties["area_km2"] = geospatial.PolygonArea(polygon)
		f.Properties["perimeter_m"] = geospatial.RingLength(polygon)
		fc.Append(f)
	}
	return fc
}
