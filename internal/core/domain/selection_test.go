package domain_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samirrijal/areaselect/internal/core/domain"
)

func TestSelectionState_JSONKeepsVariants(t *testing.T) {
	pin := domain.Pin{ID: "p1", Position: domain.GeoPoint{Lat: 43.26, Lon: -2.93}}
	in := domain.SelectionState{
		Tab:      domain.TabAnalysis,
		Tool:     domain.ToolPinArea,
		AreaTool: domain.ToolPinArea,
		Pins:     []domain.Pin{pin},
		Shape: &domain.ShapeDescriptor{
			ID:         "s1",
			Kind:       domain.ShapeRectVertical,
			Anchor:     pin,
			Dimensions: domain.RectDimensions{WidthMeters: 120, HeightMeters: 80},
		},
		Pending: domain.PendingPinReplace{Position: domain.GeoPoint{Lat: 43.27, Lon: -2.92}},
	}

	data, err := json.Marshal(in)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"kind":"pin_replace"`)
	assert.Contains(t, string(data), `"height_meters":80`)

	var out domain.SelectionState
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, in, out)
}

func TestSelectionState_JSONToolSwitch(t *testing.T) {
	in := domain.SelectionState{
		Tab:     domain.TabAnalysis,
		Tool:    domain.ToolMultiPin,
		Pending: domain.PendingToolSwitch{Tool: domain.ToolPinArea},
	}
	data, err := json.Marshal(in)
	require.NoError(t, err)

	var out domain.SelectionState
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, domain.PendingToolSwitch{Tool: domain.ToolPinArea}, out.Pending)
	assert.Empty(t, out.Pins)
}

func TestDecodeDimensions(t *testing.T) {
	d, err := domain.DecodeDimensions(domain.ShapeSquare, []byte(`{"width_meters":250}`))
	require.NoError(t, err)
	assert.Equal(t, domain.SquareDimensions{WidthMeters: 250}, d)

	_, err = domain.DecodeDimensions(domain.ShapeKind("blob"), []byte(`{}`))
	assert.ErrorIs(t, err, domain.ErrUnknownShapeKind)
}

func TestDimensions_Fit(t *testing.T) {
	assert.True(t, domain.RadiusDimensions{}.Fits(domain.ShapeHexagon))
	assert.False(t, domain.RadiusDimensions{}.Fits(domain.ShapeSquare))
	assert.True(t, domain.RectDimensions{}.Fits(domain.ShapeRectVertical))
	assert.False(t, domain.SquareDimensions{}.Fits(domain.ShapeRectHorizontal))
}

func TestPolygon_OnlyForMultiPin(t *testing.T) {
	pins := []domain.Pin{{ID: "a", Number: 1}, {ID: "b", Number: 2}, {ID: "c", Number: 3}}

	st := domain.SelectionState{AreaTool: domain.ToolMultiPin, Pins: pins}
	assert.Len(t, st.Polygon(), 3)

	st.AreaTool = domain.ToolPinArea
	assert.Empty(t, st.Polygon())
}
