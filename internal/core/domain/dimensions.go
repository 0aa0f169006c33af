package domain

import (
	"encoding/json"
	"fmt"
	"math"
)

// Dimensions is the size of a parametric shape. The concrete type is fixed
// by the shape kind: RadiusDimensions for circles and hexagons,
// SquareDimensions for squares and RectDimensions for rectangles.
type Dimensions interface {
	// Fits reports whether the dimensions describe a shape of kind k.
	Fits(k ShapeKind) bool
	// Primary is the radius or width in meters.
	Primary() float64
	Validate() error
	isDimensions()
}

// RadiusDimensions sizes circles and hexagons (circumradius).
type RadiusDimensions struct {
	RadiusMeters float64 `json:"radius_meters"`
}

// SquareDimensions sizes squares; the height equals the width.
type SquareDimensions struct {
	WidthMeters float64 `json:"width_meters"`
}

// RectDimensions sizes horizontal and vertical rectangles.
type RectDimensions struct {
	WidthMeters  float64 `json:"width_meters"`
	HeightMeters float64 `json:"height_meters"`
}

func (RadiusDimensions) isDimensions() {}
func (SquareDimensions) isDimensions() {}
func (RectDimensions) isDimensions()   {}

func (d RadiusDimensions) Fits(k ShapeKind) bool { return k == ShapeCircle || k == ShapeHexagon }
func (d SquareDimensions) Fits(k ShapeKind) bool { return k == ShapeSquare }
func (d RectDimensions) Fits(k ShapeKind) bool {
	return k == ShapeRectHorizontal || k == ShapeRectVertical
}

func (d RadiusDimensions) Primary() float64 { return d.RadiusMeters }
func (d SquareDimensions) Primary() float64 { return d.WidthMeters }
func (d RectDimensions) Primary() float64   { return d.WidthMeters }

func (d RadiusDimensions) Validate() error { return positive(d.RadiusMeters) }
func (d SquareDimensions) Validate() error { return positive(d.WidthMeters) }
func (d RectDimensions) Validate() error {
	if err := positive(d.WidthMeters); err != nil {
		return err
	}
	return positive(d.HeightMeters)
}

func positive(v float64) error {
	if v <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("%w: got %v", ErrInvalidDimensions, v)
	}
	return nil
}

// DefaultDimensions returns the size a shape of kind k starts with.
func DefaultDimensions(k ShapeKind) Dimensions {
	switch k {
	case ShapeSquare:
		return SquareDimensions{WidthMeters: 100}
	case ShapeRectHorizontal, ShapeRectVertical:
		return RectDimensions{WidthMeters: 150, HeightMeters: 100}
	default:
		return RadiusDimensions{RadiusMeters: 50}
	}
}

// DecodeDimensions decodes raw JSON into the dimensions variant of kind k.
func DecodeDimensions(k ShapeKind, raw []byte) (Dimensions, error) {
	var (
		dims Dimensions
		err  error
	)
	switch k {
	case ShapeCircle, ShapeHexagon:
		var d RadiusDimensions
		err = json.Unmarshal(raw, &d)
		dims = d
	case ShapeSquare:
		var d SquareDimensions
		err = json.Unmarshal(raw, &d)
		dims = d
	case ShapeRectHorizontal, ShapeRectVertical:
		var d RectDimensions
		err = json.Unmarshal(raw, &d)
		dims = d
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownShapeKind, k)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s dimensions: %w", k, err)
	}
	return dims, nil
}
