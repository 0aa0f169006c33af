// Package selection implements the area-selection state machine behind the
// map client: tab and tool changes, pin placement, the shape anchored on a
// single pin and the polygon traced by numbered pins.
//
// A Machine is not safe for concurrent use. Callers feed it one event at a
// time, see usecases.SessionService.
package selection

import (
	"github.com/google/uuid"

	"github.com/samirrijal/areaselect/internal/core/domain"
)

// Outcome tells the caller what an operation did to the aggregate.
type Outcome string

const (
	// Applied means the state changed as requested.
	Applied Outcome = "applied"
	// Ignored means the operation was a no-op in the current state.
	Ignored Outcome = "ignored"
	// Deferred means the request would discard data and is held as
	// Pending() until Confirm or Cancel.
	Deferred Outcome = "deferred"
)

// Machine owns a domain.SelectionState and is the only place it is mutated.
type Machine struct {
	state domain.SelectionState
	newID func() string
}

// Option configures a Machine.
type Option func(*Machine)

// WithIDGenerator overrides how pin and shape IDs are minted.
func WithIDGenerator(fn func() string) Option {
	return func(m *Machine) { m.newID = fn }
}

// New returns a machine for a fresh session, parked on the home tab.
func New(opts ...Option) *Machine {
	return Restore(domain.SelectionState{Tab: domain.TabHome}, opts...)
}

// Restore returns a machine resuming from a previously captured state.
func Restore(state domain.SelectionState, opts ...Option) *Machine {
	m := &Machine{state: state.Clone(), newID: newUUID}
	for _, o := range opts {
		o(m)
	}
	return m
}

// newUUID mints time-ordered IDs so creation order survives in the ID itself.
func newUUID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// State returns a copy of the current aggregate.
func (m *Machine) State() domain.SelectionState {
	return m.state.Clone()
}

// Pins returns a copy of the placed pins in placement order.
func (m *Machine) Pins() []domain.Pin {
	return append([]domain.Pin(nil), m.state.Pins...)
}

// Shape returns a copy of the active shape, or nil.
func (m *Machine) Shape() *domain.ShapeDescriptor {
	if m.state.Shape == nil {
		return nil
	}
	s := *m.state.Shape
	return &s
}

// Polygon returns the vertices traced by the multi-pin tool.
func (m *Machine) Polygon() []domain.GeoPoint {
	return m.state.Polygon()
}

// Pending returns the request awaiting confirmation, or nil.
func (m *Machine) Pending() domain.PendingAction {
	return m.state.Pending
}

// SelectTab switches the sidebar tab. Leaving the analysis tab tears the
// whole selection down; entering it arms the pan tool.
func (m *Machine) SelectTab(tab domain.Tab) Outcome {
	m.state.Tab = tab
	if tab != domain.TabAnalysis {
		m.state.Tool = domain.ToolNone
		m.state.AreaTool = domain.ToolNone
		m.state.Pending = nil
		m.ClearAll()
		return Applied
	}
	m.state.Tool = domain.ToolPan
	return Applied
}

// SelectTool changes the active tool. Switching to a different area tool
// while a shape or polygon exists is deferred until confirmed.
func (m *Machine) SelectTool(tool domain.Tool) (Outcome, error) {
	if _, err := domain.ParseTool(string(tool)); err != nil {
		return Ignored, err
	}
	if m.state.Tab != domain.TabAnalysis {
		return Ignored, domain.ErrAnalysisInactive
	}
	return m.switchTool(tool, true), nil
}

func (m *Machine) switchTool(tool domain.Tool, gated bool) Outcome {
	// Panning never discards data.
	if tool == domain.ToolPan {
		m.state.Tool = tool
		return Applied
	}

	if gated && m.hasActiveData() && tool != m.state.AreaTool {
		m.state.Pending = domain.PendingToolSwitch{Tool: tool}
		return Deferred
	}
	if !gated {
		m.ClearAll()
	}
	m.state.Tool = tool
	m.state.AreaTool = tool
	return Applied
}

func (m *Machine) hasActiveData() bool {
	switch m.state.AreaTool {
	case domain.ToolPinArea:
		return m.state.Shape != nil
	case domain.ToolMultiPin:
		return len(m.state.Pins) > 0
	}
	return false
}

// AddPin places a pin at pos. With the multi-pin tool the pin is appended
// to the polygon. With the pin-area tool it replaces the current pin and
// starts a default circle; replacing an existing shape is deferred.
func (m *Machine) AddPin(pos domain.GeoPoint) Outcome {
	return m.placePin(pos, true)
}

func (m *Machine) placePin(pos domain.GeoPoint, gated bool) Outcome {
	switch m.state.Tool {
	case domain.ToolMultiPin:
		m.state.Pins = append(m.state.Pins, domain.Pin{
			ID:       m.newID(),
			Position: pos,
			Number:   len(m.state.Pins) + 1,
		})
		return Applied

	case domain.ToolPinArea:
		if gated && m.state.Shape != nil {
			m.state.Pending = domain.PendingPinReplace{Position: pos}
			return Deferred
		}
		pin := domain.Pin{ID: m.newID(), Position: pos}
		m.state.Pins = []domain.Pin{pin}
		m.state.Shape = &domain.ShapeDescriptor{
			ID:         m.newID(),
			Kind:       domain.ShapeCircle,
			Anchor:     pin,
			Dimensions: domain.DefaultDimensions(domain.ShapeCircle),
		}
		return Applied
	}
	return Ignored
}

// UpdatePinPosition moves a pin after a drag. The polygon follows the pins;
// the shape follows its anchor.
func (m *Machine) UpdatePinPosition(pinID string, pos domain.GeoPoint) (Outcome, error) {
	idx := -1
	for i, p := range m.state.Pins {
		if p.ID == pinID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return Ignored, domain.ErrPinNotFound
	}

	m.state.Pins[idx].Position = pos
	if m.state.AreaTool == domain.ToolPinArea && m.state.Shape != nil && m.state.Shape.Anchor.ID == pinID {
		m.state.Shape.Anchor.Position = pos
	}
	return Applied, nil
}

// UndoLast removes the most recent pin. With the pin-area tool there is only
// ever one pin, so undo drops the shape as well.
func (m *Machine) UndoLast() Outcome {
	n := len(m.state.Pins)
	if n == 0 {
		return Ignored
	}
	switch m.state.AreaTool {
	case domain.ToolMultiPin:
		m.state.Pins = m.state.Pins[:n-1]
	case domain.ToolPinArea:
		m.state.Pins = nil
		m.state.Shape = nil
	default:
		return Ignored
	}
	return Applied
}

// ClearAll drops every pin, the shape and the polygon.
func (m *Machine) ClearAll() Outcome {
	m.state.Pins = nil
	m.state.Shape = nil
	return Applied
}

// SetShapeKind changes the kind of the active shape and restarts its sizing
// from that kind's defaults.
func (m *Machine) SetShapeKind(kind domain.ShapeKind) (Outcome, error) {
	if _, err := domain.ParseShapeKind(string(kind)); err != nil {
		return Ignored, err
	}
	if m.state.Shape == nil {
		return Ignored, nil
	}
	m.state.Shape.Kind = kind
	m.state.Shape.Dimensions = domain.DefaultDimensions(kind)
	return Applied, nil
}

// UpdateShapeDimensions replaces the size of the active shape wholesale.
func (m *Machine) UpdateShapeDimensions(dims domain.Dimensions) (Outcome, error) {
	if m.state.Shape == nil {
		return Ignored, nil
	}
	if dims == nil {
		return Ignored, domain.ErrInvalidDimensions
	}
	if !dims.Fits(m.state.Shape.Kind) {
		return Ignored, domain.ErrDimensionsMismatch
	}
	if err := dims.Validate(); err != nil {
		return Ignored, err
	}
	m.state.Shape.Dimensions = dims
	return Applied, nil
}

// CanAnalyze reports whether there is a shape or a polygon to evaluate.
func (m *Machine) CanAnalyze() bool {
	return CanAnalyze(m.state)
}

// Confirm applies the pending request, bypassing the gate that deferred it.
// A confirmed tool switch clears the selection. The outcome is always
// Applied: the pending request is resolved even when replaying it changes
// nothing else, e.g. a pin replace confirmed while the pan tool is active.
func (m *Machine) Confirm() (Outcome, error) {
	pending := m.state.Pending
	if pending == nil {
		return Ignored, domain.ErrNoPendingAction
	}
	m.state.Pending = nil

	switch p := pending.(type) {
	case domain.PendingToolSwitch:
		m.switchTool(p.Tool, false)
	case domain.PendingPinReplace:
		m.placePin(p.Position, false)
	}
	return Applied, nil
}

// Cancel discards the pending request and leaves the selection untouched.
func (m *Machine) Cancel() (Outcome, error) {
	if m.state.Pending == nil {
		return Ignored, domain.ErrNoPendingAction
	}
	m.state.Pending = nil
	return Applied, nil
}

// Evaluate measures the current selection, see Evaluate.
func (m *Machine) Evaluate() *domain.Evaluation {
	return Evaluate(m.state)
}
