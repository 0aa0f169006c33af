package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// Tab is a sidebar tab of the map client.
type Tab string

const (
	TabHome     Tab = "home"
	TabAnalysis Tab = "analysis"
)

// ParseTab validates a tab name.
func ParseTab(s string) (Tab, error) {
	switch t := Tab(s); t {
	case TabHome, TabAnalysis:
		return t, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownTab, s)
}

// Tool is the interaction tool selected on the analysis tab.
type Tool string

const (
	ToolNone     Tool = ""
	ToolPan      Tool = "pan"
	ToolPinArea  Tool = "pin-area"
	ToolMultiPin Tool = "multi-pin"
)

// ParseTool validates a selectable tool name.
func ParseTool(s string) (Tool, error) {
	switch t := Tool(s); t {
	case ToolPan, ToolPinArea, ToolMultiPin:
		return t, nil
	}
	return ToolNone, fmt.Errorf("%w: %q", ErrUnknownTool, s)
}

// IsAreaTool reports whether t places pins.
func (t Tool) IsAreaTool() bool {
	return t == ToolPinArea || t == ToolMultiPin
}

// ShapeKind is the kind of parametric shape anchored on a single pin.
type ShapeKind string

const (
	ShapeCircle         ShapeKind = "circle"
	ShapeSquare         ShapeKind = "square"
	ShapeHexagon        ShapeKind = "hexagon"
	ShapeRectHorizontal ShapeKind = "rect-horizontal"
	ShapeRectVertical   ShapeKind = "rect-vertical"
)

// ParseShapeKind validates a shape kind name.
func ParseShapeKind(s string) (ShapeKind, error) {
	switch k := ShapeKind(s); k {
	case ShapeCircle, ShapeSquare, ShapeHexagon, ShapeRectHorizontal, ShapeRectVertical:
		return k, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownShapeKind, s)
}

// Pin is a placed point marker. Number is the 1-based placement order in
// multi-pin mode and zero otherwise.
type Pin struct {
	ID       string   `json:"id"`
	Position GeoPoint `json:"position"`
	Number   int      `json:"number,omitempty"`
}

// ShapeDescriptor is a parametric shape centred on its anchor pin.
type ShapeDescriptor struct {
	ID         string
	Kind       ShapeKind
	Anchor     Pin
	Dimensions Dimensions
}

type shapeWire struct {
	ID         string          `json:"id"`
	Kind       ShapeKind       `json:"kind"`
	Anchor     Pin             `json:"anchor"`
	Dimensions json.RawMessage `json:"dimensions"`
}

func (s ShapeDescriptor) MarshalJSON() ([]byte, error) {
	dims, err := json.Marshal(s.Dimensions)
	if err != nil {
		return nil, err
	}
	return json.Marshal(shapeWire{ID: s.ID, Kind: s.Kind, Anchor: s.Anchor, Dimensions: dims})
}

func (s *ShapeDescriptor) UnmarshalJSON(data []byte) error {
	var w shapeWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	dims, err := DecodeDimensions(w.Kind, w.Dimensions)
	if err != nil {
		return err
	}
	*s = ShapeDescriptor{ID: w.ID, Kind: w.Kind, Anchor: w.Anchor, Dimensions: dims}
	return nil
}

// SelectionState is the aggregate owned by the selection state machine.
//
// AreaTool is the area tool that produced the current pins; it survives a
// switch to the pan tool so the selection stays editable afterwards.
type SelectionState struct {
	Tab      Tab              `json:"tab"`
	Tool     Tool             `json:"tool"`
	AreaTool Tool             `json:"area_tool,omitempty"`
	Pins     []Pin            `json:"pins"`
	Shape    *ShapeDescriptor `json:"shape,omitempty"`
	Pending  PendingAction    `json:"-"`
}

type stateWire struct {
	Tab      Tab                `json:"tab"`
	Tool     Tool               `json:"tool"`
	AreaTool Tool               `json:"area_tool,omitempty"`
	Pins     []Pin              `json:"pins"`
	Shape    *ShapeDescriptor   `json:"shape,omitempty"`
	Pending  *PendingDescriptor `json:"pending,omitempty"`
}

func (s SelectionState) MarshalJSON() ([]byte, error) {
	w := stateWire{Tab: s.Tab, Tool: s.Tool, AreaTool: s.AreaTool, Pins: s.Pins, Shape: s.Shape}
	if w.Pins == nil {
		w.Pins = []Pin{}
	}
	if s.Pending != nil {
		pw := s.Pending.wire()
		w.Pending = &pw
	}
	return json.Marshal(w)
}

func (s *SelectionState) UnmarshalJSON(data []byte) error {
	var w stateWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*s = SelectionState{Tab: w.Tab, Tool: w.Tool, AreaTool: w.AreaTool, Pins: w.Pins, Shape: w.Shape}
	if w.Pending != nil {
		p, err := w.Pending.action()
		if err != nil {
			return err
		}
		s.Pending = p
	}
	return nil
}

// Polygon projects the multi-pin pins onto the ordered vertex list.
// It is empty unless the pins were placed with the multi-pin tool.
func (s SelectionState) Polygon() []GeoPoint {
	if s.AreaTool != ToolMultiPin || len(s.Pins) == 0 {
		return nil
	}
	vertices := make([]GeoPoint, len(s.Pins))
	for i, p := range s.Pins {
		vertices[i] = p.Position
	}
	return vertices
}

// Clone returns a deep copy of s.
func (s SelectionState) Clone() SelectionState {
	out := s
	if s.Pins != nil {
		out.Pins = append([]Pin(nil), s.Pins...)
	}
	if s.Shape != nil {
		shape := *s.Shape
		out.Shape = &shape
	}
	return out
}

// Evaluation is the policy verdict for the current selection.
type Evaluation struct {
	Source      string    `json:"source"` // "shape" | "polygon"
	Kind        ShapeKind `json:"kind,omitempty"`
	AreaKm2     float64   `json:"area_km2"`
	MaxAreaKm2  float64   `json:"max_area_km2"`
	WithinLimit bool      `json:"within_limit"`
}

// Session is one map client's selection workspace.
type Session struct {
	ID        string         `json:"id"`
	State     SelectionState `json:"state"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// AnalysisRequest is emitted when an accepted selection is handed to analysis.
type AnalysisRequest struct {
	SessionID   string           `json:"session_id"`
	AreaKm2     float64          `json:"area_km2"`
	Shape       *ShapeDescriptor `json:"shape,omitempty"`
	Polygon     []GeoPoint       `json:"polygon,omitempty"`
	RequestedAt time.Time        `json:"requested_at"`
}
