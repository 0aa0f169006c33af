package domain

import "fmt"

// PendingAction is a destructive request held back until the user confirms
// or cancels it. It is either a PendingToolSwitch or a PendingPinReplace.
type PendingAction interface {
	wire() PendingDescriptor
}

// PendingToolSwitch defers a tool change that would discard the selection.
type PendingToolSwitch struct {
	Tool Tool
}

// PendingPinReplace defers replacing the anchored shape with a new pin.
type PendingPinReplace struct {
	Position GeoPoint
}

const (
	pendingToolSwitch = "tool_switch"
	pendingPinReplace = "pin_replace"
)

// PendingDescriptor is the flat wire form of a PendingAction.
type PendingDescriptor struct {
	Kind     string    `json:"kind"`
	Tool     Tool      `json:"tool,omitempty"`
	Position *GeoPoint `json:"position,omitempty"`
}

func (p PendingToolSwitch) wire() PendingDescriptor {
	return PendingDescriptor{Kind: pendingToolSwitch, Tool: p.Tool}
}

func (p PendingPinReplace) wire() PendingDescriptor {
	pos := p.Position
	return PendingDescriptor{Kind: pendingPinReplace, Position: &pos}
}

func (w PendingDescriptor) action() (PendingAction, error) {
	switch w.Kind {
	case pendingToolSwitch:
		return PendingToolSwitch{Tool: w.Tool}, nil
	case pendingPinReplace:
		if w.Position == nil {
			return nil, fmt.Errorf("pending %s without position", w.Kind)
		}
		return PendingPinReplace{Position: *w.Position}, nil
	}
	return nil, fmt.Errorf("unknown pending action %q", w.Kind)
}

// DescribePending returns the wire form of p, or nil when nothing is pending.
func DescribePending(p PendingAction) *PendingDescriptor {
	if p == nil {
		return nil
	}
	d := p.wire()
	return &d
}

// PendingKind names the kind of p for logs and metrics.
func PendingKind(p PendingAction) string {
	if p == nil {
		return ""
	}
	return p.wire().Kind
}
