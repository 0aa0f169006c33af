package domain

import "errors"

var (
	ErrUnknownTab         = errors.New("unknown tab")
	ErrUnknownTool        = errors.New("unknown tool")
	ErrUnknownShapeKind   = errors.New("unknown shape kind")
	ErrAnalysisInactive   = errors.New("analysis tab is not active")
	ErrNoPendingAction    = errors.New("no pending action to resolve")
	ErrPinNotFound        = errors.New("pin not found")
	ErrDimensionsMismatch = errors.New("dimensions do not fit shape kind")
	ErrInvalidDimensions  = errors.New("dimensions must be positive and finite")
	ErrSessionNotFound    = errors.New("session not found")
)
