package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/samirrijal/areaselect/internal/core/domain"
	"github.com/samirrijal/areaselect/internal/core/selection"
	"github.com/samirrijal/areaselect/internal/core/usecases"
)

var errInvalidRequest = errors.New("invalid request")

// actionRequest is the JSON form of a user event, shared by the REST action
// endpoint and the WebSocket channel.
//
//	{"type":"add_pin","position":{"lat":43.263,"lon":-2.935}}
//	{"type":"resize_shape","dimensions":{"radius_meters":250}}
type actionRequest struct {
	Type       string           `json:"type"`
	Tab        string           `json:"tab,omitempty"`
	Tool       string           `json:"tool,omitempty"`
	Position   *domain.GeoPoint `json:"position,omitempty"`
	PinID      string           `json:"pin_id,omitempty"`
	Kind       string           `json:"kind,omitempty"`
	Dimensions json.RawMessage  `json:"dimensions,omitempty"`
}

// toAction validates the request and builds the core action. Dimensions are
// decoded for req.Kind, or for the session's current shape kind when the
// request names none.
func (req actionRequest) toAction(ctx context.Context, sessions *usecases.SessionService, sessionID string) (usecases.Action, error) {
	a := usecases.Action{
		Type:  usecases.ActionType(req.Type),
		Tab:   domain.Tab(req.Tab),
		Tool:  domain.Tool(req.Tool),
		PinID: req.PinID,
		Kind:  domain.ShapeKind(req.Kind),
	}

	switch a.Type {
	case usecases.ActionAddPin, usecases.ActionMovePin:
		if req.Position == nil {
			return a, fmt.Errorf("%w: position is required", errInvalidRequest)
		}
		if err := validPosition(*req.Position); err != nil {
			return a, err
		}
		a.Position = *req.Position
		if a.Type == usecases.ActionMovePin && a.PinID == "" {
			return a, fmt.Errorf("%w: pin_id is required", errInvalidRequest)
		}

	case usecases.ActionResizeShape:
		if len(req.Dimensions) == 0 {
			return a, fmt.Errorf("%w: dimensions are required", errInvalidRequest)
		}
		kind := a.Kind
		if kind == "" {
			sess, err := sessions.Get(ctx, sessionID)
			if err != nil {
				return a, err
			}
			if sess.State.Shape == nil {
				// Nothing to resize; the machine reports it as ignored.
				return a, nil
			}
			kind = sess.State.Shape.Kind
		}
		dims, err := domain.DecodeDimensions(kind, req.Dimensions)
		if err != nil {
			if errors.Is(err, domain.ErrUnknownShapeKind) {
				return a, err
			}
			return a, fmt.Errorf("%w: %v", errInvalidRequest, err)
		}
		a.Dimensions = dims
	}
	return a, nil
}

func validPosition(p domain.GeoPoint) error {
	if !p.Valid() {
		return fmt.Errorf("%w: position out of range (lat %v, lon %v)", errInvalidRequest, p.Lat, p.Lon)
	}
	return nil
}

// sessionView is the session as returned to clients, with the derived
// fields the map surface needs to render controls.
type sessionView struct {
	*domain.Session
	Outcome    selection.Outcome  `json:"outcome,omitempty"`
	Polygon    []domain.GeoPoint  `json:"polygon"`
	CanAnalyze bool               `json:"can_analyze"`
	Evaluation *domain.Evaluation `json:"evaluation,omitempty"`
}

func newSessionView(sess *domain.Session, outcome selection.Outcome) sessionView {
	polygon := sess.State.Polygon()
	if polygon == nil {
		polygon = []domain.GeoPoint{}
	}
	return sessionView{
		Session:    sess,
		Outcome:    outcome,
		Polygon:    polygon,
		CanAnalyze: selection.CanAnalyze(sess.State),
		Evaluation: selection.Evaluate(sess.State),
	}
}
