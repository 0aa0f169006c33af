package usecases

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/samirrijal/areaselect/internal/core/domain"
	"github.com/samirrijal/areaselect/internal/core/ports"
	"github.com/samirrijal/areaselect/internal/core/selection"
	"github.com/samirrijal/areaselect/internal/pkg/geospatial"
	"github.com/samirrijal/areaselect/internal/pkg/metrics"
	"github.com/samirrijal/areaselect/internal/pkg/telemetry"
)

// ErrUnknownAction is returned for an Action whose Type is not recognised.
var ErrUnknownAction = errors.New("unknown action")

// ActionType names a user event routed to the selection machine.
type ActionType string

const (
	ActionSelectTab    ActionType = "select_tab"
	ActionSelectTool   ActionType = "select_tool"
	ActionAddPin       ActionType = "add_pin"
	ActionMovePin      ActionType = "move_pin"
	ActionUndo         ActionType = "undo"
	ActionClear        ActionType = "clear"
	ActionSetShapeKind ActionType = "set_shape_kind"
	ActionResizeShape  ActionType = "resize_shape"
	ActionConfirm      ActionType = "confirm"
	ActionCancel       ActionType = "cancel"
)

// Action is one user event. Only the fields relevant to Type are read.
type Action struct {
	Type       ActionType
	Tab        domain.Tab
	Tool       domain.Tool
	Position   domain.GeoPoint
	PinID      string
	Kind       domain.ShapeKind
	Dimensions domain.Dimensions
}

// ActionResult is the session after an action and what the action did.
type ActionResult struct {
	Session *domain.Session
	Outcome selection.Outcome
}

// Analysis verdict statuses.
const (
	AnalysisNoSelection = "no_selection"
	AnalysisTooLarge    = "too_large"
	AnalysisAccepted    = "accepted"
)

// AnalysisVerdict is the answer to an analyze request. Rejections are
// verdicts, not errors.
type AnalysisVerdict struct {
	Status     string             `json:"status"`
	Title      string             `json:"title"`
	Message    string             `json:"message"`
	AreaKm2    float64            `json:"area_km2"`
	MaxAreaKm2 float64            `json:"max_area_km2"`
	Evaluation *domain.Evaluation `json:"evaluation,omitempty"`
	Queued     bool               `json:"queued"`
}

// SessionService routes user events for one session at a time through the
// selection machine and persists the resulting state.
type SessionService struct {
	sessions ports.SessionRepository
	events   ports.EventPublisher
	locks    *sessionLocks
	now      func() time.Time
	opts     []selection.Option
}

// SessionOption configures a SessionService.
type SessionOption func(*SessionService)

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) SessionOption {
	return func(s *SessionService) { s.now = now }
}

// WithMachineOptions passes options to every selection machine the service builds.
func WithMachineOptions(opts ...selection.Option) SessionOption {
	return func(s *SessionService) { s.opts = append(s.opts, opts...) }
}

// NewSessionService creates a SessionService. events may be nil, in which
// case accepted analyses are not handed off and no live updates are sent.
func NewSessionService(sessions ports.SessionRepository, events ports.EventPublisher, opts ...SessionOption) *SessionService {
	s := &SessionService{
		sessions: sessions,
		events:   events,
		locks:    newSessionLocks(),
		now:      time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Create starts a session parked on the home tab.
func (s *SessionService) Create(ctx context.Context) (*domain.Session, error) {
	now := s.now().UTC()
	sess := &domain.Session{
		ID:        uuid.NewString(),
		State:     selection.New(s.opts...).State(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.sessions.Create(ctx, sess); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	slog.DebugContext(ctx, "session created", "session_id", sess.ID)
	return sess, nil
}

// Get returns the current snapshot of a session.
func (s *SessionService) Get(ctx context.Context, id string) (*domain.Session, error) {
	sess, err := s.sessions.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get session %s: %w", id, err)
	}
	return sess, nil
}

// Delete ends a session.
func (s *SessionService) Delete(ctx context.Context, id string) error {
	unlock := s.locks.lock(id)
	defer unlock()

	if err := s.sessions.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete session %s: %w", id, err)
	}
	return nil
}

// Apply feeds one action to the session's machine and saves the result.
// Rejected actions leave the stored session untouched.
func (s *SessionService) Apply(ctx context.Context, id string, action Action) (*ActionResult, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "selection."+string(action.Type))
	defer span.End()
	span.SetAttributes(
		attribute.String("session.id", id),
		attribute.String("selection.action", string(action.Type)),
	)

	unlock := s.locks.lock(id)
	defer unlock()

	sess, err := s.sessions.Get(ctx, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "load session")
		return nil, fmt.Errorf("load session %s: %w", id, err)
	}

	m := selection.Restore(sess.State, s.opts...)
	pendingKind := domain.PendingKind(m.Pending())

	outcome, err := dispatch(m, action)
	if err != nil {
		metrics.SelectionActions.WithLabelValues(string(action.Type), "rejected").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	metrics.SelectionActions.WithLabelValues(string(action.Type), string(outcome)).Inc()
	span.SetAttributes(attribute.String("selection.outcome", string(outcome)))

	switch action.Type {
	case ActionConfirm:
		metrics.SelectionConfirmations.WithLabelValues(pendingKind, "confirmed").Inc()
	case ActionCancel:
		metrics.SelectionConfirmations.WithLabelValues(pendingKind, "cancelled").Inc()
	}

	if outcome != selection.Ignored {
		sess.State = m.State()
		sess.UpdatedAt = s.now().UTC()
		if err := s.sessions.Save(ctx, sess); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "save session")
			return nil, fmt.Errorf("save session %s: %w", id, err)
		}
		s.broadcast(ctx, sess)
	}

	slog.DebugContext(ctx, "selection action",
		"session_id", id,
		"action", action.Type,
		"outcome", outcome,
		"pins", len(sess.State.Pins),
		"pending", domain.PendingKind(sess.State.Pending),
	)

	return &ActionResult{Session: sess, Outcome: outcome}, nil
}

func dispatch(m *selection.Machine, a Action) (selection.Outcome, error) {
	switch a.Type {
	case ActionSelectTab:
		if _, err := domain.ParseTab(string(a.Tab)); err != nil {
			return selection.Ignored, err
		}
		return m.SelectTab(a.Tab), nil
	case ActionSelectTool:
		return m.SelectTool(a.Tool)
	case ActionAddPin:
		return m.AddPin(a.Position), nil
	case ActionMovePin:
		return m.UpdatePinPosition(a.PinID, a.Position)
	case ActionUndo:
		return m.UndoLast(), nil
	case ActionClear:
		return m.ClearAll(), nil
	case ActionSetShapeKind:
		return m.SetShapeKind(a.Kind)
	case ActionResizeShape:
		return m.UpdateShapeDimensions(a.Dimensions)
	case ActionConfirm:
		return m.Confirm()
	case ActionCancel:
		return m.Cancel()
	}
	return selection.Ignored, fmt.Errorf("%w: %q", ErrUnknownAction, a.Type)
}

// broadcast pushes the fresh snapshot to live subscribers. Best effort: the
// session is already saved.
func (s *SessionService) broadcast(ctx context.Context, sess *domain.Session) {
	if s.events == nil {
		return
	}
	data, err := json.Marshal(sess)
	if err != nil {
		return
	}
	if err := s.events.PublishSessionUpdate(ctx, sess.ID, data); err != nil {
		slog.WarnContext(ctx, "session update not published", "session_id", sess.ID, "error", err)
	}
}

// Evaluate measures the session's current selection without side effects.
// It returns nil when nothing is selected.
func (s *SessionService) Evaluate(ctx context.Context, id string) (*domain.Evaluation, error) {
	sess, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return selection.Evaluate(sess.State), nil
}

// Analyze runs the analysis gate: nothing selected, too large, or accepted.
// Accepted selections are handed to the analysis backend.
func (s *SessionService) Analyze(ctx context.Context, id string) (*AnalysisVerdict, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "selection.analyze")
	defer span.End()
	span.SetAttributes(attribute.String("session.id", id))

	sess, err := s.Get(ctx, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "load session")
		return nil, err
	}

	eval := selection.Evaluate(sess.State)
	verdict := newVerdict(eval)
	if eval == nil {
		metrics.SelectionEvaluations.WithLabelValues("none", verdict.Status).Inc()
		slog.InfoContext(ctx, "analysis rejected: nothing selected", "session_id", id)
		return verdict, nil
	}

	metrics.SelectionEvaluations.WithLabelValues(eval.Source, verdict.Status).Inc()
	metrics.SelectionAreaKm2.Observe(eval.AreaKm2)
	span.SetAttributes(
		attribute.String("selection.source", eval.Source),
		attribute.Float64("selection.area_km2", eval.AreaKm2),
		attribute.Bool("selection.within_limit", eval.WithinLimit),
	)

	if !eval.WithinLimit {
		slog.InfoContext(ctx, "analysis rejected: area too large",
			"session_id", id,
			"area_km2", eval.AreaKm2,
			"max_area_km2", eval.MaxAreaKm2,
		)
		return verdict, nil
	}

	if s.events != nil {
		req := &domain.AnalysisRequest{
			SessionID:   id,
			AreaKm2:     eval.AreaKm2,
			Shape:       sess.State.Shape,
			RequestedAt: s.now().UTC(),
		}
		if sess.State.Shape == nil {
			req.Polygon = sess.State.Polygon()
		}
		if err := s.events.PublishAnalysisRequest(ctx, req); err != nil {
			span.RecordError(err)
			slog.WarnContext(ctx, "analysis request not queued", "session_id", id, "error", err)
		} else {
			verdict.Queued = true
		}
	}

	slog.InfoContext(ctx, "analysis accepted", "session_id", id, "area_km2", eval.AreaKm2, "queued", verdict.Queued)
	return verdict, nil
}

func newVerdict(eval *domain.Evaluation) *AnalysisVerdict {
	if eval == nil {
		return &AnalysisVerdict{
			Status:     AnalysisNoSelection,
			Title:      "Invalid Selection",
			Message:    "Please select an area to analyze.",
			MaxAreaKm2: geospatial.MaxAnalysisAreaKm2,
		}
	}
	v := &AnalysisVerdict{
		AreaKm2:    eval.AreaKm2,
		MaxAreaKm2: eval.MaxAreaKm2,
		Evaluation: eval,
	}
	if !eval.WithinLimit {
		v.Status = AnalysisTooLarge
		v.Title = "Area Too Large"
		v.Message = fmt.Sprintf("Selected area (%.2f km²) exceeds the maximum limit of %.0f km².", eval.AreaKm2, eval.MaxAreaKm2)
		return v
	}
	v.Status = AnalysisAccepted
	v.Title = "Starting Analysis"
	v.Message = fmt.Sprintf("Analyzing %.2f km² area...", eval.AreaKm2)
	return v
}
