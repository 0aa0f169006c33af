package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/areaselect/internal/core/domain"
)

// Subjects.
const (
	// SubjectAnalyzePrefix + session ID carries accepted analysis requests.
	SubjectAnalyzePrefix = "selection.analyze."
	// SubjectSessionPrefix + session ID carries live session snapshots.
	SubjectSessionPrefix = "selection.session."

	StreamSelections = "SELECTIONS"
)

// Publisher implements ports.EventPublisher using NATS JetStream for the
// analysis hand-off and core NATS for live session updates.
type Publisher struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

// NewPublisher connects to NATS and makes sure the SELECTIONS stream exists.
func NewPublisher(url string) (*Publisher, error) {
	conn, err := RawConn(url)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		return nil, fmt.Errorf("jetstream: %w", err)
	}

	if err := ensureStream(js); err != nil {
		return nil, err
	}

	return &Publisher{conn: conn, js: js}, nil
}

func (p *Publisher) PublishAnalysisRequest(ctx context.Context, req *domain.AnalysisRequest) error {
	data, err := json.Marshal(req)
	if err != nil {
		return err
	}
	_, err = p.js.Publish(SubjectAnalyzePrefix+req.SessionID, data, nats.Context(ctx))
	return err
}

// PublishSessionUpdate sends a snapshot on core NATS. The origin set with
// WithOrigin, if any, travels in the HeaderOrigin header.
func (p *Publisher) PublishSessionUpdate(ctx context.Context, sessionID string, data []byte) error {
	return p.conn.PublishMsg(sessionUpdateMsg(ctx, sessionID, data))
}

// Conn exposes the underlying connection for health checks.
func (p *Publisher) Conn() *nats.Conn {
	return p.conn
}

// Close drains and closes the connection.
func (p *Publisher) Close() {
	_ = p.conn.Drain()
}

// ensureStream creates or updates the SELECTIONS work queue.
func ensureStream(js nats.JetStreamContext) error {
	cfg := nats.StreamConfig{
		Name:      StreamSelections,
		Subjects:  []string{SubjectAnalyzePrefix + ">"},
		Retention: nats.WorkQueuePolicy,
		MaxAge:    24 * time.Hour,
		Storage:   nats.FileStorage,
	}
	if _, err := js.AddStream(&cfg); err != nil {
		// Stream may already exist — try update
		if _, err := js.UpdateStream(&cfg); err != nil {
			return fmt.Errorf("ensure stream %s: %w", cfg.Name, err)
		}
	}
	return nil
}

// RawConn creates a plain NATS connection for subscribing (e.g. WebSocket relay).
func RawConn(url string) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
}
