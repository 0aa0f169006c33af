package http

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	natsadapter "github.com/samirrijal/areaselect/internal/adapters/nats"
	"github.com/samirrijal/areaselect/internal/core/usecases"
	"github.com/samirrijal/areaselect/internal/pkg/metrics"
)

// wsEvent is sent from server to client.
type wsEvent struct {
	Type    string                    `json:"type"` // "session" | "result" | "analysis" | "update" | "error"
	Session *sessionView              `json:"session,omitempty"`
	Verdict *usecases.AnalysisVerdict `json:"verdict,omitempty"`
	Update  json.RawMessage           `json:"update,omitempty"`
	Error   *APIError                 `json:"error,omitempty"`
}

// WebSocketHandler returns a handler for /ws/sessions/:id. Clients send the
// same action messages as POST /v1/sessions/:id/actions, plus
// {"type":"analyze"} and {"type":"get"}. Each message is answered in order.
// Snapshots saved through other channels for the same session are relayed
// from NATS as "update" events; this connection's own saves are not echoed.
func WebSocketHandler(deps *Dependencies) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		defer c.Close()

		sessionID := c.Params("id")
		connID := uuid.NewString()
		log := slog.Default().With("session_id", sessionID, "conn_id", connID, "remote_addr", c.RemoteAddr().String())
		ctx := natsadapter.WithOrigin(context.Background(), connID)

		metrics.ActiveWebSockets.Inc()
		defer metrics.ActiveWebSockets.Dec()

		var mu sync.Mutex
		writeJSON := func(v interface{}) error {
			data, err := json.Marshal(v)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			return c.WriteMessage(websocket.TextMessage, data)
		}
		writeErr := func(err error) {
			status, code, msg := classifyError(err)
			if status >= 500 {
				log.Error("ws request failed", "error", err)
			}
			_ = writeJSON(wsEvent{Type: "error", Error: &APIError{Status: status, Code: code, Message: msg}})
		}

		sess, err := deps.Sessions.Get(ctx, sessionID)
		if err != nil {
			writeErr(err)
			return
		}
		view := newSessionView(sess, "")
		_ = writeJSON(wsEvent{Type: "session", Session: &view})
		log.Info("ws client connected")

		if deps.NATS != nil {
			sub, err := deps.NATS.Subscribe(natsadapter.SubjectSessionPrefix+sessionID, func(msg *nats.Msg) {
				if natsadapter.OriginOf(msg) == connID {
					return
				}
				_ = writeJSON(wsEvent{Type: "update", Update: json.RawMessage(msg.Data)})
			})
			if err != nil {
				log.Warn("ws session relay unavailable", "error", err)
			} else {
				defer func() { _ = sub.Unsubscribe() }()
			}
		}

		// Keep-alive ping
		done := make(chan struct{})
		defer close(done)
		go func() {
			ticker := time.NewTicker(30 * time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					mu.Lock()
					err := c.WriteMessage(websocket.PingMessage, nil)
					mu.Unlock()
					if err != nil {
						return
					}
				case <-done:
					return
				}
			}
		}()

		for {
			_, msg, err := c.ReadMessage()
			if err != nil {
				break
			}

			var req actionRequest
			if err := json.Unmarshal(msg, &req); err != nil {
				writeErr(fmt.Errorf("%w: invalid JSON", errInvalidRequest))
				continue
			}

			switch req.Type {
			case "get":
				sess, err := deps.Sessions.Get(ctx, sessionID)
				if err != nil {
					writeErr(err)
					continue
				}
				view := newSessionView(sess, "")
				_ = writeJSON(wsEvent{Type: "session", Session: &view})

			case "analyze":
				verdict, err := deps.Sessions.Analyze(ctx, sessionID)
				if err != nil {
					writeErr(err)
					continue
				}
				_ = writeJSON(wsEvent{Type: "analysis", Verdict: verdict})

			default:
				action, err := req.toAction(ctx, deps.Sessions, sessionID)
				if err != nil {
					writeErr(err)
					continue
				}
				res, err := deps.Sessions.Apply(ctx, sessionID, action)
				if err != nil {
					writeErr(err)
					continue
				}
				view := newSessionView(res.Session, res.Outcome)
				_ = writeJSON(wsEvent{Type: "result", Session: &view})
			}
		}

		log.Info("ws client disconnected")
	}
}
