package http

import (
	"github.com/nats-io/nats.go"

	"github.com/samirrijal/areaselect/internal/core/ports"
	"github.com/samirrijal/areaselect/internal/core/usecases"
)

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Sessions *usecases.SessionService
	// Store is only used for readiness checks.
	Store ports.SessionRepository
	// NATS relays live session updates to WebSocket clients; may be nil.
	NATS *nats.Conn
}
