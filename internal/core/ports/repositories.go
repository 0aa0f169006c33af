package ports

import (
	"context"

	"github.com/samirrijal/areaselect/internal/core/domain"
)

// SessionRepository persists selection session snapshots.
//
// Get returns domain.ErrSessionNotFound for unknown or expired sessions.
// Save only overwrites a live session and returns the same error otherwise,
// so a session deleted mid-action is not resurrected. Delete is idempotent.
type SessionRepository interface {
	Create(ctx context.Context, session *domain.Session) error
	Get(ctx context.Context, id string) (*domain.Session, error)
	Save(ctx context.Context, session *domain.Session) error
	Delete(ctx context.Context, id string) error
	Ping(ctx context.Context) error
}
