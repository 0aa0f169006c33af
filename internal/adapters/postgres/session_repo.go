package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/samirrijal/areaselect/internal/core/domain"
	"github.com/samirrijal/areaselect/internal/pkg/metrics"
)

// SessionRepo implements ports.SessionRepository on the selection_sessions
// table. The selection state is stored as JSONB.
type SessionRepo struct {
	db  *DB
	ttl time.Duration
}

func NewSessionRepo(db *DB, ttl time.Duration) *SessionRepo {
	return &SessionRepo{db: db, ttl: ttl}
}

func (r *SessionRepo) Create(ctx context.Context, s *domain.Session) error {
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO selection_sessions (id, state, created_at, updated_at, expires_at)
		VALUES ($1, $2, $3, $4, $4::timestamptz + make_interval(secs => $5::float8))
	`, s.ID, s.State, s.CreatedAt, s.UpdatedAt, r.ttl.Seconds())
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

func (r *SessionRepo) Get(ctx context.Context, id string) (*domain.Session, error) {
	s := &domain.Session{}
	err := r.db.Pool.QueryRow(ctx, `
		SELECT id, state, created_at, updated_at
		FROM selection_sessions
		WHERE id = $1 AND expires_at > now()
	`, id).Scan(&s.ID, &s.State, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		metrics.StoreMisses.WithLabelValues("postgres").Inc()
		return nil, domain.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select session: %w", err)
	}
	metrics.StoreHits.WithLabelValues("postgres").Inc()
	return s, nil
}

func (r *SessionRepo) Save(ctx context.Context, s *domain.Session) error {
	tag, err := r.db.Pool.Exec(ctx, `
		UPDATE selection_sessions
		SET state = $2, updated_at = $3, expires_at = $3::timestamptz + make_interval(secs => $4::float8)
		WHERE id = $1 AND expires_at > now()
	`, s.ID, s.State, s.UpdatedAt, r.ttl.Seconds())
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrSessionNotFound
	}
	return nil
}

func (r *SessionRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.Pool.Exec(ctx, `DELETE FROM selection_sessions WHERE id = $1`, id)
	return err
}

func (r *SessionRepo) Ping(ctx context.Context) error {
	return r.db.Pool.Ping(ctx)
}

// PurgeExpired deletes sessions past their expiry and returns how many.
func (r *SessionRepo) PurgeExpired(ctx context.Context) (int64, error) {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM selection_sessions WHERE expires_at <= now()`)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
