package valkey

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/samirrijal/areaselect/internal/core/domain"
	"github.com/samirrijal/areaselect/internal/core/ports"
	"github.com/samirrijal/areaselect/internal/pkg/metrics"
)

const sessionKeyPrefix = "areaselect:session:"

// pinger is implemented by caches that can report liveness.
type pinger interface {
	Ping(ctx context.Context) error
}

// SessionRepo stores session snapshots as JSON values that expire ttlSeconds
// after the last save.
type SessionRepo struct {
	cache      ports.CacheService
	ttlSeconds int
}

// NewSessionRepo returns a session store on top of cache.
func NewSessionRepo(cache ports.CacheService, ttlSeconds int) *SessionRepo {
	return &SessionRepo{cache: cache, ttlSeconds: ttlSeconds}
}

func sessionKey(id string) string { return sessionKeyPrefix + id }

func (r *SessionRepo) Create(ctx context.Context, s *domain.Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", s.ID, err)
	}
	if err := r.cache.Set(ctx, sessionKey(s.ID), data, r.ttlSeconds); err != nil {
		return fmt.Errorf("valkey set session: %w", err)
	}
	return nil
}

func (r *SessionRepo) Get(ctx context.Context, id string) (*domain.Session, error) {
	data, err := r.cache.Get(ctx, sessionKey(id))
	if errors.Is(err, ErrMiss) {
		metrics.StoreMisses.WithLabelValues("valkey").Inc()
		return nil, domain.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("valkey get session: %w", err)
	}
	metrics.StoreHits.WithLabelValues("valkey").Inc()

	var s domain.Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", id, err)
	}
	return &s, nil
}

func (r *SessionRepo) Save(ctx context.Context, s *domain.Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", s.ID, err)
	}
	ok, err := r.cache.Replace(ctx, sessionKey(s.ID), data, r.ttlSeconds)
	if err != nil {
		return fmt.Errorf("valkey replace session: %w", err)
	}
	if !ok {
		return domain.ErrSessionNotFound
	}
	return nil
}

func (r *SessionRepo) Delete(ctx context.Context, id string) error {
	if err := r.cache.Delete(ctx, sessionKey(id)); err != nil {
		return fmt.Errorf("valkey delete session: %w", err)
	}
	return nil
}

func (r *SessionRepo) Ping(ctx context.Context) error {
	if p, ok := r.cache.(pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}
