// Package memory keeps selection sessions in process memory. It is the
// default store for single-instance deployments and tests.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/samirrijal/areaselect/internal/core/domain"
	"github.com/samirrijal/areaselect/internal/pkg/metrics"
)

type entry struct {
	session   domain.Session
	expiresAt time.Time
}

// SessionRepo implements ports.SessionRepository with a map guarded by a
// mutex. Snapshots are deep-copied on the way in and out.
type SessionRepo struct {
	mu   sync.RWMutex
	data map[string]entry
	ttl  time.Duration
	now  func() time.Time
}

// NewSessionRepo returns a store expiring sessions ttl after their last save.
// A zero ttl keeps sessions until deleted.
func NewSessionRepo(ttl time.Duration) *SessionRepo {
	return &SessionRepo{data: make(map[string]entry), ttl: ttl, now: time.Now}
}

func (r *SessionRepo) Create(ctx context.Context, s *domain.Session) error {
	r.mu.Lock()
	r.putLocked(s)
	n := len(r.data)
	r.mu.Unlock()
	metrics.ActiveSessions.Set(float64(n))
	return nil
}

func (r *SessionRepo) Get(ctx context.Context, id string) (*domain.Session, error) {
	r.mu.RLock()
	e, ok := r.data[id]
	r.mu.RUnlock()

	if !ok || r.expired(e) {
		metrics.StoreMisses.WithLabelValues("memory").Inc()
		return nil, domain.ErrSessionNotFound
	}
	metrics.StoreHits.WithLabelValues("memory").Inc()

	s := e.session
	s.State = e.session.State.Clone()
	return &s, nil
}

// Save checks liveness and writes under one lock so a concurrent Sweep
// cannot drop the session in between.
func (r *SessionRepo) Save(ctx context.Context, s *domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.data[s.ID]
	if !ok || r.expired(e) {
		return domain.ErrSessionNotFound
	}
	r.putLocked(s)
	return nil
}

func (r *SessionRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	delete(r.data, id)
	n := len(r.data)
	r.mu.Unlock()
	metrics.ActiveSessions.Set(float64(n))
	return nil
}

func (r *SessionRepo) Ping(ctx context.Context) error { return nil }

// Sweep drops expired sessions and returns how many were removed.
func (r *SessionRepo) Sweep() int {
	r.mu.Lock()
	removed := 0
	for id, e := range r.data {
		if r.expired(e) {
			delete(r.data, id)
			removed++
		}
	}
	n := len(r.data)
	r.mu.Unlock()
	metrics.ActiveSessions.Set(float64(n))
	return removed
}

// RunSweeper calls Sweep every interval until ctx is done.
func (r *SessionRepo) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Sweep()
		}
	}
}

// putLocked stores a copy of s with a fresh expiry. r.mu must be held.
func (r *SessionRepo) putLocked(s *domain.Session) {
	cp := *s
	cp.State = s.State.Clone()
	e := entry{session: cp}
	if r.ttl > 0 {
		e.expiresAt = r.now().Add(r.ttl)
	}
	r.data[s.ID] = e
}

func (r *SessionRepo) expired(e entry) bool {
	return !e.expiresAt.IsZero() && !r.now().Before(e.expiresAt)
}
