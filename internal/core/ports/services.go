package ports

import (
	"context"

	"github.com/samirrijal/areaselect/internal/core/domain"
)

// EventPublisher publishes selection events to a message broker.
type EventPublisher interface {
	// PublishAnalysisRequest hands an accepted selection to the analysis backend.
	PublishAnalysisRequest(ctx context.Context, req *domain.AnalysisRequest) error
	// PublishSessionUpdate fans a fresh session snapshot out to live subscribers.
	PublishSessionUpdate(ctx context.Context, sessionID string, data []byte) error
}

// EventSubscriber consumes analysis hand-offs.
type EventSubscriber interface {
	SubscribeAnalysisRequests(ctx context.Context, handler func(ctx context.Context, req *domain.AnalysisRequest) error) error
}

// CacheService is a byte-oriented key/value store with expiry.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	// Replace overwrites key only if it exists and reports whether it did.
	Replace(ctx context.Context, key string, value []byte, ttlSeconds int) (bool, error)
	Delete(ctx context.Context, key string) error
}
