package ports

import (
	"context"

	"github.com/samirrijal/wanderbook/internal/core/domain"
)

// EventPublisher publishes domain events to a message broker.
type EventPublisher interface {
	PublishBookingEvent(ctx context.Context, event *domain.BookingEvent) error
	PublishReviewEvent(ctx context.Context, event *domain.ReviewEvent) error
}

// EventSubscriber subscribes to domain events from a message broker.
type EventSubscriber interface {
	SubscribeBookingEvents(ctx context.Context, durable string, handler func(ctx context.Context, event *domain.BookingEvent) error) error
}

// CacheService provides read-through caching.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}

// NotificationService delivers messages to booking requesters.
type NotificationService interface {
	SendEmail(ctx context.Context, to, subject, body string) error
}

// TokenVerifier turns a bearer token issued by the session provider into a Principal.
type TokenVerifier interface {
	Verify(token string) (*domain.Principal, error)
}
