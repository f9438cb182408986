package http

import (
	"context"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/wanderbook/internal/core/ports"
	"github.com/samirrijal/wanderbook/internal/core/usecases"
)

// Pinger is a backing service the readiness probe can check.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Trips     *usecases.TripService
	Bookings  *usecases.BookingService
	Reviews   *usecases.ReviewService
	Enquiries *usecases.EnquiryService
	Stats     *usecases.StatsService
	Auth      ports.TokenVerifier
	NATS      *nats.Conn
	DB        Pinger
	Cache     Pinger

	RateLimit      int           // requests per minute per IP; 0 disables
	RequestTimeout time.Duration // 0 means 15s
	CORSOrigins    string
}

func (d *Dependencies) requestTimeout() time.Duration {
	if d.RequestTimeout <= 0 {
		return 15 * time.Second
	}
	return d.RequestTimeout
}
