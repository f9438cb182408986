package ports

import (
	"context"

	"github.com/samirrijal/wanderbook/internal/core/domain"
)

// TripRepository persists the trip catalog.
type TripRepository interface {
	Create(ctx context.Context, trip *domain.Trip) error
	// Update stores the editable catalog fields. Counters and rating are left untouched.
	Update(ctx context.Context, trip *domain.Trip) error
	SetStatus(ctx context.Context, id string, status domain.TripStatus) error
	SetCompleted(ctx context.Context, id string, completed bool) error
	GetByID(ctx context.Context, id string) (*domain.Trip, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Trip, error)
	List(ctx context.Context, filter domain.TripFilter) ([]domain.Trip, int, error)
	// Mutate locks the trip row, applies fn, and persists the counters and rating fn changed.
	Mutate(ctx context.Context, id string, fn func(trip *domain.Trip) error) (*domain.Trip, error)
}

// BookingRepository persists bookings together with their effect on trip capacity.
type BookingRepository interface {
	// Admit locks the trip row, runs admit against the fresh trip, then inserts the booking
	// and stores the trip counter in the same transaction.
	Admit(ctx context.Context, tripID string, booking *domain.Booking, admit func(trip *domain.Trip, booking *domain.Booking) error) (*domain.Trip, error)
	// Transition locks the booking and its trip, runs fn, then stores both in one transaction.
	Transition(ctx context.Context, id string, fn func(booking *domain.Booking, trip *domain.Trip) error) (*domain.Booking, *domain.Trip, error)
	GetByID(ctx context.Context, id string) (*domain.Booking, error)
	List(ctx context.Context, filter domain.BookingFilter) ([]domain.Booking, int, error)
	HasConfirmed(ctx context.Context, email, tripID string) (bool, error)
	CountByStatus(ctx context.Context) (map[domain.BookingStatus]int, error)
}

// ReviewRepository persists trip reviews.
type ReviewRepository interface {
	Create(ctx context.Context, review *domain.Review) error
	GetByID(ctx context.Context, id string) (*domain.Review, error)
	List(ctx context.Context, filter domain.ReviewFilter) ([]domain.Review, int, error)
	// Moderate locks the review and its trip, runs fn, then stores both in one transaction.
	Moderate(ctx context.Context, id string, fn func(review *domain.Review, trip *domain.Trip) error) (*domain.Review, *domain.Trip, error)
	CountByStatus(ctx context.Context, status domain.ReviewStatus) (int, error)
}

// EnquiryRepository persists contact-form enquiries.
type EnquiryRepository interface {
	Create(ctx context.Context, enquiry *domain.Enquiry) error
	List(ctx context.Context, status domain.EnquiryStatus, offset, limit int) ([]domain.Enquiry, int, error)
	MarkResponded(ctx context.Context, id string) error
	CountByStatus(ctx context.Context, status domain.EnquiryStatus) (int, error)
}
