package usecases

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/samirrijal/wanderbook/internal/core/domain"
	"github.com/samirrijal/wanderbook/internal/core/ports"
	"github.com/samirrijal/wanderbook/internal/pkg/logging"
	"github.com/samirrijal/wanderbook/internal/pkg/metrics"
)

var tracer = otel.Tracer("github.com/samirrijal/wanderbook/internal/core/usecases")

// BookingInput is the requester data submitted with a booking.
type BookingInput struct {
	Name                 string `json:"name" validate:"required,min=2,max=120"`
	Email                string `json:"email" validate:"required,email"`
	Mobile               string `json:"mobile" validate:"required,numeric,len=10"`
	IDNumber             string `json:"id_number" validate:"required,numeric,len=12"`
	IDDocumentURL        string `json:"id_document_url" validate:"required,url"`
	PaymentScreenshotURL string `json:"payment_screenshot_url" validate:"required,url"`
	PaymentReference     string `json:"payment_reference" validate:"required,alphanum,min=6,max=40"`
}

func (in *BookingInput) normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Mobile = strings.TrimSpace(in.Mobile)
	in.IDNumber = strings.TrimSpace(in.IDNumber)
	in.IDDocumentURL = strings.TrimSpace(in.IDDocumentURL)
	in.PaymentScreenshotURL = strings.TrimSpace(in.PaymentScreenshotURL)
	in.PaymentReference = strings.TrimSpace(in.PaymentReference)
}

// BookingOptions configures admission behaviour.
type BookingOptions struct {
	// RecheckCapacityOnReadmit refuses to reinstate a rejected booking on a full trip.
	RecheckCapacityOnReadmit bool
}

// BookingService runs booking admission control and the booking status lifecycle.
type BookingService struct {
	bookings  ports.BookingRepository
	publisher ports.EventPublisher
	cache     ports.CacheService
	opts      BookingOptions
	now       func() time.Time
}

// NewBookingService creates a new BookingService. publisher and cache may be nil.
func NewBookingService(bookings ports.BookingRepository, publisher ports.EventPublisher, cache ports.CacheService, opts BookingOptions) *BookingService {
	return &BookingService{
		bookings:  bookings,
		publisher: publisher,
		cache:     cache,
		opts:      opts,
		now:       time.Now,
	}
}

// Create admits a new pending booking on tripID for the calling principal.
func (s *BookingService) Create(ctx context.Context, p *domain.Principal, tripID string, in BookingInput) (*domain.Booking, error) {
	ctx, span := tracer.Start(ctx, "BookingService.Create")
	defer span.End()
	span.SetAttributes(attribute.String("trip.id", tripID))

	if p == nil {
		return nil, domain.ErrUnauthorized
	}

	in.normalize()
	if err := validateInput(in); err != nil {
		return nil, err
	}
	if !p.Owns(in.Email) {
		return nil, fmt.Errorf("book as %s: %w", in.Email, domain.ErrUnauthorized)
	}

	booking := &domain.Booking{
		ID:                   uuid.NewString(),
		Name:                 in.Name,
		Email:                in.Email,
		Mobile:               in.Mobile,
		IDNumber:             in.IDNumber,
		IDDocumentURL:        in.IDDocumentURL,
		PaymentScreenshotURL: in.PaymentScreenshotURL,
		PaymentReference:     in.PaymentReference,
	}

	now := s.now()
	trip, err := s.bookings.Admit(ctx, tripID, booking, func(t *domain.Trip, b *domain.Booking) error {
		return domain.Admit(t, b, now)
	})
	if err != nil {
		if errors.Is(err, domain.ErrCapacityExceeded) {
			metrics.CapacityRejections.Inc()
		}
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	metrics.BookingsAdmitted.Inc()
	logging.FromContext(ctx).Info("booking admitted",
		"booking_id", booking.ID,
		"trip_id", trip.ID,
		"participants", trip.CurrentParticipants,
		"max_participants", trip.MaxParticipants,
	)

	s.invalidateTrip(ctx, trip)
	s.publish(ctx, &domain.BookingEvent{
		Type:                domain.EventBookingCreated,
		BookingID:           booking.ID,
		TripID:              trip.ID,
		Email:               booking.Email,
		Name:                booking.Name,
		Status:              booking.Status,
		CurrentParticipants: trip.CurrentParticipants,
		MaxParticipants:     trip.MaxParticipants,
		At:                  now,
	})

	return booking, nil
}

// UpdateStatus moves a booking to status and keeps its trip's participant counter in step.
func (s *BookingService) UpdateStatus(ctx context.Context, id string, status domain.BookingStatus, seatNumber string) (*domain.Booking, error) {
	ctx, span := tracer.Start(ctx, "BookingService.UpdateStatus")
	defer span.End()
	span.SetAttributes(attribute.String("booking.id", id), attribute.String("booking.status", string(status)))

	if err := domain.ValidateTransition(status, seatNumber); err != nil {
		return nil, err
	}

	var res domain.TransitionResult
	now := s.now()
	booking, trip, err := s.bookings.Transition(ctx, id, func(b *domain.Booking, t *domain.Trip) error {
		var err error
		res, err = domain.ApplyTransition(b, t, status, seatNumber, now, domain.TransitionOptions{
			RecheckCapacity: s.opts.RecheckCapacityOnReadmit,
		})
		return err
	})
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	log := logging.FromContext(ctx)
	metrics.BookingTransitions.WithLabelValues(string(res.From), string(res.To)).Inc()
	log.Info("booking status changed",
		"booking_id", booking.ID,
		"trip_id", trip.ID,
		"from", res.From,
		"to", res.To,
		"participants", trip.CurrentParticipants,
	)
	if res.Overbooked {
		metrics.Overbookings.Inc()
		log.Warn("re-admitted booking left trip over capacity",
			"booking_id", booking.ID,
			"trip_id", trip.ID,
			"participants", trip.CurrentParticipants,
			"max_participants", trip.MaxParticipants,
		)
	}

	if res.Delta != 0 {
		s.invalidateTrip(ctx, trip)
	}
	if res.From != res.To || status == domain.BookingConfirmed {
		s.publish(ctx, &domain.BookingEvent{
			Type:                domain.EventBookingStatusChanged,
			BookingID:           booking.ID,
			TripID:              trip.ID,
			Email:               booking.Email,
			Name:                booking.Name,
			From:                res.From,
			Status:              booking.Status,
			SeatNumber:          booking.SeatNumber,
			CurrentParticipants: trip.CurrentParticipants,
			MaxParticipants:     trip.MaxParticipants,
			At:                  now,
		})
	}

	return booking, nil
}

// Get returns a booking visible to p: its owner or an admin.
func (s *BookingService) Get(ctx context.Context, p *domain.Principal, id string) (*domain.Booking, error) {
	if p == nil {
		return nil, domain.ErrUnauthorized
	}
	b, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.IsAdmin() && !p.Owns(b.Email) {
		// Hide other people's bookings entirely.
		return nil, domain.ErrNotFound
	}
	return b, nil
}

// List returns bookings matching filter. Non-admin callers only ever see their own.
func (s *BookingService) List(ctx context.Context, p *domain.Principal, filter domain.BookingFilter) ([]domain.Booking, int, error) {
	if p == nil {
		return nil, 0, domain.ErrUnauthorized
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, 0, domain.NewValidationError("status", "must be one of pending, confirmed, rejected")
	}
	if !p.IsAdmin() {
		filter.Email = p.Email
	}
	filter.Email = strings.ToLower(strings.TrimSpace(filter.Email))
	filter.Offset, filter.Limit = clampPage(filter.Offset, filter.Limit, 50, 200)

	return s.bookings.List(ctx, filter)
}

func (s *BookingService) invalidateTrip(ctx context.Context, t *domain.Trip) {
	if s.cache == nil {
		return
	}
	for _, key := range tripCacheKeys(t) {
		_ = s.cache.Delete(ctx, key)
	}
}

func (s *BookingService) publish(ctx context.Context, event *domain.BookingEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishBookingEvent(ctx, event); err != nil {
		logging.FromContext(ctx).Warn("publish booking event failed", "type", event.Type, "booking_id", event.BookingID, "error", err)
	}
}
