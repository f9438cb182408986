package workflows

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"go.temporal.io/sdk/temporal"

	"github.com/samirrijal/wanderbook/internal/core/domain"
	"github.com/samirrijal/wanderbook/internal/core/ports"
	"github.com/samirrijal/wanderbook/internal/pkg/metrics"
)

// BookingNotice is what the notification email is rendered from.
type BookingNotice struct {
	BookingID  string
	TripTitle  string
	StartDate  string
	Name       string
	Email      string
	Status     domain.BookingStatus
	SeatNumber string
}

// BookingReader is the part of ports.BookingRepository the activities need.
type BookingReader interface {
	GetByID(ctx context.Context, id string) (*domain.Booking, error)
}

// TripReader is the part of ports.TripRepository the activities need.
type TripReader interface {
	GetByID(ctx context.Context, id string) (*domain.Trip, error)
}

// NotificationActivities holds the activity implementations for the booking notification workflow.
type NotificationActivities struct {
	Bookings BookingReader
	Trips    TripReader
	Notifier ports.NotificationService
}

// LoadBookingNotice reads the booking and its trip as stored now, not as the event saw them.
func (a *NotificationActivities) LoadBookingNotice(ctx context.Context, bookingID string) (*BookingNotice, error) {
	b, err := a.Bookings.GetByID(ctx, bookingID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, temporal.NewNonRetryableApplicationError("booking not found", "NotFound", err, bookingID)
	}
	if err != nil {
		return nil, fmt.Errorf("get booking %s: %w", bookingID, err)
	}
	t, err := a.Trips.GetByID(ctx, b.TripID)
	if err != nil {
		return nil, fmt.Errorf("get trip %s: %w", b.TripID, err)
	}
	return &BookingNotice{
		BookingID:  b.ID,
		TripTitle:  t.Title,
		StartDate:  t.StartDate.Format("2 Jan 2006"),
		Name:       b.Name,
		Email:      b.Email,
		Status:     b.Status,
		SeatNumber: b.SeatNumber,
	}, nil
}

// SendBookingEmail delivers the notice to the requester.
func (a *NotificationActivities) SendBookingEmail(ctx context.Context, eventType string, notice *BookingNotice) error {
	subject, body := RenderBookingEmail(eventType, notice)
	if a.Notifier == nil {
		metrics.NotificationsSent.WithLabelValues(eventType, "skipped").Inc()
		slog.Info("EMAIL (no notifier)", "to", notice.Email, "subject", subject)
		return nil
	}
	if err := a.Notifier.SendEmail(ctx, notice.Email, subject, body); err != nil {
		return fmt.Errorf("send email to %s: %w", notice.Email, err)
	}
	metrics.NotificationsSent.WithLabelValues(eventType, "sent").Inc()
	return nil
}

// RecordNotificationFailure marks a notice that could not be delivered so staff can follow up by hand.
func (a *NotificationActivities) RecordNotificationFailure(ctx context.Context, eventType, bookingID, reason string) error {
	metrics.NotificationsSent.WithLabelValues(eventType, "failed").Inc()
	slog.Error("booking notification not delivered",
		"booking_id", bookingID,
		"event", eventType,
		"reason", reason,
	)
	return nil
}

// RenderBookingEmail builds the subject and plain-text body for a booking notice.
func RenderBookingEmail(eventType string, n *BookingNotice) (string, string) {
	var subject, lead string
	switch {
	case eventType == domain.EventBookingCreated:
		subject = "We received your booking for " + n.TripTitle
		lead = "Thanks for booking. We will verify your payment and confirm your seat shortly."
	case n.Status == domain.BookingConfirmed:
		subject = "Your booking for " + n.TripTitle + " is confirmed"
		lead = "Your payment has been verified. Your seat number is " + n.SeatNumber + "."
	case n.Status == domain.BookingRejected:
		subject = "Your booking for " + n.TripTitle + " was not accepted"
		lead = "We could not verify your booking. Reply to this email if you think this is a mistake."
	default:
		subject = "Your booking for " + n.TripTitle + " is being reviewed"
		lead = "Your booking is pending verification."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\n%s\n\n", n.Name, lead)
	fmt.Fprintf(&b, "Trip: %s\nDeparture: %s\nBooking reference: %s\n", n.TripTitle, n.StartDate, n.BookingID)
	return subject, b.String()
}
