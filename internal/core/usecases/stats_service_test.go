package usecases_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samirrijal/wanderbook/internal/core/domain"
	"github.com/samirrijal/wanderbook/internal/core/usecases"
)

func TestEnquiryService(t *testing.T) {
	store := newMemStore()
	svc := usecases.NewEnquiryService(memEnquiries{store})
	ctx := context.Background()

	e, err := svc.Submit(ctx, usecases.EnquiryInput{
		TripID:  tripID,
		Name:    "Maya",
		Email:   " Maya@Example.com",
		Phone:   "9801234567",
		Message: "Is the March departure still open?",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.EnquiryNew, e.Status)
	assert.Equal(t, "maya@example.com", e.Email)

	_, err = svc.Submit(ctx, usecases.EnquiryInput{TripID: "not-a-uuid", Name: "M", Email: "x", Message: "hi"})
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	for _, field := range []string{"trip_id", "name", "email", "message"} {
		assert.Contains(t, ve.Fields, field)
	}

	require.NoError(t, svc.MarkResponded(ctx, e.ID))
	assert.ErrorIs(t, svc.MarkResponded(ctx, "missing"), domain.ErrNotFound)

	open, total, err := svc.List(ctx, domain.EnquiryNew, 0, 0)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, open)

	_, _, err = svc.List(ctx, "archived", 0, 0)
	assert.True(t, domain.IsValidation(err))
}

func TestStatsService_Dashboard(t *testing.T) {
	draft := testTrip(5)
	draft.ID = "9f0e6d4c-1111-4a2b-8c3d-123456789abc"
	draft.Slug = "draft-trip"
	draft.Status = domain.TripDraft

	store := newMemStore(testTrip(5), draft)
	store.addBooking(domain.Booking{ID: "b1", TripID: tripID, Status: domain.BookingPending})
	store.addBooking(domain.Booking{ID: "b2", TripID: tripID, Status: domain.BookingConfirmed})
	store.addBooking(domain.Booking{ID: "b3", TripID: tripID, Status: domain.BookingConfirmed})
	require.NoError(t, memReviews{store}.Create(context.Background(), &domain.Review{ID: "r1", TripID: tripID, Status: domain.ReviewPending}))
	require.NoError(t, memEnquiries{store}.Create(context.Background(), &domain.Enquiry{ID: "e1", Status: domain.EnquiryNew}))

	svc := usecases.NewStatsService(memTrips{store}, memBookings{store}, memReviews{store}, memEnquiries{store})
	stats, err := svc.Dashboard(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, stats.Trips)
	assert.Equal(t, 1, stats.PublishedTrips)
	assert.Equal(t, map[domain.BookingStatus]int{
		domain.BookingPending:   1,
		domain.BookingConfirmed: 2,
		domain.BookingRejected:  0,
	}, stats.Bookings)
	assert.Equal(t, 1, stats.PendingReviews)
	assert.Equal(t, 1, stats.NewEnquiries)
}
