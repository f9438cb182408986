package usecases_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samirrijal/wanderbook/internal/core/domain"
	"github.com/samirrijal/wanderbook/internal/core/usecases"
	"github.com/samirrijal/wanderbook/internal/pkg/logging"
)

func newReviewService(store *memStore) (*usecases.ReviewService, *recordingPublisher, *mapCache) {
	pub := &recordingPublisher{}
	cache := newMapCache()
	svc := usecases.NewReviewService(memReviews{store}, memTrips{store}, memBookings{store}, pub, cache)
	return svc, pub, cache
}

func reviewInput(rating int) usecases.ReviewInput {
	return usecases.ReviewInput{
		Rating:  rating,
		Comment: "Great guides and views.",
		Name:    "Guest Traveller",
		Email:   "guest@example.com",
	}
}

func TestReviewService_Submit_MemberNeedsConfirmedBooking(t *testing.T) {
	ctx := context.Background()
	p := member("asha@example.com")

	tests := []struct {
		name    string
		booking *domain.Booking
		wantErr error
	}{
		{name: "no booking", wantErr: domain.ErrUnauthorized},
		{
			name:    "pending booking",
			booking: &domain.Booking{ID: "b1", TripID: tripID, Email: p.Email, Status: domain.BookingPending},
			wantErr: domain.ErrUnauthorized,
		},
		{
			name:    "rejected booking",
			booking: &domain.Booking{ID: "b1", TripID: tripID, Email: p.Email, Status: domain.BookingRejected},
			wantErr: domain.ErrUnauthorized,
		},
		{
			name:    "confirmed booking on another trip",
			booking: &domain.Booking{ID: "b1", TripID: "another-trip", Email: p.Email, Status: domain.BookingConfirmed},
			wantErr: domain.ErrUnauthorized,
		},
		{
			name:    "confirmed booking",
			booking: &domain.Booking{ID: "b1", TripID: tripID, Email: p.Email, Status: domain.BookingConfirmed, SeatNumber: "A1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMemStore(testTrip(5))
			if tt.booking != nil {
				store.addBooking(*tt.booking)
			}
			svc, pub, _ := newReviewService(store)

			r, err := svc.Submit(ctx, p, tripID, reviewInput(5))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, pub.reviews)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, domain.ReviewPending, r.Status)
			assert.Equal(t, p.Subject, r.UserID)
			assert.Equal(t, p.Email, r.AuthorEmail)
			require.Len(t, pub.reviews, 1)
			assert.Equal(t, domain.EventReviewSubmitted, pub.reviews[0].Type)
		})
	}
}

func TestReviewService_Submit_GateBeforeValidation(t *testing.T) {
	store := newMemStore(testTrip(5))
	svc, _, _ := newReviewService(store)

	// An ineligible member is refused even when the review itself is malformed.
	_, err := svc.Submit(context.Background(), member("asha@example.com"), tripID, reviewInput(9))
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestReviewService_Submit_Guest(t *testing.T) {
	ctx := context.Background()

	t.Run("trip not completed", func(t *testing.T) {
		store := newMemStore(testTrip(5))
		svc, _, _ := newReviewService(store)

		_, err := svc.Submit(ctx, nil, tripID, reviewInput(4))
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})

	t.Run("completed trip", func(t *testing.T) {
		trip := testTrip(5)
		trip.Completed = true
		store := newMemStore(trip)
		svc, _, _ := newReviewService(store)

		r, err := svc.Submit(ctx, nil, tripID, reviewInput(4))
		require.NoError(t, err)
		assert.Empty(t, r.UserID)
		assert.Equal(t, "guest@example.com", r.AuthorEmail)
		assert.Equal(t, domain.ReviewPending, r.Status)
	})

	t.Run("missing guest identity", func(t *testing.T) {
		trip := testTrip(5)
		trip.Completed = true
		store := newMemStore(trip)
		svc, _, _ := newReviewService(store)

		in := reviewInput(4)
		in.Name = ""
		in.Email = "not-an-email"
		_, err := svc.Submit(ctx, nil, tripID, in)

		var ve *domain.ValidationError
		require.True(t, errors.As(err, &ve))
		assert.Contains(t, ve.Fields, "name")
		assert.Contains(t, ve.Fields, "email")
	})
}

func TestReviewService_Submit_Validation(t *testing.T) {
	trip := testTrip(5)
	trip.Completed = true
	store := newMemStore(trip)
	svc, _, _ := newReviewService(store)
	ctx := context.Background()

	for _, rating := range []int{0, 6, -1} {
		_, err := svc.Submit(ctx, nil, tripID, reviewInput(rating))
		var ve *domain.ValidationError
		require.True(t, errors.As(err, &ve), "rating %d", rating)
		assert.Contains(t, ve.Fields, "rating")
	}

	in := reviewInput(3)
	in.Comment = "ok"
	_, err := svc.Submit(ctx, nil, tripID, in)
	var ve *domain.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Contains(t, ve.Fields, "comment")

	_, err = svc.Submit(ctx, nil, "missing-trip", reviewInput(3))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestReviewService_Moderate(t *testing.T) {
	trip := testTrip(5)
	trip.Completed = true
	trip.Rating = 4.0
	trip.ReviewCount = 10
	store := newMemStore(trip)
	svc, pub, cache := newReviewService(store)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "trips:id:"+tripID, []byte(`{}`), 60))

	r, err := svc.Submit(ctx, nil, tripID, reviewInput(5))
	require.NoError(t, err)

	got, err := svc.Moderate(ctx, r.ID, domain.ReviewApproved)
	require.NoError(t, err)
	assert.Equal(t, domain.ReviewApproved, got.Status)
	assert.InDelta(t, 4.1, store.trip(tripID).Rating, 1e-9)
	assert.Equal(t, 11, store.trip(tripID).ReviewCount)
	assert.False(t, cache.has("trips:id:"+tripID))

	// approving again must not count the rating twice
	_, err = svc.Moderate(ctx, r.ID, domain.ReviewApproved)
	require.NoError(t, err)
	assert.Equal(t, 11, store.trip(tripID).ReviewCount)

	// un-approving leaves the aggregate untouched
	_, err = svc.Moderate(ctx, r.ID, domain.ReviewRejected)
	require.NoError(t, err)
	assert.InDelta(t, 4.1, store.trip(tripID).Rating, 1e-9)
	assert.Equal(t, 11, store.trip(tripID).ReviewCount)

	approved := 0
	for _, e := range pub.reviews {
		if e.Type == domain.EventReviewApproved {
			approved++
			assert.Equal(t, 11, e.ReviewCount)
		}
	}
	assert.Equal(t, 1, approved)
}

func TestReviewService_Moderate_Sequence(t *testing.T) {
	trip := testTrip(5)
	trip.Completed = true
	store := newMemStore(trip)
	svc, _, _ := newReviewService(store)
	ctx := context.Background()

	for _, rating := range []int{5, 5, 4} {
		r, err := svc.Submit(ctx, nil, tripID, reviewInput(rating))
		require.NoError(t, err)
		_, err = svc.Moderate(ctx, r.ID, domain.ReviewApproved)
		require.NoError(t, err)
	}

	assert.InDelta(t, 4.7, store.trip(tripID).Rating, 1e-9)
	assert.Equal(t, 3, store.trip(tripID).ReviewCount)

	public, total, err := svc.ListApproved(ctx, tripID, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	for _, r := range public {
		assert.Empty(t, r.AuthorEmail)
	}
}

func TestReviewService_Moderate_Errors(t *testing.T) {
	store := newMemStore(testTrip(5))
	svc, _, _ := newReviewService(store)
	ctx := context.Background()

	_, err := svc.Moderate(ctx, "missing", domain.ReviewApproved)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.Moderate(ctx, "missing", "published")
	assert.True(t, domain.IsValidation(err))
}

type failingPublisher struct{}

func (failingPublisher) PublishBookingEvent(ctx context.Context, e *domain.BookingEvent) error {
	return errors.New("nats: no responders")
}

func (failingPublisher) PublishReviewEvent(ctx context.Context, e *domain.ReviewEvent) error {
	return errors.New("nats: no responders")
}

func TestReviewService_PublishFailureIsLogged(t *testing.T) {
	var buf bytes.Buffer
	ctx := logging.WithLogger(context.Background(), slog.New(slog.NewJSONHandler(&buf, nil)))

	trip := testTrip(5)
	trip.Completed = true
	store := newMemStore(trip)
	svc := usecases.NewReviewService(memReviews{store}, memTrips{store}, memBookings{store}, failingPublisher{}, nil)

	r, err := svc.Submit(ctx, nil, tripID, reviewInput(5))
	require.NoError(t, err)
	_, err = svc.Moderate(ctx, r.ID, domain.ReviewApproved)
	require.NoError(t, err)

	out := buf.String()
	assert.Equal(t, 2, strings.Count(out, "publish review event failed"))
	assert.Contains(t, out, domain.EventReviewSubmitted)
	assert.Contains(t, out, domain.EventReviewApproved)
	assert.Contains(t, out, "no responders")
	assert.Equal(t, 5.0, store.trip(tripID).Rating)
}
