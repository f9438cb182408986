package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samirrijal/wanderbook/internal/core/domain"
)

func TestParticipantDelta_Table(t *testing.T) {
	cases := []struct {
		from, to domain.BookingStatus
		want     int
	}{
		{domain.BookingPending, domain.BookingPending, 0},
		{domain.BookingPending, domain.BookingConfirmed, 0},
		{domain.BookingPending, domain.BookingRejected, -1},
		{domain.BookingConfirmed, domain.BookingPending, 0},
		{domain.BookingConfirmed, domain.BookingConfirmed, 0},
		{domain.BookingConfirmed, domain.BookingRejected, -1},
		{domain.BookingRejected, domain.BookingPending, 1},
		{domain.BookingRejected, domain.BookingConfirmed, 1},
		{domain.BookingRejected, domain.BookingRejected, 0},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, domain.ParticipantDelta(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestAdmit_RespectsCapacity(t *testing.T) {
	now := time.Now()
	trip := &domain.Trip{ID: "t1", MaxParticipants: 1}

	b1 := &domain.Booking{}
	require.NoError(t, domain.Admit(trip, b1, now))
	assert.Equal(t, 1, trip.CurrentParticipants)
	assert.Equal(t, domain.BookingPending, b1.Status)
	assert.Equal(t, "t1", b1.TripID)

	err := domain.Admit(trip, &domain.Booking{}, now)
	assert.ErrorIs(t, err, domain.ErrCapacityExceeded)
	assert.Equal(t, 1, trip.CurrentParticipants)
}

func TestAdmit_UnlimitedTrip(t *testing.T) {
	trip := &domain.Trip{ID: "t1"}
	for i := 0; i < 100; i++ {
		require.NoError(t, domain.Admit(trip, &domain.Booking{}, time.Now()))
	}
	assert.Equal(t, 100, trip.CurrentParticipants)
	assert.Equal(t, -1, trip.SeatsLeft())
}

func TestApplyTransition_ConfirmNeedsSeat(t *testing.T) {
	b := &domain.Booking{Status: domain.BookingPending}
	trip := &domain.Trip{MaxParticipants: 2, CurrentParticipants: 1}

	_, err := domain.ApplyTransition(b, trip, domain.BookingConfirmed, "  ", time.Now(), domain.TransitionOptions{})
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))
	assert.Equal(t, domain.BookingPending, b.Status)
}

func TestApplyTransition_UnknownStatus(t *testing.T) {
	b := &domain.Booking{Status: domain.BookingPending}
	_, err := domain.ApplyTransition(b, &domain.Trip{}, "cancelled", "", time.Now(), domain.TransitionOptions{})
	assert.True(t, domain.IsValidation(err))
}

func TestApplyTransition_RejectThenConfirmRestoresCounter(t *testing.T) {
	now := time.Now()
	b := &domain.Booking{Status: domain.BookingPending}
	trip := &domain.Trip{MaxParticipants: 5, CurrentParticipants: 3}

	res, err := domain.ApplyTransition(b, trip, domain.BookingRejected, "", now, domain.TransitionOptions{})
	require.NoError(t, err)
	assert.Equal(t, -1, res.Delta)
	assert.Equal(t, 2, trip.CurrentParticipants)

	res, err = domain.ApplyTransition(b, trip, domain.BookingConfirmed, "A12", now, domain.TransitionOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Delta)
	assert.Equal(t, 3, trip.CurrentParticipants)
	assert.Equal(t, "A12", b.SeatNumber)
}

func TestApplyTransition_ReadmissionOverbooksUnlessRechecked(t *testing.T) {
	now := time.Now()

	b := &domain.Booking{Status: domain.BookingRejected}
	trip := &domain.Trip{MaxParticipants: 2, CurrentParticipants: 2}
	res, err := domain.ApplyTransition(b, trip, domain.BookingPending, "", now, domain.TransitionOptions{})
	require.NoError(t, err)
	assert.True(t, res.Overbooked)
	assert.Equal(t, 3, trip.CurrentParticipants)

	b = &domain.Booking{Status: domain.BookingRejected}
	trip = &domain.Trip{MaxParticipants: 2, CurrentParticipants: 2}
	_, err = domain.ApplyTransition(b, trip, domain.BookingPending, "", now, domain.TransitionOptions{RecheckCapacity: true})
	assert.ErrorIs(t, err, domain.ErrCapacityExceeded)
	assert.Equal(t, domain.BookingRejected, b.Status)
	assert.Equal(t, 2, trip.CurrentParticipants)
}

func TestApplyTransition_OnlyReadmissionIsOverbooked(t *testing.T) {
	now := time.Now()

	b := &domain.Booking{Status: domain.BookingPending}
	trip := &domain.Trip{MaxParticipants: 1, CurrentParticipants: 2}
	res, err := domain.ApplyTransition(b, trip, domain.BookingConfirmed, "A1", now, domain.TransitionOptions{})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Delta)
	assert.False(t, res.Overbooked)

	// seat reassignment on an already confirmed booking
	res, err = domain.ApplyTransition(b, trip, domain.BookingConfirmed, "A2", now, domain.TransitionOptions{})
	require.NoError(t, err)
	assert.False(t, res.Overbooked)
	assert.Equal(t, 2, trip.CurrentParticipants)
}

func TestCheckCapacityEdit(t *testing.T) {
	trip := &domain.Trip{MaxParticipants: 3, CurrentParticipants: 3}

	assert.NoError(t, domain.CheckCapacityEdit(trip, 3))
	assert.NoError(t, domain.CheckCapacityEdit(trip, 10))
	assert.NoError(t, domain.CheckCapacityEdit(trip, 0), "unlimited")

	err := domain.CheckCapacityEdit(trip, 1)
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "max_participants")
}

func TestApplyTransition_LeavingConfirmedClearsSeat(t *testing.T) {
	b := &domain.Booking{Status: domain.BookingConfirmed, SeatNumber: "B3"}
	trip := &domain.Trip{CurrentParticipants: 1}

	_, err := domain.ApplyTransition(b, trip, domain.BookingRejected, "", time.Now(), domain.TransitionOptions{})
	require.NoError(t, err)
	assert.Empty(t, b.SeatNumber)
	assert.Equal(t, 0, trip.CurrentParticipants)
}

func TestApplyTransition_CounterNeverNegative(t *testing.T) {
	b := &domain.Booking{Status: domain.BookingPending}
	trip := &domain.Trip{CurrentParticipants: 0}

	_, err := domain.ApplyTransition(b, trip, domain.BookingRejected, "", time.Now(), domain.TransitionOptions{})
	require.NoError(t, err)
	assert.Equal(t, 0, trip.CurrentParticipants)
}

func TestPrincipal_Owns(t *testing.T) {
	p := &domain.Principal{Email: "Ana@Example.com"}
	assert.True(t, p.Owns(" ana@example.com"))
	assert.False(t, p.Owns("other@example.com"))

	var nilP *domain.Principal
	assert.False(t, nilP.Owns("ana@example.com"))
	assert.False(t, nilP.IsAdmin())
}
