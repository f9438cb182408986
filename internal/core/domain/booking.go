package domain

import (
	"fmt"
	"strings"
	"time"
)

// CheckCapacity fails with ErrCapacityExceeded when the trip has a limit and every seat is held.
// The caller must hold the trip row lock so that the value read here is the one incremented.
func CheckCapacity(t *Trip) error {
	if t.MaxParticipants > 0 && t.CurrentParticipants >= t.MaxParticipants {
		return ErrCapacityExceeded
	}
	return nil
}

// CheckCapacityEdit rejects a new participant limit that is below the seats already held.
// The caller must hold the trip row lock.
func CheckCapacityEdit(t *Trip, limit int) error {
	if limit > 0 && limit < t.CurrentParticipants {
		return NewValidationError("max_participants", fmt.Sprintf("must be at least %d, the seats already held", t.CurrentParticipants))
	}
	return nil
}

// Admit reserves a seat on t for a new pending booking.
func Admit(t *Trip, b *Booking, now time.Time) error {
	if err := CheckCapacity(t); err != nil {
		return err
	}
	t.CurrentParticipants++
	t.UpdatedAt = now

	b.TripID = t.ID
	b.Status = BookingPending
	b.SeatNumber = ""
	b.CreatedAt = now
	b.UpdatedAt = now
	return nil
}

// ParticipantDelta is the change to a trip's participant counter when one of its bookings
// moves from one status to another. Leaving "rejected" re-reserves a seat, entering it
// releases one, and every other move (including no-op moves) leaves the counter alone.
//
//	from \ to   pending  confirmed  rejected
//	pending        0         0         -1
//	confirmed      0         0         -1
//	rejected      +1        +1          0
func ParticipantDelta(from, to BookingStatus) int {
	switch {
	case from == to:
		return 0
	case to == BookingRejected:
		return -1
	case from == BookingRejected:
		return 1
	default:
		return 0
	}
}

// TransitionOptions tunes how a status change is applied.
type TransitionOptions struct {
	// RecheckCapacity makes re-admission (rejected -> pending/confirmed) fail with
	// ErrCapacityExceeded when the trip is already full. Off by default: reinstating a
	// rejected booking has always been allowed to overbook.
	RecheckCapacity bool
}

// TransitionResult reports what ApplyTransition did.
type TransitionResult struct {
	From       BookingStatus
	To         BookingStatus
	Delta      int
	Overbooked bool // a re-admission left the counter above the trip's limit
}

// ValidateTransition checks the requested target status and seat number.
func ValidateTransition(to BookingStatus, seatNumber string) error {
	if !to.Valid() {
		return NewValidationError("status", "must be one of pending, confirmed, rejected")
	}
	if to == BookingConfirmed && strings.TrimSpace(seatNumber) == "" {
		return NewValidationError("seat_number", "is required to confirm a booking")
	}
	return nil
}

// ApplyTransition moves b to status to and adjusts t's participant counter by exactly
// ParticipantDelta. Both values are mutated in place; the caller persists them in one
// transaction while holding locks on both rows.
func ApplyTransition(b *Booking, t *Trip, to BookingStatus, seatNumber string, now time.Time, opts TransitionOptions) (TransitionResult, error) {
	if err := ValidateTransition(to, seatNumber); err != nil {
		return TransitionResult{}, err
	}

	res := TransitionResult{From: b.Status, To: to, Delta: ParticipantDelta(b.Status, to)}

	if res.Delta > 0 && opts.RecheckCapacity {
		if err := CheckCapacity(t); err != nil {
			return TransitionResult{}, err
		}
	}

	t.CurrentParticipants += res.Delta
	if t.CurrentParticipants < 0 {
		t.CurrentParticipants = 0
	}
	if res.Delta != 0 {
		t.UpdatedAt = now
	}
	res.Overbooked = res.Delta > 0 && t.MaxParticipants > 0 && t.CurrentParticipants > t.MaxParticipants

	b.Status = to
	if to == BookingConfirmed {
		b.SeatNumber = strings.TrimSpace(seatNumber)
	} else {
		b.SeatNumber = ""
	}
	b.UpdatedAt = now

	return res, nil
}
