package domain

import "time"

// Event types published on the message bus.
const (
	EventBookingCreated       = "booking.created"
	EventBookingStatusChanged = "booking.status_changed"
	EventReviewSubmitted      = "review.submitted"
	EventReviewApproved       = "review.approved"
)

// BookingEvent announces a booking admission or status change.
type BookingEvent struct {
	Type                string        `json:"type"`
	BookingID           string        `json:"booking_id"`
	TripID              string        `json:"trip_id"`
	Email               string        `json:"email"`
	Name                string        `json:"name"`
	From                BookingStatus `json:"from,omitempty"`
	Status              BookingStatus `json:"status"`
	SeatNumber          string        `json:"seat_number,omitempty"`
	CurrentParticipants int           `json:"current_participants"`
	MaxParticipants     int           `json:"max_participants"`
	At                  time.Time     `json:"at"`
}

// ReviewEvent announces a review submission or approval.
type ReviewEvent struct {
	Type        string       `json:"type"`
	ReviewID    string       `json:"review_id"`
	TripID      string       `json:"trip_id"`
	Rating      int          `json:"rating"`
	Status      ReviewStatus `json:"status"`
	TripRating  float64      `json:"trip_rating"`
	ReviewCount int          `json:"review_count"`
	At          time.Time    `json:"at"`
}
