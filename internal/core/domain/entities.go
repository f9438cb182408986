package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TripStatus is the publication state of a trip.
type TripStatus string

const (
	TripDraft     TripStatus = "draft"
	TripPublished TripStatus = "published"
	TripArchived  TripStatus = "archived"
)

// Valid reports whether s is a known trip status.
func (s TripStatus) Valid() bool {
	switch s {
	case TripDraft, TripPublished, TripArchived:
		return true
	}
	return false
}

// Trip is a bookable tour in the catalog.
type Trip struct {
	ID                  string          `json:"id"`
	Slug                string          `json:"slug"`
	Title               string          `json:"title"`
	Destination         string          `json:"destination"`
	Category            string          `json:"category"`
	Description         string          `json:"description,omitempty"`
	Images              []string        `json:"images"`
	Status              TripStatus      `json:"status"`
	StartDate           time.Time       `json:"start_date"`
	EndDate             time.Time       `json:"end_date"`
	Price               decimal.Decimal `json:"price"`
	MaxParticipants     int             `json:"max_participants"`     // 0 = unlimited
	CurrentParticipants int             `json:"current_participants"` // pending + confirmed bookings
	Completed           bool            `json:"completed"`
	Rating              float64         `json:"rating"`
	ReviewCount         int             `json:"review_count"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
}

// SeatsLeft returns the remaining capacity, or -1 when the trip is unlimited.
func (t *Trip) SeatsLeft() int {
	if t.MaxParticipants <= 0 {
		return -1
	}
	left := t.MaxParticipants - t.CurrentParticipants
	if left < 0 {
		return 0
	}
	return left
}

// BookingStatus is a state in the booking lifecycle.
type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingRejected  BookingStatus = "rejected"
)

// Valid reports whether s is a known booking status.
func (s BookingStatus) Valid() bool {
	switch s {
	case BookingPending, BookingConfirmed, BookingRejected:
		return true
	}
	return false
}

// Holds reports whether a booking in this status occupies a seat on its trip.
func (s BookingStatus) Holds() bool {
	return s == BookingPending || s == BookingConfirmed
}

// Booking is a seat request on a trip with the requester's identity and payment evidence.
type Booking struct {
	ID                   string        `json:"id"`
	TripID               string        `json:"trip_id"`
	Name                 string        `json:"name"`
	Email                string        `json:"email"`
	Mobile               string        `json:"mobile"`
	IDNumber             string        `json:"id_number"`
	IDDocumentURL        string        `json:"id_document_url"`
	PaymentScreenshotURL string        `json:"payment_screenshot_url"`
	PaymentReference     string        `json:"payment_reference"`
	Status               BookingStatus `json:"status"`
	SeatNumber           string        `json:"seat_number,omitempty"`
	CreatedAt            time.Time     `json:"created_at"`
	UpdatedAt            time.Time     `json:"updated_at"`
}

// BookingFilter narrows a booking listing. Empty fields match everything.
type BookingFilter struct {
	TripID string
	Email  string
	Status BookingStatus
	Offset int
	Limit  int
}

// ReviewStatus is the moderation state of a review.
type ReviewStatus string

const (
	ReviewPending  ReviewStatus = "pending"
	ReviewApproved ReviewStatus = "approved"
	ReviewRejected ReviewStatus = "rejected"
)

// Valid reports whether s is a known review status.
func (s ReviewStatus) Valid() bool {
	switch s {
	case ReviewPending, ReviewApproved, ReviewRejected:
		return true
	}
	return false
}

// Review is a rating left on a trip, visible once approved.
type Review struct {
	ID          string       `json:"id"`
	TripID      string       `json:"trip_id"`
	UserID      string       `json:"user_id,omitempty"` // empty for guest reviews
	AuthorName  string       `json:"author_name"`
	AuthorEmail string       `json:"author_email,omitempty"`
	Rating      int          `json:"rating"`
	Comment     string       `json:"comment"`
	Status      ReviewStatus `json:"status"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// EnquiryStatus tracks whether the agency answered a contact request.
type EnquiryStatus string

const (
	EnquiryNew       EnquiryStatus = "new"
	EnquiryResponded EnquiryStatus = "responded"
)

// Enquiry is a contact-form message, optionally about a specific trip.
type Enquiry struct {
	ID        string        `json:"id"`
	TripID    string        `json:"trip_id,omitempty"`
	Name      string        `json:"name"`
	Email     string        `json:"email"`
	Phone     string        `json:"phone,omitempty"`
	Message   string        `json:"message"`
	Status    EnquiryStatus `json:"status"`
	CreatedAt time.Time     `json:"created_at"`
}

// TripFilter narrows a catalog listing.
type TripFilter struct {
	Status      TripStatus
	Category    string
	Destination string
	Offset      int
	Limit       int
}

// DashboardStats summarises the admin dashboard counters.
type DashboardStats struct {
	Trips          int                   `json:"trips"`
	PublishedTrips int                   `json:"published_trips"`
	Bookings       map[BookingStatus]int `json:"bookings"`
	PendingReviews int                   `json:"pending_reviews"`
	NewEnquiries   int                   `json:"new_enquiries"`
}

// RoleAdmin is the role claim granting dashboard access.
const RoleAdmin = "admin"

// Principal is the verified caller identity supplied by the session provider.
type Principal struct {
	Subject string `json:"sub"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Role    string `json:"role"`
}

// IsAdmin reports whether the principal may use admin operations.
func (p *Principal) IsAdmin() bool {
	return p != nil && p.Role == RoleAdmin
}

// Owns reports whether the principal's verified email matches email.
func (p *Principal) Owns(email string) bool {
	return p != nil && p.Email != "" && strings.EqualFold(p.Email, strings.TrimSpace(email))
}

// ReviewFilter narrows a review listing.
type ReviewFilter struct {
	TripID string
	Status ReviewStatus
	Offset int
	Limit  int
}
