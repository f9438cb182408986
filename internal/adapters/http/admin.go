package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/wanderbook/internal/core/domain"
	"github.com/samirrijal/wanderbook/internal/core/usecases"
)

// AdminListTripsHandler lists trips in any status.
func AdminListTripsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		offset, limit := pageParams(c, 20, 100)
		trips, total, err := deps.Trips.List(c.UserContext(), domain.TripFilter{
			Status:      domain.TripStatus(c.Query("status")),
			Category:    c.Query("category"),
			Destination: c.Query("destination"),
			Offset:      offset,
			Limit:       limit,
		})
		if err != nil {
			return errFromDomain(c, err)
		}
		if trips == nil {
			trips = []domain.Trip{}
		}
		return paginated(c, trips, offset, limit, total)
	}
}

// AdminGetTripHandler returns a trip by UUID or slug regardless of status.
func AdminGetTripHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		trip, err := deps.Trips.Get(c.UserContext(), c.Params("id"))
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(trip)
	}
}

// CreateTripHandler adds a draft trip to the catalog.
func CreateTripHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in usecases.TripInput
		if err := c.BodyParser(&in); err != nil {
			return errBadRequest(c, "invalid JSON body")
		}
		trip, err := deps.Trips.Create(c.UserContext(), in)
		if err != nil {
			return errFromDomain(c, err)
		}
		c.Location("/v1/admin/trips/" + trip.ID)
		return c.Status(fiber.StatusCreated).JSON(trip)
	}
}

// UpdateTripHandler replaces the editable fields of a trip.
func UpdateTripHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in usecases.TripInput
		if err := c.BodyParser(&in); err != nil {
			return errBadRequest(c, "invalid JSON body")
		}
		trip, err := deps.Trips.Update(c.UserContext(), c.Params("id"), in)
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(trip)
	}
}

// SetTripStatusHandler publishes, unpublishes or archives a trip.
func SetTripStatusHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body struct {
			Status domain.TripStatus `json:"status"`
		}
		if err := c.BodyParser(&body); err != nil {
			return errBadRequest(c, "invalid JSON body")
		}
		trip, err := deps.Trips.SetStatus(c.UserContext(), c.Params("id"), body.Status)
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(trip)
	}
}

// SetTripCompletedHandler marks a trip as run, which opens it to guest reviews.
func SetTripCompletedHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body struct {
			Completed *bool `json:"completed"`
		}
		if err := c.BodyParser(&body); err != nil {
			return errBadRequest(c, "invalid JSON body")
		}
		if body.Completed == nil {
			return errValidation(c, domain.NewValidationError("completed", "is required"))
		}
		trip, err := deps.Trips.SetCompleted(c.UserContext(), c.Params("id"), *body.Completed)
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(trip)
	}
}

// ApplyRatingHandler folds a single rating into a trip's average outside the review flow.
func ApplyRatingHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body struct {
			Rating int `json:"rating"`
		}
		if err := c.BodyParser(&body); err != nil {
			return errBadRequest(c, "invalid JSON body")
		}
		trip, err := deps.Trips.ApplyApprovedRating(c.UserContext(), c.Params("id"), body.Rating)
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(fiber.Map{
			"trip_id":      trip.ID,
			"rating":       trip.Rating,
			"review_count": trip.ReviewCount,
		})
	}
}

// AdminListBookingsHandler lists bookings across all members.
func AdminListBookingsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		offset, limit := pageParams(c, 50, 200)
		bookings, total, err := deps.Bookings.List(c.UserContext(), principal(c), domain.BookingFilter{
			TripID: c.Query("trip_id"),
			Email:  c.Query("email"),
			Status: domain.BookingStatus(c.Query("status")),
			Offset: offset,
			Limit:  limit,
		})
		if err != nil {
			return errFromDomain(c, err)
		}
		if bookings == nil {
			bookings = []domain.Booking{}
		}
		return paginated(c, bookings, offset, limit, total)
	}
}

// UpdateBookingStatusHandler confirms, rejects or reopens a booking.
func UpdateBookingStatusHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body struct {
			Status     domain.BookingStatus `json:"status"`
			SeatNumber string               `json:"seat_number"`
		}
		if err := c.BodyParser(&body); err != nil {
			return errBadRequest(c, "invalid JSON body")
		}
		booking, err := deps.Bookings.UpdateStatus(c.UserContext(), c.Params("id"), body.Status, body.SeatNumber)
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(booking)
	}
}

// AdminListReviewsHandler lists reviews for moderation, pending first by default.
func AdminListReviewsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		offset, limit := pageParams(c, 50, 200)
		reviews, total, err := deps.Reviews.List(c.UserContext(), domain.ReviewFilter{
			TripID: c.Query("trip_id"),
			Status: domain.ReviewStatus(c.Query("status", string(domain.ReviewPending))),
			Offset: offset,
			Limit:  limit,
		})
		if err != nil {
			return errFromDomain(c, err)
		}
		if reviews == nil {
			reviews = []domain.Review{}
		}
		return paginated(c, reviews, offset, limit, total)
	}
}

// ModerateReviewHandler approves or rejects a review.
func ModerateReviewHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body struct {
			Status domain.ReviewStatus `json:"status"`
		}
		if err := c.BodyParser(&body); err != nil {
			return errBadRequest(c, "invalid JSON body")
		}
		review, err := deps.Reviews.Moderate(c.UserContext(), c.Params("id"), body.Status)
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(review)
	}
}

// AdminListEnquiriesHandler lists contact-form enquiries.
func AdminListEnquiriesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		offset, limit := pageParams(c, 50, 200)
		enquiries, total, err := deps.Enquiries.List(c.UserContext(), domain.EnquiryStatus(c.Query("status")), offset, limit)
		if err != nil {
			return errFromDomain(c, err)
		}
		if enquiries == nil {
			enquiries = []domain.Enquiry{}
		}
		return paginated(c, enquiries, offset, limit, total)
	}
}

// MarkEnquiryRespondedHandler closes an enquiry.
func MarkEnquiryRespondedHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := deps.Enquiries.MarkResponded(c.UserContext(), c.Params("id")); err != nil {
			return errFromDomain(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// DashboardHandler returns the admin dashboard counters.
func DashboardHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		stats, err := deps.Stats.Dashboard(c.UserContext())
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(stats)
	}
}
