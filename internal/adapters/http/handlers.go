package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/wanderbook/internal/core/domain"
	"github.com/samirrijal/wanderbook/internal/core/usecases"
)

// ListTripsHandler returns the published catalog, optionally filtered by category and destination.
func ListTripsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		offset, limit := pageParams(c, 20, 100)

		trips, total, err := deps.Trips.ListPublished(c.UserContext(), domain.TripFilter{
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

// GetTripHandler returns a published trip by UUID or slug.
func GetTripHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		trip, err := deps.Trips.GetPublished(c.UserContext(), c.Params("id"))
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(tripView(trip))
	}
}

// TripView is a trip as shown in the public catalog.
type TripView struct {
	*domain.Trip
	SeatsLeft *int `json:"seats_left"` // null when the trip is unlimited
}

func tripView(t *domain.Trip) TripView {
	v := TripView{Trip: t}
	if left := t.SeatsLeft(); left >= 0 {
		v.SeatsLeft = &left
	}
	return v
}

// TripReviewsHandler returns the approved reviews of a published trip.
func TripReviewsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()
		trip, err := deps.Trips.GetPublished(ctx, c.Params("id"))
		if err != nil {
			return errFromDomain(c, err)
		}

		offset, limit := pageParams(c, 20, 100)
		reviews, total, err := deps.Reviews.ListApproved(ctx, trip.ID, offset, limit)
		if err != nil {
			return errFromDomain(c, err)
		}
		if reviews == nil {
			reviews = []domain.Review{}
		}
		return paginated(c, reviews, offset, limit, total)
	}
}

// CreateBookingHandler admits a booking on a published trip for the signed-in member.
func CreateBookingHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in usecases.BookingInput
		if err := c.BodyParser(&in); err != nil {
			return errBadRequest(c, "invalid JSON body")
		}
		return createBooking(c, deps, c.Params("id"), in)
	}
}

// LegacyCreateBookingHandler serves POST /v1/bookings, which carried the trip in the body.
func LegacyCreateBookingHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body struct {
			TripID string `json:"trip_id"`
			usecases.BookingInput
		}
		if err := c.BodyParser(&body); err != nil {
			return errBadRequest(c, "invalid JSON body")
		}
		if body.TripID == "" {
			return errValidation(c, domain.NewValidationError("trip_id", "is required"))
		}
		return createBooking(c, deps, body.TripID, body.BookingInput)
	}
}

func createBooking(c *fiber.Ctx, deps *Dependencies, tripRef string, in usecases.BookingInput) error {
	ctx := c.UserContext()
	trip, err := deps.Trips.GetPublished(ctx, tripRef)
	if err != nil {
		return errFromDomain(c, err)
	}

	booking, err := deps.Bookings.Create(ctx, principal(c), trip.ID, in)
	if err != nil {
		return errFromDomain(c, err)
	}
	c.Location("/v1/bookings/" + booking.ID)
	return c.Status(fiber.StatusCreated).JSON(booking)
}

// MyBookingsHandler lists the caller's bookings. Admins see everything matching the filters.
func MyBookingsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		offset, limit := pageParams(c, 50, 200)
		bookings, total, err := deps.Bookings.List(c.UserContext(), principal(c), domain.BookingFilter{
			TripID: c.Query("trip_id"),
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

// GetBookingHandler returns one booking owned by the caller.
func GetBookingHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		booking, err := deps.Bookings.Get(c.UserContext(), principal(c), c.Params("id"))
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(booking)
	}
}

// SubmitReviewHandler stores a pending review. Signed-in members need a confirmed booking;
// guests may review completed trips.
func SubmitReviewHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in usecases.ReviewInput
		if err := c.BodyParser(&in); err != nil {
			return errBadRequest(c, "invalid JSON body")
		}

		ctx := c.UserContext()
		trip, err := deps.Trips.GetPublished(ctx, c.Params("id"))
		if err != nil {
			return errFromDomain(c, err)
		}

		review, err := deps.Reviews.Submit(ctx, principal(c), trip.ID, in)
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(review)
	}
}

// SubmitEnquiryHandler stores a contact-form message.
func SubmitEnquiryHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in usecases.EnquiryInput
		if err := c.BodyParser(&in); err != nil {
			return errBadRequest(c, "invalid JSON body")
		}
		enquiry, err := deps.Enquiries.Submit(c.UserContext(), in)
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"id":     enquiry.ID,
			"status": enquiry.Status,
		})
	}
}
