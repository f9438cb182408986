package http

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/wanderbook/internal/core/domain"
	"github.com/samirrijal/wanderbook/internal/pkg/logging"
)

// APIError is a structured error response.
type APIError struct {
	Status    int               `json:"status"`
	Code      string            `json:"code"`    // Error code: bad_request, not_found, internal_error, etc.
	Message   string            `json:"message"` // Human-readable message
	RequestID string            `json:"request_id,omitempty"`
	Fields    map[string]string `json:"fields,omitempty"` // per-field messages for validation_error
}

// newError builds a JSON error response with a request ID.
func newError(c *fiber.Ctx, status int, code string, message string) error {
	reqID, _ := c.Locals("requestid").(string)
	return c.Status(status).JSON(APIError{
		Status:    status,
		Code:      code,
		Message:   message,
		RequestID: reqID,
	})
}

// errBadRequest returns a 400 error.
func errBadRequest(c *fiber.Ctx, msg string) error {
	return newError(c, 400, "bad_request", msg)
}

// errNotFound returns a 404 error.
func errNotFound(c *fiber.Ctx, msg string) error {
	return newError(c, 404, "not_found", msg)
}

// errInternal returns a 500 error. The cause is logged, never sent to the client.
func errInternal(c *fiber.Ctx, err error) error {
	logging.FromContext(c.UserContext()).Error("request failed",
		slog.String("method", c.Method()),
		slog.String("path", c.Path()),
		slog.String("error", err.Error()),
	)
	return newError(c, 500, "internal_error", "internal server error")
}

// errUnauthorized returns a 401 error.
func errUnauthorized(c *fiber.Ctx, msg string) error {
	return newError(c, 401, "unauthenticated", msg)
}

// errForbidden returns a 403 error.
func errForbidden(c *fiber.Ctx, code, msg string) error {
	return newError(c, 403, code, msg)
}

// errConflict returns a 409 error.
func errConflict(c *fiber.Ctx, code, msg string) error {
	return newError(c, 409, code, msg)
}

// errValidation returns a 422 error listing the offending fields.
func errValidation(c *fiber.Ctx, ve *domain.ValidationError) error {
	reqID, _ := c.Locals("requestid").(string)
	return c.Status(422).JSON(APIError{
		Status:    422,
		Code:      "validation_error",
		Message:   "request validation failed",
		RequestID: reqID,
		Fields:    ve.Fields,
	})
}

// errFromDomain maps use case errors onto HTTP responses.
func errFromDomain(c *fiber.Ctx, err error) error {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		return errValidation(c, ve)
	case errors.Is(err, domain.ErrNotFound):
		return errNotFound(c, "resource not found")
	case errors.Is(err, domain.ErrCapacityExceeded):
		return errConflict(c, "capacity_exceeded", "this trip is fully booked")
	case errors.Is(err, domain.ErrUnauthorized):
		return errForbidden(c, "unauthorized", "you are not allowed to perform this action")
	case errors.Is(err, domain.ErrForbidden):
		return errForbidden(c, "forbidden", "admin access required")
	default:
		return errInternal(c, err)
	}
}
