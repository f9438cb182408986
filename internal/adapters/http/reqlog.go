package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/wanderbook/internal/pkg/logging"
)

// RequestIDLogMiddleware puts a request-scoped logger carrying the Fiber request ID into the
// user context, where use cases pick it up with logging.FromContext.
func RequestIDLogMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()
		if ctx == nil {
			ctx = context.Background()
		}

		rid, _ := c.Locals("requestid").(string)
		if rid == "" {
			return c.Next()
		}

		reqLogger := logging.FromContext(ctx).With("request_id", rid)
		c.SetUserContext(logging.WithLogger(ctx, reqLogger))

		return c.Next()
	}
}
