package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// CachingMiddleware sets Cache-Control on GET responses that did not set it themselves.
// Catalog reads are public and short-lived since seat counts move; anything tied to a
// caller is private and never stored.
func CachingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()

		if c.Method() != fiber.MethodGet {
			return err
		}
		if existing := c.GetRespHeader(fiber.HeaderCacheControl); existing != "" {
			return err
		}

		path := c.Path()
		var ttl string

		switch {
		case path == "/v1/health" || path == "/v1/ready":
			ttl = "no-cache"

		case path == "/metrics":
			ttl = "no-cache"

		case strings.HasPrefix(path, "/v1/admin"), strings.HasPrefix(path, "/v1/bookings"):
			ttl = "private, no-store"

		case strings.HasPrefix(path, "/v1/trips/") && strings.HasSuffix(path, "/reviews"):
			ttl = "public, max-age=300" // approved reviews change only on moderation

		case strings.HasPrefix(path, "/v1/trips"):
			ttl = "public, max-age=30"

		case strings.HasPrefix(path, "/docs"):
			ttl = "public, max-age=3600"
		}

		if ttl != "" {
			c.Set(fiber.HeaderCacheControl, ttl)
		}

		return err
	}
}
