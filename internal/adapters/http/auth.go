package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/wanderbook/internal/core/domain"
	"github.com/samirrijal/wanderbook/internal/pkg/logging"
)

const principalKey = "principal"

// bearerToken returns the token from "Authorization: Bearer <token>", or "".
func bearerToken(c *fiber.Ctx) string {
	h := c.Get(fiber.HeaderAuthorization)
	if len(h) < 7 || !strings.EqualFold(h[:7], "Bearer ") {
		return ""
	}
	return strings.TrimSpace(h[7:])
}

// authenticate verifies the bearer token, if any, and stores the principal in Locals.
// It reports false after writing a 401 response.
func authenticate(c *fiber.Ctx, deps *Dependencies, token string, required bool) (bool, error) {
	if token == "" {
		if required {
			return false, errUnauthorized(c, "missing bearer token")
		}
		return true, nil
	}
	if deps.Auth == nil {
		return false, errUnauthorized(c, "authentication is not configured")
	}

	p, err := deps.Auth.Verify(token)
	if err != nil {
		logging.FromContext(c.UserContext()).Debug("token rejected", "error", err)
		return false, errUnauthorized(c, "invalid or expired token")
	}
	c.Locals(principalKey, p)
	c.SetUserContext(logging.WithLogger(c.UserContext(), logging.FromContext(c.UserContext()).With("sub", p.Subject)))
	return true, nil
}

// RequireAuth rejects requests without a valid session token.
func RequireAuth(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ok, err := authenticate(c, deps, bearerToken(c), true)
		if !ok {
			return err
		}
		return c.Next()
	}
}

// OptionalAuth attaches the principal when a token is present. A present but invalid token
// is still rejected so that a member is never silently treated as a guest.
func OptionalAuth(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ok, err := authenticate(c, deps, bearerToken(c), false)
		if !ok {
			return err
		}
		return c.Next()
	}
}

// RequireAdmin must run after RequireAuth.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !principal(c).IsAdmin() {
			return errForbidden(c, "forbidden", "admin access required")
		}
		return c.Next()
	}
}

// principal returns the authenticated caller, or nil for guests.
func principal(c *fiber.Ctx) *domain.Principal {
	p, _ := c.Locals(principalKey).(*domain.Principal)
	return p
}
