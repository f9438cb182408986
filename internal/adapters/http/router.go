package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/timeout"
	"github.com/gofiber/websocket/v2"

	"github.com/samirrijal/wanderbook/internal/pkg/metrics"
)

// LegacyBookingSunset is when POST /v1/bookings stops being served.
var LegacyBookingSunset = time.Date(2027, time.June, 30, 0, 0, 0, 0, time.UTC)

// SetupRoutes registers all REST, GraphQL, and WebSocket routes.
func SetupRoutes(app *fiber.App, deps *Dependencies) {
	// Prometheus metrics
	app.Use(metrics.Middleware())
	app.Get("/metrics", metrics.Handler())

	// Response compression (gzip)
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	// Request ID
	app.Use(requestid.New())

	// Propagate request ID into slog context
	app.Use(RequestIDLogMiddleware())

	// Access logs (structured HTTP request logging)
	app.Use(AccessLogMiddleware())

	if deps.CORSOrigins != "" {
		app.Use(cors.New(cors.Config{
			AllowOrigins:  deps.CORSOrigins,
			AllowMethods:  "GET,POST,PUT,PATCH,DELETE,OPTIONS",
			AllowHeaders:  "Authorization,Content-Type,If-None-Match",
			ExposeHeaders: "ETag,Link,X-Request-ID,Deprecation,Sunset",
			MaxAge:        600,
		}))
	}

	// Rate limiting per IP
	if deps.RateLimit > 0 {
		app.Use(limiter.New(limiter.Config{
			Max:        deps.RateLimit,
			Expiration: 1 * time.Minute,
			KeyGenerator: func(c *fiber.Ctx) string {
				return c.IP()
			},
			LimitReached: func(c *fiber.Ctx) error {
				return newError(c, fiber.StatusTooManyRequests, "rate_limited", "too many requests, please try again later")
			},
		}))
	}

	// Security headers + API version
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Set("X-API-Version", "1.0.0")
		return c.Next()
	})

	// ETag for conditional caching
	app.Use(ETagMiddleware())

	// Default Cache-Control headers
	app.Use(CachingMiddleware())

	// Health & readiness (no timeout, fast internal checks)
	app.Get("/v1/health", HealthHandler(deps))
	app.Get("/v1/ready", ReadyHandler(deps))

	withTimeout := func(h fiber.Handler) fiber.Handler {
		return timeout.NewWithContext(h, deps.requestTimeout())
	}

	v1 := app.Group("/v1", DeprecationMiddleware([]DeprecatedRoute{
		{Method: fiber.MethodPost, Path: "/v1/bookings", SunsetDate: LegacyBookingSunset, Alternative: "/v1/trips/{id}/bookings"},
	}))

	// Public catalog
	v1.Get("/trips", withTimeout(ListTripsHandler(deps)))
	v1.Get("/trips/:id", withTimeout(GetTripHandler(deps)))
	v1.Get("/trips/:id/reviews", withTimeout(TripReviewsHandler(deps)))
	v1.Post("/trips/:id/reviews", OptionalAuth(deps), withTimeout(SubmitReviewHandler(deps)))
	v1.Post("/enquiries", withTimeout(SubmitEnquiryHandler(deps)))

	// Member bookings
	v1.Post("/trips/:id/bookings", RequireAuth(deps), withTimeout(CreateBookingHandler(deps)))
	v1.Post("/bookings", RequireAuth(deps), withTimeout(LegacyCreateBookingHandler(deps)))
	v1.Get("/bookings", RequireAuth(deps), withTimeout(MyBookingsHandler(deps)))
	v1.Get("/bookings/:id", RequireAuth(deps), withTimeout(GetBookingHandler(deps)))

	// Admin dashboard
	admin := v1.Group("/admin", RequireAuth(deps), RequireAdmin())
	admin.Get("/stats", withTimeout(DashboardHandler(deps)))
	admin.Get("/trips", withTimeout(AdminListTripsHandler(deps)))
	admin.Post("/trips", withTimeout(CreateTripHandler(deps)))
	admin.Get("/trips/:id", withTimeout(AdminGetTripHandler(deps)))
	admin.Put("/trips/:id", withTimeout(UpdateTripHandler(deps)))
	admin.Patch("/trips/:id/status", withTimeout(SetTripStatusHandler(deps)))
	admin.Patch("/trips/:id/completed", withTimeout(SetTripCompletedHandler(deps)))
	admin.Post("/trips/:id/rating", withTimeout(ApplyRatingHandler(deps)))
	admin.Get("/bookings", withTimeout(AdminListBookingsHandler(deps)))
	admin.Patch("/bookings/:id/status", withTimeout(UpdateBookingStatusHandler(deps)))
	admin.Get("/reviews", withTimeout(AdminListReviewsHandler(deps)))
	admin.Patch("/reviews/:id/status", withTimeout(ModerateReviewHandler(deps)))
	admin.Get("/enquiries", withTimeout(AdminListEnquiriesHandler(deps)))
	admin.Post("/enquiries/:id/responded", withTimeout(MarkEnquiryRespondedHandler(deps)))

	// GraphQL (public catalog only)
	app.Post("/graphql", withTimeout(GraphQLHandler(deps)))

	// API documentation (Swagger UI)
	SetupDocs(app)

	// Admin live feed
	app.Get("/ws/admin", AdminFeedUpgrade(deps), websocket.New(WebSocketHandler(deps.NATS)))
}
