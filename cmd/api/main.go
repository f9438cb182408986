package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/samirrijal/wanderbook/internal/adapters/http"
	natsadapter "github.com/samirrijal/wanderbook/internal/adapters/nats"
	"github.com/samirrijal/wanderbook/internal/adapters/postgres"
	"github.com/samirrijal/wanderbook/internal/adapters/valkey"
	"github.com/samirrijal/wanderbook/internal/core/ports"
	"github.com/samirrijal/wanderbook/internal/core/usecases"
	"github.com/samirrijal/wanderbook/internal/pkg/auth"
	"github.com/samirrijal/wanderbook/internal/pkg/config"
	"github.com/samirrijal/wanderbook/internal/pkg/logging"
	"github.com/samirrijal/wanderbook/internal/pkg/metrics"
	"github.com/samirrijal/wanderbook/internal/pkg/telemetry"
)

func main() {
	cfg, err := config.Load("wanderbook-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.RequireAuth(); err != nil {
		log.Fatalf("config: %v", err)
	}

	// Structured logging
	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.OTLPAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	// Database
	db, err := postgres.New(ctx, cfg.Database.DSN(), cfg.Database.MaxConns)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()
	go reportPoolStats(ctx, db)

	// Cache is optional; every read falls through to Postgres without it.
	var cache ports.CacheService
	var cachePinger http.Pinger
	vc, err := valkey.New(cfg.Valkey.Addr, cfg.Valkey.Password)
	if err != nil {
		slog.Warn("valkey unavailable", "error", err)
	} else {
		defer vc.Close()
		cache, cachePinger = vc, vc
	}

	// NATS events are best effort; bookings commit without a broker.
	var publisher ports.EventPublisher
	pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats unavailable", "error", err)
	} else {
		defer pub.Close()
		publisher = pub
	}

	// Raw NATS connection for the admin WebSocket feed
	natsConn, err := natsadapter.RawConn(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats ws conn unavailable", "error", err)
	} else {
		defer natsConn.Close()
	}

	// Repos
	tripRepo := postgres.NewTripRepo(db)
	bookingRepo := postgres.NewBookingRepo(db)
	reviewRepo := postgres.NewReviewRepo(db)
	enquiryRepo := postgres.NewEnquiryRepo(db)

	deps := &http.Dependencies{
		Trips: usecases.NewTripService(tripRepo, cache),
		Bookings: usecases.NewBookingService(bookingRepo, publisher, cache, usecases.BookingOptions{
			RecheckCapacityOnReadmit: cfg.Booking.RecheckCapacityOnReadmit,
		}),
		Reviews:        usecases.NewReviewService(reviewRepo, tripRepo, bookingRepo, publisher, cache),
		Enquiries:      usecases.NewEnquiryService(enquiryRepo),
		Stats:          usecases.NewStatsService(tripRepo, bookingRepo, reviewRepo, enquiryRepo),
		Auth:           auth.NewVerifier(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.Audience),
		NATS:           natsConn,
		DB:             db,
		Cache:          cachePinger,
		RateLimit:      cfg.Server.RateLimit,
		RequestTimeout: time.Duration(cfg.Server.RequestTimeout) * time.Second,
		CORSOrigins:    cfg.Server.CORSOrigins,
	}

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    1024 * 1024, // 1 MB max request body
		AppName:      "Wanderbook API",
	})
	app.Use(recover.New())

	http.SetupRoutes(app, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr, "version", http.Version)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	// Give in-flight requests up to 10s to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}

// reportPoolStats refreshes the connection pool gauges until ctx is done.
func reportPoolStats(ctx context.Context, db *postgres.DB) {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()
	for {
		metrics.UpdateDBPoolMetrics(db.Stat())
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
