package main

import (
	"context"
	"log"
	"log/slog"

	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"

	"github.com/samirrijal/wanderbook/internal/adapters/mailer"
	natsadapter "github.com/samirrijal/wanderbook/internal/adapters/nats"
	"github.com/samirrijal/wanderbook/internal/adapters/postgres"
	"github.com/samirrijal/wanderbook/internal/pkg/config"
	"github.com/samirrijal/wanderbook/internal/pkg/logging"
	"github.com/samirrijal/wanderbook/internal/workflows"
)

// notifier turns booking events from NATS into Temporal notification workflows and runs
// the worker that executes them.
func main() {
	cfg, err := config.Load("wanderbook-notifier")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := postgres.New(ctx, cfg.Database.DSN(), 10)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Connect to Temporal
	c, err := client.Dial(client.Options{
		HostPort:  cfg.Temporal.HostPort,
		Namespace: cfg.Temporal.Namespace,
		Logger:    slog.Default(),
	})
	if err != nil {
		log.Fatalf("temporal client: %v", err)
	}
	defer c.Close()

	w := worker.New(c, cfg.Temporal.TaskQueue, worker.Options{})

	// Register workflow & activities
	w.RegisterWorkflow(workflows.BookingNotificationWorkflow)
	w.RegisterActivity(&workflows.NotificationActivities{
		Bookings: postgres.NewBookingRepo(db),
		Trips:    postgres.NewTripRepo(db),
		Notifier: mailer.NewLogMailer("bookings@wanderbook.example", slog.Default()),
	})

	if err := w.Start(); err != nil {
		log.Fatalf("worker: %v", err)
	}
	defer w.Stop()

	sub, err := natsadapter.NewSubscriber(cfg.NATS.URL)
	if err != nil {
		log.Fatalf("nats: %v", err)
	}
	defer sub.Close()

	if err := sub.SubscribeBookingEvents(ctx, "notifier", workflows.BookingEventDispatcher(c, cfg.Temporal.TaskQueue)); err != nil {
		log.Fatalf("subscribe: %v", err)
	}

	slog.Info("notifier started", "task_queue", cfg.Temporal.TaskQueue)
	<-worker.InterruptCh()
	slog.Info("notifier stopping")
}
