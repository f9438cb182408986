// Command importer loads a trip catalog manifest into the database.
//
//	importer [manifest.json|https://...] [slug,slug,...]
package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/samirrijal/wanderbook/internal/adapters/postgres"
	"github.com/samirrijal/wanderbook/internal/core/usecases"
	"github.com/samirrijal/wanderbook/internal/pkg/config"
	"github.com/samirrijal/wanderbook/internal/pkg/logging"
)

func main() {
	cfg, err := config.Load("wanderbook-importer")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup(cfg.Log.Level, "text")

	ctx := context.Background()

	db, err := postgres.New(ctx, cfg.Database.DSN(), 8)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()

	location := "manifest.json"
	if len(os.Args) > 1 {
		location = os.Args[1]
	}

	client := &http.Client{Timeout: 60 * time.Second}
	manifest, err := loadManifest(ctx, client, location)
	if err != nil {
		log.Fatalf("manifest: %v", err)
	}
	slog.Info("importing catalog", "trips", len(manifest.Trips), "source", manifest.Source)

	// Optional second arg restricts the run to a slug list.
	slugFilter := map[string]bool{}
	if len(os.Args) > 2 {
		for _, s := range strings.Split(os.Args[2], ",") {
			slugFilter[usecases.Slugify(s)] = true
		}
	}

	// No cache here; the API's short TTL picks up changes.
	trips := usecases.NewTripService(postgres.NewTripRepo(db), nil)

	var (
		wg                       sync.WaitGroup
		created, updated, failed atomic.Int64
	)
	sem := make(chan struct{}, 4)

	for _, entry := range manifest.Trips {
		if len(slugFilter) > 0 && !slugFilter[entrySlug(entry)] {
			continue
		}

		wg.Add(1)
		go func(e TripEntry) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			t, isNew, err := importTrip(ctx, trips, e)
			if err != nil {
				failed.Add(1)
				slog.Error("import trip", "slug", entrySlug(e), "error", err)
				return
			}
			if isNew {
				created.Add(1)
			} else {
				updated.Add(1)
			}
			slog.Info("trip imported", "slug", t.Slug, "id", t.ID, "status", t.Status, "new", isNew)
		}(entry)
	}

	wg.Wait()
	slog.Info("import complete", "created", created.Load(), "updated", updated.Load(), "failed", failed.Load())
	if failed.Load() > 0 {
		os.Exit(1)
	}
}

func entrySlug(e TripEntry) string {
	if e.Slug != "" {
		return usecases.Slugify(e.Slug)
	}
	return usecases.Slugify(e.Title)
}
