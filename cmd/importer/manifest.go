package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/samirrijal/wanderbook/internal/core/domain"
	"github.com/samirrijal/wanderbook/internal/core/usecases"
)

// Manifest is a catalog export: a list of trips to create or refresh by slug.
type Manifest struct {
	Source string      `json:"source"`
	Trips  []TripEntry `json:"trips"`
}

type TripEntry struct {
	usecases.TripInput
	Status    domain.TripStatus `json:"status,omitempty"`
	Completed bool              `json:"completed,omitempty"`
}

// loadManifest reads a manifest from a local path or an http(s) URL.
func loadManifest(ctx context.Context, client *http.Client, location string) (*Manifest, error) {
	var r io.ReadCloser
	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
		if err != nil {
			return nil, err
		}
		resp, err := client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("download: %w", err)
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, fmt.Errorf("HTTP %d for %s", resp.StatusCode, location)
		}
		r = resp.Body
	} else {
		f, err := os.Open(location)
		if err != nil {
			return nil, err
		}
		r = f
	}
	defer r.Close()
	return parseManifest(r)
}

func parseManifest(r io.Reader) (*Manifest, error) {
	var m Manifest
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	for i, e := range m.Trips {
		if e.Status != "" && !e.Status.Valid() {
			return nil, fmt.Errorf("trip %d (%q): unknown status %q", i, e.Title, e.Status)
		}
	}
	return &m, nil
}

// catalog is the part of usecases.TripService the importer drives.
type catalog interface {
	Get(ctx context.Context, idOrSlug string) (*domain.Trip, error)
	Create(ctx context.Context, in usecases.TripInput) (*domain.Trip, error)
	Update(ctx context.Context, id string, in usecases.TripInput) (*domain.Trip, error)
	SetStatus(ctx context.Context, id string, status domain.TripStatus) (*domain.Trip, error)
	SetCompleted(ctx context.Context, id string, completed bool) (*domain.Trip, error)
}

// importTrip upserts one entry. Counters and ratings are never touched.
func importTrip(ctx context.Context, trips catalog, e TripEntry) (*domain.Trip, bool, error) {
	slug := e.Slug
	if slug == "" {
		slug = usecases.Slugify(e.Title)
	}

	var (
		t       *domain.Trip
		created bool
	)
	existing, err := trips.Get(ctx, slug)
	switch {
	case err == nil:
		t, err = trips.Update(ctx, existing.ID, e.TripInput)
	case isNotFound(err):
		t, err = trips.Create(ctx, e.TripInput)
		created = true
	}
	if err != nil {
		return nil, false, err
	}

	if e.Status != "" && e.Status != t.Status {
		if t, err = trips.SetStatus(ctx, t.ID, e.Status); err != nil {
			return nil, created, fmt.Errorf("set status: %w", err)
		}
	}
	if e.Completed != t.Completed {
		if t, err = trips.SetCompleted(ctx, t.ID, e.Completed); err != nil {
			return nil, created, fmt.Errorf("set completed: %w", err)
		}
	}
	return t, created, nil
}

func isNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}
