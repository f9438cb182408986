package usecases

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"

	"github.com/samirrijal/wanderbook/internal/core/domain"
	"github.com/samirrijal/wanderbook/internal/core/ports"
	"github.com/samirrijal/wanderbook/internal/pkg/logging"
	"github.com/samirrijal/wanderbook/internal/pkg/metrics"
)

const tripCacheTTL = 60 // seconds; counters move, keep it short

// TripInput is the editable part of a trip.
type TripInput struct {
	Title           string          `json:"title" validate:"required,min=3,max=200"`
	Slug            string          `json:"slug" validate:"omitempty,max=200"`
	Destination     string          `json:"destination" validate:"required,max=200"`
	Category        string          `json:"category" validate:"required,max=80"`
	Description     string          `json:"description" validate:"max=20000"`
	Images          []string        `json:"images" validate:"max=30,dive,url"`
	StartDate       time.Time       `json:"start_date" validate:"required"`
	EndDate         time.Time       `json:"end_date" validate:"required,gtefield=StartDate"`
	Price           decimal.Decimal `json:"price"`
	MaxParticipants int             `json:"max_participants" validate:"min=0,max=10000"`
}

func (in *TripInput) validate() error {
	in.Title = strings.TrimSpace(in.Title)
	in.Destination = strings.TrimSpace(in.Destination)
	in.Category = strings.ToLower(strings.TrimSpace(in.Category))
	in.Slug = Slugify(in.Slug)
	if in.Slug == "" {
		in.Slug = Slugify(in.Title)
	}

	err := validateInput(in)
	if !in.Price.IsNegative() {
		return err
	}

	ve := &domain.ValidationError{}
	if err != nil && !errors.As(err, &ve) {
		return err
	}
	ve.Add("price", "must not be negative")
	return ve
}

var slugStrip = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify turns a title into a URL-safe slug.
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = slugStrip.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// TripService handles the trip catalog and the rating aggregate.
type TripService struct {
	trips ports.TripRepository
	cache ports.CacheService
	now   func() time.Time
}

// NewTripService creates a new TripService. cache may be nil.
func NewTripService(trips ports.TripRepository, cache ports.CacheService) *TripService {
	return &TripService{trips: trips, cache: cache, now: time.Now}
}

// Create adds a draft trip.
func (s *TripService) Create(ctx context.Context, in TripInput) (*domain.Trip, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	now := s.now()
	t := &domain.Trip{
		ID:              uuid.NewString(),
		Status:          domain.TripDraft,
		CreatedAt:       now,
		UpdatedAt:       now,
		MaxParticipants: in.MaxParticipants,
	}
	applyTripInput(t, in)

	if err := s.trips.Create(ctx, t); err != nil {
		return nil, err
	}
	logging.FromContext(ctx).Info("trip created", "trip_id", t.ID, "slug", t.Slug)
	return t, nil
}

// Update replaces the editable fields of a trip. The participant limit cannot drop below
// the seats already held; the repository re-checks that under the row lock.
func (s *TripService) Update(ctx context.Context, id string, in TripInput) (*domain.Trip, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	t, err := s.trips.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := domain.CheckCapacityEdit(t, in.MaxParticipants); err != nil {
		return nil, err
	}
	old := *t

	applyTripInput(t, in)
	t.MaxParticipants = in.MaxParticipants
	t.UpdatedAt = s.now()

	if err := s.trips.Update(ctx, t); err != nil {
		return nil, err
	}
	s.invalidate(ctx, &old)
	s.invalidate(ctx, t)
	return t, nil
}

func applyTripInput(t *domain.Trip, in TripInput) {
	t.Title = in.Title
	t.Slug = in.Slug
	t.Destination = in.Destination
	t.Category = in.Category
	t.Description = in.Description
	t.Images = in.Images
	if t.Images == nil {
		t.Images = []string{}
	}
	t.StartDate = in.StartDate
	t.EndDate = in.EndDate
	t.Price = in.Price
}

// SetStatus publishes, unpublishes or archives a trip.
func (s *TripService) SetStatus(ctx context.Context, id string, status domain.TripStatus) (*domain.Trip, error) {
	if !status.Valid() {
		return nil, domain.NewValidationError("status", "must be one of draft, published, archived")
	}
	if err := s.trips.SetStatus(ctx, id, status); err != nil {
		return nil, err
	}
	return s.refresh(ctx, id)
}

// SetCompleted flags a trip as having taken place, which opens it to guest reviews.
func (s *TripService) SetCompleted(ctx context.Context, id string, completed bool) (*domain.Trip, error) {
	if err := s.trips.SetCompleted(ctx, id, completed); err != nil {
		return nil, err
	}
	return s.refresh(ctx, id)
}

func (s *TripService) refresh(ctx context.Context, id string) (*domain.Trip, error) {
	t, err := s.trips.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, t)
	return t, nil
}

// Get returns a trip by UUID or slug.
func (s *TripService) Get(ctx context.Context, idOrSlug string) (*domain.Trip, error) {
	_, parseErr := uuid.Parse(idOrSlug)
	byID := parseErr == nil

	cacheKey := "trips:slug:" + idOrSlug
	if byID {
		cacheKey = "trips:id:" + idOrSlug
	}

	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var t domain.Trip
			if err := json.Unmarshal(data, &t); err == nil {
				metrics.CacheHits.WithLabelValues("trip").Inc()
				return &t, nil
			}
		}
		metrics.CacheMisses.WithLabelValues("trip").Inc()
	}

	var (
		t   *domain.Trip
		err error
	)
	if byID {
		t, err = s.trips.GetByID(ctx, idOrSlug)
	} else {
		t, err = s.trips.GetBySlug(ctx, idOrSlug)
	}
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if data, err := json.Marshal(t); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, tripCacheTTL)
		}
	}
	return t, nil
}

// GetPublished is Get restricted to trips visible in the public catalog.
func (s *TripService) GetPublished(ctx context.Context, idOrSlug string) (*domain.Trip, error) {
	t, err := s.Get(ctx, idOrSlug)
	if err != nil {
		return nil, err
	}
	if t.Status != domain.TripPublished {
		return nil, domain.ErrNotFound
	}
	return t, nil
}

// ListPublished returns the public catalog.
func (s *TripService) ListPublished(ctx context.Context, filter domain.TripFilter) ([]domain.Trip, int, error) {
	filter.Status = domain.TripPublished
	return s.List(ctx, filter)
}

// List returns trips matching filter.
func (s *TripService) List(ctx context.Context, filter domain.TripFilter) ([]domain.Trip, int, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, 0, domain.NewValidationError("status", "must be one of draft, published, archived")
	}
	filter.Category = strings.ToLower(strings.TrimSpace(filter.Category))
	filter.Destination = strings.TrimSpace(filter.Destination)
	filter.Offset, filter.Limit = clampPage(filter.Offset, filter.Limit, 20, 100)
	return s.trips.List(ctx, filter)
}

// ApplyApprovedRating folds one approved rating into the trip's running average.
func (s *TripService) ApplyApprovedRating(ctx context.Context, tripID string, rating int) (*domain.Trip, error) {
	ctx, span := tracer.Start(ctx, "TripService.ApplyApprovedRating")
	defer span.End()
	span.SetAttributes(attribute.String("trip.id", tripID), attribute.Int("rating", rating))

	if err := domain.ValidateRating(rating); err != nil {
		return nil, err
	}
	t, err := s.trips.Mutate(ctx, tripID, func(t *domain.Trip) error {
		if err := domain.ApplyRating(t, rating); err != nil {
			return err
		}
		t.UpdatedAt = s.now()
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.RatingsApplied.Inc()
	s.invalidate(ctx, t)
	return t, nil
}

func (s *TripService) invalidate(ctx context.Context, t *domain.Trip) {
	if s.cache == nil {
		return
	}
	for _, key := range tripCacheKeys(t) {
		_ = s.cache.Delete(ctx, key)
	}
}

func tripCacheKeys(t *domain.Trip) []string {
	keys := []string{"trips:id:" + t.ID}
	if t.Slug != "" {
		keys = append(keys, "trips:slug:"+t.Slug)
	}
	return keys
}
