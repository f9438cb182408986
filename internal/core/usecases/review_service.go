package usecases

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/samirrijal/wanderbook/internal/core/domain"
	"github.com/samirrijal/wanderbook/internal/core/ports"
	"github.com/samirrijal/wanderbook/internal/pkg/logging"
	"github.com/samirrijal/wanderbook/internal/pkg/metrics"
)

// ReviewInput is a review as submitted by a traveller or guest.
type ReviewInput struct {
	Rating  int    `json:"rating" validate:"min=1,max=5"`
	Comment string `json:"comment" validate:"required,min=3,max=2000"`
	Name    string `json:"name" validate:"required,min=2,max=120"`
	Email   string `json:"email" validate:"required,email"`
}

// ReviewService runs the review eligibility gate and admin moderation.
type ReviewService struct {
	reviews   ports.ReviewRepository
	trips     ports.TripRepository
	bookings  ports.BookingRepository
	publisher ports.EventPublisher
	cache     ports.CacheService
	now       func() time.Time
}

// NewReviewService creates a new ReviewService. publisher and cache may be nil.
func NewReviewService(
	reviews ports.ReviewRepository,
	trips ports.TripRepository,
	bookings ports.BookingRepository,
	publisher ports.EventPublisher,
	cache ports.CacheService,
) *ReviewService {
	return &ReviewService{
		reviews:   reviews,
		trips:     trips,
		bookings:  bookings,
		publisher: publisher,
		cache:     cache,
		now:       time.Now,
	}
}

// Submit stores a pending review after checking that the submitter may review the trip.
// Members need a confirmed booking on the trip; guests (p == nil) may only review
// completed trips.
func (s *ReviewService) Submit(ctx context.Context, p *domain.Principal, tripID string, in ReviewInput) (*domain.Review, error) {
	ctx, span := tracer.Start(ctx, "ReviewService.Submit")
	defer span.End()
	span.SetAttributes(attribute.String("trip.id", tripID), attribute.Bool("guest", p == nil))

	trip, err := s.trips.GetByID(ctx, tripID)
	if err != nil {
		return nil, err
	}

	review := &domain.Review{ID: uuid.NewString(), TripID: trip.ID}
	path := "member"
	if p != nil {
		ok, err := s.bookings.HasConfirmed(ctx, p.Email, trip.ID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, domain.ErrUnauthorized
		}
		review.UserID = p.Subject
		in.Email = p.Email
		if in.Name == "" {
			in.Name = p.Name
		}
	} else {
		if !trip.Completed {
			return nil, domain.ErrUnauthorized
		}
		path = "guest"
	}

	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Comment = strings.TrimSpace(in.Comment)
	if err := validateInput(in); err != nil {
		return nil, err
	}

	now := s.now()
	review.AuthorName = in.Name
	review.AuthorEmail = in.Email
	review.Rating = in.Rating
	review.Comment = in.Comment
	review.Status = domain.ReviewPending
	review.CreatedAt = now
	review.UpdatedAt = now

	if err := s.reviews.Create(ctx, review); err != nil {
		return nil, err
	}
	metrics.ReviewsSubmitted.WithLabelValues(path).Inc()

	s.publish(ctx, &domain.ReviewEvent{
		Type:     domain.EventReviewSubmitted,
		ReviewID: review.ID,
		TripID:   review.TripID,
		Rating:   review.Rating,
		Status:   review.Status,
		At:       now,
	})
	return review, nil
}

// Moderate sets a review's status. The first approval folds its rating into the trip
// average in the same transaction. Un-approving does not reverse the average.
func (s *ReviewService) Moderate(ctx context.Context, id string, status domain.ReviewStatus) (*domain.Review, error) {
	ctx, span := tracer.Start(ctx, "ReviewService.Moderate")
	defer span.End()
	span.SetAttributes(attribute.String("review.id", id), attribute.String("review.status", string(status)))

	if !status.Valid() {
		return nil, domain.NewValidationError("status", "must be one of pending, approved, rejected")
	}

	now := s.now()
	applied := false
	review, trip, err := s.reviews.Moderate(ctx, id, func(r *domain.Review, t *domain.Trip) error {
		if status == domain.ReviewApproved && r.Status != domain.ReviewApproved {
			if err := domain.ApplyRating(t, r.Rating); err != nil {
				return err
			}
			t.UpdatedAt = now
			applied = true
		}
		r.Status = status
		r.UpdatedAt = now
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !applied {
		return review, nil
	}

	metrics.RatingsApplied.Inc()
	logging.FromContext(ctx).Info("review approved",
		"review_id", review.ID,
		"trip_id", trip.ID,
		"rating", trip.Rating,
		"review_count", trip.ReviewCount,
	)
	if s.cache != nil {
		for _, key := range tripCacheKeys(trip) {
			_ = s.cache.Delete(ctx, key)
		}
	}
	s.publish(ctx, &domain.ReviewEvent{
		Type:        domain.EventReviewApproved,
		ReviewID:    review.ID,
		TripID:      trip.ID,
		Rating:      review.Rating,
		Status:      review.Status,
		TripRating:  trip.Rating,
		ReviewCount: trip.ReviewCount,
		At:          now,
	})
	return review, nil
}

// ListApproved returns the public reviews of a trip.
func (s *ReviewService) ListApproved(ctx context.Context, tripID string, offset, limit int) ([]domain.Review, int, error) {
	offset, limit = clampPage(offset, limit, 20, 100)
	reviews, total, err := s.reviews.List(ctx, domain.ReviewFilter{
		TripID: tripID,
		Status: domain.ReviewApproved,
		Offset: offset,
		Limit:  limit,
	})
	if err != nil {
		return nil, 0, err
	}
	for i := range reviews {
		reviews[i].AuthorEmail = ""
	}
	return reviews, total, nil
}

// List returns reviews for moderation.
func (s *ReviewService) List(ctx context.Context, filter domain.ReviewFilter) ([]domain.Review, int, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, 0, domain.NewValidationError("status", "must be one of pending, approved, rejected")
	}
	filter.Offset, filter.Limit = clampPage(filter.Offset, filter.Limit, 50, 200)
	return s.reviews.List(ctx, filter)
}

func (s *ReviewService) publish(ctx context.Context, event *domain.ReviewEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishReviewEvent(ctx, event); err != nil {
		logging.FromContext(ctx).Warn("publish review event failed", "type", event.Type, "review_id", event.ReviewID, "error", err)
	}
}
