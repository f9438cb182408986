package usecases

import (
	"context"
	"fmt"

	"github.com/samirrijal/wanderbook/internal/core/domain"
	"github.com/samirrijal/wanderbook/internal/core/ports"
)

// StatsService aggregates the admin dashboard counters.
type StatsService struct {
	trips     ports.TripRepository
	bookings  ports.BookingRepository
	reviews   ports.ReviewRepository
	enquiries ports.EnquiryRepository
}

// NewStatsService creates a new StatsService.
func NewStatsService(trips ports.TripRepository, bookings ports.BookingRepository, reviews ports.ReviewRepository, enquiries ports.EnquiryRepository) *StatsService {
	return &StatsService{trips: trips, bookings: bookings, reviews: reviews, enquiries: enquiries}
}

// Dashboard returns catalog, booking, review and enquiry counts.
func (s *StatsService) Dashboard(ctx context.Context) (*domain.DashboardStats, error) {
	var stats domain.DashboardStats

	_, total, err := s.trips.List(ctx, domain.TripFilter{Limit: 1})
	if err != nil {
		return nil, fmt.Errorf("count trips: %w", err)
	}
	stats.Trips = total

	_, published, err := s.trips.List(ctx, domain.TripFilter{Status: domain.TripPublished, Limit: 1})
	if err != nil {
		return nil, fmt.Errorf("count published trips: %w", err)
	}
	stats.PublishedTrips = published

	stats.Bookings, err = s.bookings.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("count bookings: %w", err)
	}
	if stats.Bookings == nil {
		stats.Bookings = make(map[domain.BookingStatus]int)
	}
	for _, st := range []domain.BookingStatus{domain.BookingPending, domain.BookingConfirmed, domain.BookingRejected} {
		if _, ok := stats.Bookings[st]; !ok {
			stats.Bookings[st] = 0
		}
	}

	stats.PendingReviews, err = s.reviews.CountByStatus(ctx, domain.ReviewPending)
	if err != nil {
		return nil, fmt.Errorf("count reviews: %w", err)
	}

	stats.NewEnquiries, err = s.enquiries.CountByStatus(ctx, domain.EnquiryNew)
	if err != nil {
		return nil, fmt.Errorf("count enquiries: %w", err)
	}
	return &stats, nil
}
