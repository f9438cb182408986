package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samirrijal/wanderbook/internal/core/domain"
)

func TestNextRating_FromTenReviews(t *testing.T) {
	avg, n, err := domain.NextRating(4.0, 10, 5)
	require.NoError(t, err)
	assert.Equal(t, 4.1, avg)
	assert.Equal(t, 11, n)
}

func TestNextRating_SequentialMatchesDirectMean(t *testing.T) {
	trip := &domain.Trip{}
	for _, r := range []int{5, 5, 4} {
		require.NoError(t, domain.ApplyRating(trip, r))
	}
	assert.Equal(t, 4.7, trip.Rating)
	assert.Equal(t, 3, trip.ReviewCount)
}

func TestNextRating_FirstReview(t *testing.T) {
	avg, n, err := domain.NextRating(0, 0, 3)
	require.NoError(t, err)
	assert.Equal(t, 3.0, avg)
	assert.Equal(t, 1, n)
}

func TestNextRating_OutOfRange(t *testing.T) {
	for _, r := range []int{0, 6, -1} {
		avg, n, err := domain.NextRating(4.2, 7, r)
		assert.True(t, domain.IsValidation(err), "rating %d", r)
		assert.Equal(t, 4.2, avg)
		assert.Equal(t, 7, n)
	}
}

func TestNextRating_StaysInRange(t *testing.T) {
	trip := &domain.Trip{}
	for i := 0; i < 50; i++ {
		require.NoError(t, domain.ApplyRating(trip, 1+i%5))
		assert.GreaterOrEqual(t, trip.Rating, 1.0)
		assert.LessOrEqual(t, trip.Rating, 5.0)
	}
	assert.Equal(t, 50, trip.ReviewCount)
}
