package domain

import "github.com/shopspring/decimal"

const (
	MinRating = 1
	MaxRating = 5
)

// ValidateRating checks that r is a whole-star rating in [1, 5].
func ValidateRating(r int) error {
	if r < MinRating || r > MaxRating {
		return NewValidationError("rating", "must be between 1 and 5")
	}
	return nil
}

// NextRating folds one approved rating into a running average:
//
//	avg' = round1((avg*n + r) / (n+1)),  n' = n+1
//
// The result is exact only if every earlier approval went through here exactly once.
func NextRating(avg float64, n int, r int) (float64, int, error) {
	if err := ValidateRating(r); err != nil {
		return avg, n, err
	}
	if n < 0 {
		n = 0
	}

	total := decimal.NewFromFloat(avg).Mul(decimal.NewFromInt(int64(n))).Add(decimal.NewFromInt(int64(r)))
	next := total.Div(decimal.NewFromInt(int64(n + 1))).Round(1)

	return next.InexactFloat64(), n + 1, nil
}

// ApplyRating updates t's aggregate with one newly approved rating.
func ApplyRating(t *Trip, r int) error {
	avg, n, err := NextRating(t.Rating, t.ReviewCount, r)
	if err != nil {
		return err
	}
	t.Rating = avg
	t.ReviewCount = n
	return nil
}
