package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/samirrijal/wanderbook/internal/core/domain"
)

const reviewColumns = `
	id, trip_id, COALESCE(user_id, ''), author_name, author_email, rating, comment, status,
	created_at, updated_at`

// ReviewRepo implements ports.ReviewRepository.
type ReviewRepo struct {
	db *DB
}

func NewReviewRepo(db *DB) *ReviewRepo {
	return &ReviewRepo{db: db}
}

func scanReview(row pgx.Row) (*domain.Review, error) {
	rv := &domain.Review{}
	err := row.Scan(&rv.ID, &rv.TripID, &rv.UserID, &rv.AuthorName, &rv.AuthorEmail, &rv.Rating,
		&rv.Comment, &rv.Status, &rv.CreatedAt, &rv.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return rv, nil
}

func (r *ReviewRepo) Create(ctx context.Context, rv *domain.Review) error {
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO reviews (id, trip_id, user_id, author_name, author_email, rating, comment, status, created_at, updated_at)
		VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6, $7, $8, $9, $10)
	`, rv.ID, rv.TripID, rv.UserID, rv.AuthorName, rv.AuthorEmail, rv.Rating, rv.Comment, rv.Status,
		rv.CreatedAt, rv.UpdatedAt)
	return mapErr("insert review", err)
}

func (r *ReviewRepo) GetByID(ctx context.Context, id string) (*domain.Review, error) {
	rv, err := scanReview(r.db.Pool.QueryRow(ctx, `SELECT `+reviewColumns+` FROM reviews WHERE id = $1`, id))
	if err != nil {
		return nil, mapErr("get review", err)
	}
	return rv, nil
}

func (r *ReviewRepo) List(ctx context.Context, f domain.ReviewFilter) ([]domain.Review, int, error) {
	var (
		where []string
		args  []any
	)
	if f.TripID != "" {
		args = append(args, f.TripID)
		where = append(where, fmt.Sprintf("trip_id = $%d", len(args)))
	}
	if f.Status != "" {
		args = append(args, f.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.db.Pool.QueryRow(ctx, `SELECT count(*) FROM reviews`+clause, args...).Scan(&total); err != nil {
		return nil, 0, mapErr("count reviews", err)
	}

	args = append(args, f.Limit, f.Offset)
	rows, err := r.db.Pool.Query(ctx, fmt.Sprintf(`
		SELECT %s FROM reviews%s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, reviewColumns, clause, len(args)-1, len(args)), args...)
	if err != nil {
		return nil, 0, mapErr("list reviews", err)
	}
	defer rows.Close()

	reviews := []domain.Review{}
	for rows.Next() {
		rv, err := scanReview(rows)
		if err != nil {
			return nil, 0, mapErr("scan review", err)
		}
		reviews = append(reviews, *rv)
	}
	return reviews, total, rows.Err()
}

// Moderate locks the review and then its trip, runs fn, and persists both. The rating
// aggregate is therefore updated in the same transaction as the status flip.
func (r *ReviewRepo) Moderate(ctx context.Context, id string, fn func(*domain.Review, *domain.Trip) error) (*domain.Review, *domain.Trip, error) {
	var (
		outR *domain.Review
		outT *domain.Trip
	)
	err := r.db.withTx(ctx, func(tx pgx.Tx) error {
		rv, err := scanReview(tx.QueryRow(ctx, `SELECT `+reviewColumns+` FROM reviews WHERE id = $1 FOR UPDATE`, id))
		if err != nil {
			return mapErr("lock review", err)
		}
		t, err := lockTrip(ctx, tx, rv.TripID)
		if err != nil {
			return err
		}

		count := t.ReviewCount
		if err := fn(rv, t); err != nil {
			return err
		}

		if _, err := tx.Exec(ctx, `UPDATE reviews SET status = $2, updated_at = $3 WHERE id = $1`,
			rv.ID, rv.Status, rv.UpdatedAt); err != nil {
			return mapErr("update review", err)
		}
		if t.ReviewCount != count {
			if err := saveTripCounters(ctx, tx, t); err != nil {
				return err
			}
		}
		outR, outT = rv, t
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return outR, outT, nil
}

func (r *ReviewRepo) CountByStatus(ctx context.Context, status domain.ReviewStatus) (int, error) {
	var n int
	if err := r.db.Pool.QueryRow(ctx, `SELECT count(*) FROM reviews WHERE status = $1`, status).Scan(&n); err != nil {
		return 0, mapErr("count reviews", err)
	}
	return n, nil
}
