package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/samirrijal/wanderbook/internal/core/domain"
)

const tripColumns = `
	id, slug, title, destination, category, description, images, status,
	start_date, end_date, price, max_participants, current_participants,
	completed, rating, review_count, created_at, updated_at`

// TripRepo implements ports.TripRepository.
type TripRepo struct {
	db *DB
}

func NewTripRepo(db *DB) *TripRepo {
	return &TripRepo{db: db}
}

func scanTrip(row pgx.Row) (*domain.Trip, error) {
	t := &domain.Trip{}
	err := row.Scan(&t.ID, &t.Slug, &t.Title, &t.Destination, &t.Category, &t.Description,
		&t.Images, &t.Status, &t.StartDate, &t.EndDate, &t.Price, &t.MaxParticipants,
		&t.CurrentParticipants, &t.Completed, &t.Rating, &t.ReviewCount, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if t.Images == nil {
		t.Images = []string{}
	}
	return t, nil
}

func (r *TripRepo) Create(ctx context.Context, t *domain.Trip) error {
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO trips (id, slug, title, destination, category, description, images, status,
		                   start_date, end_date, price, max_participants, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`, t.ID, t.Slug, t.Title, t.Destination, t.Category, t.Description, t.Images, t.Status,
		t.StartDate, t.EndDate, t.Price, t.MaxParticipants, t.CreatedAt, t.UpdatedAt)
	return mapErr("insert trip", err)
}

// Update writes the editable columns under the trip row lock. Counters and the rating
// aggregate are owned by Mutate and the booking/review transactions and are never
// overwritten here; t receives their current values.
func (r *TripRepo) Update(ctx context.Context, t *domain.Trip) error {
	return r.db.withTx(ctx, func(tx pgx.Tx) error {
		locked, err := lockTrip(ctx, tx, t.ID)
		if err != nil {
			return err
		}
		if err := domain.CheckCapacityEdit(locked, t.MaxParticipants); err != nil {
			return err
		}

		_, err = tx.Exec(ctx, `
			UPDATE trips
			SET slug = $2, title = $3, destination = $4, category = $5, description = $6, images = $7,
			    start_date = $8, end_date = $9, price = $10, max_participants = $11, updated_at = $12
			WHERE id = $1
		`, t.ID, t.Slug, t.Title, t.Destination, t.Category, t.Description, t.Images,
			t.StartDate, t.EndDate, t.Price, t.MaxParticipants, t.UpdatedAt)
		if err != nil {
			return mapErr("update trip", err)
		}

		t.CurrentParticipants = locked.CurrentParticipants
		t.Rating = locked.Rating
		t.ReviewCount = locked.ReviewCount
		return nil
	})
}

func (r *TripRepo) SetStatus(ctx context.Context, id string, status domain.TripStatus) error {
	return r.exec(ctx, "set trip status",
		`UPDATE trips SET status = $2, updated_at = now() WHERE id = $1`, id, status)
}

func (r *TripRepo) SetCompleted(ctx context.Context, id string, completed bool) error {
	return r.exec(ctx, "set trip completed",
		`UPDATE trips SET completed = $2, updated_at = now() WHERE id = $1`, id, completed)
}

func (r *TripRepo) exec(ctx context.Context, op, sql string, args ...any) error {
	tag, err := r.db.Pool.Exec(ctx, sql, args...)
	if err != nil {
		return mapErr(op, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *TripRepo) GetByID(ctx context.Context, id string) (*domain.Trip, error) {
	t, err := scanTrip(r.db.Pool.QueryRow(ctx, `SELECT `+tripColumns+` FROM trips WHERE id = $1`, id))
	if err != nil {
		return nil, mapErr("get trip", err)
	}
	return t, nil
}

func (r *TripRepo) GetBySlug(ctx context.Context, slug string) (*domain.Trip, error) {
	t, err := scanTrip(r.db.Pool.QueryRow(ctx, `SELECT `+tripColumns+` FROM trips WHERE slug = $1`, slug))
	if err != nil {
		return nil, mapErr("get trip by slug", err)
	}
	return t, nil
}

// List returns one page of trips ordered by start date plus the total match count.
func (r *TripRepo) List(ctx context.Context, f domain.TripFilter) ([]domain.Trip, int, error) {
	var (
		where []string
		args  []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if f.Status != "" {
		add("status = $%d", f.Status)
	}
	if f.Category != "" {
		add("category = $%d", f.Category)
	}
	if f.Destination != "" {
		add("destination ILIKE '%%' || $%d || '%%'", f.Destination)
	}

	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.db.Pool.QueryRow(ctx, `SELECT count(*) FROM trips`+clause, args...).Scan(&total); err != nil {
		return nil, 0, mapErr("count trips", err)
	}

	args = append(args, f.Limit, f.Offset)
	rows, err := r.db.Pool.Query(ctx, fmt.Sprintf(`
		SELECT %s FROM trips%s
		ORDER BY start_date, title
		LIMIT $%d OFFSET $%d
	`, tripColumns, clause, len(args)-1, len(args)), args...)
	if err != nil {
		return nil, 0, mapErr("list trips", err)
	}
	defer rows.Close()

	trips := []domain.Trip{}
	for rows.Next() {
		t, err := scanTrip(rows)
		if err != nil {
			return nil, 0, mapErr("scan trip", err)
		}
		trips = append(trips, *t)
	}
	return trips, total, rows.Err()
}

// Mutate locks the trip row, lets fn change it, and writes back the counters and the rating
// aggregate in the same transaction.
func (r *TripRepo) Mutate(ctx context.Context, id string, fn func(*domain.Trip) error) (*domain.Trip, error) {
	var out *domain.Trip
	err := r.db.withTx(ctx, func(tx pgx.Tx) error {
		t, err := lockTrip(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := fn(t); err != nil {
			return err
		}
		if err := saveTripCounters(ctx, tx, t); err != nil {
			return err
		}
		out = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func lockTrip(ctx context.Context, tx pgx.Tx, id string) (*domain.Trip, error) {
	t, err := scanTrip(tx.QueryRow(ctx, `SELECT `+tripColumns+` FROM trips WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return nil, mapErr("lock trip", err)
	}
	return t, nil
}

func saveTripCounters(ctx context.Context, tx pgx.Tx, t *domain.Trip) error {
	_, err := tx.Exec(ctx, `
		UPDATE trips
		SET current_participants = $2, rating = $3, review_count = $4, updated_at = $5
		WHERE id = $1
	`, t.ID, t.CurrentParticipants, t.Rating, t.ReviewCount, t.UpdatedAt)
	return mapErr("update trip counters", err)
}
