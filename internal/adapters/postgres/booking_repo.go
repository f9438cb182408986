package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/samirrijal/wanderbook/internal/core/domain"
)

const bookingColumns = `
	id, trip_id, name, email, mobile, id_number, id_document_url, payment_screenshot_url,
	payment_reference, status, COALESCE(seat_number, ''), created_at, updated_at`

// BookingRepo implements ports.BookingRepository.
type BookingRepo struct {
	db *DB
}

func NewBookingRepo(db *DB) *BookingRepo {
	return &BookingRepo{db: db}
}

func scanBooking(row pgx.Row) (*domain.Booking, error) {
	b := &domain.Booking{}
	err := row.Scan(&b.ID, &b.TripID, &b.Name, &b.Email, &b.Mobile, &b.IDNumber, &b.IDDocumentURL,
		&b.PaymentScreenshotURL, &b.PaymentReference, &b.Status, &b.SeatNumber, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// Admit locks the trip row, lets admit check capacity and fill in the booking, then inserts
// the booking and stores the incremented counter before committing. Concurrent admissions on
// the same trip queue on the row lock, so each one sees the counter left by the previous.
func (r *BookingRepo) Admit(ctx context.Context, tripID string, b *domain.Booking, admit func(*domain.Trip, *domain.Booking) error) (*domain.Trip, error) {
	var out *domain.Trip
	err := r.db.withTx(ctx, func(tx pgx.Tx) error {
		t, err := lockTrip(ctx, tx, tripID)
		if err != nil {
			return err
		}
		if err := admit(t, b); err != nil {
			return err
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO bookings (id, trip_id, name, email, mobile, id_number, id_document_url,
			                      payment_screenshot_url, payment_reference, status, seat_number,
			                      created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NULLIF($11, ''), $12, $13)
		`, b.ID, b.TripID, b.Name, b.Email, b.Mobile, b.IDNumber, b.IDDocumentURL,
			b.PaymentScreenshotURL, b.PaymentReference, b.Status, b.SeatNumber, b.CreatedAt, b.UpdatedAt)
		if err != nil {
			return mapErr("insert booking", err)
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

// Transition locks the booking and then its trip (always in that order) and persists both
// after fn has applied the status change.
func (r *BookingRepo) Transition(ctx context.Context, id string, fn func(*domain.Booking, *domain.Trip) error) (*domain.Booking, *domain.Trip, error) {
	var (
		outB *domain.Booking
		outT *domain.Trip
	)
	err := r.db.withTx(ctx, func(tx pgx.Tx) error {
		b, err := scanBooking(tx.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1 FOR UPDATE`, id))
		if err != nil {
			return mapErr("lock booking", err)
		}
		t, err := lockTrip(ctx, tx, b.TripID)
		if err != nil {
			return err
		}

		before := t.CurrentParticipants
		if err := fn(b, t); err != nil {
			return err
		}

		_, err = tx.Exec(ctx, `
			UPDATE bookings SET status = $2, seat_number = NULLIF($3, ''), updated_at = $4
			WHERE id = $1
		`, b.ID, b.Status, b.SeatNumber, b.UpdatedAt)
		if err != nil {
			return mapErr("update booking", err)
		}

		if t.CurrentParticipants != before {
			if err := saveTripCounters(ctx, tx, t); err != nil {
				return err
			}
		}
		outB, outT = b, t
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return outB, outT, nil
}

func (r *BookingRepo) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	b, err := scanBooking(r.db.Pool.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id))
	if err != nil {
		return nil, mapErr("get booking", err)
	}
	return b, nil
}

func (r *BookingRepo) List(ctx context.Context, f domain.BookingFilter) ([]domain.Booking, int, error) {
	var (
		where []string
		args  []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if f.TripID != "" {
		add("trip_id = $%d", f.TripID)
	}
	if f.Email != "" {
		add("email = $%d", f.Email)
	}
	if f.Status != "" {
		add("status = $%d", f.Status)
	}

	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.db.Pool.QueryRow(ctx, `SELECT count(*) FROM bookings`+clause, args...).Scan(&total); err != nil {
		return nil, 0, mapErr("count bookings", err)
	}

	args = append(args, f.Limit, f.Offset)
	rows, err := r.db.Pool.Query(ctx, fmt.Sprintf(`
		SELECT %s FROM bookings%s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, bookingColumns, clause, len(args)-1, len(args)), args...)
	if err != nil {
		return nil, 0, mapErr("list bookings", err)
	}
	defer rows.Close()

	bookings := []domain.Booking{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, 0, mapErr("scan booking", err)
		}
		bookings = append(bookings, *b)
	}
	return bookings, total, rows.Err()
}

func (r *BookingRepo) HasConfirmed(ctx context.Context, email, tripID string) (bool, error) {
	var ok bool
	err := r.db.Pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM bookings WHERE email = $1 AND trip_id = $2 AND status = 'confirmed'
		)
	`, email, tripID).Scan(&ok)
	if err != nil {
		return false, mapErr("check confirmed booking", err)
	}
	return ok, nil
}

func (r *BookingRepo) CountByStatus(ctx context.Context) (map[domain.BookingStatus]int, error) {
	rows, err := r.db.Pool.Query(ctx, `SELECT status, count(*) FROM bookings GROUP BY status`)
	if err != nil {
		return nil, mapErr("count bookings by status", err)
	}
	defer rows.Close()

	counts := make(map[domain.BookingStatus]int)
	for rows.Next() {
		var (
			status domain.BookingStatus
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, mapErr("scan booking count", err)
		}
		counts[status] = n
	}
	return counts, rows.Err()
}
