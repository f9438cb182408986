package postgres

import (
	"context"

	"github.com/samirrijal/wanderbook/internal/core/domain"
)

// EnquiryRepo implements ports.EnquiryRepository.
type EnquiryRepo struct {
	db *DB
}

func NewEnquiryRepo(db *DB) *EnquiryRepo {
	return &EnquiryRepo{db: db}
}

func (r *EnquiryRepo) Create(ctx context.Context, e *domain.Enquiry) error {
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO enquiries (id, trip_id, name, email, phone, message, status, created_at)
		VALUES ($1, NULLIF($2, '')::uuid, $3, $4, NULLIF($5, ''), $6, $7, $8)
	`, e.ID, e.TripID, e.Name, e.Email, e.Phone, e.Message, e.Status, e.CreatedAt)
	return mapErr("insert enquiry", err)
}

func (r *EnquiryRepo) List(ctx context.Context, status domain.EnquiryStatus, offset, limit int) ([]domain.Enquiry, int, error) {
	var total int
	if err := r.db.Pool.QueryRow(ctx, `
		SELECT count(*) FROM enquiries WHERE $1 = '' OR status = $1
	`, string(status)).Scan(&total); err != nil {
		return nil, 0, mapErr("count enquiries", err)
	}

	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, COALESCE(trip_id::text, ''), name, email, COALESCE(phone, ''), message, status, created_at
		FROM enquiries
		WHERE $1 = '' OR status = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, string(status), limit, offset)
	if err != nil {
		return nil, 0, mapErr("list enquiries", err)
	}
	defer rows.Close()

	enquiries := []domain.Enquiry{}
	for rows.Next() {
		var e domain.Enquiry
		if err := rows.Scan(&e.ID, &e.TripID, &e.Name, &e.Email, &e.Phone, &e.Message, &e.Status, &e.CreatedAt); err != nil {
			return nil, 0, mapErr("scan enquiry", err)
		}
		enquiries = append(enquiries, e)
	}
	return enquiries, total, rows.Err()
}

func (r *EnquiryRepo) MarkResponded(ctx context.Context, id string) error {
	tag, err := r.db.Pool.Exec(ctx, `UPDATE enquiries SET status = 'responded' WHERE id = $1`, id)
	if err != nil {
		return mapErr("mark enquiry responded", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *EnquiryRepo) CountByStatus(ctx context.Context, status domain.EnquiryStatus) (int, error) {
	var n int
	if err := r.db.Pool.QueryRow(ctx, `SELECT count(*) FROM enquiries WHERE status = $1`, string(status)).Scan(&n); err != nil {
		return 0, mapErr("count enquiries", err)
	}
	return n, nil
}
