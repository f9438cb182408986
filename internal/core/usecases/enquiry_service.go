package usecases

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/samirrijal/wanderbook/internal/core/domain"
	"github.com/samirrijal/wanderbook/internal/core/ports"
)

// EnquiryInput is a contact-form submission.
type EnquiryInput struct {
	TripID  string `json:"trip_id" validate:"omitempty,uuid"`
	Name    string `json:"name" validate:"required,min=2,max=120"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone" validate:"omitempty,numeric,min=7,max=15"`
	Message string `json:"message" validate:"required,min=5,max=5000"`
}

// EnquiryService handles contact-form enquiries.
type EnquiryService struct {
	enquiries ports.EnquiryRepository
}

// NewEnquiryService creates a new EnquiryService.
func NewEnquiryService(enquiries ports.EnquiryRepository) *EnquiryService {
	return &EnquiryService{enquiries: enquiries}
}

// Submit stores a new enquiry.
func (s *EnquiryService) Submit(ctx context.Context, in EnquiryInput) (*domain.Enquiry, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Phone = strings.TrimSpace(in.Phone)
	in.Message = strings.TrimSpace(in.Message)
	if err := validateInput(in); err != nil {
		return nil, err
	}

	e := &domain.Enquiry{
		ID:        uuid.NewString(),
		TripID:    in.TripID,
		Name:      in.Name,
		Email:     in.Email,
		Phone:     in.Phone,
		Message:   in.Message,
		Status:    domain.EnquiryNew,
		CreatedAt: time.Now(),
	}
	if err := s.enquiries.Create(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// List returns enquiries, optionally filtered by status.
func (s *EnquiryService) List(ctx context.Context, status domain.EnquiryStatus, offset, limit int) ([]domain.Enquiry, int, error) {
	if status != "" && status != domain.EnquiryNew && status != domain.EnquiryResponded {
		return nil, 0, domain.NewValidationError("status", "must be one of new, responded")
	}
	offset, limit = clampPage(offset, limit, 50, 200)
	return s.enquiries.List(ctx, status, offset, limit)
}

// MarkResponded records that the agency answered an enquiry.
func (s *EnquiryService) MarkResponded(ctx context.Context, id string) error {
	return s.enquiries.MarkResponded(ctx, id)
}
