package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/NinjaGame428/church-management-sub001/internal/domain"
	"github.com/NinjaGame428/church-management-sub001/internal/repository"
	apperrors "github.com/NinjaGame428/church-management-sub001/pkg/util"
)

// AvailabilityService maintains the per-user availability ledger: one
// entry per (user, date), mutated only by its owner. The scheduler
// consults it when planning assignments but never enforces it.
type AvailabilityService struct {
	availability repository.AvailabilityRepository
	services     repository.ServiceRepository
}

// AvailabilityDependencies bundles repositories.
type AvailabilityDependencies struct {
	AvailabilityRepo repository.AvailabilityRepository
	ServiceRepo      repository.ServiceRepository
}

// NewAvailabilityService creates the service.
func NewAvailabilityService(deps AvailabilityDependencies) *AvailabilityService {
	return &AvailabilityService{
		availability: deps.AvailabilityRepo,
		services:     deps.ServiceRepo,
	}
}

// AvailabilityInput describes a create/update payload.
type AvailabilityInput struct {
	Date      time.Time
	Status    string
	ServiceID *string
	Notes     string
}

// Upsert records the actor's status for a date, replacing any existing
// entry for the same date.
func (s *AvailabilityService) Upsert(ctx context.Context, actor *domain.User, input AvailabilityInput) (*domain.Availability, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("user required")
	}
	status, ok := domain.NormalizeAvailabilityStatus(input.Status)
	if !ok {
		return nil, apperrors.NewValidationError("status must be available, unavailable or busy", map[string]any{
			"status": input.Status,
		})
	}
	if err := s.checkServiceRef(ctx, input.ServiceID); err != nil {
		return nil, err
	}

	entry := &domain.Availability{
		UserID:    actor.ID,
		Date:      input.Date,
		Status:    status,
		ServiceID: input.ServiceID,
		Notes:     strings.TrimSpace(input.Notes),
	}
	if err := s.availability.Upsert(ctx, entry); err != nil {
		return nil, apperrors.MapError(err)
	}
	return entry, nil
}

// Update modifies an existing entry owned by the actor. An id that does
// not exist and an id owned by someone else are indistinguishable on
// purpose: both report not found.
func (s *AvailabilityService) Update(ctx context.Context, actor *domain.User, id string, input AvailabilityInput) (*domain.Availability, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("user required")
	}
	status, ok := domain.NormalizeAvailabilityStatus(input.Status)
	if !ok {
		return nil, apperrors.NewValidationError("status must be available, unavailable or busy", map[string]any{
			"status": input.Status,
		})
	}
	if err := s.checkServiceRef(ctx, input.ServiceID); err != nil {
		return nil, err
	}

	entry := &domain.Availability{
		ID:        id,
		UserID:    actor.ID,
		Status:    status,
		ServiceID: input.ServiceID,
		Notes:     strings.TrimSpace(input.Notes),
	}
	if err := s.availability.Update(ctx, entry); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("availability", map[string]any{"availability_id": id})
		}
		return nil, apperrors.MapError(err)
	}

	// The conditional write does not return the row; refetch for the
	// date and timestamps.
	stored, err := s.availability.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return stored, nil
}

// Delete removes an entry owned by the actor.
func (s *AvailabilityService) Delete(ctx context.Context, actor *domain.User, id string) error {
	if actor == nil {
		return apperrors.NewUnauthorized("user required")
	}
	if err := s.availability.Delete(ctx, id, actor.ID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("availability", map[string]any{"availability_id": id})
		}
		return apperrors.MapError(err)
	}
	return nil
}

// ListMine returns the actor's entries, optionally bounded by date.
func (s *AvailabilityService) ListMine(ctx context.Context, actor *domain.User, from, to *time.Time) ([]domain.Availability, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("user required")
	}
	result, err := s.availability.ListByUser(ctx, actor.ID, from, to)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return result, nil
}

// ListForDate returns everyone's entries for a date (ADMIN only),
// consulted when planning a roster.
func (s *AvailabilityService) ListForDate(ctx context.Context, actor *domain.User, date time.Time) ([]domain.Availability, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	result, err := s.availability.ListByDate(ctx, date)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return result, nil
}

func (s *AvailabilityService) checkServiceRef(ctx context.Context, serviceID *string) error {
	if serviceID == nil {
		return nil
	}
	if _, err := s.services.GetByID(ctx, *serviceID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("service", map[string]any{"service_id": *serviceID})
		}
		return apperrors.MapError(err)
	}
	return nil
}
