package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/NinjaGame428/church-management-sub001/internal/domain"
	"github.com/NinjaGame428/church-management-sub001/internal/events"
	"github.com/NinjaGame428/church-management-sub001/internal/repository"
	apperrors "github.com/NinjaGame428/church-management-sub001/pkg/util"
)

// ScheduleService manages service (event) lifecycle: draft, publish,
// cancel, delete. Publishing and cancelling fan out to every assignee.
type ScheduleService struct {
	services    repository.ServiceRepository
	assignments repository.AssignmentRepository
	dispatcher  events.Dispatcher
}

// ScheduleDependencies bundles repositories.
type ScheduleDependencies struct {
	ServiceRepo    repository.ServiceRepository
	AssignmentRepo repository.AssignmentRepository
	Dispatcher     events.Dispatcher
}

// NewScheduleService constructs the service.
func NewScheduleService(deps ScheduleDependencies) *ScheduleService {
	return &ScheduleService{
		services:    deps.ServiceRepo,
		assignments: deps.AssignmentRepo,
		dispatcher:  deps.Dispatcher,
	}
}

// ServiceInput describes service creation/update payload.
type ServiceInput struct {
	Title    string
	Date     time.Time
	Time     string
	Location string
}

// CreateService creates a DRAFT service (ADMIN only).
func (s *ScheduleService) CreateService(ctx context.Context, actor *domain.User, input ServiceInput) (*domain.Service, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, apperrors.NewValidationError("title required", nil)
	}
	if input.Date.IsZero() {
		return nil, apperrors.NewValidationError("date required", nil)
	}

	svc := &domain.Service{
		Title:    title,
		Date:     input.Date,
		Time:     input.Time,
		Location: input.Location,
		Status:   domain.ServiceStatusDraft,
	}
	if err := s.services.Create(ctx, svc); err != nil {
		return nil, apperrors.MapError(err)
	}
	return svc, nil
}

// UpdateService edits service details (ADMIN only). Cancelled services
// are immutable.
func (s *ScheduleService) UpdateService(ctx context.Context, actor *domain.User, id string, input ServiceInput) (*domain.Service, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	svc, err := s.getService(ctx, id)
	if err != nil {
		return nil, err
	}
	if svc.Status == domain.ServiceStatusCancelled {
		return nil, apperrors.NewConflict("service cancelled", map[string]any{"service_id": id})
	}

	if title := strings.TrimSpace(input.Title); title != "" {
		svc.Title = title
	}
	if !input.Date.IsZero() {
		svc.Date = input.Date
	}
	if input.Time != "" {
		svc.Time = input.Time
	}
	if input.Location != "" {
		svc.Location = input.Location
	}
	if err := s.services.Update(ctx, svc); err != nil {
		return nil, apperrors.MapError(err)
	}
	return svc, nil
}

// PublishService transitions DRAFT to PUBLISHED and notifies assignees.
func (s *ScheduleService) PublishService(ctx context.Context, actor *domain.User, id string) (*domain.Service, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if err := s.services.UpdateStatusFrom(ctx, id, domain.ServiceStatusDraft, domain.ServiceStatusPublished); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			svc, fetchErr := s.getService(ctx, id)
			if fetchErr != nil {
				return nil, fetchErr
			}
			return nil, apperrors.NewConflict("service not in draft", map[string]any{
				"service_id": id,
				"status":     string(svc.Status),
			})
		}
		return nil, apperrors.MapError(err)
	}

	svc, err := s.getService(ctx, id)
	if err != nil {
		return nil, err
	}
	s.publishLifecycleEvent(ctx, actor.ID, events.EventServicePublished, svc)
	return svc, nil
}

// CancelService transitions a service to CANCELLED and notifies assignees.
func (s *ScheduleService) CancelService(ctx context.Context, actor *domain.User, id string) (*domain.Service, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	svc, err := s.getService(ctx, id)
	if err != nil {
		return nil, err
	}
	if svc.Status == domain.ServiceStatusCancelled {
		return nil, apperrors.NewConflict("service already cancelled", map[string]any{"service_id": id})
	}
	if err := s.services.UpdateStatusFrom(ctx, id, svc.Status, domain.ServiceStatusCancelled); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewConflict("service changed concurrently", map[string]any{"service_id": id})
		}
		return nil, apperrors.MapError(err)
	}
	svc.Status = domain.ServiceStatusCancelled
	s.publishLifecycleEvent(ctx, actor.ID, events.EventServiceCancelled, svc)
	return svc, nil
}

// DeleteService removes a service; its assignments go with it.
func (s *ScheduleService) DeleteService(ctx context.Context, actor *domain.User, id string) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	if err := s.services.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("service", map[string]any{"service_id": id})
		}
		return apperrors.MapError(err)
	}
	return nil
}

// GetService fetches one service.
func (s *ScheduleService) GetService(ctx context.Context, id string) (*domain.Service, error) {
	return s.getService(ctx, id)
}

// ListServices returns services matching the filter.
func (s *ScheduleService) ListServices(ctx context.Context, filter repository.ServiceFilter) ([]domain.Service, error) {
	result, err := s.services.List(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return result, nil
}

func (s *ScheduleService) getService(ctx context.Context, id string) (*domain.Service, error) {
	svc, err := s.services.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("service", map[string]any{"service_id": id})
		}
		return nil, apperrors.MapError(err)
	}
	return svc, nil
}

func (s *ScheduleService) publishLifecycleEvent(ctx context.Context, actorID string, eventType events.EventType, svc *domain.Service) {
	if s.dispatcher == nil {
		return
	}
	assigneeIDs := []string{}
	if roster, err := s.assignments.ListByService(ctx, svc.ID); err == nil {
		for _, assignment := range roster {
			assigneeIDs = append(assigneeIDs, assignment.UserID)
		}
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Actor:     events.Actor{UserID: &actorID},
		Timestamp: time.Now(),
		Payload: events.ServiceLifecyclePayload{
			ServiceID:    svc.ID,
			ServiceTitle: svc.Title,
			ServiceDate:  svc.Date,
			AssigneeIDs:  assigneeIDs,
		},
	})
}
