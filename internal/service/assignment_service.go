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

// AssignmentService governs the assignment lifecycle: scheduling by a
// coordinator and the assignee's accept/decline response. PENDING is the
// only state a response can leave; a completed swap is the only other
// path out of a terminal state.
type AssignmentService struct {
	assignments repository.AssignmentRepository
	services    repository.ServiceRepository
	users       repository.UserRepository
	dispatcher  events.Dispatcher
}

// AssignmentDependencies bundles repositories.
type AssignmentDependencies struct {
	AssignmentRepo repository.AssignmentRepository
	ServiceRepo    repository.ServiceRepository
	UserRepo       repository.UserRepository
	Dispatcher     events.Dispatcher
}

// NewAssignmentService creates the service.
func NewAssignmentService(deps AssignmentDependencies) *AssignmentService {
	return &AssignmentService{
		assignments: deps.AssignmentRepo,
		services:    deps.ServiceRepo,
		users:       deps.UserRepo,
		dispatcher:  deps.Dispatcher,
	}
}

// ScheduleAssignment binds a user to a role on a service (ADMIN only).
func (s *AssignmentService) ScheduleAssignment(ctx context.Context, actor *domain.User, serviceID, userID, role string) (*domain.ServiceAssignment, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	role = strings.TrimSpace(role)
	if role == "" {
		return nil, apperrors.NewValidationError("role required", nil)
	}

	svc, err := s.services.GetByID(ctx, serviceID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("service", map[string]any{"service_id": serviceID})
		}
		return nil, apperrors.MapError(err)
	}
	if svc.Status == domain.ServiceStatusCancelled {
		return nil, apperrors.NewConflict("service cancelled", map[string]any{"service_id": serviceID})
	}

	assignee, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", map[string]any{"user_id": userID})
		}
		return nil, apperrors.MapError(err)
	}

	assignment := &domain.ServiceAssignment{
		ServiceID: svc.ID,
		UserID:    assignee.ID,
		Role:      role,
		Status:    domain.AssignmentStatusPending,
	}
	if err := s.assignments.Create(ctx, assignment); err != nil {
		if apperrors.IsUniqueViolation(err) {
			return nil, apperrors.NewConflict("user already assigned to service", map[string]any{
				"service_id": serviceID,
				"user_id":    userID,
			})
		}
		return nil, apperrors.MapError(err)
	}
	assignment.ServiceTitle = svc.Title
	assignment.ServiceDate = svc.Date

	s.publishEvent(ctx, actor.ID, events.EventAssignmentCreated, events.AssignmentCreatedPayload{
		AssignmentID: assignment.ID,
		ServiceID:    svc.ID,
		ServiceTitle: svc.Title,
		ServiceDate:  svc.Date,
		UserID:       assignee.ID,
		Role:         role,
	})
	return assignment, nil
}

// Respond records the assignee's accept or decline. Declining requires a
// reason. Replaying the action that produced the current terminal status
// is a no-op; the opposite action on a terminal assignment conflicts.
func (s *AssignmentService) Respond(ctx context.Context, actor *domain.User, assignmentID string, action domain.ResponseAction, reason string) (*domain.ServiceAssignment, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("user required")
	}

	var target domain.AssignmentStatus
	switch action {
	case domain.ResponseAccept:
		target = domain.AssignmentStatusConfirmed
	case domain.ResponseDecline:
		target = domain.AssignmentStatusDeclined
	default:
		return nil, apperrors.NewValidationError("unknown action", map[string]any{"action": string(action)})
	}

	reason = strings.TrimSpace(reason)
	if action == domain.ResponseDecline && reason == "" {
		return nil, apperrors.NewValidationError("Reason is required when declining", nil)
	}

	assignment, err := s.assignments.GetByID(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("assignment", map[string]any{"assignment_id": assignmentID})
		}
		return nil, apperrors.MapError(err)
	}
	if assignment.UserID != actor.ID {
		return nil, apperrors.NewForbidden("only the assignee may respond")
	}
	if assignment.Status.IsTerminal() {
		if assignment.Status == target {
			return assignment, nil
		}
		return nil, apperrors.NewConflict("assignment already responded", map[string]any{
			"assignment_id": assignmentID,
			"status":        string(assignment.Status),
		})
	}

	var declineReason *string
	if action == domain.ResponseDecline {
		declineReason = &reason
	}

	if err := s.assignments.UpdateStatusFrom(ctx, assignment.ID, domain.AssignmentStatusPending, target, declineReason); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Lost a concurrent race: a response landed first. Identical
			// outcome is a replay, anything else is a conflict.
			current, fetchErr := s.assignments.GetByID(ctx, assignment.ID)
			if fetchErr != nil {
				return nil, apperrors.MapError(fetchErr)
			}
			if current.Status == target {
				return current, nil
			}
			return nil, apperrors.NewConflict("assignment already responded", map[string]any{
				"assignment_id": assignmentID,
				"status":        string(current.Status),
			})
		}
		return nil, apperrors.MapError(err)
	}

	oldStatus := assignment.Status
	assignment.Status = target
	assignment.DeclineReason = declineReason

	s.publishEvent(ctx, actor.ID, events.EventAssignmentResponded, events.AssignmentRespondedPayload{
		AssignmentID: assignment.ID,
		ServiceID:    assignment.ServiceID,
		ServiceTitle: assignment.ServiceTitle,
		ServiceDate:  assignment.ServiceDate,
		UserID:       assignment.UserID,
		Role:         assignment.Role,
		OldStatus:    oldStatus,
		NewStatus:    target,
		Reason:       reason,
	})
	return assignment, nil
}

// ListUserAssignments returns the actor's own assignments.
func (s *AssignmentService) ListUserAssignments(ctx context.Context, actor *domain.User, limit, offset int) ([]domain.ServiceAssignment, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("user required")
	}
	result, err := s.assignments.ListByUser(ctx, actor.ID, limit, offset)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return result, nil
}

// ListServiceAssignments returns the roster for a service (ADMIN only).
func (s *AssignmentService) ListServiceAssignments(ctx context.Context, actor *domain.User, serviceID string) ([]domain.ServiceAssignment, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	result, err := s.assignments.ListByService(ctx, serviceID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return result, nil
}

func (s *AssignmentService) publishEvent(ctx context.Context, actorID string, eventType events.EventType, payload any) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Actor:     events.Actor{UserID: &actorID},
		Timestamp: time.Now(),
		Payload:   payload,
	})
}

func requireAdmin(actor *domain.User) error {
	if actor == nil {
		return apperrors.NewUnauthorized("user required")
	}
	if actor.Role != domain.RoleAdmin {
		return apperrors.NewForbidden("admin role required")
	}
	return nil
}
