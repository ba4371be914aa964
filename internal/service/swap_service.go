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

// SwapService governs the two-phase swap handshake over a service slot.
// A pending request is private to its two parties; coordinators only see
// requests once accepted. Accepting hands the assignment to the target
// user atomically and resets it to PENDING.
type SwapService struct {
	swaps       repository.SwapRepository
	assignments repository.AssignmentRepository
	services    repository.ServiceRepository
	users       repository.UserRepository
	dispatcher  events.Dispatcher
}

// SwapDependencies bundles repositories.
type SwapDependencies struct {
	SwapRepo       repository.SwapRepository
	AssignmentRepo repository.AssignmentRepository
	ServiceRepo    repository.ServiceRepository
	UserRepo       repository.UserRepository
	Dispatcher     events.Dispatcher
}

// NewSwapService creates the service.
func NewSwapService(deps SwapDependencies) *SwapService {
	return &SwapService{
		swaps:       deps.SwapRepo,
		assignments: deps.AssignmentRepo,
		services:    deps.ServiceRepo,
		users:       deps.UserRepo,
		dispatcher:  deps.Dispatcher,
	}
}

// CreateSwapRequest opens a pending swap offering the actor's role on
// the service to another user.
func (s *SwapService) CreateSwapRequest(ctx context.Context, actor *domain.User, toUserID, serviceID string, date time.Time, message string) (*domain.SwapRequest, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("user required")
	}
	if toUserID == actor.ID {
		return nil, apperrors.NewValidationError("cannot request a swap with yourself", nil)
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

	if _, err := s.users.GetByID(ctx, toUserID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", map[string]any{"user_id": toUserID})
		}
		return nil, apperrors.MapError(err)
	}

	// The requester must actually hold a role on the service.
	if _, err := s.assignments.GetByServiceAndUser(ctx, serviceID, actor.ID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("assignment", map[string]any{
				"service_id": serviceID,
				"user_id":    actor.ID,
			})
		}
		return nil, apperrors.MapError(err)
	}

	// A user holds at most one role per service, so a target who is
	// already on the roster could never take the slot on accept.
	if _, err := s.assignments.GetByServiceAndUser(ctx, serviceID, toUserID); err == nil {
		return nil, apperrors.NewConflict("target user already assigned to service", map[string]any{
			"service_id": serviceID,
			"user_id":    toUserID,
		})
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.MapError(err)
	}

	swap := &domain.SwapRequest{
		ServiceID:  svc.ID,
		FromUserID: actor.ID,
		ToUserID:   toUserID,
		Date:       date,
		Message:    strings.TrimSpace(message),
		Status:     domain.SwapStatusPending,
	}
	if err := s.swaps.Create(ctx, swap); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publishEvent(ctx, actor.ID, events.EventSwapRequested, events.SwapRequestedPayload{
		SwapID:       swap.ID,
		ServiceID:    svc.ID,
		ServiceTitle: svc.Title,
		ServiceDate:  svc.Date,
		FromUserID:   swap.FromUserID,
		ToUserID:     swap.ToUserID,
		Message:      swap.Message,
	})
	return swap, nil
}

// RespondToSwap records the target user's decision. Only the designated
// target may respond, and only while the request is pending. Accepting
// completes the swap atomically: both the swap status flip and the
// assignment hand-off commit together or not at all.
func (s *SwapService) RespondToSwap(ctx context.Context, actor *domain.User, swapID string, decision domain.SwapDecision) (*domain.SwapRequest, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("user required")
	}
	if decision != domain.SwapDecisionAccept && decision != domain.SwapDecisionDecline {
		return nil, apperrors.NewValidationError("unknown decision", map[string]any{"decision": string(decision)})
	}

	swap, err := s.swaps.GetByID(ctx, swapID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("swap request", map[string]any{"swap_id": swapID})
		}
		return nil, apperrors.MapError(err)
	}
	if swap.ToUserID != actor.ID {
		return nil, apperrors.NewForbidden("only the requested user may respond")
	}
	if swap.Status.IsTerminal() {
		return nil, apperrors.NewConflict("swap request already resolved", map[string]any{
			"swap_id": swapID,
			"status":  string(swap.Status),
		})
	}

	if decision == domain.SwapDecisionDecline {
		if err := s.swaps.UpdateStatusFrom(ctx, swap.ID, domain.SwapStatusPending, domain.SwapStatusDeclined); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, apperrors.NewConflict("swap request already resolved", map[string]any{"swap_id": swapID})
			}
			return nil, apperrors.MapError(err)
		}
		swap.Status = domain.SwapStatusDeclined
		return swap, nil
	}

	// The role being handed over, for the notification payload.
	assignment, err := s.assignments.GetByServiceAndUser(ctx, swap.ServiceID, swap.FromUserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewConflict("requester no longer holds an assignment on the service", map[string]any{
				"swap_id":    swapID,
				"service_id": swap.ServiceID,
			})
		}
		return nil, apperrors.MapError(err)
	}

	if err := s.swaps.CompleteSwap(ctx, swap); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewConflict("swap could not be completed", map[string]any{"swap_id": swapID})
		}
		if apperrors.IsUniqueViolation(err) {
			return nil, apperrors.NewConflict("target user already assigned to service", map[string]any{
				"service_id": swap.ServiceID,
				"user_id":    swap.ToUserID,
			})
		}
		return nil, apperrors.MapError(err)
	}

	s.publishEvent(ctx, actor.ID, events.EventSwapAccepted, events.SwapAcceptedPayload{
		SwapID:       swap.ID,
		ServiceID:    swap.ServiceID,
		ServiceTitle: assignment.ServiceTitle,
		ServiceDate:  assignment.ServiceDate,
		FromUserID:   swap.FromUserID,
		ToUserID:     swap.ToUserID,
		Role:         assignment.Role,
	})
	return swap, nil
}

// ListSwapRequestsForAdmin returns accepted swaps only. A pending
// negotiation stays private to its parties and a decline is never
// escalated; the visibility rule is this filter, not a second lifecycle.
func (s *SwapService) ListSwapRequestsForAdmin(ctx context.Context, actor *domain.User, limit, offset int) ([]domain.SwapRequest, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	result, err := s.swaps.List(ctx, repository.SwapFilter{
		Statuses: []domain.SwapStatus{domain.SwapStatusAccepted},
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return result, nil
}

// ListSwapRequestsForUser returns swaps where the actor is either party.
func (s *SwapService) ListSwapRequestsForUser(ctx context.Context, actor *domain.User, limit, offset int) ([]domain.SwapRequest, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("user required")
	}
	result, err := s.swaps.List(ctx, repository.SwapFilter{
		ParticipantID: &actor.ID,
		Limit:         limit,
		Offset:        offset,
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return result, nil
}

func (s *SwapService) publishEvent(ctx context.Context, actorID string, eventType events.EventType, payload any) {
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
