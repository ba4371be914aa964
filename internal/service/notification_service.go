package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/NinjaGame428/church-management-sub001/internal/config"
	"github.com/NinjaGame428/church-management-sub001/internal/domain"
	"github.com/NinjaGame428/church-management-sub001/internal/events"
	"github.com/NinjaGame428/church-management-sub001/internal/notifier"
	"github.com/NinjaGame428/church-management-sub001/internal/repository"
	apperrors "github.com/NinjaGame428/church-management-sub001/pkg/util"
)

const dateLayout = "2006-01-02"

// NotificationService consumes domain events and performs the fan-out:
// an internal Notification record, the Redis feed, an email, and an SMS
// when the recipient has a phone on file. Every failure in this path is
// logged and swallowed; the state mutation that triggered the event has
// already committed.
type NotificationService struct {
	notifications repository.NotificationRepository
	feed          *repository.NotificationFeedCache
	users         repository.UserRepository
	dispatcher    events.Dispatcher
	notifier      notifier.Notifier
	logger        *zap.Logger
	cfg           config.NotificationConfig
}

// NotificationDependencies bundles collaborators.
type NotificationDependencies struct {
	NotificationRepo repository.NotificationRepository
	FeedCache        *repository.NotificationFeedCache
	UserRepo         repository.UserRepository
	Dispatcher       events.Dispatcher
	Notifier         notifier.Notifier
	Logger           *zap.Logger
	Config           config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(deps NotificationDependencies) *NotificationService {
	return &NotificationService{
		notifications: deps.NotificationRepo,
		feed:          deps.FeedCache,
		users:         deps.UserRepo,
		dispatcher:    deps.Dispatcher,
		notifier:      deps.Notifier,
		logger:        deps.Logger,
		cfg:           deps.Config,
	}
}

// RegisterHandlers subscribes to domain events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventAssignmentCreated, n.handleAssignmentCreated)
	n.dispatcher.Subscribe(events.EventAssignmentResponded, n.handleAssignmentResponded)
	n.dispatcher.Subscribe(events.EventSwapRequested, n.handleSwapRequested)
	n.dispatcher.Subscribe(events.EventSwapAccepted, n.handleSwapAccepted)
	n.dispatcher.Subscribe(events.EventServicePublished, n.handleServicePublished)
	n.dispatcher.Subscribe(events.EventServiceCancelled, n.handleServiceCancelled)
}

// ListForUser returns the actor's recent notifications, newest first,
// capped at the 50-entry retention window. The Redis feed is tried
// first; any miss or error falls back to Postgres.
func (n *NotificationService) ListForUser(ctx context.Context, actor *domain.User, limit int) ([]domain.Notification, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("user required")
	}
	if cached, err := n.feed.Recent(ctx, actor.ID, limit); err == nil && cached != nil {
		return cached, nil
	} else if err != nil {
		n.logger.Warn("notification feed cache read failed", zap.Error(err))
	}
	result, err := n.notifications.ListByUser(ctx, actor.ID, limit)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return result, nil
}

// MarkRead flags one of the actor's notifications as read.
func (n *NotificationService) MarkRead(ctx context.Context, actor *domain.User, id string) error {
	if actor == nil {
		return apperrors.NewUnauthorized("user required")
	}
	if err := n.notifications.MarkRead(ctx, id, actor.ID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("notification", map[string]any{"notification_id": id})
		}
		return apperrors.MapError(err)
	}
	if err := n.feed.Invalidate(ctx, actor.ID); err != nil {
		n.logger.Warn("notification feed invalidation failed", zap.Error(err))
	}
	return nil
}

func (n *NotificationService) handleAssignmentCreated(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.AssignmentCreatedPayload)
	if !ok {
		return nil
	}
	date := payload.ServiceDate.Format(dateLayout)
	n.record(ctx, &domain.Notification{
		UserID:  payload.UserID,
		Type:    domain.NotificationAssignmentCreated,
		Title:   "New service assignment",
		Message: fmt.Sprintf("You have been assigned as %s for %s on %s.", payload.Role, payload.ServiceTitle, date),
		Payload: map[string]any{
			"assignment_id": payload.AssignmentID,
			"service_id":    payload.ServiceID,
			"service_title": payload.ServiceTitle,
			"date":          date,
			"role":          payload.Role,
		},
	})
	if user := n.lookupUser(ctx, payload.UserID); user != nil {
		n.sendEmail(ctx, user.Email, "New service assignment",
			fmt.Sprintf("Hi %s,\n\nYou have been assigned as %s for %s on %s. Please confirm or decline.", user.Name, payload.Role, payload.ServiceTitle, date))
	}
	return nil
}

func (n *NotificationService) handleAssignmentResponded(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.AssignmentRespondedPayload)
	if !ok {
		return nil
	}
	date := payload.ServiceDate.Format(dateLayout)
	declined := payload.NewStatus == domain.AssignmentStatusDeclined

	title := "Assignment confirmed"
	message := fmt.Sprintf("You confirmed your %s role for %s on %s.", payload.Role, payload.ServiceTitle, date)
	if declined {
		title = "Assignment declined"
		message = fmt.Sprintf("You declined your %s role for %s on %s: %s", payload.Role, payload.ServiceTitle, date, payload.Reason)
	}

	// The record goes to the assignee's own feed: an audit trail of
	// their action, not a coordinator alert.
	record := &domain.Notification{
		UserID:  payload.UserID,
		Type:    domain.NotificationAssignmentResponse,
		Title:   title,
		Message: message,
		Payload: map[string]any{
			"assignment_id": payload.AssignmentID,
			"service_id":    payload.ServiceID,
			"service_title": payload.ServiceTitle,
			"date":          date,
			"status":        string(payload.NewStatus),
		},
	}
	if payload.Reason != "" {
		record.Payload["reason"] = payload.Reason
	}
	n.record(ctx, record)

	if declined && n.cfg.AdminEmail != "" {
		declinerName := payload.UserID
		if user := n.lookupUser(ctx, payload.UserID); user != nil {
			declinerName = user.Name
		}
		n.sendEmail(ctx, n.cfg.AdminEmail, "Service assignment declined",
			fmt.Sprintf("%s declined the %s role for %s on %s.\n\nReason: %s", declinerName, payload.Role, payload.ServiceTitle, date, payload.Reason))
	}
	return nil
}

func (n *NotificationService) handleSwapRequested(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.SwapRequestedPayload)
	if !ok {
		return nil
	}
	date := payload.ServiceDate.Format(dateLayout)
	fromName := payload.FromUserID
	if user := n.lookupUser(ctx, payload.FromUserID); user != nil {
		fromName = user.Name
	}

	message := fmt.Sprintf("%s asked you to take their place for %s on %s.", fromName, payload.ServiceTitle, date)
	if payload.Message != "" {
		message += " Message: " + payload.Message
	}
	n.record(ctx, &domain.Notification{
		UserID:  payload.ToUserID,
		Type:    domain.NotificationSwapRequest,
		Title:   "Swap request",
		Message: message,
		Payload: map[string]any{
			"swap_id":       payload.SwapID,
			"service_id":    payload.ServiceID,
			"service_title": payload.ServiceTitle,
			"date":          date,
			"from_user_id":  payload.FromUserID,
			"message":       payload.Message,
		},
	})

	if target := n.lookupUser(ctx, payload.ToUserID); target != nil {
		n.sendEmail(ctx, target.Email, "Swap request", message)
		if target.Phone != nil && *target.Phone != "" {
			n.sendSMS(ctx, *target.Phone, fmt.Sprintf("%s asked to swap %s on %s. Respond in the app.", fromName, payload.ServiceTitle, date))
		}
	}
	return nil
}

func (n *NotificationService) handleSwapAccepted(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.SwapAcceptedPayload)
	if !ok {
		return nil
	}
	date := payload.ServiceDate.Format(dateLayout)

	n.record(ctx, &domain.Notification{
		UserID:  payload.FromUserID,
		Type:    domain.NotificationSwapAccepted,
		Title:   "Swap accepted",
		Message: fmt.Sprintf("Your %s role for %s on %s has been handed over.", payload.Role, payload.ServiceTitle, date),
		Payload: map[string]any{
			"swap_id":       payload.SwapID,
			"service_id":    payload.ServiceID,
			"service_title": payload.ServiceTitle,
			"date":          date,
			"role":          payload.Role,
		},
	})
	n.record(ctx, &domain.Notification{
		UserID:  payload.ToUserID,
		Type:    domain.NotificationSwapAccepted,
		Title:   "Swap accepted",
		Message: fmt.Sprintf("You now hold the %s role for %s on %s. Please confirm your availability.", payload.Role, payload.ServiceTitle, date),
		Payload: map[string]any{
			"swap_id":       payload.SwapID,
			"service_id":    payload.ServiceID,
			"service_title": payload.ServiceTitle,
			"date":          date,
			"role":          payload.Role,
		},
	})
	return nil
}

func (n *NotificationService) handleServicePublished(ctx context.Context, event events.Event) error {
	return n.fanOutLifecycle(ctx, event, domain.NotificationServicePublished, "Service published",
		"%s on %s has been published. Check your assignment.")
}

func (n *NotificationService) handleServiceCancelled(ctx context.Context, event events.Event) error {
	return n.fanOutLifecycle(ctx, event, domain.NotificationServiceCancelled, "Service cancelled",
		"%s on %s has been cancelled. Your assignment no longer applies.")
}

func (n *NotificationService) fanOutLifecycle(ctx context.Context, event events.Event, notifType domain.NotificationType, title, format string) error {
	payload, ok := event.Payload.(events.ServiceLifecyclePayload)
	if !ok {
		return nil
	}
	date := payload.ServiceDate.Format(dateLayout)
	message := fmt.Sprintf(format, payload.ServiceTitle, date)
	for _, userID := range payload.AssigneeIDs {
		n.record(ctx, &domain.Notification{
			UserID:  userID,
			Type:    notifType,
			Title:   title,
			Message: message,
			Payload: map[string]any{
				"service_id":    payload.ServiceID,
				"service_title": payload.ServiceTitle,
				"date":          date,
			},
		})
		if user := n.lookupUser(ctx, userID); user != nil {
			n.sendEmail(ctx, user.Email, title, message)
		}
	}
	return nil
}

func (n *NotificationService) record(ctx context.Context, notification *domain.Notification) {
	if err := n.notifications.Create(ctx, notification); err != nil {
		n.logger.Error("failed to persist notification",
			zap.String("user_id", notification.UserID),
			zap.String("type", string(notification.Type)),
			zap.Error(err))
		return
	}
	if err := n.feed.Push(ctx, notification); err != nil {
		n.logger.Warn("failed to push notification feed", zap.Error(err))
	}
}

func (n *NotificationService) sendEmail(ctx context.Context, to, subject, body string) {
	if n.notifier == nil || to == "" {
		return
	}
	if err := n.notifier.SendEmail(ctx, to, subject, body); err != nil {
		n.logger.Warn("email delivery failed", zap.String("to", to), zap.Error(err))
	}
}

func (n *NotificationService) sendSMS(ctx context.Context, to, message string) {
	if n.notifier == nil || to == "" {
		return
	}
	if err := n.notifier.SendSMS(ctx, to, message); err != nil {
		n.logger.Warn("sms delivery failed", zap.String("to", to), zap.Error(err))
	}
}

func (n *NotificationService) lookupUser(ctx context.Context, id string) *domain.User {
	user, err := n.users.GetByID(ctx, id)
	if err != nil {
		n.logger.Warn("recipient lookup failed", zap.String("user_id", id), zap.Error(err))
		return nil
	}
	return user
}
