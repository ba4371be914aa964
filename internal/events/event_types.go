package events

import (
	"time"

	"github.com/NinjaGame428/church-management-sub001/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventAssignmentCreated   EventType = "assignment_created"
	EventAssignmentResponded EventType = "assignment_responded"
	EventSwapRequested       EventType = "swap_requested"
	EventSwapAccepted        EventType = "swap_accepted"
	EventServicePublished    EventType = "service_published"
	EventServiceCancelled    EventType = "service_cancelled"
)

// Actor encapsulates actor metadata for an event. A nil UserID marks a
// system-originated event.
type Actor struct {
	UserID *string         `json:"user_id,omitempty"`
	Role   domain.UserRole `json:"role,omitempty"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// AssignmentCreatedPayload payload.
type AssignmentCreatedPayload struct {
	AssignmentID string    `json:"assignment_id"`
	ServiceID    string    `json:"service_id"`
	ServiceTitle string    `json:"service_title"`
	ServiceDate  time.Time `json:"service_date"`
	UserID       string    `json:"user_id"`
	Role         string    `json:"role"`
}

// AssignmentRespondedPayload payload.
type AssignmentRespondedPayload struct {
	AssignmentID string                  `json:"assignment_id"`
	ServiceID    string                  `json:"service_id"`
	ServiceTitle string                  `json:"service_title"`
	ServiceDate  time.Time               `json:"service_date"`
	UserID       string                  `json:"user_id"`
	Role         string                  `json:"role"`
	OldStatus    domain.AssignmentStatus `json:"old_status"`
	NewStatus    domain.AssignmentStatus `json:"new_status"`
	Reason       string                  `json:"reason,omitempty"`
}

// SwapRequestedPayload payload.
type SwapRequestedPayload struct {
	SwapID       string    `json:"swap_id"`
	ServiceID    string    `json:"service_id"`
	ServiceTitle string    `json:"service_title"`
	ServiceDate  time.Time `json:"service_date"`
	FromUserID   string    `json:"from_user_id"`
	ToUserID     string    `json:"to_user_id"`
	Message      string    `json:"message,omitempty"`
}

// SwapAcceptedPayload payload.
type SwapAcceptedPayload struct {
	SwapID       string    `json:"swap_id"`
	ServiceID    string    `json:"service_id"`
	ServiceTitle string    `json:"service_title"`
	ServiceDate  time.Time `json:"service_date"`
	FromUserID   string    `json:"from_user_id"`
	ToUserID     string    `json:"to_user_id"`
	Role         string    `json:"role"`
}

// ServiceLifecyclePayload payload for publish/cancel events.
type ServiceLifecyclePayload struct {
	ServiceID    string    `json:"service_id"`
	ServiceTitle string    `json:"service_title"`
	ServiceDate  time.Time `json:"service_date"`
	AssigneeIDs  []string  `json:"assignee_ids"`
}
