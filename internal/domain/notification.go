package domain

import "time"

// NotificationType labels the event a notification records.
type NotificationType string

const (
	NotificationAssignmentCreated  NotificationType = "assignment_created"
	NotificationAssignmentResponse NotificationType = "assignment_response"
	NotificationSwapRequest        NotificationType = "swap_request"
	NotificationSwapAccepted       NotificationType = "swap_accepted"
	NotificationServicePublished   NotificationType = "service_published"
	NotificationServiceCancelled   NotificationType = "service_cancelled"
)

// Notification is an immutable audit/delivery record addressed to one
// user. Rows are append-only; only the read flag may change.
type Notification struct {
	ID        string
	UserID    string
	Type      NotificationType
	Title     string
	Message   string
	Payload   map[string]any
	IsRead    bool
	CreatedAt time.Time
}
