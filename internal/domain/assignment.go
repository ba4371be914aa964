package domain

import "time"

// AssignmentStatus enumerates assignment lifecycle states.
// PENDING is initial; CONFIRMED and DECLINED are terminal. The only
// sanctioned way out of a terminal state is a completed swap, which
// hands the slot to a new holder and resets it to PENDING.
type AssignmentStatus string

const (
	AssignmentStatusPending   AssignmentStatus = "PENDING"
	AssignmentStatusConfirmed AssignmentStatus = "CONFIRMED"
	AssignmentStatusDeclined  AssignmentStatus = "DECLINED"
)

// IsTerminal reports whether no further response transition is allowed.
func (s AssignmentStatus) IsTerminal() bool {
	return s == AssignmentStatusConfirmed || s == AssignmentStatusDeclined
}

// ResponseAction is a volunteer's answer to an assignment.
type ResponseAction string

const (
	ResponseAccept  ResponseAction = "accept"
	ResponseDecline ResponseAction = "decline"
)

// ServiceAssignment binds one user to one service in one role.
// At most one assignment exists per (ServiceID, UserID) pair.
type ServiceAssignment struct {
	ID            string
	ServiceID     string
	UserID        string
	Role          string
	Status        AssignmentStatus
	DeclineReason *string
	CreatedAt     time.Time
	UpdatedAt     time.Time

	// Denormalized from the owning service for confirmation display.
	ServiceTitle string
	ServiceDate  time.Time
}
