package domain

import "time"

// SwapStatus enumerates swap request lifecycle states.
// A swap request transitions exactly once; accepted and declined are terminal.
type SwapStatus string

const (
	SwapStatusPending  SwapStatus = "pending"
	SwapStatusAccepted SwapStatus = "accepted"
	SwapStatusDeclined SwapStatus = "declined"
)

// IsTerminal reports whether the request can no longer transition.
func (s SwapStatus) IsTerminal() bool {
	return s == SwapStatusAccepted || s == SwapStatusDeclined
}

// SwapDecision is the target user's answer to a swap request.
type SwapDecision string

const (
	SwapDecisionAccept  SwapDecision = "accept"
	SwapDecisionDecline SwapDecision = "decline"
)

// SwapRequest proposes that the role held by FromUserID on a service be
// offered to ToUserID. Pending requests are private to the two parties;
// only accepted requests surface in coordinator views.
type SwapRequest struct {
	ID         string
	ServiceID  string
	FromUserID string
	ToUserID   string
	Date       time.Time
	Message    string
	Status     SwapStatus
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
