package domain

import (
	"strings"
	"time"
)

// AvailabilityStatus is a user's self-declared status for a date.
type AvailabilityStatus string

const (
	AvailabilityAvailable   AvailabilityStatus = "available"
	AvailabilityUnavailable AvailabilityStatus = "unavailable"
	AvailabilityBusy        AvailabilityStatus = "busy"
)

// NormalizeAvailabilityStatus folds case and validates against the fixed
// vocabulary. The second return is false for unknown values.
func NormalizeAvailabilityStatus(raw string) (AvailabilityStatus, bool) {
	switch AvailabilityStatus(strings.ToLower(strings.TrimSpace(raw))) {
	case AvailabilityAvailable:
		return AvailabilityAvailable, true
	case AvailabilityUnavailable:
		return AvailabilityUnavailable, true
	case AvailabilityBusy:
		return AvailabilityBusy, true
	default:
		return "", false
	}
}

// Availability records a user's status for a single date. At most one
// record exists per (UserID, Date). ServiceID is an informational link
// only and is nulled when the referenced service is deleted.
type Availability struct {
	ID        string
	UserID    string
	Date      time.Time
	Status    AvailabilityStatus
	ServiceID *string
	Notes     string
	CreatedAt time.Time
	UpdatedAt time.Time
}
