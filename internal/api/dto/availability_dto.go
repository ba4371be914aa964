package dto

import (
	"time"

	"github.com/NinjaGame428/church-management-sub001/internal/domain"
)

// AvailabilityRequest payload. Date uses the 2006-01-02 layout; status
// is folded case-insensitively to available/unavailable/busy.
type AvailabilityRequest struct {
	Date      string  `json:"date"`
	Status    string  `json:"status"`
	ServiceID *string `json:"service_id"`
	Notes     string  `json:"notes"`
}

// AvailabilityResponse is the public view of a ledger entry.
type AvailabilityResponse struct {
	ID        string                    `json:"id"`
	UserID    string                    `json:"user_id"`
	Date      string                    `json:"date"`
	Status    domain.AvailabilityStatus `json:"status"`
	ServiceID *string                   `json:"service_id,omitempty"`
	Notes     string                    `json:"notes,omitempty"`
	CreatedAt time.Time                 `json:"created_at"`
	UpdatedAt time.Time                 `json:"updated_at"`
}

// AvailabilitySummary maps a domain entry.
func AvailabilitySummary(entry *domain.Availability) AvailabilityResponse {
	return AvailabilityResponse{
		ID:        entry.ID,
		UserID:    entry.UserID,
		Date:      entry.Date.Format("2006-01-02"),
		Status:    entry.Status,
		ServiceID: entry.ServiceID,
		Notes:     entry.Notes,
		CreatedAt: entry.CreatedAt,
		UpdatedAt: entry.UpdatedAt,
	}
}
