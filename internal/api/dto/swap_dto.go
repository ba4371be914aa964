package dto

import (
	"time"

	"github.com/NinjaGame428/church-management-sub001/internal/domain"
)

// CreateSwapRequest payload. Date uses the 2006-01-02 layout.
type CreateSwapRequest struct {
	ToUserID  string `json:"to_user_id"`
	ServiceID string `json:"service_id"`
	Date      string `json:"date"`
	Message   string `json:"message"`
}

// SwapDecisionRequest is the target user's answer.
type SwapDecisionRequest struct {
	Decision string `json:"decision"`
}

// SwapResponse is the public view of a swap request.
type SwapResponse struct {
	ID         string            `json:"id"`
	ServiceID  string            `json:"service_id"`
	FromUserID string            `json:"from_user_id"`
	ToUserID   string            `json:"to_user_id"`
	Date       string            `json:"date"`
	Message    string            `json:"message,omitempty"`
	Status     domain.SwapStatus `json:"status"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
}

// SwapSummary maps a domain swap request.
func SwapSummary(swap *domain.SwapRequest) SwapResponse {
	return SwapResponse{
		ID:         swap.ID,
		ServiceID:  swap.ServiceID,
		FromUserID: swap.FromUserID,
		ToUserID:   swap.ToUserID,
		Date:       swap.Date.Format("2006-01-02"),
		Message:    swap.Message,
		Status:     swap.Status,
		CreatedAt:  swap.CreatedAt,
		UpdatedAt:  swap.UpdatedAt,
	}
}
