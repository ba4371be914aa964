package dto

import (
	"time"

	"github.com/NinjaGame428/church-management-sub001/internal/domain"
)

// CreateServiceRequest payload. Date uses the 2006-01-02 layout.
type CreateServiceRequest struct {
	Title    string `json:"title"`
	Date     string `json:"date"`
	Time     string `json:"time"`
	Location string `json:"location"`
}

// UpdateServiceRequest payload; empty fields are left unchanged.
type UpdateServiceRequest struct {
	Title    string `json:"title"`
	Date     string `json:"date"`
	Time     string `json:"time"`
	Location string `json:"location"`
}

// ServiceResponse is the public view of a service.
type ServiceResponse struct {
	ID        string               `json:"id"`
	Title     string               `json:"title"`
	Date      string               `json:"date"`
	Time      string               `json:"time"`
	Location  string               `json:"location"`
	Status    domain.ServiceStatus `json:"status"`
	CreatedAt time.Time            `json:"created_at"`
	UpdatedAt time.Time            `json:"updated_at"`
}

// ServiceSummary maps a domain service.
func ServiceSummary(svc *domain.Service) ServiceResponse {
	return ServiceResponse{
		ID:        svc.ID,
		Title:     svc.Title,
		Date:      svc.Date.Format("2006-01-02"),
		Time:      svc.Time,
		Location:  svc.Location,
		Status:    svc.Status,
		CreatedAt: svc.CreatedAt,
		UpdatedAt: svc.UpdatedAt,
	}
}

// ScheduleAssignmentRequest payload.
type ScheduleAssignmentRequest struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

// RespondRequest is the assignee's accept/decline payload.
type RespondRequest struct {
	Action string `json:"action"`
	Reason string `json:"reason"`
}

// AssignmentResponse is the public view of an assignment, including the
// denormalized service title/date for confirmation display.
type AssignmentResponse struct {
	ID            string                  `json:"id"`
	ServiceID     string                  `json:"service_id"`
	ServiceTitle  string                  `json:"service_title"`
	ServiceDate   string                  `json:"service_date"`
	UserID        string                  `json:"user_id"`
	Role          string                  `json:"role"`
	Status        domain.AssignmentStatus `json:"status"`
	DeclineReason *string                 `json:"decline_reason,omitempty"`
	CreatedAt     time.Time               `json:"created_at"`
	UpdatedAt     time.Time               `json:"updated_at"`
}

// AssignmentSummary maps a domain assignment.
func AssignmentSummary(assignment *domain.ServiceAssignment) AssignmentResponse {
	return AssignmentResponse{
		ID:            assignment.ID,
		ServiceID:     assignment.ServiceID,
		ServiceTitle:  assignment.ServiceTitle,
		ServiceDate:   assignment.ServiceDate.Format("2006-01-02"),
		UserID:        assignment.UserID,
		Role:          assignment.Role,
		Status:        assignment.Status,
		DeclineReason: assignment.DeclineReason,
		CreatedAt:     assignment.CreatedAt,
		UpdatedAt:     assignment.UpdatedAt,
	}
}
