package domain

import "time"

// ServiceStatus enumerates lifecycle states for a service occurrence.
type ServiceStatus string

const (
	ServiceStatusDraft     ServiceStatus = "DRAFT"
	ServiceStatusPublished ServiceStatus = "PUBLISHED"
	ServiceStatusCancelled ServiceStatus = "CANCELLED"
)

// Service is a scheduled event volunteers are assigned to.
type Service struct {
	ID        string
	Title     string
	Date      time.Time
	Time      string
	Location  string
	Status    ServiceStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}
