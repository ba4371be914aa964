package domain

import "time"

// UserStatus represents lifecycle states for a volunteer account.
type UserStatus string

const (
	UserStatusActive    UserStatus = "ACTIVE"
	UserStatusSuspended UserStatus = "SUSPENDED"
)

// UserRole distinguishes coordinators from regular volunteers.
type UserRole string

const (
	RoleVolunteer UserRole = "VOLUNTEER"
	RoleAdmin     UserRole = "ADMIN"
)

// User is the domain model for volunteers and coordinators.
type User struct {
	ID           string
	Name         string
	Email        string
	Phone        *string
	Department   *string
	PasswordHash string
	Role         UserRole
	Status       UserStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
