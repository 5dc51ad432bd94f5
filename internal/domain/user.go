package domain

import "time"

// UserStatus represents lifecycle states for a program member.
type UserStatus string

const (
	UserStatusActive    UserStatus = "ACTIVE"
	UserStatusSuspended UserStatus = "SUSPENDED"
)

// User is a recycling program member and the owner of a points balance.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Status       UserStatus
	Points       int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
