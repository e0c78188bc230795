package domain

import "time"

// UserRole controls dashboard access and broadcast targeting.
type UserRole string

const (
	RoleAdmin   UserRole = "admin"
	RoleManager UserRole = "manager"
	RoleAgent   UserRole = "agent"
)

// Valid reports whether the value is a known role.
func (r UserRole) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleAgent:
		return true
	}
	return false
}

// User is an agent, manager or admin operating the desk.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	Role         UserRole
	TeamID       *string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
