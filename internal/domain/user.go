package domain

import "time"

// Role tags an account as a regular user or an admin. The tag is persisted and
// carried in tokens but no route currently enforces it.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// ValidRole reports whether r is a known role value.
func ValidRole(r Role) bool {
	return r == RoleUser || r == RoleAdmin
}

// User is the domain model for registered accounts. PasswordHash never leaves
// the service layer.
type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
