// Package models defines the data structures that map to database tables
// and provides the core types used throughout the application.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Role is an elevated-role name stored in the user_roles table.
type Role string

const (
	// RoleAdmin grants access to the admin workspace.
	RoleAdmin Role = "admin"
)

// User is an authentication principal.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never serialize the hash
	DisplayName  string    `json:"display_name"`
	TOTPSecret   *string   `json:"-"` // Nullable; set during 2FA enrolment
	TOTPEnabled  bool      `json:"totp_enabled"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// UserRole is one elevated-role record for a user.
type UserRole struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// NeedsSecondFactor returns true if sign-in must be completed with a TOTP code.
func (u *User) NeedsSecondFactor() bool {
	return u.TOTPEnabled && u.TOTPSecret != nil
}

// IsPrivileged reports whether roles contains the admin role.
func IsPrivileged(roles []Role) bool {
	for _, r := range roles {
		if r == RoleAdmin {
			return true
		}
	}
	return false
}
