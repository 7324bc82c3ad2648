package domain

import (
	"time"
)

// User is the read-only view of an account owned by the auth subsystem.
type User struct {
	ID             string     `json:"id"`
	Email          string     `json:"email"`
	FullName       *string    `json:"full_name,omitempty"`
	ProfilePicture *string    `json:"profile_picture,omitempty"`
	IsActive       bool       `json:"is_active"`
	IsAdmin        bool       `json:"is_admin"`
	IsVerified     bool       `json:"is_verified"`
	LastLoginAt    *time.Time `json:"last_login_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}
