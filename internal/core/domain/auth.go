package domain

import "time"

// LoginRequest is the inbound credential submission. Login is an email or a
// username.
type LoginRequest struct {
	Login    string `json:"login" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// SessionUser is the identity exposed to clients.
type SessionUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  Role   `json:"role"`
}

// AuthResponse is returned by a successful login.
type AuthResponse struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	User      SessionUser `json:"user"`
}

// Identity is what a verified token proves about the caller.
type Identity struct {
	UserID    string
	Role      Role
	ExpiresAt time.Time
}

// SessionView is the per-request session reconstructed for clients.
type SessionView struct {
	User      SessionUser `json:"user"`
	ExpiresAt time.Time   `json:"expires_at"`
}
