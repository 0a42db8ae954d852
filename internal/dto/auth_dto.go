package dto

import "time"

// LoginRequest holds backend credentials.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// RegisterRequest creates a backend account.
type RegisterRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Username    string `json:"username" validate:"required,min=3,max=64"`
	FirstName   string `json:"first_name" validate:"required"`
	LastName    string `json:"last_name" validate:"required"`
	PhoneNumber string `json:"phone_number"`
	Password    string `json:"password" validate:"required,min=8"`
}

// SessionResponse describes the authenticated browser session.
type SessionResponse struct {
	SessionID string    `json:"session_id"`
	Username  string    `json:"username,omitempty"`
	UserID    int       `json:"user_id,omitempty"`
	ExpiresAt time.Time `json:"expires_at"`
}
