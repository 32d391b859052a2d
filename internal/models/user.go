package models

import (
	"time"
)

// User represents a user account
type User struct {
	ID           int        `json:"id"`
	Username     string     `json:"username"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	CreatedAt    time.Time  `json:"created_at"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
}

// UserPublic is the user representation returned by the API
type UserPublic struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Public strips credential fields from a user
func (u *User) Public() *UserPublic {
	return &UserPublic{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
	}
}

// LoginRequest is the login payload
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AuthResponse is returned after a successful login
type AuthResponse struct {
	Token string      `json:"token"`
	User  *UserPublic `json:"user"`
}
