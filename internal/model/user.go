package model

import (
	"errors"
	"time"
)

// User roles
const (
	RoleUser   = "user"
	RoleAdmin  = "admin"
	RoleEntity = "entity"
)

// User represents a registered person in the system
type User struct {
	ID             int64     `db:"id" json:"id"`
	CI             string    `db:"ci" json:"ci"` // national identity number
	Name           string    `db:"name" json:"name"`
	Email          string    `db:"email" json:"email"`
	Phone          string    `db:"phone" json:"phone"`
	PasswordHashed string    `db:"password_hashed" json:"-"`
	Role           string    `db:"role" json:"role"`
	AvatarURL      *string   `db:"avatar_url" json:"avatar,omitempty"`
	MaxSubLimit    int       `db:"max_sub_limit" json:"maxSubscriptionLimit"`
	NeighborhoodID *int64    `db:"neighborhood_id" json:"neighborhoodId,omitempty"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// RegisterRequest is the sign-up body: POST /users/register
type RegisterRequest struct {
	CI       string `json:"ci"`
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
	Password string `json:"password"`
	FCMToken string `json:"fcmToken,omitempty"`
}

// LoginRequest is the body for POST /auth/login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is the session payload returned on successful login
type LoginResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// UpdatePasswordRequest is the body for PUT /auth/update-password
type UpdatePasswordRequest struct {
	Email           string `json:"email"`
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// ResetPasswordRequest is the body for POST /auth/reset-password
// and POST /notify/petition-reset
type ResetPasswordRequest struct {
	Email string `json:"email"`
}

// UpdateUserRequest is the body for PUT /users/:id. Nil fields are untouched.
type UpdateUserRequest struct {
	Name   *string `json:"name,omitempty"`
	Email  *string `json:"email,omitempty"`
	Phone  *string `json:"phone,omitempty"`
	Avatar *string `json:"avatar,omitempty"`
}

// UserListResponse is the envelope for GET /users/
type UserListResponse struct {
	Users []User `json:"users"`
}

var (
	// ErrUserNotFound is returned when a user cannot be found
	ErrUserNotFound = errors.New("user not found")

	// ErrEmailExists is returned when registering with a taken email
	ErrEmailExists = errors.New("email already exists")

	// ErrInvalidCredentials is returned when login credentials are incorrect
	ErrInvalidCredentials = errors.New("invalid credentials")
)
