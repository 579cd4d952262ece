package model

import (
	"errors"
	"time"
)

// Contact links a user to another registered user as an emergency contact.
type Contact struct {
	ID           int64     `db:"id" json:"id"`
	OwnerID      int64     `db:"owner_id" json:"-"`
	ContactUser  int64     `db:"contact_user" json:"contactUser"`
	Alias        string    `db:"alias" json:"alias"`
	Relationship string    `db:"relationship" json:"relationship"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`

	// Joined fields for display
	Name  string `db:"name" json:"name,omitempty"`
	Phone string `db:"phone" json:"phone,omitempty"`
}

// RegisterContactRequest is the body for POST /contacts/register
type RegisterContactRequest struct {
	Alias        string `json:"alias"`
	Relationship string `json:"relationship"`
	ContactUser  int64  `json:"contactUser"`
}

// ContactListResponse is the envelope for GET /contacts/all-contacts
type ContactListResponse struct {
	Contacts []Contact `json:"contacts"`
}

var (
	// ErrContactExists is returned when the pair is already registered
	ErrContactExists = errors.New("contact already registered")

	// ErrSelfContact is returned when a user tries to add themselves
	ErrSelfContact = errors.New("cannot add yourself as a contact")
)
