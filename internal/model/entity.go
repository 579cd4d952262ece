package model

import (
	"errors"
	"time"
)

// Entity kinds
const (
	EntityPolice    = "police"
	EntityFire      = "fire"
	EntityAmbulance = "ambulance"
)

// Entity is a safety organization users can subscribe to.
type Entity struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Kind      string    `db:"kind" json:"kind"`
	Phone     string    `db:"phone" json:"phone"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`

	// Joined field: whether the requesting user is subscribed
	Subscribed bool `db:"subscribed" json:"subscribed"`
}

// SubscriptionRequest is the body for POST /entity/petition
// and POST /entity/unsubscribe
type SubscriptionRequest struct {
	EntityID int64 `json:"entityId"`
	UserID   int64 `json:"userId"`
}

// EntityListResponse is the envelope for GET /entity/
type EntityListResponse struct {
	Entities []Entity `json:"entities"`
}

var (
	// ErrEntityNotFound is returned when an entity cannot be found
	ErrEntityNotFound = errors.New("entity not found")

	// ErrSubscriptionLimit is returned when a user is at their
	// maxSubscriptionLimit and petitions another entity
	ErrSubscriptionLimit = errors.New("subscription limit reached")

	// ErrAlreadySubscribed is returned on a duplicate petition
	ErrAlreadySubscribed = errors.New("already subscribed to entity")
)
