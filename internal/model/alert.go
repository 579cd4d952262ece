package model

import (
	"errors"
	"time"
)

// Coordinates is a [longitude, latitude] pair of string-encoded decimal
// degrees. Longitude comes first; the mobile clients and the fan-out
// pipeline both depend on that ordering.
type Coordinates [2]string

// Longitude returns the first element of the pair.
func (c Coordinates) Longitude() string { return c[0] }

// Latitude returns the second element of the pair.
func (c Coordinates) Latitude() string { return c[1] }

// Valid reports whether both elements are non-empty.
func (c Coordinates) Valid() bool {
	return c[0] != "" && c[1] != ""
}

// Alert is a persisted panic alert record.
type Alert struct {
	ID        int64     `db:"id" json:"id"`
	UserID    int64     `db:"user_id" json:"userId"`
	Longitude string    `db:"longitude" json:"longitude"`
	Latitude  string    `db:"latitude" json:"latitude"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// AlertRequest is the body for POST /panic/alerta
type AlertRequest struct {
	Coordinates Coordinates `json:"coordinates"`
}

// AlertResponse acknowledges an accepted alert.
type AlertResponse struct {
	ID        int64     `json:"id"`
	CreatedAt time.Time `json:"created_at"`
}

// ErrInvalidCoordinates is returned when an alert body is missing
// either half of the coordinate pair.
var ErrInvalidCoordinates = errors.New("invalid coordinates")
