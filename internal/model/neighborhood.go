package model

import "time"

// Neighborhood is a residential group users can belong to.
type Neighborhood struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	City      string    `db:"city" json:"city"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// NeighborhoodListResponse is the envelope for GET /neighborhood/all-neighborhood
type NeighborhoodListResponse struct {
	Neighborhoods []Neighborhood `json:"neighborhoods"`
}
