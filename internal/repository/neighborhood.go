package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"alertaya/internal/model"
)

type neighborhoodRepository struct {
	db *sqlx.DB
}

func NewNeighborhoodRepository(db *sqlx.DB) NeighborhoodRepository {
	return &neighborhoodRepository{db: db}
}

func (r *neighborhoodRepository) List(ctx context.Context) ([]model.Neighborhood, error) {
	var neighborhoods []model.Neighborhood
	err := r.db.SelectContext(ctx, &neighborhoods,
		`SELECT id, name, city, created_at FROM neighborhoods ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list neighborhoods: %w", err)
	}
	return neighborhoods, nil
}
