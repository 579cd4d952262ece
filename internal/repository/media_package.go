package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"alertaya/internal/model"
)

type mediaPackageRepository struct {
	db *sqlx.DB
}

func NewMediaPackageRepository(db *sqlx.DB) MediaPackageRepository {
	return &mediaPackageRepository{db: db}
}

// List returns every media package, active or not. The clients filter by
// type and status themselves.
func (r *mediaPackageRepository) List(ctx context.Context) ([]model.MediaPackage, error) {
	var packages []model.MediaPackage
	err := r.db.SelectContext(ctx, &packages,
		`SELECT id, type, name, url, status, created_at FROM media_packages ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list media packages: %w", err)
	}
	return packages, nil
}
