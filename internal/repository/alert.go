package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"alertaya/internal/model"
)

type alertRepository struct {
	db *sqlx.DB
}

func NewAlertRepository(db *sqlx.DB) AlertRepository {
	return &alertRepository{db: db}
}

func (r *alertRepository) Create(ctx context.Context, alert *model.Alert) error {
	query := `
		INSERT INTO alerts (user_id, longitude, latitude)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`
	err := r.db.QueryRowxContext(ctx, query,
		alert.UserID, alert.Longitude, alert.Latitude,
	).Scan(&alert.ID, &alert.CreatedAt)
	if err != nil {
		return fmt.Errorf("create alert: %w", err)
	}
	return nil
}

func (r *alertRepository) GetRecentByUser(ctx context.Context, userID int64, limit int) ([]model.Alert, error) {
	query := `
		SELECT id, user_id, longitude, latitude, created_at
		FROM alerts
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	var alerts []model.Alert
	err := r.db.SelectContext(ctx, &alerts, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("get recent alerts: %w", err)
	}
	return alerts, nil
}
