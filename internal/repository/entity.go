package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"alertaya/internal/model"
)

type entityRepository struct {
	db *sqlx.DB
}

func NewEntityRepository(db *sqlx.DB) EntityRepository {
	return &entityRepository{db: db}
}

// List returns all entities, flagging the ones forUserID is subscribed to.
func (r *entityRepository) List(ctx context.Context, forUserID int64) ([]model.Entity, error) {
	query := `
		SELECT e.id, e.name, e.kind, e.phone, e.created_at,
		       EXISTS(
		           SELECT 1 FROM entity_subscriptions s
		           WHERE s.entity_id = e.id AND s.user_id = $1
		       ) AS subscribed
		FROM entities e
		ORDER BY e.name ASC
	`
	var entities []model.Entity
	err := r.db.SelectContext(ctx, &entities, query, forUserID)
	if err != nil {
		return nil, fmt.Errorf("list entities: %w", err)
	}
	return entities, nil
}

func (r *entityRepository) GetByID(ctx context.Context, id int64) (*model.Entity, error) {
	var entity model.Entity
	err := r.db.GetContext(ctx, &entity,
		`SELECT id, name, kind, phone, created_at, FALSE AS subscribed FROM entities WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrEntityNotFound
		}
		return nil, fmt.Errorf("get entity: %w", err)
	}
	return &entity, nil
}

func (r *entityRepository) Subscribe(ctx context.Context, entityID, userID int64) error {
	query := `
		INSERT INTO entity_subscriptions (entity_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT (entity_id, user_id) DO NOTHING
	`
	res, err := r.db.ExecContext(ctx, query, entityID, userID)
	if err != nil {
		return fmt.Errorf("subscribe entity: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return model.ErrAlreadySubscribed
	}
	return nil
}

func (r *entityRepository) Unsubscribe(ctx context.Context, entityID, userID int64) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM entity_subscriptions WHERE entity_id = $1 AND user_id = $2`,
		entityID, userID)
	if err != nil {
		return fmt.Errorf("unsubscribe entity: %w", err)
	}
	return nil
}

func (r *entityRepository) IsSubscribed(ctx context.Context, entityID, userID int64) (bool, error) {
	var subscribed bool
	err := r.db.GetContext(ctx, &subscribed,
		`SELECT EXISTS(SELECT 1 FROM entity_subscriptions WHERE entity_id = $1 AND user_id = $2)`,
		entityID, userID)
	if err != nil {
		return false, fmt.Errorf("check subscription: %w", err)
	}
	return subscribed, nil
}

func (r *entityRepository) CountSubscriptions(ctx context.Context, userID int64) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM entity_subscriptions WHERE user_id = $1`, userID)
	if err != nil {
		return 0, fmt.Errorf("count subscriptions: %w", err)
	}
	return count, nil
}

// GetCoSubscriberIDs returns users subscribed to any entity userID is
// subscribed to. Used to fan panic alerts out to the neighborhood watch.
func (r *entityRepository) GetCoSubscriberIDs(ctx context.Context, userID int64) ([]int64, error) {
	query := `
		SELECT DISTINCT s2.user_id
		FROM entity_subscriptions s1
		JOIN entity_subscriptions s2 ON s2.entity_id = s1.entity_id
		WHERE s1.user_id = $1 AND s2.user_id <> $1
	`
	var ids []int64
	err := r.db.SelectContext(ctx, &ids, query, userID)
	if err != nil {
		return nil, fmt.Errorf("get co-subscriber ids: %w", err)
	}
	return ids, nil
}
