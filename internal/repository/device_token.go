package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

type deviceTokenRepository struct {
	db *sqlx.DB
}

func NewDeviceTokenRepository(db *sqlx.DB) DeviceTokenRepository {
	return &deviceTokenRepository{db: db}
}

// Upsert stores the user's current device token, replacing whatever token
// the user had before. FCM rotates tokens without warning, so the row keyed
// on user_id must always hold the latest one or fan-out pushes to a dead
// device.
func (r *deviceTokenRepository) Upsert(ctx context.Context, userID int64, token string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin upsert tx: %w", err)
	}
	defer tx.Rollback()

	// A device signing into a different account carries its token along;
	// clear the old owner's row so the token column stays unique.
	_, err = tx.ExecContext(ctx,
		`DELETE FROM device_tokens WHERE token = $1 AND user_id <> $2`,
		token, userID)
	if err != nil {
		return fmt.Errorf("release device token: %w", err)
	}

	query := `
		INSERT INTO device_tokens (user_id, token, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (user_id) DO UPDATE SET
			token = EXCLUDED.token,
			updated_at = NOW()
	`
	if _, err := tx.ExecContext(ctx, query, userID, token); err != nil {
		return fmt.Errorf("upsert device token: %w", err)
	}
	return tx.Commit()
}

// GetTokensForUsers returns the raw token strings for a set of users.
func (r *deviceTokenRepository) GetTokensForUsers(ctx context.Context, userIDs []int64) ([]string, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(`SELECT token FROM device_tokens WHERE user_id IN (?)`, userIDs)
	if err != nil {
		return nil, fmt.Errorf("build token query: %w", err)
	}
	query = r.db.Rebind(query)

	var tokens []string
	if err := r.db.SelectContext(ctx, &tokens, query, args...); err != nil {
		return nil, fmt.Errorf("get tokens for users: %w", err)
	}
	return tokens, nil
}

// Delete removes a device token.
func (r *deviceTokenRepository) Delete(ctx context.Context, token string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM device_tokens WHERE token = $1`, token)
	if err != nil {
		return fmt.Errorf("delete device token: %w", err)
	}
	return nil
}
