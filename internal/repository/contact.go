package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"alertaya/internal/model"
)

type contactRepository struct {
	db *sqlx.DB
}

func NewContactRepository(db *sqlx.DB) ContactRepository {
	return &contactRepository{db: db}
}

func (r *contactRepository) Create(ctx context.Context, ownerID int64, req *model.RegisterContactRequest) (*model.Contact, error) {
	query := `
		INSERT INTO contacts (owner_id, contact_user, alias, relationship)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	contact := &model.Contact{
		OwnerID:      ownerID,
		ContactUser:  req.ContactUser,
		Alias:        req.Alias,
		Relationship: req.Relationship,
	}
	err := r.db.QueryRowxContext(ctx, query,
		ownerID, req.ContactUser, req.Alias, req.Relationship,
	).Scan(&contact.ID, &contact.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create contact: %w", err)
	}
	return contact, nil
}

// GetByOwner returns the owner's contacts joined with the contact user's
// display fields.
func (r *contactRepository) GetByOwner(ctx context.Context, ownerID int64) ([]model.Contact, error) {
	query := `
		SELECT c.id, c.owner_id, c.contact_user, c.alias, c.relationship, c.created_at,
		       u.name, u.phone
		FROM contacts c
		JOIN users u ON u.id = c.contact_user
		WHERE c.owner_id = $1
		ORDER BY c.alias ASC
	`
	var contacts []model.Contact
	err := r.db.SelectContext(ctx, &contacts, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("get contacts: %w", err)
	}
	return contacts, nil
}

func (r *contactRepository) Exists(ctx context.Context, ownerID, contactUser int64) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS(SELECT 1 FROM contacts WHERE owner_id = $1 AND contact_user = $2)`,
		ownerID, contactUser)
	if err != nil {
		return false, fmt.Errorf("check contact exists: %w", err)
	}
	return exists, nil
}

func (r *contactRepository) GetContactUserIDs(ctx context.Context, ownerID int64) ([]int64, error) {
	var ids []int64
	err := r.db.SelectContext(ctx, &ids,
		`SELECT contact_user FROM contacts WHERE owner_id = $1`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("get contact user ids: %w", err)
	}
	return ids, nil
}
