package repository

import (
	"context"

	"alertaya/internal/model"
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	List(ctx context.Context) ([]model.User, error)
	Update(ctx context.Context, id int64, req *model.UpdateUserRequest) (*model.User, error)
	UpdatePassword(ctx context.Context, id int64, passwordHashed string) error
}

type ContactRepository interface {
	Create(ctx context.Context, ownerID int64, req *model.RegisterContactRequest) (*model.Contact, error)
	GetByOwner(ctx context.Context, ownerID int64) ([]model.Contact, error)
	Exists(ctx context.Context, ownerID, contactUser int64) (bool, error)
	// GetContactUserIDs returns the user IDs registered as contacts of ownerID.
	GetContactUserIDs(ctx context.Context, ownerID int64) ([]int64, error)
}

type EntityRepository interface {
	List(ctx context.Context, forUserID int64) ([]model.Entity, error)
	GetByID(ctx context.Context, id int64) (*model.Entity, error)
	Subscribe(ctx context.Context, entityID, userID int64) error
	Unsubscribe(ctx context.Context, entityID, userID int64) error
	IsSubscribed(ctx context.Context, entityID, userID int64) (bool, error)
	CountSubscriptions(ctx context.Context, userID int64) (int, error)
	// GetCoSubscriberIDs returns users sharing at least one entity
	// subscription with userID, excluding userID itself.
	GetCoSubscriberIDs(ctx context.Context, userID int64) ([]int64, error)
}

type NeighborhoodRepository interface {
	List(ctx context.Context) ([]model.Neighborhood, error)
}

type AlertRepository interface {
	Create(ctx context.Context, alert *model.Alert) error
	GetRecentByUser(ctx context.Context, userID int64, limit int) ([]model.Alert, error)
}

type DeviceTokenRepository interface {
	Upsert(ctx context.Context, userID int64, token string) error
	GetTokensForUsers(ctx context.Context, userIDs []int64) ([]string, error)
	Delete(ctx context.Context, token string) error
}

type MediaPackageRepository interface {
	List(ctx context.Context) ([]model.MediaPackage, error)
}
