package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"alertaya/internal/model"
	"alertaya/internal/queue"
	"alertaya/internal/repository"
)

// ContactService manages a user's emergency contacts.
type ContactService struct {
	contactRepo repository.ContactRepository
	userRepo    repository.UserRepository
	publisher   queue.Publisher
}

func NewContactService(contactRepo repository.ContactRepository, userRepo repository.UserRepository, publisher queue.Publisher) *ContactService {
	return &ContactService{
		contactRepo: contactRepo,
		userRepo:    userRepo,
		publisher:   publisher,
	}
}

// Register adds another registered user as an emergency contact of ownerID
// and invalidates the cached recipient set so the next alert sees them.
func (s *ContactService) Register(ctx context.Context, ownerID int64, req *model.RegisterContactRequest) (*model.Contact, error) {
	if strings.TrimSpace(req.Alias) == "" {
		return nil, fmt.Errorf("%w: alias", model.ErrValidation)
	}
	if req.ContactUser == ownerID {
		return nil, model.ErrSelfContact
	}

	if _, err := s.userRepo.GetByID(ctx, req.ContactUser); err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			return nil, model.ErrUserNotFound
		}
		return nil, err
	}

	exists, err := s.contactRepo.Exists(ctx, ownerID, req.ContactUser)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, model.ErrContactExists
	}

	contact, err := s.contactRepo.Create(ctx, ownerID, req)
	if err != nil {
		return nil, err
	}

	if _, err := s.publisher.Publish(ctx, queue.StreamAlerts, queue.NewRecipientsChangedEvent(ownerID)); err != nil {
		log.Printf("[ContactService] Register: invalidation publish failed user=%d err=%v", ownerID, err)
	}

	return contact, nil
}

// List returns all contacts of ownerID.
func (s *ContactService) List(ctx context.Context, ownerID int64) ([]model.Contact, error) {
	return s.contactRepo.GetByOwner(ctx, ownerID)
}
