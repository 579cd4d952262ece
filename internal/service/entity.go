package service

import (
	"context"
	"log"

	"alertaya/internal/model"
	"alertaya/internal/queue"
	"alertaya/internal/repository"
)

// EntityService manages safety-entity subscriptions.
type EntityService struct {
	entityRepo repository.EntityRepository
	userRepo   repository.UserRepository
	publisher  queue.Publisher
}

func NewEntityService(entityRepo repository.EntityRepository, userRepo repository.UserRepository, publisher queue.Publisher) *EntityService {
	return &EntityService{
		entityRepo: entityRepo,
		userRepo:   userRepo,
		publisher:  publisher,
	}
}

// List returns all entities with the caller's subscription flag set.
func (s *EntityService) List(ctx context.Context, forUserID int64) ([]model.Entity, error) {
	return s.entityRepo.List(ctx, forUserID)
}

// Subscribe enrolls userID with an entity, enforcing the user's
// maxSubscriptionLimit.
func (s *EntityService) Subscribe(ctx context.Context, entityID, userID int64) error {
	if _, err := s.entityRepo.GetByID(ctx, entityID); err != nil {
		return err
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	count, err := s.entityRepo.CountSubscriptions(ctx, userID)
	if err != nil {
		return err
	}
	if count >= user.MaxSubLimit {
		return model.ErrSubscriptionLimit
	}

	if err := s.entityRepo.Subscribe(ctx, entityID, userID); err != nil {
		return err
	}

	s.invalidateRecipients(ctx, userID)
	return nil
}

// Unsubscribe removes the enrollment. Unsubscribing from an entity the user
// never joined is a no-op, matching the repository's DELETE semantics.
func (s *EntityService) Unsubscribe(ctx context.Context, entityID, userID int64) error {
	if _, err := s.entityRepo.GetByID(ctx, entityID); err != nil {
		return err
	}
	if err := s.entityRepo.Unsubscribe(ctx, entityID, userID); err != nil {
		return err
	}

	s.invalidateRecipients(ctx, userID)
	return nil
}

func (s *EntityService) invalidateRecipients(ctx context.Context, userID int64) {
	if _, err := s.publisher.Publish(ctx, queue.StreamAlerts, queue.NewRecipientsChangedEvent(userID)); err != nil {
		log.Printf("[EntityService] invalidation publish failed user=%d err=%v", userID, err)
	}
}
