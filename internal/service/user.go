package service

import (
	"context"
	"fmt"
	"log"
	"net/mail"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"alertaya/internal/config"
	"alertaya/internal/model"
	"alertaya/internal/repository"
)

// UserService handles registration and profile management.
type UserService struct {
	userRepo  repository.UserRepository
	tokenRepo repository.DeviceTokenRepository
	config    *config.Config
}

func NewUserService(userRepo repository.UserRepository, tokenRepo repository.DeviceTokenRepository, cfg *config.Config) *UserService {
	return &UserService{
		userRepo:  userRepo,
		tokenRepo: tokenRepo,
		config:    cfg,
	}
}

// Register creates a user account. If the request carries an fcmToken the
// device is registered immediately so the user is reachable before first
// login; a token failure there is logged, not fatal.
func (s *UserService) Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error) {
	if err := validateRegister(req); err != nil {
		return nil, err
	}

	exists, err := s.userRepo.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, model.ErrEmailExists
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		CI:             req.CI,
		Name:           strings.TrimSpace(req.Name),
		Email:          strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:          req.Phone,
		PasswordHashed: string(hashed),
		Role:           model.RoleUser,
		MaxSubLimit:    s.config.MaxSubscribers,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	if req.FCMToken != "" {
		if err := s.tokenRepo.Upsert(ctx, user.ID, req.FCMToken); err != nil {
			log.Printf("[UserService] Register: device token upsert failed user=%d err=%v", user.ID, err)
		}
	}

	return user, nil
}

// GetByID returns a single user.
func (s *UserService) GetByID(ctx context.Context, id int64) (*model.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// List returns all users. Role filtering happens client-side per the
// mobile contract.
func (s *UserService) List(ctx context.Context) ([]model.User, error) {
	return s.userRepo.List(ctx)
}

// Update applies a partial profile update.
func (s *UserService) Update(ctx context.Context, id int64, req *model.UpdateUserRequest) (*model.User, error) {
	if req.Email != nil {
		if _, err := mail.ParseAddress(*req.Email); err != nil {
			return nil, fmt.Errorf("%w: email", model.ErrValidation)
		}
	}
	return s.userRepo.Update(ctx, id, req)
}

// RegisterDeviceToken stores the device's push token for the user.
// Latest write wins; concurrent submissions are not serialized.
func (s *UserService) RegisterDeviceToken(ctx context.Context, userID int64, token string) error {
	if token == "" {
		return fmt.Errorf("%w: fcmToken", model.ErrValidation)
	}
	return s.tokenRepo.Upsert(ctx, userID, token)
}

func validateRegister(req *model.RegisterRequest) error {
	switch {
	case strings.TrimSpace(req.CI) == "":
		return fmt.Errorf("%w: ci", model.ErrValidation)
	case strings.TrimSpace(req.Name) == "":
		return fmt.Errorf("%w: name", model.ErrValidation)
	case strings.TrimSpace(req.Phone) == "":
		return fmt.Errorf("%w: phone", model.ErrValidation)
	case len(req.Password) < 8:
		return fmt.Errorf("%w: password must be at least 8 characters", model.ErrValidation)
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		return fmt.Errorf("%w: email", model.ErrValidation)
	}
	return nil
}
