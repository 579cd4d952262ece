package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"alertaya/internal/config"
	"alertaya/internal/model"
	"alertaya/internal/repository"
)

// AuthService handles login, token issuance and password management.
type AuthService struct {
	userRepo repository.UserRepository
	mailer   Mailer // Can be nil if mail not configured
	config   *config.Config
}

func NewAuthService(userRepo repository.UserRepository, mailer Mailer, cfg *config.Config) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		mailer:   mailer,
		config:   cfg,
	}
}

// Login verifies the credentials and returns a bearer token plus the user
// record. The token is an HS256 JWT carrying the user id.
func (s *AuthService) Login(ctx context.Context, req *model.LoginRequest) (*model.LoginResponse, error) {
	if req.Email == "" || req.Password == "" {
		return nil, model.ErrInvalidCredentials
	}

	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			return nil, model.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHashed), []byte(req.Password)); err != nil {
		return nil, model.ErrInvalidCredentials
	}

	token, err := s.generateAccessToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	return &model.LoginResponse{Token: token, User: *user}, nil
}

// UpdatePassword verifies the current password before storing a new hash.
func (s *AuthService) UpdatePassword(ctx context.Context, req *model.UpdatePasswordRequest) error {
	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHashed), []byte(req.CurrentPassword)); err != nil {
		return model.ErrInvalidCredentials
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	return s.userRepo.UpdatePassword(ctx, user.ID, string(hashed))
}

// ResetPassword replaces the user's password with a generated one and mails
// it to them. Best-effort: a mailer failure is returned so the handler can
// report it, but the password has already been rotated at that point.
func (s *AuthService) ResetPassword(ctx context.Context, email string) error {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return err
	}

	generated, err := generatePassword()
	if err != nil {
		return err
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(generated), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := s.userRepo.UpdatePassword(ctx, user.ID, string(hashed)); err != nil {
		return err
	}

	if s.mailer == nil {
		return fmt.Errorf("mailer not configured")
	}
	return s.mailer.SendPasswordReset(ctx, user.Email, user.Name, generated)
}

// RequestPetitionReset mails the operations team that a user asked for a
// manual reset (POST /notify/petition-reset).
func (s *AuthService) RequestPetitionReset(ctx context.Context, email string) error {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if s.mailer == nil {
		return fmt.Errorf("mailer not configured")
	}
	return s.mailer.SendPetitionReset(ctx, user.Email, user.Name)
}

// VerifyToken parses a bearer token and returns the embedded user id.
func (s *AuthService) VerifyToken(tokenString string) (int64, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(s.config.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return 0, model.ErrInvalidCredentials
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, model.ErrInvalidCredentials
	}
	userIDFloat, ok := claims["user_id"].(float64)
	if !ok {
		return 0, model.ErrInvalidCredentials
	}
	return int64(userIDFloat), nil
}

func (s *AuthService) generateAccessToken(userID int64) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().Add(time.Duration(s.config.TokenMaxAge) * time.Second).Unix(),
		"iat":     time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.JWTSecret))
}
