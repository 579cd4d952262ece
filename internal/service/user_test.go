package service

import (
	"context"
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"alertaya/internal/config"
	"alertaya/internal/model"
)

// =============================================================================
// MOCKS
// =============================================================================

type mockUserRepository struct {
	createFn        func(ctx context.Context, user *model.User) error
	getByIDFn       func(ctx context.Context, id int64) (*model.User, error)
	getByEmailFn    func(ctx context.Context, email string) (*model.User, error)
	existsByEmailFn func(ctx context.Context, email string) (bool, error)
	listFn          func(ctx context.Context) ([]model.User, error)
	updateFn        func(ctx context.Context, id int64, req *model.UpdateUserRequest) (*model.User, error)

	createCalls []*model.User
}

func (m *mockUserRepository) Create(ctx context.Context, user *model.User) error {
	m.createCalls = append(m.createCalls, user)
	if m.createFn != nil {
		return m.createFn(ctx, user)
	}
	user.ID = 1
	return nil
}

func (m *mockUserRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, model.ErrUserNotFound
}

func (m *mockUserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	if m.getByEmailFn != nil {
		return m.getByEmailFn(ctx, email)
	}
	return nil, model.ErrUserNotFound
}

func (m *mockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	if m.existsByEmailFn != nil {
		return m.existsByEmailFn(ctx, email)
	}
	return false, nil
}

func (m *mockUserRepository) List(ctx context.Context) ([]model.User, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}

func (m *mockUserRepository) Update(ctx context.Context, id int64, req *model.UpdateUserRequest) (*model.User, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, id, req)
	}
	return nil, model.ErrUserNotFound
}

func (m *mockUserRepository) UpdatePassword(ctx context.Context, id int64, passwordHashed string) error {
	return nil
}

type mockDeviceTokenRepository struct {
	upsertFn func(ctx context.Context, userID int64, token string) error

	upserts []string
	byUser  map[int64]string // one row per user, latest write wins
}

func (m *mockDeviceTokenRepository) Upsert(ctx context.Context, userID int64, token string) error {
	m.upserts = append(m.upserts, token)
	if m.upsertFn != nil {
		return m.upsertFn(ctx, userID, token)
	}
	if m.byUser == nil {
		m.byUser = make(map[int64]string)
	}
	m.byUser[userID] = token
	return nil
}

func (m *mockDeviceTokenRepository) GetTokensForUsers(ctx context.Context, userIDs []int64) ([]string, error) {
	var tokens []string
	for _, id := range userIDs {
		if token, ok := m.byUser[id]; ok {
			tokens = append(tokens, token)
		}
	}
	return tokens, nil
}

func (m *mockDeviceTokenRepository) Delete(ctx context.Context, token string) error {
	for id, t := range m.byUser {
		if t == token {
			delete(m.byUser, id)
		}
	}
	return nil
}

func testConfig() *config.Config {
	return &config.Config{MaxSubscribers: 3, JWTSecret: "test-secret", TokenMaxAge: 3600}
}

// =============================================================================
// REGISTER TESTS
// =============================================================================

func TestUserService_Register_Success(t *testing.T) {
	userRepo := &mockUserRepository{}
	tokenRepo := &mockDeviceTokenRepository{}
	svc := NewUserService(userRepo, tokenRepo, testConfig())

	req := &model.RegisterRequest{
		CI:       "1-2345-6789",
		Name:     "Ana Rodriguez",
		Phone:    "+506 8888 0000",
		Email:    "Ana@Example.com",
		Password: "supersecret",
	}

	user, err := svc.Register(context.Background(), req)
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	if user.Email != "ana@example.com" {
		t.Errorf("email = %q, want lowercased ana@example.com", user.Email)
	}
	if user.Role != model.RoleUser {
		t.Errorf("role = %q, want %q", user.Role, model.RoleUser)
	}
	if user.MaxSubLimit != 3 {
		t.Errorf("maxSubscriptionLimit = %d, want 3 from config", user.MaxSubLimit)
	}

	// Password must be hashed, never stored plain.
	if user.PasswordHashed == req.Password {
		t.Error("password stored in plain text")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHashed), []byte(req.Password)); err != nil {
		t.Errorf("stored hash does not match the password: %v", err)
	}
}

func TestUserService_Register_WithFCMToken(t *testing.T) {
	userRepo := &mockUserRepository{}
	tokenRepo := &mockDeviceTokenRepository{}
	svc := NewUserService(userRepo, tokenRepo, testConfig())

	_, err := svc.Register(context.Background(), &model.RegisterRequest{
		CI:       "1-2345-6789",
		Name:     "Ana",
		Phone:    "+506 8888 0000",
		Email:    "ana@example.com",
		Password: "supersecret",
		FCMToken: "fcm-device-1",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	if len(tokenRepo.upserts) != 1 || tokenRepo.upserts[0] != "fcm-device-1" {
		t.Errorf("token upserts = %v, want [fcm-device-1]", tokenRepo.upserts)
	}
}

func TestUserService_Register_TokenFailureIsNotFatal(t *testing.T) {
	userRepo := &mockUserRepository{}
	tokenRepo := &mockDeviceTokenRepository{
		upsertFn: func(ctx context.Context, userID int64, token string) error {
			return errors.New("db down")
		},
	}
	svc := NewUserService(userRepo, tokenRepo, testConfig())

	user, err := svc.Register(context.Background(), &model.RegisterRequest{
		CI:       "1-2345-6789",
		Name:     "Ana",
		Phone:    "+506 8888 0000",
		Email:    "ana@example.com",
		Password: "supersecret",
		FCMToken: "fcm-device-1",
	})
	if err != nil {
		t.Fatalf("Register should succeed despite token failure, got: %v", err)
	}
	if user == nil || user.ID == 0 {
		t.Error("user was not created")
	}
}

func TestUserService_Register_Validation(t *testing.T) {
	svc := NewUserService(&mockUserRepository{}, &mockDeviceTokenRepository{}, testConfig())

	base := model.RegisterRequest{
		CI:       "1-2345-6789",
		Name:     "Ana",
		Phone:    "+506 8888 0000",
		Email:    "ana@example.com",
		Password: "supersecret",
	}

	cases := []struct {
		name   string
		mutate func(*model.RegisterRequest)
	}{
		{"missing ci", func(r *model.RegisterRequest) { r.CI = " " }},
		{"missing name", func(r *model.RegisterRequest) { r.Name = "" }},
		{"missing phone", func(r *model.RegisterRequest) { r.Phone = "" }},
		{"short password", func(r *model.RegisterRequest) { r.Password = "short" }},
		{"bad email", func(r *model.RegisterRequest) { r.Email = "not-an-email" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := base
			tc.mutate(&req)
			_, err := svc.Register(context.Background(), &req)
			if !errors.Is(err, model.ErrValidation) {
				t.Errorf("err = %v, want ErrValidation", err)
			}
		})
	}
}

func TestUserService_Register_DuplicateEmail(t *testing.T) {
	userRepo := &mockUserRepository{
		existsByEmailFn: func(ctx context.Context, email string) (bool, error) {
			return true, nil
		},
	}
	svc := NewUserService(userRepo, &mockDeviceTokenRepository{}, testConfig())

	_, err := svc.Register(context.Background(), &model.RegisterRequest{
		CI:       "1-2345-6789",
		Name:     "Ana",
		Phone:    "+506 8888 0000",
		Email:    "taken@example.com",
		Password: "supersecret",
	})
	if !errors.Is(err, model.ErrEmailExists) {
		t.Errorf("err = %v, want ErrEmailExists", err)
	}
}

// =============================================================================
// DEVICE TOKEN TESTS
// =============================================================================

func TestUserService_RegisterDeviceToken_LatestWins(t *testing.T) {
	tokenRepo := &mockDeviceTokenRepository{}
	svc := NewUserService(&mockUserRepository{}, tokenRepo, testConfig())

	// FCM rotated the device's token from T1 to T2. Only T2 may remain
	// visible to fan-out; a lingering T1 would push alerts at a dead token.
	if err := svc.RegisterDeviceToken(context.Background(), 1, "T1"); err != nil {
		t.Fatalf("T1: %v", err)
	}
	if err := svc.RegisterDeviceToken(context.Background(), 1, "T2"); err != nil {
		t.Fatalf("T2: %v", err)
	}

	if len(tokenRepo.upserts) != 2 || tokenRepo.upserts[1] != "T2" {
		t.Errorf("upserts = %v, want [T1 T2]", tokenRepo.upserts)
	}
	tokens, err := tokenRepo.GetTokensForUsers(context.Background(), []int64{1})
	if err != nil {
		t.Fatalf("GetTokensForUsers: %v", err)
	}
	if len(tokens) != 1 || tokens[0] != "T2" {
		t.Errorf("stored tokens = %v, want [T2]", tokens)
	}
}

func TestUserService_RegisterDeviceToken_EmptyRejected(t *testing.T) {
	svc := NewUserService(&mockUserRepository{}, &mockDeviceTokenRepository{}, testConfig())

	err := svc.RegisterDeviceToken(context.Background(), 1, "")
	if !errors.Is(err, model.ErrValidation) {
		t.Errorf("err = %v, want ErrValidation", err)
	}
}
