// Package gateway is the agent's authenticated HTTP client for the backend.
// It owns the bearer header, the shared request timeout, and the mapping of
// HTTP failures onto the agent's error taxonomy: a 401 from any call clears
// the persisted session before being reported as ErrUnauthenticated.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"alertaya/internal/agent/session"
	"alertaya/internal/model"
)

var (
	// ErrUnauthenticated means there is no usable session: either no token
	// is stored, or the server rejected the one we sent.
	ErrUnauthenticated = errors.New("gateway: unauthenticated")

	// ErrNetwork covers transport failures, timeouts, and server 5xx.
	ErrNetwork = errors.New("gateway: network error")
)

// DefaultTimeout is the shared per-request timeout.
const DefaultTimeout = 10 * time.Second

// Client talks to the backend. All authenticated methods read the bearer
// token from the session store; a missing token fails before any request is
// sent.
type Client struct {
	baseURL string
	http    *http.Client
	session *session.Store
}

// New creates a gateway client for the backend at baseURL.
func New(baseURL string, sess *session.Store) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: DefaultTimeout},
		session: sess,
	}
}

// errorEnvelope mirrors the backend's error response body.
type errorEnvelope struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// do executes one request. authenticated requests attach the bearer header;
// the response body (if any) is decoded into out.
func (c *Client) do(ctx context.Context, method, path string, body any, out any, authenticated bool) error {
	var token string
	if authenticated {
		t, err := c.session.Token()
		if err != nil {
			return ErrUnauthenticated
		}
		token = t
	}

	var reqBody io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("gateway: encode body: %w", err)
		}
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("gateway: build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authenticated {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		// Server rejected the token. The session is cleared here, once,
		// regardless of which component made the call.
		c.session.Invalidate()
		return ErrUnauthenticated
	case resp.StatusCode >= 500:
		return fmt.Errorf("%w: server returned %d", ErrNetwork, resp.StatusCode)
	case resp.StatusCode >= 400:
		var env errorEnvelope
		if err := json.NewDecoder(resp.Body).Decode(&env); err == nil && env.Error.Message != "" {
			return fmt.Errorf("gateway: %s (%s)", env.Error.Message, env.Error.Code)
		}
		return fmt.Errorf("gateway: request failed with status %d", resp.StatusCode)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("gateway: decode response: %w", err)
		}
	}
	return nil
}

// Login authenticates and persists the resulting session. The token and
// user snapshot are stored as a unit; a persistence failure leaves the
// agent logged out.
func (c *Client) Login(ctx context.Context, email, password string) (model.User, error) {
	var resp model.LoginResponse
	err := c.do(ctx, http.MethodPost, "/auth/login",
		model.LoginRequest{Email: email, Password: password}, &resp, false)
	if err != nil {
		return model.User{}, err
	}

	if err := c.session.Login(resp.Token, resp.User); err != nil {
		return model.User{}, err
	}
	return resp.User, nil
}

// Register creates a new account. Public endpoint.
func (c *Client) Register(ctx context.Context, req model.RegisterRequest) (model.User, error) {
	var resp struct {
		User model.User `json:"user"`
	}
	err := c.do(ctx, http.MethodPost, "/users/register", req, &resp, false)
	return resp.User, err
}

// UpdatePassword changes the caller's password.
func (c *Client) UpdatePassword(ctx context.Context, req model.UpdatePasswordRequest) error {
	return c.do(ctx, http.MethodPut, "/auth/update-password", req, nil, true)
}

// ResetPassword requests a password reset for the given email.
func (c *Client) ResetPassword(ctx context.Context, email string) error {
	return c.do(ctx, http.MethodPost, "/auth/reset-password",
		model.ResetPasswordRequest{Email: email}, nil, false)
}

// PetitionReset asks support to reset an account.
func (c *Client) PetitionReset(ctx context.Context, email string) error {
	return c.do(ctx, http.MethodPost, "/notify/petition-reset",
		model.ResetPasswordRequest{Email: email}, nil, false)
}

// SubmitAlert posts one panic alert. coords is [longitude, latitude];
// the ordering is preserved on the wire.
func (c *Client) SubmitAlert(ctx context.Context, coords model.Coordinates) error {
	return c.do(ctx, http.MethodPost, "/panic/alerta",
		model.AlertRequest{Coordinates: coords}, nil, true)
}

// AlertHistory fetches the caller's recent alerts.
func (c *Client) AlertHistory(ctx context.Context) ([]model.Alert, error) {
	var resp struct {
		Alerts []model.Alert `json:"alerts"`
	}
	err := c.do(ctx, http.MethodGet, "/panic/history", nil, &resp, true)
	return resp.Alerts, err
}

// SubmitPushToken registers the device's push token for the current user.
func (c *Client) SubmitPushToken(ctx context.Context, token string) error {
	return c.do(ctx, http.MethodPost, "/users/token",
		model.RegisterTokenRequest{FCMToken: token}, nil, true)
}

// ListUsers returns registered users, filtered to the plain "user" role.
// The backend returns every role; the filtering is a client concern.
func (c *Client) ListUsers(ctx context.Context) ([]model.User, error) {
	var resp model.UserListResponse
	if err := c.do(ctx, http.MethodGet, "/users/", nil, &resp, true); err != nil {
		return nil, err
	}

	users := resp.Users[:0]
	for _, u := range resp.Users {
		if u.Role == model.RoleUser {
			users = append(users, u)
		}
	}
	return users, nil
}

// GetUser fetches a single user by ID.
func (c *Client) GetUser(ctx context.Context, id int64) (model.User, error) {
	var resp struct {
		User model.User `json:"user"`
	}
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/users/%d", id), nil, &resp, true)
	return resp.User, err
}

// UpdateUser updates the caller's own profile fields.
func (c *Client) UpdateUser(ctx context.Context, id int64, req model.UpdateUserRequest) (model.User, error) {
	var resp struct {
		User model.User `json:"user"`
	}
	err := c.do(ctx, http.MethodPut, fmt.Sprintf("/users/%d", id), req, &resp, true)
	return resp.User, err
}

// ListContacts returns the caller's emergency contacts.
func (c *Client) ListContacts(ctx context.Context) ([]model.Contact, error) {
	var resp model.ContactListResponse
	err := c.do(ctx, http.MethodGet, "/contacts/all-contacts", nil, &resp, true)
	return resp.Contacts, err
}

// RegisterContact adds an emergency contact.
func (c *Client) RegisterContact(ctx context.Context, req model.RegisterContactRequest) (model.Contact, error) {
	var resp struct {
		Contact model.Contact `json:"contact"`
	}
	err := c.do(ctx, http.MethodPost, "/contacts/register", req, &resp, true)
	return resp.Contact, err
}

// ListEntities returns the subscribable safety entities.
func (c *Client) ListEntities(ctx context.Context) ([]model.Entity, error) {
	var resp model.EntityListResponse
	err := c.do(ctx, http.MethodGet, "/entity/", nil, &resp, true)
	return resp.Entities, err
}

// SubscribeEntity petitions a subscription to an entity for the caller.
func (c *Client) SubscribeEntity(ctx context.Context, entityID int64) error {
	user, err := c.session.User()
	if err != nil {
		return ErrUnauthenticated
	}
	return c.do(ctx, http.MethodPost, "/entity/petition",
		model.SubscriptionRequest{EntityID: entityID, UserID: user.ID}, nil, true)
}

// UnsubscribeEntity removes the caller's subscription to an entity.
func (c *Client) UnsubscribeEntity(ctx context.Context, entityID int64) error {
	user, err := c.session.User()
	if err != nil {
		return ErrUnauthenticated
	}
	return c.do(ctx, http.MethodPost, "/entity/unsubscribe",
		model.SubscriptionRequest{EntityID: entityID, UserID: user.ID}, nil, true)
}

// ListNeighborhoods returns the neighborhood catalog. Public endpoint.
func (c *Client) ListNeighborhoods(ctx context.Context) ([]model.Neighborhood, error) {
	var resp model.NeighborhoodListResponse
	err := c.do(ctx, http.MethodGet, "/neighborhood/all-neighborhood", nil, &resp, false)
	return resp.Neighborhoods, err
}

// ListMediaPackages returns active media packages of the given type
// ("avatar", "advertising", "neighborhood"). The backend returns the full
// catalog; type and status filtering happens here.
func (c *Client) ListMediaPackages(ctx context.Context, mediaType string) ([]model.MediaPackage, error) {
	var resp model.MediaPackageListResponse
	if err := c.do(ctx, http.MethodGet, "/media/packages/list", nil, &resp, true); err != nil {
		return nil, err
	}

	packages := resp.Packages[:0]
	for _, p := range resp.Packages {
		if p.Type == mediaType && p.Status {
			packages = append(packages, p)
		}
	}
	return packages, nil
}
