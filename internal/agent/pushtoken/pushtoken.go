// Package pushtoken keeps the backend's record of this device's push token
// in sync with the platform-issued one, for as long as a session is active.
package pushtoken

import (
	"context"
	"fmt"
	"log"

	"alertaya/internal/agent/gateway"
	"alertaya/internal/agent/session"
	"alertaya/internal/agent/storage"
)

// KeyPushToken is the persistent storage key for the last platform token.
const KeyPushToken = "push_token"

// PlatformTokens fetches the current push token from the platform
// messaging service.
type PlatformTokens interface {
	CurrentToken(ctx context.Context) (string, error)
}

// PlatformTokensFunc adapts a function to PlatformTokens.
type PlatformTokensFunc func(ctx context.Context) (string, error)

func (f PlatformTokensFunc) CurrentToken(ctx context.Context) (string, error) {
	return f(ctx)
}

// TokenSubmitter posts a push token to the backend under the current
// session.
type TokenSubmitter interface {
	SubmitPushToken(ctx context.Context, token string) error
}

// Manager owns the push token lifecycle. Submissions are not serialized:
// two rotations in quick succession may race, and the backend's
// latest-write-wins upsert resolves the outcome.
type Manager struct {
	platform  PlatformTokens
	submitter TokenSubmitter
	session   *session.Store
	storage   storage.Store
}

// NewManager creates a push token manager.
func NewManager(platform PlatformTokens, submitter TokenSubmitter, sess *session.Store, st storage.Store) *Manager {
	return &Manager{
		platform:  platform,
		submitter: submitter,
		session:   sess,
		storage:   st,
	}
}

// OnSessionStart runs after a login or restored session: it fetches the
// current platform token, persists it, and submits it. Submission is
// best-effort; failure is logged and does not fail the caller.
func (m *Manager) OnSessionStart(ctx context.Context) {
	token, err := m.platform.CurrentToken(ctx)
	if err != nil {
		log.Printf("[PushToken] Could not fetch platform token: %v", err)
		return
	}
	if token == "" {
		return
	}

	if err := m.storage.SetAll(map[string]string{KeyPushToken: token}); err != nil {
		log.Printf("[PushToken] Could not persist token: %v", err)
	}

	if err := m.submitter.SubmitPushToken(ctx, token); err != nil {
		log.Printf("[PushToken] Session-start submission failed: %v", err)
	}
}

// OnTokenRotated handles a platform rotation event. The new token is
// persisted unconditionally; submission requires a stored session token
// and otherwise fails with ErrUnauthenticated. Rotations are not retried;
// the next session start resubmits whatever the platform reports then.
func (m *Manager) OnTokenRotated(ctx context.Context, newToken string) error {
	if newToken == "" {
		return fmt.Errorf("pushtoken: empty rotated token")
	}

	if err := m.storage.SetAll(map[string]string{KeyPushToken: newToken}); err != nil {
		log.Printf("[PushToken] Could not persist rotated token: %v", err)
	}

	if !m.session.Active() {
		return gateway.ErrUnauthenticated
	}

	if err := m.submitter.SubmitPushToken(ctx, newToken); err != nil {
		return fmt.Errorf("pushtoken: submit rotated token: %w", err)
	}
	return nil
}

// StoredToken returns the last persisted platform token, or empty when
// none has been seen yet.
func (m *Manager) StoredToken() string {
	token, err := m.storage.Get(KeyPushToken)
	if err != nil {
		return ""
	}
	return token
}
