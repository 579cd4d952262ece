// Package session owns the agent's authenticated state: the bearer token and
// the current user snapshot, persisted across restarts. Every other agent
// component reads the session; only the store itself mutates it.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"

	"alertaya/internal/agent/storage"
	"alertaya/internal/model"
)

// Persistent storage keys.
const (
	KeyToken = "auth_token"
	KeyUser  = "user"
)

// ErrNoSession is returned when reading the session while logged out.
var ErrNoSession = errors.New("session: not authenticated")

// Listener is notified on login/logout transitions. active reports whether a
// session exists after the transition.
type Listener func(active bool)

// Store holds the session in memory and mirrors it to persistent storage.
// The token and user snapshot are written as a unit: if persistence fails,
// the in-memory state is not updated and the store stays logged out.
type Store struct {
	mu        sync.Mutex
	storage   storage.Store
	token     string
	user      *model.User
	listeners []Listener
}

// NewStore creates a session store backed by st, restoring any persisted
// session. A corrupt or partial persisted session is discarded: a stored
// token without a readable user (or vice versa) is treated as logged out.
func NewStore(st storage.Store) *Store {
	s := &Store{storage: st}

	token, errT := st.Get(KeyToken)
	rawUser, errU := st.Get(KeyUser)
	if errT != nil || errU != nil {
		if errT == nil || errU == nil {
			// Half a session on disk. Fail closed and force re-login.
			log.Printf("[Session] Discarding partial persisted session")
			_ = st.DeleteAll(KeyToken, KeyUser)
		}
		return s
	}

	var user model.User
	if err := json.Unmarshal([]byte(rawUser), &user); err != nil {
		log.Printf("[Session] Discarding unreadable persisted user: %v", err)
		_ = st.DeleteAll(KeyToken, KeyUser)
		return s
	}

	s.token = token
	s.user = &user
	return s
}

// Subscribe registers a listener for login/logout transitions. Listeners are
// invoked synchronously, once per transition, while holding no lock.
func (s *Store) Subscribe(l Listener) {
	s.mu.Lock()
	s.listeners = append(s.listeners, l)
	s.mu.Unlock()
}

// Login stores the session. Token and user are persisted as a single write;
// on failure nothing changes and the error is returned.
func (s *Store) Login(token string, user model.User) error {
	rawUser, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("session: encode user: %w", err)
	}

	s.mu.Lock()
	wasActive := s.token != ""

	if err := s.storage.SetAll(map[string]string{
		KeyToken: token,
		KeyUser:  string(rawUser),
	}); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("session: persist: %w", err)
	}

	s.token = token
	u := user
	s.user = &u
	listeners := s.snapshotListeners()
	s.mu.Unlock()

	if !wasActive {
		notify(listeners, true)
	}
	return nil
}

// Logout clears the session.
func (s *Store) Logout() error {
	return s.clear("logout")
}

// Invalidate clears the session in response to a server-reported 401. The
// persisted token and user are removed together.
func (s *Store) Invalidate() {
	if err := s.clear("server rejected token"); err != nil {
		log.Printf("[Session] Invalidate: %v", err)
	}
}

func (s *Store) clear(reason string) error {
	s.mu.Lock()
	wasActive := s.token != ""

	if err := s.storage.DeleteAll(KeyToken, KeyUser); err != nil {
		// Disk still holds the old session but memory is cleared anyway:
		// a stale persisted token forces re-login on next start, which is
		// the safe direction.
		log.Printf("[Session] Clear (%s): storage delete failed: %v", reason, err)
	}

	s.token = ""
	s.user = nil
	listeners := s.snapshotListeners()
	s.mu.Unlock()

	if wasActive {
		log.Printf("[Session] Cleared (%s)", reason)
		notify(listeners, false)
	}
	return nil
}

// Token returns the bearer token, or ErrNoSession when logged out.
func (s *Store) Token() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token == "" {
		return "", ErrNoSession
	}
	return s.token, nil
}

// User returns a copy of the current user snapshot, or ErrNoSession.
func (s *Store) User() (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.user == nil {
		return model.User{}, ErrNoSession
	}
	return *s.user, nil
}

// Active reports whether a session exists.
func (s *Store) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token != ""
}

func (s *Store) snapshotListeners() []Listener {
	out := make([]Listener, len(s.listeners))
	copy(out, s.listeners)
	return out
}

func notify(listeners []Listener, active bool) {
	for _, l := range listeners {
		l(active)
	}
}
