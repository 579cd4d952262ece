package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"alertaya/internal/agent/session"
	"alertaya/internal/agent/storage"
	"alertaya/internal/model"
)

// recordedRequest captures what the backend saw.
type recordedRequest struct {
	Method string
	Path   string
	Auth   string
	Body   string
}

// testBackend is an httptest server plus the requests it received.
type testBackend struct {
	mu       sync.Mutex
	server   *httptest.Server
	requests []recordedRequest
}

func newTestBackend(t *testing.T, handler http.HandlerFunc) *testBackend {
	t.Helper()
	b := &testBackend{}
	b.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		b.mu.Lock()
		b.requests = append(b.requests, recordedRequest{
			Method: r.Method,
			Path:   r.URL.Path,
			Auth:   r.Header.Get("Authorization"),
			Body:   string(body),
		})
		b.mu.Unlock()
		handler(w, r)
	}))
	t.Cleanup(b.server.Close)
	return b
}

func (b *testBackend) recorded() []recordedRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]recordedRequest, len(b.requests))
	copy(out, b.requests)
	return out
}

func newSessionWith(t *testing.T, token string) *session.Store {
	t.Helper()
	sess := session.NewStore(storage.NewMemStore())
	if token != "" {
		if err := sess.Login(token, model.User{ID: 7, Name: "Ana", Email: "ana@example.com"}); err != nil {
			t.Fatalf("seed session: %v", err)
		}
	}
	return sess
}

func TestClient_SubmitAlert_SendsBearerAndOrderedCoordinates(t *testing.T) {
	backend := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(model.AlertResponse{ID: 1})
	})

	sess := newSessionWith(t, "tok-123")
	client := New(backend.server.URL, sess)

	err := client.SubmitAlert(context.Background(), model.Coordinates{"-79.0", "9.0"})
	if err != nil {
		t.Fatalf("SubmitAlert: %v", err)
	}

	reqs := backend.recorded()
	if len(reqs) != 1 {
		t.Fatalf("requests = %d, want 1", len(reqs))
	}
	req := reqs[0]
	if req.Method != http.MethodPost || req.Path != "/panic/alerta" {
		t.Errorf("request = %s %s, want POST /panic/alerta", req.Method, req.Path)
	}
	if req.Auth != "Bearer tok-123" {
		t.Errorf("authorization = %q, want bearer token", req.Auth)
	}
	want := `{"coordinates":["-79.0","9.0"]}`
	if req.Body != want {
		t.Errorf("body = %s, want %s", req.Body, want)
	}
}

func TestClient_NoStoredToken_FailsBeforeRequest(t *testing.T) {
	backend := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("request should never reach the backend")
	})

	client := New(backend.server.URL, newSessionWith(t, ""))

	err := client.SubmitAlert(context.Background(), model.Coordinates{"-79.0", "9.0"})
	if !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("err = %v, want ErrUnauthenticated", err)
	}
	if len(backend.recorded()) != 0 {
		t.Errorf("backend saw %d requests, want 0", len(backend.recorded()))
	}
}

func TestClient_401_ClearsSession(t *testing.T) {
	backend := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]string{"code": "TOKEN_EXPIRED", "message": "expired"},
		})
	})

	sess := newSessionWith(t, "stale-token")
	client := New(backend.server.URL, sess)

	err := client.SubmitPushToken(context.Background(), "fcm-abc")
	if !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("err = %v, want ErrUnauthenticated", err)
	}

	if sess.Active() {
		t.Error("session still active after a 401")
	}

	// A follow-up authenticated call must fail locally, sending nothing.
	before := len(backend.recorded())
	if err := client.SubmitAlert(context.Background(), model.Coordinates{"-79.0", "9.0"}); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("follow-up err = %v, want ErrUnauthenticated", err)
	}
	if got := len(backend.recorded()); got != before {
		t.Errorf("backend saw %d extra requests after invalidation", got-before)
	}
}

func TestClient_5xx_MapsToNetworkError(t *testing.T) {
	backend := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	sess := newSessionWith(t, "tok")
	client := New(backend.server.URL, sess)

	err := client.SubmitAlert(context.Background(), model.Coordinates{"1", "2"})
	if !errors.Is(err, ErrNetwork) {
		t.Errorf("err = %v, want ErrNetwork", err)
	}
	if !sess.Active() {
		t.Error("5xx must not clear the session")
	}
}

func TestClient_Login_PersistsSession(t *testing.T) {
	backend := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(model.LoginResponse{
			Token: "fresh-token",
			User:  model.User{ID: 42, Name: "Luis", Email: "luis@example.com"},
		})
	})

	store := storage.NewMemStore()
	sess := session.NewStore(store)
	client := New(backend.server.URL, sess)

	user, err := client.Login(context.Background(), "luis@example.com", "secret")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if user.ID != 42 {
		t.Errorf("user id = %d, want 42", user.ID)
	}

	token, err := sess.Token()
	if err != nil || token != "fresh-token" {
		t.Errorf("stored token = %q (%v), want fresh-token", token, err)
	}
	if _, err := store.Get(session.KeyUser); err != nil {
		t.Errorf("user snapshot not persisted: %v", err)
	}
}

func TestClient_ListUsers_FiltersToUserRole(t *testing.T) {
	backend := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(model.UserListResponse{Users: []model.User{
			{ID: 1, Role: model.RoleUser},
			{ID: 2, Role: model.RoleAdmin},
			{ID: 3, Role: model.RoleEntity},
			{ID: 4, Role: model.RoleUser},
		}})
	})

	client := New(backend.server.URL, newSessionWith(t, "tok"))

	users, err := client.ListUsers(context.Background())
	if err != nil {
		t.Fatalf("ListUsers: %v", err)
	}
	if len(users) != 2 || users[0].ID != 1 || users[1].ID != 4 {
		t.Errorf("filtered users = %+v, want IDs [1 4]", users)
	}
}

func TestClient_ListMediaPackages_FiltersTypeAndStatus(t *testing.T) {
	backend := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(model.MediaPackageListResponse{Packages: []model.MediaPackage{
			{ID: 1, Type: model.MediaTypeAvatar, Status: true},
			{ID: 2, Type: model.MediaTypeAvatar, Status: false},
			{ID: 3, Type: model.MediaTypeAdvertising, Status: true},
		}})
	})

	client := New(backend.server.URL, newSessionWith(t, "tok"))

	packages, err := client.ListMediaPackages(context.Background(), model.MediaTypeAvatar)
	if err != nil {
		t.Fatalf("ListMediaPackages: %v", err)
	}
	if len(packages) != 1 || packages[0].ID != 1 {
		t.Errorf("filtered packages = %+v, want only ID 1", packages)
	}
}
