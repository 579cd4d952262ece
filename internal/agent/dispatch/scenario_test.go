package dispatch

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"alertaya/internal/agent/gateway"
	"alertaya/internal/agent/session"
	"alertaya/internal/agent/storage"
	"alertaya/internal/model"
)

// End-to-end agent flow against a fake backend: login, then one trigger
// with a mocked GPS fix, ending in exactly one authenticated alert POST.
func TestLoginThenTrigger_SubmitsOneAuthenticatedAlert(t *testing.T) {
	type alertCall struct {
		auth string
		body string
	}

	var mu sync.Mutex
	var alerts []alertCall

	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/login":
			json.NewEncoder(w).Encode(model.LoginResponse{
				Token: "session-token",
				User:  model.User{ID: 3, Name: "Maria", Email: "maria@example.com"},
			})
		case "/panic/alerta":
			body, _ := io.ReadAll(r.Body)
			mu.Lock()
			alerts = append(alerts, alertCall{
				auth: r.Header.Get("Authorization"),
				body: string(body),
			})
			mu.Unlock()
			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode(model.AlertResponse{ID: 10})
		default:
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer backend.Close()

	sess := session.NewStore(storage.NewMemStore())
	client := gateway.New(backend.URL, sess)

	if _, err := client.Login(context.Background(), "maria@example.com", "secret"); err != nil {
		t.Fatalf("Login: %v", err)
	}

	onResult, results := collectResults()
	d := New(fixedLocation(-79.0, 9.0), client,
		WithCooldown(10*time.Millisecond), onResult)

	if !d.Trigger(context.Background()) {
		t.Fatal("trigger should be accepted")
	}

	result := <-results
	if result.Err != nil {
		t.Fatalf("trigger failed: %v", result.Err)
	}
	waitForIdle(t, d, time.Second)

	mu.Lock()
	defer mu.Unlock()
	if len(alerts) != 1 {
		t.Fatalf("alert posts = %d, want 1", len(alerts))
	}
	if alerts[0].auth != "Bearer session-token" {
		t.Errorf("authorization = %q, want the session bearer token", alerts[0].auth)
	}
	want := `{"coordinates":["-79.0","9.0"]}`
	if alerts[0].body != want {
		t.Errorf("body = %s, want %s", alerts[0].body, want)
	}
}
