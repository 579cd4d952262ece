// Dev/test agent harness: runs the panic-alert core against a live backend
// from the command line.
package main

import (
	"context"
	"flag"
	"os"
	"path/filepath"
	"time"

	"github.com/apex/log"

	"alertaya/internal/agent/dispatch"
	"alertaya/internal/agent/gateway"
	"alertaya/internal/agent/location"
	"alertaya/internal/agent/pushtoken"
	"alertaya/internal/agent/session"
	"alertaya/internal/agent/storage"
	"alertaya/internal/model"
)

var (
	serverURL = flag.String("server", "http://127.0.0.1:8080", "Backend base URL")
	statePath = flag.String("state", defaultStatePath(), "Path to the agent state file")
	email     = flag.String("email", "", "Login email")
	password  = flag.String("password", "", "Login password")
	fcmToken  = flag.String("fcm_token", "", "Simulated platform push token")
	longitude = flag.Float64("lon", -84.5, "Simulated device longitude")
	latitude  = flag.Float64("lat", 10.0, "Simulated device latitude")
)

func defaultStatePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "agent-state.json"
	}
	return filepath.Join(home, ".alertaya", "state.json")
}

func main() {
	flag.Parse()
	ctx := context.Background()

	store, err := storage.NewFileStore(*statePath)
	if err != nil {
		log.Fatalf("Failed to open state file: %v", err)
	}

	sess := session.NewStore(store)
	sess.Subscribe(func(active bool) {
		if active {
			log.Info("Session started")
		} else {
			log.Info("Session ended")
		}
	})

	client := gateway.New(*serverURL, sess)

	if *email != "" {
		user, err := client.Login(ctx, *email, *password)
		if err != nil {
			log.Fatalf("Login failed: %v", err)
		}
		log.Infof("Logged in as %s (id=%d)", user.Name, user.ID)
	} else if !sess.Active() {
		log.Fatal("No stored session; pass -email and -password to log in")
	}

	if *fcmToken != "" {
		tokens := pushtoken.NewManager(
			pushtoken.PlatformTokensFunc(func(context.Context) (string, error) {
				return *fcmToken, nil
			}),
			client, sess, store,
		)
		tokens.OnSessionStart(ctx)
		log.Infof("Push token registered: %s", tokens.StoredToken())
	}

	// Simulated single-shot GPS fix.
	provider := location.WithTimeout(
		location.Func(func(context.Context) (model.Coordinates, error) {
			return location.Format(*longitude, *latitude), nil
		}),
		location.DefaultTimeout,
	)

	done := make(chan dispatch.Result, 1)
	dispatcher := dispatch.New(provider, client,
		dispatch.WithResultCallback(func(r dispatch.Result) { done <- r }),
	)

	log.Info("Triggering panic alert")
	if !dispatcher.Trigger(ctx) {
		log.Fatal("Dispatcher rejected the trigger")
	}

	select {
	case result := <-done:
		if result.Err != nil {
			log.Fatalf("Alert failed: %s", dispatch.ErrString(result.Err))
		}
		log.Infof("Alert delivered from [%s, %s]",
			result.Coordinates.Longitude(), result.Coordinates.Latitude())
	case <-time.After(time.Minute):
		log.Fatal("Timed out waiting for the alert result")
	}
}
