package service

import (
	"context"
	"errors"
	"testing"

	"alertaya/internal/model"
	"alertaya/internal/queue"
)

// =============================================================================
// MOCKS
// =============================================================================

type mockAlertRepository struct {
	createFn          func(ctx context.Context, alert *model.Alert) error
	getRecentByUserFn func(ctx context.Context, userID int64, limit int) ([]model.Alert, error)

	created []*model.Alert
}

func (m *mockAlertRepository) Create(ctx context.Context, alert *model.Alert) error {
	m.created = append(m.created, alert)
	if m.createFn != nil {
		return m.createFn(ctx, alert)
	}
	alert.ID = int64(len(m.created))
	return nil
}

func (m *mockAlertRepository) GetRecentByUser(ctx context.Context, userID int64, limit int) ([]model.Alert, error) {
	if m.getRecentByUserFn != nil {
		return m.getRecentByUserFn(ctx, userID, limit)
	}
	return nil, nil
}

type mockPublisher struct {
	publishFn func(ctx context.Context, stream string, event queue.AlertEvent) (string, error)

	published []queue.AlertEvent
}

func (m *mockPublisher) Publish(ctx context.Context, stream string, event queue.AlertEvent) (string, error) {
	m.published = append(m.published, event)
	if m.publishFn != nil {
		return m.publishFn(ctx, stream, event)
	}
	return "1-0", nil
}

// =============================================================================
// RAISE TESTS
// =============================================================================

func TestAlertService_Raise_PersistsAndPublishesOnce(t *testing.T) {
	repo := &mockAlertRepository{}
	pub := &mockPublisher{}
	svc := NewAlertService(repo, pub)

	alert, err := svc.Raise(context.Background(), 7, &model.AlertRequest{
		Coordinates: model.Coordinates{"-84.5", "10.0"},
	})
	if err != nil {
		t.Fatalf("Raise: %v", err)
	}

	if alert.Longitude != "-84.5" || alert.Latitude != "10.0" {
		t.Errorf("stored coords = [%s, %s], want [-84.5, 10.0]", alert.Longitude, alert.Latitude)
	}

	if len(pub.published) != 1 {
		t.Fatalf("published events = %d, want exactly 1", len(pub.published))
	}
	event := pub.published[0]
	if event.Type != queue.EventAlertRaised {
		t.Errorf("event type = %s, want %s", event.Type, queue.EventAlertRaised)
	}
	if event.UserID != 7 || event.AlertID != alert.ID {
		t.Errorf("event ids = user:%d alert:%d, want user:7 alert:%d", event.UserID, event.AlertID, alert.ID)
	}
	if event.Longitude != "-84.5" || event.Latitude != "10.0" {
		t.Errorf("event coords = [%s, %s], want [-84.5, 10.0]", event.Longitude, event.Latitude)
	}
}

func TestAlertService_Raise_RejectsIncompleteCoordinates(t *testing.T) {
	repo := &mockAlertRepository{}
	pub := &mockPublisher{}
	svc := NewAlertService(repo, pub)

	cases := []model.Coordinates{
		{},
		{"-84.5", ""},
		{"", "10.0"},
	}
	for _, coords := range cases {
		_, err := svc.Raise(context.Background(), 7, &model.AlertRequest{Coordinates: coords})
		if !errors.Is(err, model.ErrInvalidCoordinates) {
			t.Errorf("coords %v: err = %v, want ErrInvalidCoordinates", coords, err)
		}
	}

	if len(repo.created) != 0 {
		t.Errorf("alerts persisted = %d, want 0", len(repo.created))
	}
	if len(pub.published) != 0 {
		t.Errorf("events published = %d, want 0", len(pub.published))
	}
}

func TestAlertService_Raise_PublishFailureDoesNotFailIntake(t *testing.T) {
	repo := &mockAlertRepository{}
	pub := &mockPublisher{
		publishFn: func(ctx context.Context, stream string, event queue.AlertEvent) (string, error) {
			return "", errors.New("redis down")
		},
	}
	svc := NewAlertService(repo, pub)

	// The alert row is the source of truth; a lost event only delays
	// delivery, so intake still succeeds.
	alert, err := svc.Raise(context.Background(), 7, &model.AlertRequest{
		Coordinates: model.Coordinates{"-79.0", "9.0"},
	})
	if err != nil {
		t.Fatalf("Raise: %v", err)
	}
	if alert.ID == 0 {
		t.Error("alert was not persisted")
	}
}
