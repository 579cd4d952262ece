package service

import (
	"context"
	"fmt"
	"log"

	"alertaya/internal/model"
	"alertaya/internal/queue"
	"alertaya/internal/repository"
)

// AlertService handles panic alert intake. Delivery runs asynchronously:
// intake persists the alert, publishes one event per alert to the alert
// stream, and returns. The worker pool does the fan-out.
type AlertService struct {
	alertRepo repository.AlertRepository
	publisher queue.Publisher
}

func NewAlertService(alertRepo repository.AlertRepository, publisher queue.Publisher) *AlertService {
	return &AlertService{
		alertRepo: alertRepo,
		publisher: publisher,
	}
}

// Raise accepts a panic alert from userID at the given coordinates.
// Coordinates arrive as [longitude, latitude] strings; the ordering is part
// of the wire contract and is stored as-is.
func (s *AlertService) Raise(ctx context.Context, userID int64, req *model.AlertRequest) (*model.Alert, error) {
	if !req.Coordinates.Valid() {
		return nil, fmt.Errorf("%w: %v", model.ErrInvalidCoordinates, req.Coordinates)
	}

	alert := &model.Alert{
		UserID:    userID,
		Longitude: req.Coordinates.Longitude(),
		Latitude:  req.Coordinates.Latitude(),
	}
	if err := s.alertRepo.Create(ctx, alert); err != nil {
		return nil, err
	}

	// Publish failure does not roll back the alert row: the record is the
	// source of truth and operators can replay delivery.
	if _, err := s.publisher.Publish(ctx, queue.StreamAlerts,
		queue.NewAlertRaisedEvent(alert.ID, userID, alert.Longitude, alert.Latitude)); err != nil {
		log.Printf("[AlertService] Raise: publish failed alert=%d err=%v", alert.ID, err)
	}

	return alert, nil
}

// History returns the user's recent alerts.
func (s *AlertService) History(ctx context.Context, userID int64, limit int) ([]model.Alert, error) {
	if limit <= 0 || limit > 50 {
		limit = 20
	}
	return s.alertRepo.GetRecentByUser(ctx, userID, limit)
}
