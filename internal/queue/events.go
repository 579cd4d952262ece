package queue

import (
	"encoding/json"
	"fmt"
	"time"
)

// Event types for the alert stream
const (
	EventAlertRaised       = "alert_raised"
	EventRecipientsChanged = "recipients_changed"
)

// Stream names
const (
	StreamAlerts = "stream:alerts"
)

// Consumer group name for alert workers
const (
	ConsumerGroupAlerts = "alert_workers"
)

// AlertEvent represents an event published to the alert stream.
type AlertEvent struct {
	Type      string `json:"type"`
	Timestamp int64  `json:"timestamp"` // Unix timestamp when event occurred

	// Alert event (AlertRaised)
	AlertID   int64  `json:"alert_id,omitempty"`
	UserID    int64  `json:"user_id,omitempty"`
	Longitude string `json:"longitude,omitempty"`
	Latitude  string `json:"latitude,omitempty"`
}

// NewAlertRaisedEvent creates an event for an accepted panic alert.
// Worker will resolve recipients and push the alert to their devices.
func NewAlertRaisedEvent(alertID, userID int64, longitude, latitude string) AlertEvent {
	return AlertEvent{
		Type:      EventAlertRaised,
		Timestamp: time.Now().Unix(),
		AlertID:   alertID,
		UserID:    userID,
		Longitude: longitude,
		Latitude:  latitude,
	}
}

// NewRecipientsChangedEvent creates an event for when a user's contact list
// or entity subscriptions change. Worker drops the cached recipient set.
func NewRecipientsChangedEvent(userID int64) AlertEvent {
	return AlertEvent{
		Type:      EventRecipientsChanged,
		Timestamp: time.Now().Unix(),
		UserID:    userID,
	}
}

// ToMap converts the event to a map for Redis XADD.
// Redis Streams store field-value pairs, so we serialize to JSON in a "data" field.
func (e AlertEvent) ToMap() (map[string]interface{}, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}
	return map[string]interface{}{
		"type": e.Type,
		"data": string(data),
	}, nil
}

// ParseAlertEvent parses an AlertEvent from Redis stream message values.
func ParseAlertEvent(values map[string]interface{}) (AlertEvent, error) {
	data, ok := values["data"].(string)
	if !ok {
		return AlertEvent{}, fmt.Errorf("missing or invalid 'data' field")
	}

	var event AlertEvent
	if err := json.Unmarshal([]byte(data), &event); err != nil {
		return AlertEvent{}, fmt.Errorf("unmarshal event: %w", err)
	}
	return event, nil
}
