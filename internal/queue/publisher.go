package queue

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// Publisher defines the interface for publishing events to a stream.
type Publisher interface {
	// Publish adds an event to the specified stream.
	// Returns the message ID assigned by Redis.
	Publish(ctx context.Context, stream string, event AlertEvent) (messageID string, err error)
}

// RedisPublisher implements Publisher using Redis Streams.
type RedisPublisher struct {
	client *redis.Client
}

// NewPublisher creates a new Publisher backed by Redis Streams.
func NewPublisher(client *redis.Client) Publisher {
	return &RedisPublisher{client: client}
}

// Publish adds an event to the stream using XADD.
// Uses "*" for auto-generated message ID (timestamp-sequence).
func (p *RedisPublisher) Publish(ctx context.Context, stream string, event AlertEvent) (string, error) {
	startTime := time.Now()

	values, err := event.ToMap()
	if err != nil {
		log.Printf("[Publisher] Publish FAILED: stream=%s type=%s err=%v", stream, event.Type, err)
		return "", fmt.Errorf("serialize event: %w", err)
	}

	messageID, err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		Values: values,
	}).Result()

	if err != nil {
		log.Printf("[Publisher] Publish FAILED: stream=%s type=%s err=%v", stream, event.Type, err)
		return "", fmt.Errorf("xadd to stream: %w", err)
	}

	log.Printf("[Publisher] Publish OK: stream=%s type=%s msgID=%s duration=%v",
		stream, event.Type, messageID, time.Since(startTime))

	if event.Type == EventAlertRaised {
		log.Printf("[Publisher]   -> alert=%d user=%d", event.AlertID, event.UserID)
	}

	return messageID, nil
}

// PublishAlertRaised is a convenience method for publishing alert raised events.
func (p *RedisPublisher) PublishAlertRaised(ctx context.Context, alertID, userID int64, longitude, latitude string) (string, error) {
	event := NewAlertRaisedEvent(alertID, userID, longitude, latitude)
	return p.Publish(ctx, StreamAlerts, event)
}

// PublishRecipientsChanged is a convenience method for publishing recipient
// set invalidation events.
func (p *RedisPublisher) PublishRecipientsChanged(ctx context.Context, userID int64) (string, error) {
	event := NewRecipientsChangedEvent(userID)
	return p.Publish(ctx, StreamAlerts, event)
}
