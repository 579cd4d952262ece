package worker

import (
	"context"
	"fmt"
	"log"
	"time"

	"alertaya/internal/cache"
	"alertaya/internal/queue"
	"alertaya/internal/service"
)

// ContactProvider fetches the user IDs registered as someone's emergency
// contacts. Abstracts the repository layer so workers don't depend on the
// DB directly.
type ContactProvider interface {
	GetContactUserIDs(ctx context.Context, ownerID int64) ([]int64, error)
}

// CoSubscriberProvider fetches users sharing an entity subscription.
type CoSubscriberProvider interface {
	GetCoSubscriberIDs(ctx context.Context, userID int64) ([]int64, error)
}

// TokenProvider fetches device tokens for a set of users and removes tokens
// FCM has declared dead.
type TokenProvider interface {
	GetTokensForUsers(ctx context.Context, userIDs []int64) ([]string, error)
	Delete(ctx context.Context, token string) error
}

// NameProvider resolves the alerting user's display name for the
// notification body.
type NameProvider interface {
	GetUserName(ctx context.Context, userID int64) (string, error)
}

// Handler processes alert events from the queue: resolves the recipient
// set (cache-first), loads their device tokens, and pushes one multicast.
type Handler struct {
	recipients  cache.RecipientCache
	contacts    ContactProvider
	subscribers CoSubscriberProvider
	tokens      TokenProvider
	names       NameProvider // Can be nil; falls back to a generic body
	push        service.PushSender
}

// NewHandler creates a new event handler.
func NewHandler(
	recipients cache.RecipientCache,
	contacts ContactProvider,
	subscribers CoSubscriberProvider,
	tokens TokenProvider,
	push service.PushSender,
) *Handler {
	return &Handler{
		recipients:  recipients,
		contacts:    contacts,
		subscribers: subscribers,
		tokens:      tokens,
		push:        push,
	}
}

// SetNameProvider sets the optional user-name resolver.
func (h *Handler) SetNameProvider(np NameProvider) {
	h.names = np
}

// HandleEvent routes an event to the appropriate handler based on type.
func (h *Handler) HandleEvent(ctx context.Context, event queue.AlertEvent) error {
	startTime := time.Now()
	var err error

	switch event.Type {
	case queue.EventAlertRaised:
		err = h.handleAlertRaised(ctx, event)
	case queue.EventRecipientsChanged:
		err = h.handleRecipientsChanged(ctx, event)
	default:
		log.Printf("[Worker] Unknown event type: %s", event.Type)
		return fmt.Errorf("unknown event type: %s", event.Type)
	}

	if err != nil {
		log.Printf("[Worker] HandleEvent FAILED: type=%s duration=%v err=%v",
			event.Type, time.Since(startTime), err)
		return err
	}

	log.Printf("[Worker] HandleEvent OK: type=%s duration=%v", event.Type, time.Since(startTime))
	return nil
}

// handleAlertRaised pushes the alert to every recipient device.
func (h *Handler) handleAlertRaised(ctx context.Context, event queue.AlertEvent) error {
	log.Printf("[Worker] AlertRaised: alert=%d user=%d", event.AlertID, event.UserID)

	recipientIDs, err := h.resolveRecipients(ctx, event.UserID)
	if err != nil {
		return fmt.Errorf("resolve recipients: %w", err)
	}
	if len(recipientIDs) == 0 {
		log.Printf("[Worker] AlertRaised: alert=%d has no recipients", event.AlertID)
		return nil
	}

	tokens, err := h.tokens.GetTokensForUsers(ctx, recipientIDs)
	if err != nil {
		return fmt.Errorf("get device tokens: %w", err)
	}
	if len(tokens) == 0 {
		log.Printf("[Worker] AlertRaised: alert=%d recipients have no devices", event.AlertID)
		return nil
	}

	title := "Panic alert"
	body := "A member of your network needs help"
	if h.names != nil {
		if name, err := h.names.GetUserName(ctx, event.UserID); err == nil && name != "" {
			body = fmt.Sprintf("%s needs help", name)
		}
	}

	data := map[string]string{
		"type":      "panic_alert",
		"alertId":   fmt.Sprintf("%d", event.AlertID),
		"userId":    fmt.Sprintf("%d", event.UserID),
		"longitude": event.Longitude,
		"latitude":  event.Latitude,
	}

	log.Printf("[Worker] AlertRaised: fanning out alert=%d to %d tokens", event.AlertID, len(tokens))
	invalid, err := h.push.SendToTokens(ctx, tokens, title, body, data)
	if err != nil {
		return err
	}

	// Purge tokens FCM reported as unregistered so the next fan-out
	// doesn't waste sends on dead devices.
	for _, token := range invalid {
		if err := h.tokens.Delete(ctx, token); err != nil {
			log.Printf("[Worker] AlertRaised: purge dead token failed err=%v", err)
		}
	}
	return nil
}

// handleRecipientsChanged drops the cached recipient set for the user so
// the next alert rebuilds it from the repositories.
func (h *Handler) handleRecipientsChanged(ctx context.Context, event queue.AlertEvent) error {
	log.Printf("[Worker] RecipientsChanged: user=%d", event.UserID)
	return h.recipients.Invalidate(ctx, event.UserID)
}

// resolveRecipients returns the union of emergency contacts and entity
// co-subscribers, cache-first.
func (h *Handler) resolveRecipients(ctx context.Context, userID int64) ([]int64, error) {
	if cached, found, err := h.recipients.Get(ctx, userID); err == nil && found {
		return cached, nil
	} else if err != nil {
		// Cache trouble degrades to a repository read
		log.Printf("[Worker] resolveRecipients: cache read failed user=%d err=%v", userID, err)
	}

	contactIDs, err := h.contacts.GetContactUserIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	subscriberIDs, err := h.subscribers.GetCoSubscriberIDs(ctx, userID)
	if err != nil {
		return nil, err
	}

	seen := make(map[int64]bool, len(contactIDs)+len(subscriberIDs))
	merged := make([]int64, 0, len(contactIDs)+len(subscriberIDs))
	for _, id := range contactIDs {
		if !seen[id] {
			seen[id] = true
			merged = append(merged, id)
		}
	}
	for _, id := range subscriberIDs {
		if !seen[id] {
			seen[id] = true
			merged = append(merged, id)
		}
	}

	if err := h.recipients.Put(ctx, userID, merged); err != nil {
		log.Printf("[Worker] resolveRecipients: cache write failed user=%d err=%v", userID, err)
	}

	return merged, nil
}
