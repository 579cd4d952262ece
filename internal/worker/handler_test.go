package worker

import (
	"context"
	"testing"

	"alertaya/internal/queue"
)

// =============================================================================
// MOCKS
// =============================================================================

type mockRecipientCache struct {
	store       map[int64][]int64
	invalidated []int64
	puts        map[int64][]int64
}

func newMockRecipientCache() *mockRecipientCache {
	return &mockRecipientCache{
		store: make(map[int64][]int64),
		puts:  make(map[int64][]int64),
	}
}

func (m *mockRecipientCache) Get(ctx context.Context, userID int64) ([]int64, bool, error) {
	ids, found := m.store[userID]
	return ids, found, nil
}

func (m *mockRecipientCache) Put(ctx context.Context, userID int64, recipientIDs []int64) error {
	m.store[userID] = recipientIDs
	m.puts[userID] = recipientIDs
	return nil
}

func (m *mockRecipientCache) Invalidate(ctx context.Context, userID int64) error {
	delete(m.store, userID)
	m.invalidated = append(m.invalidated, userID)
	return nil
}

type mockContacts struct {
	ids map[int64][]int64
}

func (m *mockContacts) GetContactUserIDs(ctx context.Context, ownerID int64) ([]int64, error) {
	return m.ids[ownerID], nil
}

type mockSubscribers struct {
	ids map[int64][]int64
}

func (m *mockSubscribers) GetCoSubscriberIDs(ctx context.Context, userID int64) ([]int64, error) {
	return m.ids[userID], nil
}

type mockTokens struct {
	byUser map[int64][]string

	requested [][]int64
	deleted   []string
}

func (m *mockTokens) GetTokensForUsers(ctx context.Context, userIDs []int64) ([]string, error) {
	m.requested = append(m.requested, userIDs)
	var tokens []string
	for _, id := range userIDs {
		tokens = append(tokens, m.byUser[id]...)
	}
	return tokens, nil
}

func (m *mockTokens) Delete(ctx context.Context, token string) error {
	m.deleted = append(m.deleted, token)
	return nil
}

type pushCall struct {
	Tokens []string
	Title  string
	Body   string
	Data   map[string]string
}

type mockPush struct {
	calls   []pushCall
	invalid []string // tokens reported back as unregistered
}

func (m *mockPush) SendToTokens(ctx context.Context, tokens []string, title, body string, data map[string]string) ([]string, error) {
	m.calls = append(m.calls, pushCall{Tokens: tokens, Title: title, Body: body, Data: data})
	return m.invalid, nil
}

// =============================================================================
// ALERT FAN-OUT TESTS
// =============================================================================

func TestHandler_AlertRaised_FansOutToContactAndSubscriberUnion(t *testing.T) {
	cache := newMockRecipientCache()
	contacts := &mockContacts{ids: map[int64][]int64{7: {2, 3}}}
	subscribers := &mockSubscribers{ids: map[int64][]int64{7: {3, 4}}}
	tokens := &mockTokens{byUser: map[int64][]string{
		2: {"tok-2"},
		3: {"tok-3a", "tok-3b"},
		4: {"tok-4"},
	}}
	push := &mockPush{}

	h := NewHandler(cache, contacts, subscribers, tokens, push)

	event := queue.NewAlertRaisedEvent(100, 7, "-84.5", "10.0")
	if err := h.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("HandleEvent: %v", err)
	}

	// Recipient 3 appears in both sources; the union must dedupe it.
	if len(tokens.requested) != 1 {
		t.Fatalf("token lookups = %d, want 1", len(tokens.requested))
	}
	got := tokens.requested[0]
	want := []int64{2, 3, 4}
	if len(got) != len(want) {
		t.Fatalf("recipient ids = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("recipient ids = %v, want %v", got, want)
		}
	}

	if len(push.calls) != 1 {
		t.Fatalf("pushes = %d, want 1", len(push.calls))
	}
	call := push.calls[0]
	if len(call.Tokens) != 4 {
		t.Errorf("tokens = %v, want 4 device tokens", call.Tokens)
	}
	if call.Data["longitude"] != "-84.5" || call.Data["latitude"] != "10.0" {
		t.Errorf("payload coords = [%s, %s], want [-84.5, 10.0]",
			call.Data["longitude"], call.Data["latitude"])
	}
	if call.Data["type"] != "panic_alert" {
		t.Errorf("payload type = %q, want panic_alert", call.Data["type"])
	}

	// The resolved set is cached for the next alert.
	if _, found := cache.store[7]; !found {
		t.Error("recipient set was not cached")
	}
}

func TestHandler_AlertRaised_UsesCachedRecipients(t *testing.T) {
	cache := newMockRecipientCache()
	cache.store[7] = []int64{5}

	// Repositories would return something else; the cache must win.
	contacts := &mockContacts{ids: map[int64][]int64{7: {2}}}
	subscribers := &mockSubscribers{}
	tokens := &mockTokens{byUser: map[int64][]string{5: {"tok-5"}}}
	push := &mockPush{}

	h := NewHandler(cache, contacts, subscribers, tokens, push)

	if err := h.HandleEvent(context.Background(), queue.NewAlertRaisedEvent(100, 7, "1", "2")); err != nil {
		t.Fatalf("HandleEvent: %v", err)
	}

	if len(tokens.requested) != 1 || len(tokens.requested[0]) != 1 || tokens.requested[0][0] != 5 {
		t.Errorf("recipient ids = %v, want [5] from cache", tokens.requested)
	}
}

func TestHandler_AlertRaised_NoRecipientsNoPush(t *testing.T) {
	h := NewHandler(newMockRecipientCache(), &mockContacts{}, &mockSubscribers{}, &mockTokens{}, &mockPush{})

	if err := h.HandleEvent(context.Background(), queue.NewAlertRaisedEvent(100, 7, "1", "2")); err != nil {
		t.Fatalf("HandleEvent: %v", err)
	}
}

func TestHandler_AlertRaised_NamedNotificationBody(t *testing.T) {
	cache := newMockRecipientCache()
	contacts := &mockContacts{ids: map[int64][]int64{7: {2}}}
	tokens := &mockTokens{byUser: map[int64][]string{2: {"tok-2"}}}
	push := &mockPush{}

	h := NewHandler(cache, contacts, &mockSubscribers{}, tokens, push)
	h.SetNameProvider(nameProviderFunc(func(ctx context.Context, userID int64) (string, error) {
		return "Maria", nil
	}))

	if err := h.HandleEvent(context.Background(), queue.NewAlertRaisedEvent(100, 7, "1", "2")); err != nil {
		t.Fatalf("HandleEvent: %v", err)
	}
	if len(push.calls) != 1 || push.calls[0].Body != "Maria needs help" {
		t.Errorf("body = %q, want the alerting user's name", push.calls[0].Body)
	}
}

func TestHandler_AlertRaised_PurgesUnregisteredTokens(t *testing.T) {
	cache := newMockRecipientCache()
	contacts := &mockContacts{ids: map[int64][]int64{7: {2, 3}}}
	tokens := &mockTokens{byUser: map[int64][]string{
		2: {"tok-2"},
		3: {"tok-3"},
	}}
	// FCM flags tok-2 as no longer registered.
	push := &mockPush{invalid: []string{"tok-2"}}

	h := NewHandler(cache, contacts, &mockSubscribers{}, tokens, push)

	if err := h.HandleEvent(context.Background(), queue.NewAlertRaisedEvent(100, 7, "1", "2")); err != nil {
		t.Fatalf("HandleEvent: %v", err)
	}

	if len(tokens.deleted) != 1 || tokens.deleted[0] != "tok-2" {
		t.Errorf("deleted = %v, want [tok-2]", tokens.deleted)
	}
}

type nameProviderFunc func(ctx context.Context, userID int64) (string, error)

func (f nameProviderFunc) GetUserName(ctx context.Context, userID int64) (string, error) {
	return f(ctx, userID)
}

// =============================================================================
// INVALIDATION TESTS
// =============================================================================

func TestHandler_RecipientsChanged_InvalidatesCache(t *testing.T) {
	cache := newMockRecipientCache()
	cache.store[7] = []int64{2, 3}

	h := NewHandler(cache, &mockContacts{}, &mockSubscribers{}, &mockTokens{}, &mockPush{})

	if err := h.HandleEvent(context.Background(), queue.NewRecipientsChangedEvent(7)); err != nil {
		t.Fatalf("HandleEvent: %v", err)
	}

	if len(cache.invalidated) != 1 || cache.invalidated[0] != 7 {
		t.Errorf("invalidated = %v, want [7]", cache.invalidated)
	}
	if _, found := cache.store[7]; found {
		t.Error("recipient set still cached after invalidation")
	}
}

func TestHandler_UnknownEventType_Errors(t *testing.T) {
	h := NewHandler(newMockRecipientCache(), &mockContacts{}, &mockSubscribers{}, &mockTokens{}, &mockPush{})

	err := h.HandleEvent(context.Background(), queue.AlertEvent{Type: "mystery"})
	if err == nil {
		t.Error("expected an error for an unknown event type")
	}
}
