package dispatch

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"alertaya/internal/agent/location"
	"alertaya/internal/model"
)

// =============================================================================
// MOCKS
// =============================================================================

type mockSubmitter struct {
	mu       sync.Mutex
	calls    []model.Coordinates
	submitFn func(ctx context.Context, coords model.Coordinates) error
}

func (m *mockSubmitter) SubmitAlert(ctx context.Context, coords model.Coordinates) error {
	m.mu.Lock()
	m.calls = append(m.calls, coords)
	m.mu.Unlock()
	if m.submitFn != nil {
		return m.submitFn(ctx, coords)
	}
	return nil
}

func (m *mockSubmitter) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

func fixedLocation(lon, lat float64) location.Provider {
	return location.Func(func(ctx context.Context) (model.Coordinates, error) {
		return location.Format(lon, lat), nil
	})
}

func failingLocation(err error) location.Provider {
	return location.Func(func(ctx context.Context) (model.Coordinates, error) {
		return model.Coordinates{}, err
	})
}

// collectResults returns a callback option plus a channel of outcomes.
func collectResults() (Option, chan Result) {
	ch := make(chan Result, 16)
	return WithResultCallback(func(r Result) { ch <- r }), ch
}

func waitForIdle(t *testing.T, d *Dispatcher, within time.Duration) {
	t.Helper()
	deadline := time.Now().Add(within)
	for time.Now().Before(deadline) {
		if d.State() == StateIdle {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("dispatcher did not return to idle within %v (state=%s)", within, d.State())
}

// =============================================================================
// TRIGGER TESTS
// =============================================================================

func TestDispatcher_RapidTriggers_SingleSubmission(t *testing.T) {
	// Hold the submission open so every extra trigger lands mid-flight.
	release := make(chan struct{})
	submitter := &mockSubmitter{
		submitFn: func(ctx context.Context, coords model.Coordinates) error {
			<-release
			return nil
		},
	}

	onResult, results := collectResults()
	d := New(fixedLocation(-84.5, 10.0), submitter,
		WithCooldown(20*time.Millisecond), onResult)

	if !d.Trigger(context.Background()) {
		t.Fatal("first trigger should be accepted")
	}

	// Hammer the dispatcher while the first submission is in flight.
	for i := 0; i < 50; i++ {
		if d.Trigger(context.Background()) {
			t.Fatal("trigger accepted while another alert was in flight")
		}
	}
	close(release)

	<-results
	waitForIdle(t, d, time.Second)

	if got := submitter.callCount(); got != 1 {
		t.Errorf("submissions = %d, want 1", got)
	}
}

func TestDispatcher_PermissionDenied_NoNetworkCall(t *testing.T) {
	submitter := &mockSubmitter{}
	onResult, results := collectResults()
	d := New(failingLocation(location.ErrPermissionDenied), submitter,
		WithCooldown(10*time.Millisecond), onResult)

	if !d.Trigger(context.Background()) {
		t.Fatal("trigger should be accepted from idle")
	}

	result := <-results
	if !errors.Is(result.Err, location.ErrPermissionDenied) {
		t.Errorf("err = %v, want ErrPermissionDenied", result.Err)
	}
	if got := submitter.callCount(); got != 0 {
		t.Errorf("submissions = %d, want 0 when permission is denied", got)
	}

	waitForIdle(t, d, time.Second)
}

func TestDispatcher_ReturnsToIdle_OnFailure(t *testing.T) {
	submitter := &mockSubmitter{
		submitFn: func(ctx context.Context, coords model.Coordinates) error {
			return errors.New("backend unreachable")
		},
	}
	onResult, results := collectResults()
	d := New(fixedLocation(-84.5, 10.0), submitter,
		WithCooldown(20*time.Millisecond), onResult)

	d.Trigger(context.Background())

	result := <-results
	if result.Err == nil {
		t.Fatal("expected a send error")
	}

	// Failure still pays the cooldown, then the machine is usable again.
	waitForIdle(t, d, time.Second)
	if !d.Trigger(context.Background()) {
		t.Error("trigger after cooldown should be accepted")
	}
}

func TestDispatcher_CoordinateOrdering(t *testing.T) {
	submitter := &mockSubmitter{}
	onResult, results := collectResults()
	d := New(fixedLocation(-84.5, 10.0), submitter,
		WithCooldown(10*time.Millisecond), onResult)

	d.Trigger(context.Background())
	<-results

	if got := submitter.callCount(); got != 1 {
		t.Fatalf("submissions = %d, want 1", got)
	}
	coords := submitter.calls[0]
	if coords[0] != "-84.5" || coords[1] != "10.0" {
		// Longitude must come first.
		t.Errorf("coordinates = [%s, %s], want [-84.5, 10.0]", coords[0], coords[1])
	}
}

func TestDispatcher_CooldownBlocksUntilExpiry(t *testing.T) {
	submitter := &mockSubmitter{}
	onResult, results := collectResults()
	d := New(fixedLocation(-79.0, 9.0), submitter,
		WithCooldown(80*time.Millisecond), onResult)

	d.Trigger(context.Background())
	<-results

	// The result callback fires before the cooldown expires: the machine
	// must still refuse triggers here.
	if d.Trigger(context.Background()) {
		t.Error("trigger accepted during cooldown")
	}

	waitForIdle(t, d, time.Second)
	if !d.Trigger(context.Background()) {
		t.Error("trigger after cooldown should be accepted")
	}
}

func TestDispatcher_FeedbackPulseSpansSendingAndCooldown(t *testing.T) {
	var haptic, start, stop atomic.Int32
	fb := &countingFeedback{haptic: &haptic, start: &start, stop: &stop}

	submitter := &mockSubmitter{}
	onResult, results := collectResults()
	d := New(fixedLocation(-79.0, 9.0), submitter,
		WithCooldown(10*time.Millisecond), WithFeedback(fb), onResult)

	d.Trigger(context.Background())
	<-results
	waitForIdle(t, d, time.Second)

	if haptic.Load() != 1 || start.Load() != 1 || stop.Load() != 1 {
		t.Errorf("feedback calls = haptic:%d start:%d stop:%d, want 1 each",
			haptic.Load(), start.Load(), stop.Load())
	}
}

type countingFeedback struct {
	haptic, start, stop *atomic.Int32
}

func (f *countingFeedback) HapticPulse() { f.haptic.Add(1) }
func (f *countingFeedback) PulseStart()  { f.start.Add(1) }
func (f *countingFeedback) PulseStop()   { f.stop.Add(1) }
