// Package dispatch implements the panic-alert core: a small state machine
// that turns one user trigger into at most one outbound alert submission,
// with a fixed cooldown before the next trigger is accepted.
package dispatch

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"alertaya/internal/agent/gateway"
	"alertaya/internal/agent/location"
	"alertaya/internal/model"
)

// State of the dispatcher.
type State int

const (
	// StateIdle accepts a trigger.
	StateIdle State = iota
	// StateArming is entered on trigger; location acquisition is in
	// progress and further triggers are ignored.
	StateArming
	// StateSending means the alert POST is in flight.
	StateSending
	// StateCooldown holds after any outcome before returning to Idle.
	StateCooldown
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateArming:
		return "arming"
	case StateSending:
		return "sending"
	case StateCooldown:
		return "cooldown"
	default:
		return "unknown"
	}
}

// DefaultCooldown is held after every outcome, success or failure.
const DefaultCooldown = 3 * time.Second

// AlertSubmitter posts one alert to the backend.
type AlertSubmitter interface {
	SubmitAlert(ctx context.Context, coords model.Coordinates) error
}

// Feedback receives UI-facing signals: a haptic pulse when a trigger is
// accepted, and the start/stop of the visual pulse that spans Sending and
// Cooldown. All methods may be nil-safe no-ops.
type Feedback interface {
	HapticPulse()
	PulseStart()
	PulseStop()
}

// noopFeedback is used when no feedback sink is configured.
type noopFeedback struct{}

func (noopFeedback) HapticPulse() {}
func (noopFeedback) PulseStart()  {}
func (noopFeedback) PulseStop()   {}

// Result describes the outcome of one accepted trigger.
type Result struct {
	Coordinates model.Coordinates // Zero when location failed
	Err         error             // nil on success
}

// Dispatcher serializes panic triggers through the
// Idle → Arming → Sending → Cooldown cycle. A single dispatcher never has
// two submissions in flight. Failures are reported through the result
// callback and never stop the machine from cycling back to Idle.
type Dispatcher struct {
	locations location.Provider
	submitter AlertSubmitter
	feedback  Feedback
	cooldown  time.Duration
	onResult  func(Result)

	mu    sync.Mutex
	state State
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithCooldown overrides the post-outcome hold duration.
func WithCooldown(d time.Duration) Option {
	return func(dp *Dispatcher) {
		if d > 0 {
			dp.cooldown = d
		}
	}
}

// WithFeedback wires the haptic/visual feedback sink.
func WithFeedback(f Feedback) Option {
	return func(dp *Dispatcher) {
		if f != nil {
			dp.feedback = f
		}
	}
}

// WithResultCallback wires the per-trigger outcome callback. It is invoked
// after the submission attempt, before the cooldown expires.
func WithResultCallback(fn func(Result)) Option {
	return func(dp *Dispatcher) {
		dp.onResult = fn
	}
}

// New creates an idle dispatcher.
func New(locations location.Provider, submitter AlertSubmitter, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		locations: locations,
		submitter: submitter,
		feedback:  noopFeedback{},
		cooldown:  DefaultCooldown,
		state:     StateIdle,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// State returns the current machine state.
func (d *Dispatcher) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// Trigger fires one panic alert. Accepted only in Idle; in any other state
// the call is a no-op and returns false. The accepted trigger runs
// asynchronously: location, submission, and cooldown happen on a background
// goroutine, and the outcome arrives via the result callback.
func (d *Dispatcher) Trigger(ctx context.Context) bool {
	d.mu.Lock()
	if d.state != StateIdle {
		d.mu.Unlock()
		return false
	}
	d.state = StateArming
	d.mu.Unlock()

	d.feedback.HapticPulse()
	d.feedback.PulseStart()

	go d.run(ctx)
	return true
}

// run drives one accepted trigger to completion.
func (d *Dispatcher) run(ctx context.Context) {
	result := d.fire(ctx)

	if result.Err != nil {
		log.Printf("[Dispatch] Alert failed: %v", result.Err)
	} else {
		log.Printf("[Dispatch] Alert submitted: [%s, %s]",
			result.Coordinates.Longitude(), result.Coordinates.Latitude())
	}

	if d.onResult != nil {
		d.onResult(result)
	}

	// Every outcome pays the cooldown before the next trigger is accepted.
	d.setState(StateCooldown)
	time.Sleep(d.cooldown)

	d.feedback.PulseStop()
	d.setState(StateIdle)
}

// fire acquires location and submits the alert. A location failure aborts
// before any network call.
func (d *Dispatcher) fire(ctx context.Context) Result {
	coords, err := d.locations.Current(ctx)
	if err != nil {
		if !errors.Is(err, location.ErrPermissionDenied) && !errors.Is(err, location.ErrLocationUnavailable) {
			err = location.ErrLocationUnavailable
		}
		return Result{Err: err}
	}

	d.setState(StateSending)

	if err := d.submitter.SubmitAlert(ctx, coords); err != nil {
		return Result{Coordinates: coords, Err: err}
	}
	return Result{Coordinates: coords}
}

func (d *Dispatcher) setState(s State) {
	d.mu.Lock()
	d.state = s
	d.mu.Unlock()
}

// ErrString renders a dispatcher error as a user-facing message key.
func ErrString(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, location.ErrPermissionDenied):
		return "location permission denied"
	case errors.Is(err, location.ErrLocationUnavailable):
		return "could not get your location"
	case errors.Is(err, gateway.ErrUnauthenticated):
		return "session expired, please log in again"
	default:
		return "could not send the alert"
	}
}
