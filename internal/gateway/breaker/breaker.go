// Package breaker implements a per-backend circuit breaker.
//
// State machine: Closed -> Open when the failure rate over the current
// window breaches the threshold (with a minimum request volume);
// Open -> HalfOpen after the cooldown; HalfOpen -> Closed on a successful
// trial call, HalfOpen -> Open on a failed one. While Open, calls are
// rejected immediately with ErrOpen and the caller serves its fallback.
package breaker

import (
	"errors"
	"sync"
	"time"
)

// ErrOpen is returned by Do when the breaker rejects the call without
// executing it.
var ErrOpen = errors.New("circuit breaker is open")

type State int

const (
	StateClosed State = iota
	StateHalfOpen
	StateOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateHalfOpen:
		return "half_open"
	default:
		return "open"
	}
}

// Settings tunes a Breaker. Zero values fall back to the defaults below.
type Settings struct {
	// Window is the length of the failure-counting window.
	Window time.Duration
	// FailureThreshold is the failure rate (0..1] that trips the breaker.
	FailureThreshold float64
	// MinRequests is the minimum number of calls in the window before the
	// threshold is evaluated.
	MinRequests int
	// Cooldown is how long the breaker stays Open before probing.
	Cooldown time.Duration
	// OnStateChange, when set, is invoked (outside the lock) after every
	// transition.
	OnStateChange func(name string, from, to State)
}

const (
	defaultWindow           = 10 * time.Second
	defaultFailureThreshold = 0.5
	defaultMinRequests      = 5
	defaultCooldown         = 30 * time.Second
)

// Breaker guards calls to one logical backend. Safe for concurrent use.
type Breaker struct {
	name     string
	settings Settings
	now      func() time.Time

	mu          sync.Mutex
	state       State
	windowStart time.Time
	requests    int
	failures    int
	openedAt    time.Time
	trialActive bool
}

// New creates a Breaker named after its backend.
func New(name string, settings Settings) *Breaker {
	if settings.Window <= 0 {
		settings.Window = defaultWindow
	}
	if settings.FailureThreshold <= 0 || settings.FailureThreshold > 1 {
		settings.FailureThreshold = defaultFailureThreshold
	}
	if settings.MinRequests <= 0 {
		settings.MinRequests = defaultMinRequests
	}
	if settings.Cooldown <= 0 {
		settings.Cooldown = defaultCooldown
	}
	return &Breaker{
		name:     name,
		settings: settings,
		now:      time.Now,
	}
}

// Name returns the backend identity this breaker guards.
func (b *Breaker) Name() string { return b.name }

// State returns the current state.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Do executes call under the breaker. When the breaker is Open (or a
// half-open trial is already in flight) it returns ErrOpen without invoking
// call; otherwise it returns call's error after recording the outcome.
func (b *Breaker) Do(call func() error) error {
	trial, err := b.acquire()
	if err != nil {
		return err
	}

	callErr := call()
	b.record(trial, callErr == nil)
	return callErr
}

// acquire decides whether the next call may proceed and reports whether it
// is a half-open trial.
func (b *Breaker) acquire() (trial bool, err error) {
	b.mu.Lock()

	switch b.state {
	case StateOpen:
		if b.now().Sub(b.openedAt) < b.settings.Cooldown {
			b.mu.Unlock()
			return false, ErrOpen
		}
		from := b.state
		b.state = StateHalfOpen
		b.trialActive = true
		b.mu.Unlock()
		b.notify(from, StateHalfOpen)
		return true, nil

	case StateHalfOpen:
		if b.trialActive {
			b.mu.Unlock()
			return false, ErrOpen
		}
		b.trialActive = true
		b.mu.Unlock()
		return true, nil

	default: // StateClosed
		b.rollWindowLocked()
		b.requests++
		b.mu.Unlock()
		return false, nil
	}
}

func (b *Breaker) record(trial, success bool) {
	b.mu.Lock()

	if trial {
		b.trialActive = false
		from := b.state
		if success {
			b.state = StateClosed
			b.resetWindowLocked()
			b.mu.Unlock()
			b.notify(from, StateClosed)
		} else {
			b.state = StateOpen
			b.openedAt = b.now()
			b.mu.Unlock()
			b.notify(from, StateOpen)
		}
		return
	}

	if b.state != StateClosed {
		// The breaker tripped while this call was in flight; its outcome
		// already counted toward the trip decision.
		b.mu.Unlock()
		return
	}

	if !success {
		b.failures++
	}
	if b.requests >= b.settings.MinRequests &&
		float64(b.failures)/float64(b.requests) >= b.settings.FailureThreshold {
		from := b.state
		b.state = StateOpen
		b.openedAt = b.now()
		b.mu.Unlock()
		b.notify(from, StateOpen)
		return
	}
	b.mu.Unlock()
}

// rollWindowLocked starts a fresh counting window when the current one has
// elapsed. Must be called with the lock held.
func (b *Breaker) rollWindowLocked() {
	now := b.now()
	if b.windowStart.IsZero() || now.Sub(b.windowStart) >= b.settings.Window {
		b.windowStart = now
		b.requests = 0
		b.failures = 0
	}
}

func (b *Breaker) resetWindowLocked() {
	b.windowStart = b.now()
	b.requests = 0
	b.failures = 0
}

func (b *Breaker) notify(from, to State) {
	if from != to && b.settings.OnStateChange != nil {
		b.settings.OnStateChange(b.name, from, to)
	}
}
