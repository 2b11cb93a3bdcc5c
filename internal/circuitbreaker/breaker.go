package circuitbreaker

import (
	"context"
	"errors"
	"sync"
	"time"
)

type State int

const (
	StateClosed   State = iota // Normal operation
	StateOpen                  // Rejecting calls
	StateHalfOpen              // Probing with one call
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "CLOSED"
	case StateOpen:
		return "OPEN"
	case StateHalfOpen:
		return "HALF-OPEN"
	default:
		return "UNKNOWN"
	}
}

// ErrCircuitOpen is returned when the breaker rejects a call without
// attempting the operation. It is distinct from any error the wrapped
// operation returns: it means "the breaker is protecting you", not
// "the resource errored".
var ErrCircuitOpen = errors.New("circuit breaker is open")

// IsCircuitOpen reports whether err is a breaker rejection.
func IsCircuitOpen(err error) bool {
	return errors.Is(err, ErrCircuitOpen)
}

// Transition describes a single state change of a breaker.
type Transition struct {
	From State
	To   State
	At   time.Time
}

// ObserverFunc receives every state transition of a breaker. It is
// invoked synchronously while the breaker lock is held, so it must be
// fast and must not call back into the same breaker.
type ObserverFunc func(Transition)

// CircuitBreaker gates calls to a wrapped operation. It trips open
// after failureThreshold consecutive failures, rejects calls for the
// cool-down duration, then lets a single probe through to test
// recovery. Safe for concurrent use by multiple goroutines.
type CircuitBreaker struct {
	mutex         sync.Mutex
	state         State
	failures      int
	lastFailure   time.Time
	openedAt      time.Time
	probeInFlight bool

	failureThreshold int
	coolDown         time.Duration
	clock            Clock
	observer         ObserverFunc
}

// Option configures a CircuitBreaker beyond the required constructor
// arguments.
type Option func(*CircuitBreaker)

// WithObserver registers a callback invoked on every state transition.
func WithObserver(fn ObserverFunc) Option {
	return func(cb *CircuitBreaker) {
		cb.observer = fn
	}
}

// NewCircuitBreaker creates a breaker in the closed state.
// All three knobs are explicit: threshold must be positive, coolDown
// is how long the breaker stays open before a probe is allowed, and
// clock must not be nil (inject a manual clock in tests).
func NewCircuitBreaker(failureThreshold int, coolDown time.Duration, clock Clock, opts ...Option) *CircuitBreaker {
	cb := &CircuitBreaker{
		state:            StateClosed,
		failureThreshold: failureThreshold,
		coolDown:         coolDown,
		clock:            clock,
	}

	for _, opt := range opts {
		opt(cb)
	}

	return cb
}

// Execute runs operation under the breaker's current policy.
//
// Closed: the operation runs; a success resets the failure counter, a
// failure increments it and trips the breaker at the threshold. The
// operation's own error is always propagated unchanged.
//
// Open: returns ErrCircuitOpen without invoking the operation until
// the cool-down elapses, at which point the caller becomes the probe.
//
// Half-open: exactly one caller probes; everyone else gets
// ErrCircuitOpen until the probe resolves. A successful probe closes
// the breaker, a failed one reopens it with a fresh cool-down.
//
// The operation always runs outside the breaker's lock, so a slow
// downstream call never blocks other callers or state reads. The
// breaker does not impose a deadline; cancellation belongs to the
// caller via ctx.
func (cb *CircuitBreaker) Execute(ctx context.Context, operation func(context.Context) error) error {
	probe, err := cb.acquire()
	if err != nil {
		return err
	}

	opErr := operation(ctx)

	cb.record(probe, opErr)
	return opErr
}

// State returns the current state. Purely observational: reading the
// state never promotes an expired open breaker to half-open, only a
// call through Execute does.
func (cb *CircuitBreaker) State() State {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()
	return cb.state
}

// FailureCount returns the number of consecutive failures recorded
// since the last success.
func (cb *CircuitBreaker) FailureCount() int {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()
	return cb.failures
}

// LastFailureTime returns when the most recent failure was recorded,
// or the zero time if none has occurred.
func (cb *CircuitBreaker) LastFailureTime() time.Time {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()
	return cb.lastFailure
}

// Reset forces the breaker back to closed with counters cleared,
// regardless of current state. Intended for operator intervention and
// test teardown. An in-flight probe is not cancelled; it completes and
// records its outcome under the role it captured at entry.
func (cb *CircuitBreaker) Reset() {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()

	cb.failures = 0
	cb.openedAt = time.Time{}
	cb.transition(StateClosed)
}

// acquire decides, under the lock, whether the caller may proceed and
// whether it acts as the half-open probe.
func (cb *CircuitBreaker) acquire() (probe bool, err error) {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()

	switch cb.state {
	case StateClosed:
		return false, nil

	case StateOpen:
		if cb.clock.Now().Sub(cb.openedAt) < cb.coolDown {
			return false, ErrCircuitOpen
		}
		// Cool-down elapsed: this caller becomes the probe.
		cb.transition(StateHalfOpen)
		cb.probeInFlight = true
		return true, nil

	case StateHalfOpen:
		if cb.probeInFlight {
			return false, ErrCircuitOpen
		}
		cb.probeInFlight = true
		return true, nil

	default:
		return false, nil
	}
}

// record books the outcome of an admitted call. The probe claim is
// released here on every path, so a failed operation can never leave
// the breaker believing a probe is still out.
func (cb *CircuitBreaker) record(probe bool, opErr error) {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()

	if probe {
		cb.probeInFlight = false

		if opErr != nil {
			cb.lastFailure = cb.clock.Now()
			// Keep the counter at or above the threshold so an open
			// breaker always reflects enough consecutive failures.
			if cb.failures < cb.failureThreshold {
				cb.failures = cb.failureThreshold
			}
			cb.openedAt = cb.clock.Now()
			cb.transition(StateOpen)
			return
		}

		cb.failures = 0
		cb.openedAt = time.Time{}
		cb.transition(StateClosed)
		return
	}

	// Admitted under the closed state. A concurrent trip or Reset may
	// have moved the state since entry; a late outcome only records
	// its failure time and leaves the new state alone.
	if cb.state != StateClosed {
		if opErr != nil {
			cb.lastFailure = cb.clock.Now()
		}
		return
	}

	if opErr != nil {
		cb.failures++
		cb.lastFailure = cb.clock.Now()
		if cb.failures >= cb.failureThreshold {
			cb.openedAt = cb.clock.Now()
			cb.transition(StateOpen)
		}
		return
	}

	cb.failures = 0
}

// transition moves the breaker to a new state and notifies the
// observer. Callers must hold the lock. Same-state transitions are
// ignored so Reset on a closed breaker stays silent.
func (cb *CircuitBreaker) transition(to State) {
	if cb.state == to {
		return
	}

	from := cb.state
	cb.state = to

	if cb.observer != nil {
		cb.observer(Transition{From: from, To: to, At: cb.clock.Now()})
	}
}
