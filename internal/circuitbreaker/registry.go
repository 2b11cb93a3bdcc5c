package circuitbreaker

import (
	"sync"
	"time"
)

// TransitionSink receives name-tagged transitions from every breaker
// created by a Registry.
type TransitionSink func(name string, t Transition)

// Registry owns one breaker per named downstream resource. All
// breakers share the registry's threshold, cool-down and clock.
type Registry struct {
	mutex    sync.RWMutex
	breakers map[string]*CircuitBreaker

	threshold int
	coolDown  time.Duration
	clock     Clock
	sink      TransitionSink
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithTransitionSink registers a callback invoked for every state
// transition of every breaker in the registry, tagged with the
// breaker's name. The same observer caveats apply: it runs under the
// breaker's lock and must not call back into that breaker.
func WithTransitionSink(sink TransitionSink) RegistryOption {
	return func(r *Registry) {
		r.sink = sink
	}
}

// NewRegistry creates an empty registry. Breakers are created lazily
// by GetBreaker.
func NewRegistry(threshold int, coolDown time.Duration, clock Clock, opts ...RegistryOption) *Registry {
	r := &Registry{
		breakers:  make(map[string]*CircuitBreaker),
		threshold: threshold,
		coolDown:  coolDown,
		clock:     clock,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// GetBreaker returns the breaker for name, creating it on first use.
func (r *Registry) GetBreaker(name string) *CircuitBreaker {
	r.mutex.RLock()
	cb, exists := r.breakers[name]
	r.mutex.RUnlock()

	if exists {
		return cb
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	// Double-check: another goroutine may have created it
	if cb, exists = r.breakers[name]; exists {
		return cb
	}

	opts := make([]Option, 0, 1)
	if r.sink != nil {
		sink := r.sink
		opts = append(opts, WithObserver(func(t Transition) {
			sink(name, t)
		}))
	}

	cb = NewCircuitBreaker(r.threshold, r.coolDown, r.clock, opts...)
	r.breakers[name] = cb
	return cb
}

// Names returns the names of all breakers created so far.
func (r *Registry) Names() []string {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	names := make([]string, 0, len(r.breakers))
	for name := range r.breakers {
		names = append(names, name)
	}
	return names
}

// BreakerStats is a point-in-time view of a single breaker.
type BreakerStats struct {
	State               string    `json:"state"`
	ConsecutiveFailures int       `json:"consecutive_failures"`
	LastFailure         time.Time `json:"last_failure,omitzero"`
}

// Stats returns a snapshot of every breaker in the registry.
func (r *Registry) Stats() map[string]BreakerStats {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	stats := make(map[string]BreakerStats, len(r.breakers))
	for name, cb := range r.breakers {
		stats[name] = BreakerStats{
			State:               cb.State().String(),
			ConsecutiveFailures: cb.FailureCount(),
			LastFailure:         cb.LastFailureTime(),
		}
	}
	return stats
}

// Reset forces every known breaker back to closed. Breaker instances
// are kept so callers holding a reference keep observing the same
// breaker after the reset.
func (r *Registry) Reset() {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	for _, cb := range r.breakers {
		cb.Reset()
	}
}
