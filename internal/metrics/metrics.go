package metrics

import (
	"sync"
	"time"
)

type Metrics struct {
	mutex           sync.RWMutex
	successes       map[string]int64
	failures        map[string]int64
	rejections      map[string]int64
	transitions     map[string]int64
	states          map[string]string
	lastTransitions map[string]time.Time
	startTime       time.Time
}

type Snapshot struct {
	Uptime          time.Duration             `json:"uptime"`
	TotalCalls      int64                     `json:"total_calls"`
	TotalRejections int64                     `json:"total_rejections"`
	Breakers        map[string]BreakerMetrics `json:"breakers"`
}

type BreakerMetrics struct {
	State          string    `json:"state"`
	Successes      int64     `json:"successes"`
	Failures       int64     `json:"failures"`
	Rejections     int64     `json:"rejections"`
	Transitions    int64     `json:"transitions"`
	LastTransition time.Time `json:"last_transition,omitzero"`
}

func NewMetrics() *Metrics {
	return &Metrics{
		successes:       make(map[string]int64),
		failures:        make(map[string]int64),
		rejections:      make(map[string]int64),
		transitions:     make(map[string]int64),
		states:          make(map[string]string),
		lastTransitions: make(map[string]time.Time),
		startTime:       time.Now(),
	}
}

func (m *Metrics) RecordSuccess(breaker string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.successes[breaker]++
}

func (m *Metrics) RecordFailure(breaker string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.failures[breaker]++
}

func (m *Metrics) RecordRejection(breaker string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.rejections[breaker]++
}

func (m *Metrics) RecordTransition(breaker, to string, at time.Time) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.transitions[breaker]++
	m.states[breaker] = to
	m.lastTransitions[breaker] = at
}

func (m *Metrics) Snapshot() Snapshot {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	snap := Snapshot{
		Uptime:   time.Since(m.startTime),
		Breakers: make(map[string]BreakerMetrics),
	}

	// Collect all breaker names across the counter maps
	allBreakers := make(map[string]bool)
	for breaker := range m.successes {
		allBreakers[breaker] = true
	}
	for breaker := range m.failures {
		allBreakers[breaker] = true
	}
	for breaker := range m.rejections {
		allBreakers[breaker] = true
	}
	for breaker := range m.states {
		allBreakers[breaker] = true
	}

	for breaker := range allBreakers {
		snap.TotalCalls += m.successes[breaker] + m.failures[breaker]
		snap.TotalRejections += m.rejections[breaker]

		state, known := m.states[breaker]
		if !known {
			// No transition seen yet: the breaker has never left closed.
			state = "CLOSED"
		}

		snap.Breakers[breaker] = BreakerMetrics{
			State:          state,
			Successes:      m.successes[breaker],
			Failures:       m.failures[breaker],
			Rejections:     m.rejections[breaker],
			Transitions:    m.transitions[breaker],
			LastTransition: m.lastTransitions[breaker],
		}
	}

	return snap
}
