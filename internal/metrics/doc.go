// Package metrics provides real-time metrics collection for circuit breakers.
//
// It uses a channel-based event pipeline to asynchronously collect, per breaker:
//   - Successful and failed call counts
//   - Fast-fail rejection counts
//   - State transitions with the most recent state and its timestamp
//
// The collector runs in a dedicated goroutine and processes events without
// blocking the call path. Events are emitted with non-blocking semantics so a
// full buffer drops the event instead of stalling a caller that may be holding
// a breaker lock.
//
// Example usage:
//
//	collector := metrics.NewCollector(1000, logger)
//	collector.Start(ctx)
//
//	// Emit events from breaker observers and call sites
//	collector.Emit(metrics.BreakerEvent{
//		Type:      metrics.EventStateChanged,
//		Breaker:   "payments",
//		From:      "CLOSED",
//		To:        "OPEN",
//		Timestamp: time.Now(),
//	})
//
//	// Get metrics snapshot
//	snapshot := collector.Snapshot()
//
// The package provides thread-safe metrics storage using sync.RWMutex and
// supports graceful shutdown with event draining to prevent data loss.
package metrics
