// Package circuitbreaker guards calls to failing downstream resources.
//
// A circuit breaker prevents cascading failures by rejecting calls to
// a dependency that keeps erroring, instead of piling more load on it.
// It has three states:
//
//   - CLOSED: Normal operation, calls pass through
//   - OPEN: Dependency failing, calls rejected with ErrCircuitOpen
//   - HALF-OPEN: One probe call tests whether the dependency recovered
//
// Usage:
//
//	cb := circuitbreaker.NewCircuitBreaker(5, 30*time.Second, circuitbreaker.SystemClock())
//
//	err := cb.Execute(ctx, func(ctx context.Context) error {
//	    return client.Call(ctx)
//	})
//	if circuitbreaker.IsCircuitOpen(err) {
//	    // Breaker rejected the call, back off and retry later.
//	}
//
// Operations returning a value go through the generic Run helper, and
// a Registry hands out one shared breaker per named resource:
//
//	registry := circuitbreaker.NewRegistry(5, 30*time.Second, circuitbreaker.SystemClock())
//	cb := registry.GetBreaker("http://localhost:8081")
//	user, err := circuitbreaker.Run(ctx, cb, fetchUser)
package circuitbreaker
