// Package transport integrates circuit breakers into HTTP clients.
//
// GuardedTransport decorates an http.RoundTripper so that every
// upstream host gets its own breaker from a shared registry. Requests
// to a host whose breaker is open fail immediately with
// circuitbreaker.ErrCircuitOpen, before any connection is attempted.
//
// Example usage:
//
//	registry := circuitbreaker.NewRegistry(5, 30*time.Second, circuitbreaker.SystemClock())
//	client := &http.Client{
//		Transport: transport.New(registry, nil, collector, logger),
//	}
//
// Network errors and 5xx responses count as breaker failures. A 5xx
// response is still returned to the caller; only the breaker's view of
// the upstream changes.
package transport
