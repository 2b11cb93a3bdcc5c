package transport

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/angeloszaimis/circuit-breaker/internal/circuitbreaker"
	"github.com/angeloszaimis/circuit-breaker/internal/metrics"
)

// upstreamStatusError marks a 5xx response as a breaker failure while
// the response itself still reaches the caller.
type upstreamStatusError struct {
	status int
}

func (e *upstreamStatusError) Error() string {
	return fmt.Sprintf("upstream returned status %d", e.status)
}

// GuardedTransport is an http.RoundTripper that runs every request
// through a circuit breaker keyed by the upstream host. Transport
// errors and 5xx responses count as failures; an open breaker rejects
// the request with ErrCircuitOpen before any network I/O happens.
type GuardedTransport struct {
	registry  *circuitbreaker.Registry
	base      http.RoundTripper
	collector *metrics.Collector
	logger    *slog.Logger
}

// New creates a guarded transport around base. A nil base falls back
// to http.DefaultTransport. The collector is optional; when present it
// receives one event per call outcome.
func New(registry *circuitbreaker.Registry, base http.RoundTripper, collector *metrics.Collector, logger *slog.Logger) *GuardedTransport {
	if base == nil {
		base = http.DefaultTransport
	}

	return &GuardedTransport{
		registry:  registry,
		base:      base,
		collector: collector,
		logger:    logger,
	}
}

func (t *GuardedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	name := req.URL.Host
	cb := t.registry.GetBreaker(name)

	resp, err := circuitbreaker.Run(req.Context(), cb, func(context.Context) (*http.Response, error) {
		resp, err := t.base.RoundTrip(req)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= http.StatusInternalServerError {
			return resp, &upstreamStatusError{status: resp.StatusCode}
		}
		return resp, nil
	})

	switch {
	case err == nil:
		t.emit(name, metrics.EventCallSucceeded)
		return resp, nil

	case circuitbreaker.IsCircuitOpen(err):
		t.emit(name, metrics.EventCallRejected)
		t.logger.Warn("Request rejected by open circuit breaker",
			slog.String("upstream", name),
			slog.String("method", req.Method),
			slog.String("path", req.URL.Path))
		return nil, err

	default:
		t.emit(name, metrics.EventCallFailed)

		var statusErr *upstreamStatusError
		if errors.As(err, &statusErr) {
			// The failure is recorded, but the 5xx response itself
			// belongs to the caller.
			return resp, nil
		}
		return nil, err
	}
}

func (t *GuardedTransport) emit(breaker string, eventType metrics.EventType) {
	if t.collector == nil {
		return
	}

	t.collector.Emit(metrics.BreakerEvent{
		Type:      eventType,
		Timestamp: time.Now(),
		Breaker:   breaker,
	})
}
