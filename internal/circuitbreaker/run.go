package circuitbreaker

import "context"

// Run executes operation under cb and returns its typed result.
// It is a convenience wrapper for operations that produce a value:
// the breaker itself only sees the error channel.
func Run[T any](ctx context.Context, cb *CircuitBreaker, operation func(context.Context) (T, error)) (T, error) {
	var result T

	err := cb.Execute(ctx, func(ctx context.Context) error {
		var opErr error
		result, opErr = operation(ctx)
		return opErr
	})

	return result, err
}

// RunWithFallback behaves like Run, except that a breaker rejection is
// answered by the fallback instead of ErrCircuitOpen. The operation's
// own failures are still propagated unchanged; only the "do not call
// right now" case is substituted.
func RunWithFallback[T any](ctx context.Context, cb *CircuitBreaker, operation, fallback func(context.Context) (T, error)) (T, error) {
	result, err := Run(ctx, cb, operation)
	if IsCircuitOpen(err) {
		return fallback(ctx)
	}
	return result, err
}
