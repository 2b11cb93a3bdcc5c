package circuitbreaker

import "time"

// Clock supplies the current time to a breaker. Injecting it lets
// tests advance the cool-down window without sleeping.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}

// SystemClock returns a Clock backed by the wall clock.
func SystemClock() Clock {
	return systemClock{}
}
