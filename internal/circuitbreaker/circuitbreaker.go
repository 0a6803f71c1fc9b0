// Package circuitbreaker wraps sony/gobreaker with application defaults.
package circuitbreaker

import (
	"time"

	"github.com/sony/gobreaker/v2"
)

const (
	defaultMaxRequests = 3
	defaultInterval    = 60 * time.Second
	defaultTimeout     = 30 * time.Second
	defaultFailures    = 5
)

// DefaultConfig returns breaker settings suitable for exchange API calls:
// the breaker opens after a run of consecutive failures and probes again
// after the timeout.
func DefaultConfig(name string) gobreaker.Settings {
	return gobreaker.Settings{
		Name:        name,
		MaxRequests: defaultMaxRequests,
		Interval:    defaultInterval,
		Timeout:     defaultTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= defaultFailures
		},
	}
}

// New creates a typed circuit breaker from settings.
func New[T any](settings gobreaker.Settings) *gobreaker.CircuitBreaker[T] {
	return gobreaker.NewCircuitBreaker[T](settings)
}

// IsOpen reports whether err was returned because the breaker refused the call.
func IsOpen(err error) bool {
	return err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests
}
