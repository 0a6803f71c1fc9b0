// Package ratelimit paces outbound exchange requests with a token bucket,
// keeping the pollers inside each venue's published request-per-minute
// budget.
package ratelimit

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Limiter is a token bucket sized from a per-minute request budget.
type Limiter struct {
	bucket *rate.Limiter
	budget int
}

// New builds a limiter from the venue's requests-per-minute allowance. A
// small burst lets a tick's fetches go out together without breaching the
// minute budget.
func New(requestsPerMinute int) *Limiter {
	interval := time.Minute / time.Duration(requestsPerMinute)
	burst := requestsPerMinute / 10
	if burst < 1 {
		burst = 1
	}

	return &Limiter{
		bucket: rate.NewLimiter(rate.Every(interval), burst),
		budget: requestsPerMinute,
	}
}

// Wait blocks until the bucket has a token or ctx is done.
func (l *Limiter) Wait(ctx context.Context) error {
	return l.bucket.Wait(ctx)
}

// Allow reports whether a request may go out right now without waiting.
func (l *Limiter) Allow() bool {
	return l.bucket.Allow()
}

// Budget returns the per-minute allowance the limiter was built with.
func (l *Limiter) Budget() int {
	return l.budget
}
