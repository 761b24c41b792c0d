// Package resilience wraps calls to remote dependencies with retry and
// circuit breaking.
package resilience

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"time"

	"github.com/sony/gobreaker"
)

// Config holds retry parameters.
type Config struct {
	MaxRetries     int
	InitialBackoff time.Duration
}

// StartupRetry is used when dialing backing stores at boot.
var StartupRetry = Config{MaxRetries: 3, InitialBackoff: 500 * time.Millisecond}

// RetryWithBackoff executes fn with exponential backoff and jitter.
// Open-breaker errors are returned immediately.
func RetryWithBackoff(ctx context.Context, cfg Config, fn func() error) error {
	var lastErr error
	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = fn()
		if lastErr == nil || IsOpen(lastErr) {
			return lastErr
		}

		if attempt < cfg.MaxRetries && cfg.InitialBackoff > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt))) * cfg.InitialBackoff
			wait := backoff
			if half := int64(backoff / 2); half > 0 {
				wait += time.Duration(rand.Int63n(half))
			}

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
		}
	}
	return lastErr
}

// NewCircuitBreaker creates a breaker that trips when at least 60% of five or
// more requests in a 30s window fail.
func NewCircuitBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Interval:    30 * time.Second,
		Timeout:     10 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests == 0 {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 5 && failureRatio >= 0.6
		},
	})
}

// IsOpen reports whether err was returned by a breaker refusing the call
func IsOpen(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}
