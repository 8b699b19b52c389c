// Package retry provides an explicit retry driver for bounded attempt
// loops with pluggable backoff, used by both the Wikipedia fetch and
// the quiz generation pipeline.
package retry

import (
	"context"
	"time"
)

// BackoffFunc returns how long to wait after a failed attempt.
// attempt is zero-based.
type BackoffFunc func(attempt int) time.Duration

// NoBackoff retries immediately. Used for transport-level fetch retries.
func NoBackoff(int) time.Duration { return 0 }

// ExponentialBackoff waits 2^attempt seconds: 1s, 2s, 4s, ...
func ExponentialBackoff(attempt int) time.Duration {
	return time.Duration(1<<uint(attempt)) * time.Second
}

// SleepFunc suspends the current attempt loop. Injectable so tests can
// drive the driver with a fake clock.
type SleepFunc func(ctx context.Context, d time.Duration) error

// sleep is the default SleepFunc. It honors context cancellation.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Driver runs an operation up to MaxAttempts times. After every failed
// attempt except the last it waits Backoff(attempt) using Sleep. The
// per-request state machine is Init -> Attempting(n) -> {Success |
// Attempting(n+1) after backoff | Exhausted}.
type Driver struct {
	MaxAttempts int
	Backoff     BackoffFunc
	Sleep       SleepFunc

	// Retryable decides whether an error is worth another attempt.
	// A nil Retryable treats every error as retryable.
	Retryable func(error) bool
}

// NewDriver returns a Driver with the default real-clock sleep.
func NewDriver(maxAttempts int, backoff BackoffFunc) *Driver {
	return &Driver{
		MaxAttempts: maxAttempts,
		Backoff:     backoff,
		Sleep:       sleep,
	}
}

// Do runs op until it succeeds, a non-retryable error occurs, the
// context is cancelled, or the attempts are exhausted. It returns the
// last observed error together with the number of attempts made.
func (d *Driver) Do(ctx context.Context, op func(ctx context.Context, attempt int) error) (int, error) {
	sleepFn := d.Sleep
	if sleepFn == nil {
		sleepFn = sleep
	}

	var lastErr error
	for attempt := 0; attempt < d.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			if lastErr != nil {
				return attempt, lastErr
			}
			return attempt, err
		}

		lastErr = op(ctx, attempt)
		if lastErr == nil {
			return attempt + 1, nil
		}
		if d.Retryable != nil && !d.Retryable(lastErr) {
			return attempt + 1, lastErr
		}
		if attempt == d.MaxAttempts-1 {
			break
		}
		if err := sleepFn(ctx, d.Backoff(attempt)); err != nil {
			return attempt + 1, lastErr
		}
	}
	return d.MaxAttempts, lastErr
}
