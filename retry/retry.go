package retry

import (
	"context"
	"time"
)

// Do executes fn with retry logic, respecting context cancellation during
// backoff waits. Only transient errors are retried. Returns the result on
// success, or the last error if all attempts fail.
func Do[T any](ctx context.Context, cfg Config, fn func() (T, error)) (T, error) {
	var zero T
	var lastErr error

	attempts := cfg.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	for attempt := 0; attempt < attempts; attempt++ {
		result, err := fn()
		if err == nil {
			return result, nil
		}

		lastErr = err

		if !IsTransient(err) {
			return zero, err
		}

		if attempt < attempts-1 {
			if err := Sleep(ctx, cfg.DelayFor(attempt, err)); err != nil {
				return zero, err
			}
		}
	}

	return zero, lastErr
}

// Sleep waits for d, returning early with the context's error if it is
// cancelled first.
func Sleep(ctx context.Context, d time.Duration) error {
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
