// Package retry provides exponential backoff for transient request failures
// and the process-wide rate limiter that spaces model requests.
//
// Retrying applies only to failures that occur before any content has
// streamed. A mid-stream failure may follow partially-applied side effects
// and is never silently retried; the task loop surfaces it to the operator
// instead.
package retry

import (
	"math"
	"math/rand"
	"time"
)

// Config holds backoff configuration parameters.
type Config struct {
	// MaxAttempts is the maximum number of attempts (default: 10).
	// The initial request counts as attempt 1. Zero or negative means a
	// single attempt.
	MaxAttempts int

	// InitialDelay is the base delay before the first retry (default: 1s).
	InitialDelay time.Duration

	// MaxDelay caps the delay between retries (default: 60s). Successive
	// delays are non-decreasing until they reach the cap, then stay there.
	MaxDelay time.Duration

	// Multiplier is the exponential backoff multiplier (default: 2.0).
	Multiplier float64

	// Jitter adds randomness to prevent thundering herd (default: 0.1).
	// Delay is multiplied by (1 + random(-jitter, +jitter)).
	Jitter float64
}

// DefaultConfig returns the default backoff configuration:
// 10 max attempts, 1s initial delay, 60s cap, 2x multiplier, 10% jitter.
func DefaultConfig() Config {
	return Config{
		MaxAttempts:  10,
		InitialDelay: 1 * time.Second,
		MaxDelay:     60 * time.Second,
		Multiplier:   2.0,
		Jitter:       0.1,
	}
}

// RequestConfig returns the backoff configuration used for model-completion
// requests: 5s base, 600s cap, 2x multiplier, no jitter. Attempts are
// unbounded here; the operator's resubmit authorization bounds them instead.
func RequestConfig() Config {
	return Config{
		MaxAttempts:  math.MaxInt32,
		InitialDelay: 5 * time.Second,
		MaxDelay:     600 * time.Second,
		Multiplier:   2.0,
	}
}

// Disabled returns a configuration that disables retries (single attempt).
func Disabled() Config {
	return Config{MaxAttempts: 1}
}

// Delay calculates the backoff delay for a given attempt number (0-indexed):
// min(maxDelay, initialDelay * multiplier^attempt), with jitter applied last.
func (c Config) Delay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}

	delay := float64(c.InitialDelay) * math.Pow(c.Multiplier, float64(attempt))
	if delay > float64(c.MaxDelay) {
		delay = float64(c.MaxDelay)
	}

	if c.Jitter > 0 {
		jitterFactor := 1.0 + (rand.Float64()*2-1)*c.Jitter
		delay *= jitterFactor
	}

	return time.Duration(delay)
}

// DelayFor returns the delay to use before retrying after err. A provider
// supplied retry-after duration overrides the computed backoff for that
// attempt.
func (c Config) DelayFor(attempt int, err error) time.Duration {
	if ra := RetryAfterOf(err); ra > 0 {
		return ra
	}
	return c.Delay(attempt)
}
