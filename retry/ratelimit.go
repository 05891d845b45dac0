package retry

import (
	"context"
	"sync"
	"time"
)

// Limiter enforces a minimum interval between model requests. A single
// Limiter is shared by all concurrently running tasks in the process, so any
// two requests across tasks are spaced by at least the configured interval.
//
// The timestamp is read-modify-written under a mutex; ordering between
// racing tasks is last-write-wins, which only affects pacing, not
// correctness.
type Limiter struct {
	mu          sync.Mutex
	minInterval time.Duration
	last        time.Time
}

// NewLimiter creates a Limiter with the given minimum inter-request
// interval. A zero interval disables spacing.
func NewLimiter(minInterval time.Duration) *Limiter {
	return &Limiter{minInterval: minInterval}
}

var (
	sharedOnce sync.Once
	shared     *Limiter
)

// Shared returns the process-wide limiter used by default across tasks.
// Its interval starts at zero; configure it with SetMinInterval.
func Shared() *Limiter {
	sharedOnce.Do(func() {
		shared = NewLimiter(0)
	})
	return shared
}

// SetMinInterval updates the minimum inter-request interval.
func (l *Limiter) SetMinInterval(d time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.minInterval = d
}

// Remaining returns the time left until the next request is allowed.
func (l *Limiter) Remaining() time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.remainingLocked(time.Now())
}

func (l *Limiter) remainingLocked(now time.Time) time.Duration {
	if l.minInterval <= 0 || l.last.IsZero() {
		return 0
	}
	wait := l.last.Add(l.minInterval).Sub(now)
	if wait < 0 {
		return 0
	}
	return wait
}

// Reserve claims the next request slot no earlier than minDelay from now and
// returns the time to wait. The effective wait is the maximum of minDelay
// (e.g. a backoff delay) and the remaining rate-limit window, so retries
// layer on top of the rate limit rather than bypassing it.
func (l *Limiter) Reserve(minDelay time.Duration) time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	wait := l.remainingLocked(now)
	if minDelay > wait {
		wait = minDelay
	}
	l.last = now.Add(wait)
	return wait
}

// Wait blocks until the next request is allowed, no earlier than minDelay
// from now. It returns early with the context's error on cancellation.
func (l *Limiter) Wait(ctx context.Context, minDelay time.Duration) error {
	return Sleep(ctx, l.Reserve(minDelay))
}
