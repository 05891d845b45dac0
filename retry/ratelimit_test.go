package retry

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLimiterSpacing(t *testing.T) {
	t.Run("first request passes immediately", func(t *testing.T) {
		l := NewLimiter(time.Hour)
		assert.Zero(t, l.Remaining())
		assert.Zero(t, l.Reserve(0))
	})

	t.Run("second request waits out the interval", func(t *testing.T) {
		l := NewLimiter(100 * time.Millisecond)
		l.Reserve(0)

		wait := l.Reserve(0)
		assert.Greater(t, wait, 50*time.Millisecond)
		assert.LessOrEqual(t, wait, 100*time.Millisecond)
	})

	t.Run("zero interval disables spacing", func(t *testing.T) {
		l := NewLimiter(0)
		l.Reserve(0)
		assert.Zero(t, l.Reserve(0))
	})
}

func TestLimiterBackoffLayering(t *testing.T) {
	t.Run("effective wait is max of backoff and window", func(t *testing.T) {
		l := NewLimiter(50 * time.Millisecond)
		l.Reserve(0)

		// Backoff longer than the remaining window wins.
		wait := l.Reserve(time.Second)
		assert.Equal(t, time.Second, wait)
	})

	t.Run("window wins over a shorter backoff", func(t *testing.T) {
		l := NewLimiter(time.Minute)
		l.Reserve(0)

		wait := l.Reserve(time.Millisecond)
		assert.Greater(t, wait, 50*time.Second)
	})
}

func TestLimiterWait(t *testing.T) {
	t.Run("waits out a short interval", func(t *testing.T) {
		l := NewLimiter(20 * time.Millisecond)
		require.NoError(t, l.Wait(context.Background(), 0))

		start := time.Now()
		require.NoError(t, l.Wait(context.Background(), 0))
		assert.GreaterOrEqual(t, time.Since(start), 10*time.Millisecond)
	})

	t.Run("cancellation interrupts the wait", func(t *testing.T) {
		l := NewLimiter(time.Hour)
		l.Reserve(0)

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()
		err := l.Wait(ctx, 0)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}

func TestLimiterConcurrent(t *testing.T) {
	// Concurrent tasks share one timestamp; total reservations must be
	// spaced by at least the interval each.
	l := NewLimiter(10 * time.Millisecond)
	l.Reserve(0)

	var wg sync.WaitGroup
	waits := make([]time.Duration, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			waits[i] = l.Reserve(0)
		}(i)
	}
	wg.Wait()

	seen := map[time.Duration]bool{}
	for _, w := range waits {
		assert.False(t, seen[w], "two reservations landed on the same slot")
		seen[w] = true
	}
}

func TestSharedLimiterSingleton(t *testing.T) {
	assert.Same(t, Shared(), Shared())
}
