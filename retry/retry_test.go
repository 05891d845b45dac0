package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	crank "github.com/spetersoncode/crank"
)

func TestDelayMonotonicityAndCap(t *testing.T) {
	cfg := RequestConfig()

	// 5s, 10s, 20s, 40s, ... capped at 600s.
	expected := []time.Duration{
		5 * time.Second, 10 * time.Second, 20 * time.Second, 40 * time.Second,
		80 * time.Second, 160 * time.Second, 320 * time.Second,
		600 * time.Second, 600 * time.Second, 600 * time.Second,
	}
	var prev time.Duration
	for attempt, want := range expected {
		got := cfg.Delay(attempt)
		assert.Equal(t, want, got, "attempt %d", attempt)
		assert.GreaterOrEqual(t, got, prev, "delays must be non-decreasing")
		prev = got
	}
}

func TestDelayNegativeAttempt(t *testing.T) {
	cfg := Disabled()
	cfg.InitialDelay = time.Second
	cfg.Multiplier = 2
	cfg.MaxDelay = time.Minute
	assert.Equal(t, time.Second, cfg.Delay(-3))
}

func TestDelayJitterBounds(t *testing.T) {
	cfg := DefaultConfig()
	for i := 0; i < 5; i++ {
		d := cfg.Delay(0)
		lo := time.Duration(float64(cfg.InitialDelay) * (1 - cfg.Jitter))
		hi := time.Duration(float64(cfg.InitialDelay) * (1 + cfg.Jitter))
		assert.GreaterOrEqual(t, d, lo)
		assert.LessOrEqual(t, d, hi)
	}
}

func TestDelayForRetryAfterOverride(t *testing.T) {
	cfg := RequestConfig()

	t.Run("provider retry-after wins", func(t *testing.T) {
		err := crank.NewTransientErrorWithRetry("overloaded", 529, 42*time.Second, nil)
		assert.Equal(t, 42*time.Second, cfg.DelayFor(3, err))
	})

	t.Run("falls back to computed backoff", func(t *testing.T) {
		err := crank.NewTransientError("rate limited", 429, nil)
		assert.Equal(t, 20*time.Second, cfg.DelayFor(2, err))
	})
}

func TestDo(t *testing.T) {
	ctx := context.Background()

	t.Run("succeeds first try", func(t *testing.T) {
		calls := 0
		result, err := Do(ctx, DefaultConfig(), func() (string, error) {
			calls++
			return "ok", nil
		})
		require.NoError(t, err)
		assert.Equal(t, "ok", result)
		assert.Equal(t, 1, calls)
	})

	t.Run("retries transient errors", func(t *testing.T) {
		cfg := Config{MaxAttempts: 3, InitialDelay: time.Millisecond, MaxDelay: time.Millisecond, Multiplier: 1}
		calls := 0
		result, err := Do(ctx, cfg, func() (string, error) {
			calls++
			if calls < 3 {
				return "", crank.NewTransientError("flaky", 503, nil)
			}
			return "ok", nil
		})
		require.NoError(t, err)
		assert.Equal(t, "ok", result)
		assert.Equal(t, 3, calls)
	})

	t.Run("permanent error not retried", func(t *testing.T) {
		calls := 0
		_, err := Do(ctx, DefaultConfig(), func() (string, error) {
			calls++
			return "", crank.NewPermanentError("bad key", 401, nil)
		})
		require.Error(t, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("exhausts attempts", func(t *testing.T) {
		cfg := Config{MaxAttempts: 2, InitialDelay: time.Millisecond, MaxDelay: time.Millisecond, Multiplier: 1}
		calls := 0
		_, err := Do(ctx, cfg, func() (int, error) {
			calls++
			return 0, crank.NewTransientError("still down", 503, nil)
		})
		require.Error(t, err)
		assert.Equal(t, 2, calls)
	})

	t.Run("context cancellation interrupts backoff", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cfg := Config{MaxAttempts: 5, InitialDelay: time.Hour, MaxDelay: time.Hour, Multiplier: 1}
		go func() {
			time.Sleep(10 * time.Millisecond)
			cancel()
		}()
		_, err := Do(cctx, cfg, func() (int, error) {
			return 0, crank.NewTransientError("down", 503, nil)
		})
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"categorized transient", crank.NewTransientError("x", 429, nil), true},
		{"categorized permanent", crank.NewPermanentError("x", 401, nil), false},
		{"googleapi 503", errors.New("googleapi: Error 503: backend unavailable"), true},
		{"message pattern rate limit", errors.New("provider said: rate limit exceeded"), true},
		{"message pattern gateway timeout", errors.New("upstream gateway timeout"), true},
		{"unrelated error", errors.New("file not found"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsTransient(tt.err))
		})
	}
}
