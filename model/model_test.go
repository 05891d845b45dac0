package model

import (
	"testing"

	"github.com/stretchr/testify/assert"

	crank "github.com/spetersoncode/crank"
)

func TestLookup(t *testing.T) {
	t.Run("exact match", func(t *testing.T) {
		info, ok := Lookup("gpt-4o")
		assert.True(t, ok)
		assert.Equal(t, 128_000, info.ContextWindow)
	})

	t.Run("versioned name resolves by substring", func(t *testing.T) {
		info, ok := Lookup("claude-sonnet-4-5-20250929")
		assert.True(t, ok)
		assert.Equal(t, 200_000, info.ContextWindow)
		assert.Equal(t, 3.0, info.Pricing.InputPerMillion)
	})

	t.Run("longest key wins", func(t *testing.T) {
		info, ok := Lookup("gemini-2.5-flash-preview")
		assert.True(t, ok)
		assert.Equal(t, 0.30, info.Pricing.InputPerMillion)
	})

	t.Run("unknown model", func(t *testing.T) {
		_, ok := Lookup("mystery-model")
		assert.False(t, ok)
	})
}

func TestContextWindow(t *testing.T) {
	assert.Equal(t, 200_000, ContextWindow("claude-haiku-4-5"))
	assert.Equal(t, DefaultContextWindow, ContextWindow("mystery-model"))
}

func TestCost(t *testing.T) {
	u := crank.Usage{
		InputTokens:      1_000_000,
		OutputTokens:     500_000,
		CacheReadTokens:  2_000_000,
		CacheWriteTokens: 100_000,
	}

	t.Run("claude sonnet", func(t *testing.T) {
		got := Cost("claude-sonnet-4-5", u)
		want := 3.0 + 0.5*15 + 2*0.30 + 0.1*3.75
		assert.InDelta(t, want, got, 1e-9)
	})

	t.Run("unknown model costs zero", func(t *testing.T) {
		assert.Zero(t, Cost("mystery-model", u))
	})
}
