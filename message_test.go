package crank

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMessageText(t *testing.T) {
	t.Run("plain content", func(t *testing.T) {
		m := NewAssistantMessage("hello")
		assert.Equal(t, "hello", m.Text())
		assert.False(t, m.HasParts())
	})

	t.Run("parts take precedence and join text segments", func(t *testing.T) {
		m := NewUserMessage(
			NewTextPart("first"),
			NewImagePart("aGVsbG8=", "image/png"),
			NewTextPart("second"),
		)
		assert.True(t, m.HasParts())
		assert.Equal(t, "first\nsecond", m.Text())
	})
}

func TestNewMessages(t *testing.T) {
	u := NewUserMessage(NewTextPart("hi"))
	a := NewAssistantMessage("hello")

	assert.Equal(t, RoleUser, u.Role)
	assert.Equal(t, RoleAssistant, a.Role)
	assert.NotEmpty(t, u.ID)
	assert.NotEmpty(t, a.ID)
	assert.NotZero(t, u.Ts)
}

func TestToolResponse(t *testing.T) {
	t.Run("text response", func(t *testing.T) {
		r := TextResponse("done")
		assert.Equal(t, "done", r.Text())
		assert.False(t, r.IsError)
		assert.False(t, r.Rejected)
	})

	t.Run("error response", func(t *testing.T) {
		r := ErrorResponse("missing parameter")
		assert.True(t, r.IsError)
		assert.Equal(t, "missing parameter", r.Text())
	})

	t.Run("rejected response is not an error", func(t *testing.T) {
		r := RejectedResponse("the user declined this operation")
		assert.True(t, r.Rejected)
		assert.False(t, r.IsError)
	})

	t.Run("empty response", func(t *testing.T) {
		assert.True(t, ToolResponse{}.IsEmpty())
		assert.False(t, TextResponse("x").IsEmpty())
	})
}

func TestUsageTotal(t *testing.T) {
	u := Usage{InputTokens: 100, OutputTokens: 50, CacheWriteTokens: 10, CacheReadTokens: 5}
	assert.Equal(t, 165, u.Total())

	var acc Usage
	acc.Add(u)
	acc.Add(u)
	assert.Equal(t, 200, acc.InputTokens)
	assert.Equal(t, 330, acc.Total())
}

func TestRequestMetricsAdd(t *testing.T) {
	var m RequestMetrics
	m.Add(RequestMetrics{Usage: Usage{InputTokens: 10}, Cost: 0.01})
	m.Add(RequestMetrics{Usage: Usage{OutputTokens: 20}, Cost: 0.02, CancelReason: CancelReasonAborted})

	assert.Equal(t, 10, m.Usage.InputTokens)
	assert.Equal(t, 20, m.Usage.OutputTokens)
	assert.InDelta(t, 0.03, m.Cost, 1e-9)
	assert.Equal(t, CancelReasonAborted, m.CancelReason)
}
