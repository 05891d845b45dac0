package crank

// Usage contains token usage information for a single provider request.
type Usage struct {
	InputTokens      int `json:"inputTokens"`
	OutputTokens     int `json:"outputTokens"`
	CacheWriteTokens int `json:"cacheWriteTokens,omitempty"`
	CacheReadTokens  int `json:"cacheReadTokens,omitempty"`
}

// Total returns the total number of tokens attributable to the request,
// including prompt-cache traffic. This is the figure the context-window
// manager accounts against the model's window.
func (u Usage) Total() int {
	return u.InputTokens + u.OutputTokens + u.CacheWriteTokens + u.CacheReadTokens
}

// Add accumulates another usage sample into u.
func (u *Usage) Add(other Usage) {
	u.InputTokens += other.InputTokens
	u.OutputTokens += other.OutputTokens
	u.CacheWriteTokens += other.CacheWriteTokens
	u.CacheReadTokens += other.CacheReadTokens
}

// RequestMetrics accumulates per-request accounting: token usage, estimated
// cost, and the cancellation reason if the request did not run to completion.
// It is used for context-window accounting and emitted with the
// request-summary event after each turn.
type RequestMetrics struct {
	Usage Usage `json:"usage"`
	// Cost is the estimated request cost in USD, derived from model pricing.
	Cost float64 `json:"cost"`
	// CancelReason is empty for a completed request, or one of
	// CancelReasonAborted / CancelReasonStreamError.
	CancelReason CancelReason `json:"cancelReason,omitempty"`
}

// CancelReason explains why a request ended before the stream completed.
type CancelReason string

const (
	// CancelReasonAborted means the task was aborted mid-request.
	CancelReasonAborted CancelReason = "user_cancelled"
	// CancelReasonStreamError means the stream failed after content had
	// already been delivered.
	CancelReasonStreamError CancelReason = "streaming_failed"
)

// Add accumulates another request's metrics into m. CancelReason is carried
// from the most recent sample that set one.
func (m *RequestMetrics) Add(other RequestMetrics) {
	m.Usage.Add(other.Usage)
	m.Cost += other.Cost
	if other.CancelReason != "" {
		m.CancelReason = other.CancelReason
	}
}
