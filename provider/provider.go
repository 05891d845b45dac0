// Package provider defines the model-completion stream interface consumed by
// the task loop, with adapter implementations for Anthropic, OpenAI, and
// Google under subpackages.
//
// The task loop treats a completion as an opaque stream of events: text
// deltas (which it re-parses into content blocks on every chunk), optional
// reasoning deltas (presented but never parsed for tool invocations), usage
// accounting, and a terminal done or error event. The wire protocol is the
// adapter's concern.
package provider

import (
	"context"

	crank "github.com/spetersoncode/crank"
)

// Request describes one completion request.
type Request struct {
	// SystemPrompt is sent out of band from the conversation history.
	SystemPrompt string
	// Messages is the effective conversation history, oldest first.
	Messages []crank.Message
	// Model overrides the client's default model when non-empty.
	Model string
	// MaxTokens bounds the response length. Zero means the adapter default.
	MaxTokens int
	// Temperature overrides the provider default when non-nil.
	Temperature *float64
}

// StreamEvent is a single event in a completion stream. Exactly one terminal
// event arrives per stream: Done or Err.
type StreamEvent struct {
	// Text is incremental assistant output text.
	Text string
	// Reasoning is incremental model reasoning, when the provider emits it.
	Reasoning string
	// Usage carries the request's token accounting, typically once near the
	// end of the stream. Values are request totals, not deltas.
	Usage *crank.Usage
	// Done marks successful stream completion.
	Done bool
	// Err marks stream failure. The channel is closed after it.
	Err error
}

// Client is implemented by completion providers.
type Client interface {
	// CreateCompletion starts a completion and returns its event stream.
	// A non-nil error means the request failed before any content streamed
	// and is eligible for the retry policy. Errors after streaming begins
	// arrive as StreamEvent.Err instead.
	CreateCompletion(ctx context.Context, req Request) (<-chan StreamEvent, error)
}
