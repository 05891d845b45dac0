// Package anthropic adapts the Anthropic SDK to the provider completion
// interface.
package anthropic

import (
	"context"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	crank "github.com/spetersoncode/crank"
	"github.com/spetersoncode/crank/provider"
)

// DefaultModel is used when the request does not specify one.
const DefaultModel = "claude-sonnet-4-5"

const defaultMaxTokens = 8192

// Client wraps the Anthropic SDK to implement provider.Client.
type Client struct {
	client *anthropic.Client
	model  string
}

// New creates a new Anthropic client with the given API key.
func New(apiKey string, opts ...ClientOption) *Client {
	client := anthropic.NewClient(option.WithAPIKey(apiKey))
	c := &Client{
		client: &client,
		model:  DefaultModel,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ClientOption configures the Anthropic client.
type ClientOption func(*Client)

// WithModel sets the default model for requests.
func WithModel(model string) ClientOption {
	return func(c *Client) {
		c.model = model
	}
}

// CreateCompletion starts a streaming completion.
func (c *Client) CreateCompletion(ctx context.Context, req provider.Request) (<-chan provider.StreamEvent, error) {
	model := c.model
	if req.Model != "" {
		model = req.Model
	}
	maxTokens := int64(defaultMaxTokens)
	if req.MaxTokens > 0 {
		maxTokens = int64(req.MaxTokens)
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: maxTokens,
		Messages:  convertMessages(req.Messages),
	}
	if req.SystemPrompt != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.SystemPrompt}}
	}
	if req.Temperature != nil {
		params.Temperature = anthropic.Float(*req.Temperature)
	}

	stream := c.client.Messages.NewStreaming(ctx, params)
	ch := make(chan provider.StreamEvent)

	go func() {
		defer close(ch)
		var acc anthropic.Message

		for stream.Next() {
			event := stream.Current()
			acc.Accumulate(event)

			if event.Type == "content_block_delta" {
				delta := event.AsContentBlockDelta()
				if textDelta := delta.Delta.AsTextDelta(); textDelta.Type == "text_delta" {
					ch <- provider.StreamEvent{Text: textDelta.Text}
				}
				if thinking := delta.Delta.AsThinkingDelta(); thinking.Type == "thinking_delta" {
					ch <- provider.StreamEvent{Reasoning: thinking.Thinking}
				}
			}
		}

		if err := stream.Err(); err != nil {
			ch <- provider.StreamEvent{Err: wrapError(err)}
			return
		}

		usage := crank.Usage{
			InputTokens:      int(acc.Usage.InputTokens),
			OutputTokens:     int(acc.Usage.OutputTokens),
			CacheWriteTokens: int(acc.Usage.CacheCreationInputTokens),
			CacheReadTokens:  int(acc.Usage.CacheReadInputTokens),
		}
		ch <- provider.StreamEvent{Usage: &usage}
		ch <- provider.StreamEvent{Done: true}
	}()

	return ch, nil
}

var _ provider.Client = (*Client)(nil)
