// Package openai adapts the OpenAI SDK to the provider completion interface.
package openai

import (
	"context"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	crank "github.com/spetersoncode/crank"
	"github.com/spetersoncode/crank/provider"
)

// DefaultModel is used when the request does not specify one.
const DefaultModel = "gpt-4.1"

// Client wraps the OpenAI SDK to implement provider.Client.
type Client struct {
	client *openai.Client
	model  string
}

// New creates a new OpenAI client with the given API key.
func New(apiKey string, opts ...ClientOption) *Client {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	c := &Client{
		client: &client,
		model:  DefaultModel,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ClientOption configures the OpenAI client.
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

	params := openai.ChatCompletionNewParams{
		Model:    model,
		Messages: convertMessages(req),
		StreamOptions: openai.ChatCompletionStreamOptionsParam{
			IncludeUsage: openai.Bool(true),
		},
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(req.MaxTokens))
	}
	if req.Temperature != nil {
		params.Temperature = openai.Float(*req.Temperature)
	}

	stream := c.client.Chat.Completions.NewStreaming(ctx, params)
	ch := make(chan provider.StreamEvent)

	go func() {
		defer close(ch)
		var acc openai.ChatCompletionAccumulator

		for stream.Next() {
			chunk := stream.Current()
			acc.AddChunk(chunk)

			if len(chunk.Choices) > 0 && chunk.Choices[0].Delta.Content != "" {
				ch <- provider.StreamEvent{Text: chunk.Choices[0].Delta.Content}
			}
		}

		if err := stream.Err(); err != nil {
			ch <- provider.StreamEvent{Err: wrapError(err)}
			return
		}

		usage := crank.Usage{
			InputTokens:     int(acc.Usage.PromptTokens),
			OutputTokens:    int(acc.Usage.CompletionTokens),
			CacheReadTokens: int(acc.Usage.PromptTokensDetails.CachedTokens),
		}
		ch <- provider.StreamEvent{Usage: &usage}
		ch <- provider.StreamEvent{Done: true}
	}()

	return ch, nil
}

var _ provider.Client = (*Client)(nil)
