// Package google adapts the Google GenAI SDK to the provider completion
// interface.
package google

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	crank "github.com/spetersoncode/crank"
	"github.com/spetersoncode/crank/provider"
)

// DefaultModel is used when the request does not specify one.
const DefaultModel = "gemini-2.5-pro"

// Client wraps the Google GenAI SDK to implement provider.Client.
type Client struct {
	client *genai.Client
	model  string
}

// New creates a new Google client with the given API key.
func New(ctx context.Context, apiKey string, opts ...ClientOption) (*Client, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("google: create client: %w", err)
	}

	c := &Client{
		client: client,
		model:  DefaultModel,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// ClientOption configures the Google client.
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

	contents, err := convertMessages(req.Messages)
	if err != nil {
		return nil, err
	}

	config := &genai.GenerateContentConfig{}
	if req.SystemPrompt != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: req.SystemPrompt}},
		}
	}
	if req.MaxTokens > 0 {
		config.MaxOutputTokens = int32(req.MaxTokens)
	}
	if req.Temperature != nil {
		temp := float32(*req.Temperature)
		config.Temperature = &temp
	}

	ch := make(chan provider.StreamEvent)

	go func() {
		defer close(ch)

		var usage crank.Usage
		sawContent := false

		for resp, err := range c.client.Models.GenerateContentStream(ctx, model, contents, config) {
			if err != nil {
				ch <- provider.StreamEvent{Err: wrapError(err)}
				return
			}

			if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
				ch <- provider.StreamEvent{
					Err: &BlockedError{Reason: string(resp.PromptFeedback.BlockReason)},
				}
				return
			}

			if len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil {
				for _, part := range resp.Candidates[0].Content.Parts {
					if part.Text == "" {
						continue
					}
					sawContent = true
					if part.Thought {
						ch <- provider.StreamEvent{Reasoning: part.Text}
					} else {
						ch <- provider.StreamEvent{Text: part.Text}
					}
				}
			}

			if resp.UsageMetadata != nil {
				usage.InputTokens = int(resp.UsageMetadata.PromptTokenCount)
				usage.OutputTokens = int(resp.UsageMetadata.CandidatesTokenCount)
				usage.CacheReadTokens = int(resp.UsageMetadata.CachedContentTokenCount)
			}
		}

		if !sawContent {
			ch <- provider.StreamEvent{Err: crank.ErrNoContent}
			return
		}

		ch <- provider.StreamEvent{Usage: &usage}
		ch <- provider.StreamEvent{Done: true}
	}()

	return ch, nil
}

var _ provider.Client = (*Client)(nil)
