package agui

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spetersoncode/crank/task"
)

// Question is a blocking operator question published to the frontend.
type Question struct {
	ID      string       `json:"id"`
	Kind    task.AskKind `json:"kind"`
	Payload string       `json:"payload"`
	Partial bool         `json:"partial,omitempty"`
}

// AnswerInput is a frontend's answer to a Question, e.g. a user action on a
// tool approval prompt.
type AnswerInput struct {
	ID       string        `json:"id"`
	Decision task.Decision `json:"decision"`
	Text     string        `json:"text,omitempty"`
}

// Notice is a non-blocking operator notification forwarded to the frontend.
type NoticeFunc func(kind task.SayKind, payload string, partial bool)

// Broker is an operator surface backed by an AG-UI frontend. Ask publishes a
// Question and blocks until the frontend answers it; Say forwards to the
// notice callback.
//
// Broker is safe for concurrent use.
type Broker struct {
	mu      sync.Mutex
	pending map[string]chan task.AskResponse
	timeout time.Duration
	onAsk   func(Question)
	onSay   NoticeFunc
}

// BrokerOption configures a Broker.
type BrokerOption func(*Broker)

// WithAskTimeout sets how long Ask waits for an answer. Default 5 minutes.
func WithAskTimeout(d time.Duration) BrokerOption {
	return func(b *Broker) { b.timeout = d }
}

// WithOnAsk sets the callback that publishes questions to the frontend.
func WithOnAsk(fn func(Question)) BrokerOption {
	return func(b *Broker) { b.onAsk = fn }
}

// WithOnSay sets the callback that forwards notifications to the frontend.
func WithOnSay(fn NoticeFunc) BrokerOption {
	return func(b *Broker) { b.onSay = fn }
}

// NewBroker creates a Broker.
func NewBroker(opts ...BrokerOption) *Broker {
	b := &Broker{
		pending: make(map[string]chan task.AskResponse),
		timeout: 5 * time.Minute,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Ask publishes a question and blocks until Answer is called for it, the
// context is cancelled, or the timeout elapses.
func (b *Broker) Ask(ctx context.Context, kind task.AskKind, payload string, partial bool) (task.AskResponse, error) {
	id := "ask-" + uuid.New().String()
	ch := make(chan task.AskResponse, 1)

	b.mu.Lock()
	b.pending[id] = ch
	b.mu.Unlock()
	defer func() {
		b.mu.Lock()
		delete(b.pending, id)
		b.mu.Unlock()
	}()

	if b.onAsk != nil {
		b.onAsk(Question{ID: id, Kind: kind, Payload: payload, Partial: partial})
	}

	timer := time.NewTimer(b.timeout)
	defer timer.Stop()
	select {
	case resp := <-ch:
		return resp, nil
	case <-ctx.Done():
		return task.AskResponse{}, ctx.Err()
	case <-timer.C:
		return task.AskResponse{}, fmt.Errorf("agui: no answer to %s within %s", kind, b.timeout)
	}
}

// Say forwards a notification to the frontend.
func (b *Broker) Say(kind task.SayKind, payload string, partial bool) {
	if b.onSay != nil {
		b.onSay(kind, payload, partial)
	}
}

// Answer routes a frontend answer to the waiting Ask. Returns an error when
// no question with the given ID is pending.
func (b *Broker) Answer(id string, resp task.AskResponse) error {
	b.mu.Lock()
	ch, ok := b.pending[id]
	b.mu.Unlock()
	if !ok {
		return fmt.Errorf("agui: no pending question %q", id)
	}
	select {
	case ch <- resp:
	default:
	}
	return nil
}

// AnswerJSON routes a JSON-encoded AnswerInput, as received from an AG-UI
// server handler.
func (b *Broker) AnswerJSON(data []byte) error {
	var input AnswerInput
	if err := json.Unmarshal(data, &input); err != nil {
		return err
	}
	return b.Answer(input.ID, task.AskResponse{Decision: input.Decision, Text: input.Text})
}
