package task

import (
	"context"

	"github.com/spetersoncode/crank/approval"
	"github.com/spetersoncode/crank/contextwindow"
	"github.com/spetersoncode/crank/event"
	"github.com/spetersoncode/crank/retry"
)

// DefaultMistakeLimit is the consecutive-mistake ceiling before the operator
// is asked whether to continue.
const DefaultMistakeLimit = 3

// DefaultCompletionTool is the tool name that, once invoked and accepted,
// completes the task.
const DefaultCompletionTool = "attempt_completion"

// EnvironmentFunc supplies per-request environment details (open files,
// running terminals, time) appended to the latest user message.
type EnvironmentFunc func(ctx context.Context) string

// Options contains configuration for task execution.
type Options struct {
	// Operator is the human-in-the-loop surface. Defaults to AutoOperator.
	Operator Operator

	// Gate decides tool auto-approval. Nil means every tool is asked.
	Gate *approval.Gate

	// Window manages context-window truncation. Nil disables truncation.
	Window *contextwindow.Manager

	// Limiter spaces model requests. Defaults to the process-wide limiter.
	Limiter *retry.Limiter

	// Checkpointer snapshots workspace state at turn boundaries.
	Checkpointer Checkpointer

	// Events receives lifecycle events. Nil disables event emission.
	Events chan<- event.Event

	// Model names the completion model. Empty uses the client default.
	Model string

	// SystemPrompt is sent with every request.
	SystemPrompt string

	// MaxTokens bounds each response. Zero uses the client default.
	MaxTokens int

	// MistakeLimit is the consecutive-mistake ceiling. Default 3.
	MistakeLimit int

	// CompletionTool is the finish-tool name. Default "attempt_completion".
	CompletionTool string

	// MaxTurns bounds the number of request/response turns. Zero means
	// unbounded.
	MaxTurns int

	// AutoResubmit authorizes automatic retry of pre-stream request
	// failures. When false the operator is asked before every retry.
	AutoResubmit bool

	// Retry is the backoff configuration for authorized resubmission.
	Retry retry.Config

	// Environment supplies per-request environment details.
	Environment EnvironmentFunc

	// HistoryKey, when set, persists conversation history under this key at
	// every turn boundary.
	HistoryKey string

	// CondenseHistory summarizes elided history instead of dropping it.
	CondenseHistory bool
}

// Option is a functional option for configuring task execution.
type Option func(*Options)

// WithOperator sets the human-in-the-loop surface.
func WithOperator(op Operator) Option {
	return func(o *Options) { o.Operator = op }
}

// WithGate sets the tool approval gate.
func WithGate(g *approval.Gate) Option {
	return func(o *Options) { o.Gate = g }
}

// WithWindow sets the context-window manager.
func WithWindow(w *contextwindow.Manager) Option {
	return func(o *Options) { o.Window = w }
}

// WithLimiter overrides the process-wide request limiter.
func WithLimiter(l *retry.Limiter) Option {
	return func(o *Options) { o.Limiter = l }
}

// WithCheckpointer sets the workspace snapshot hook.
func WithCheckpointer(c Checkpointer) Option {
	return func(o *Options) { o.Checkpointer = c }
}

// WithEvents directs lifecycle events to the given channel.
func WithEvents(ch chan<- event.Event) Option {
	return func(o *Options) { o.Events = ch }
}

// WithModel sets the completion model.
func WithModel(model string) Option {
	return func(o *Options) { o.Model = model }
}

// WithSystemPrompt sets the system prompt sent with every request.
func WithSystemPrompt(prompt string) Option {
	return func(o *Options) { o.SystemPrompt = prompt }
}

// WithMaxTokens bounds each response.
func WithMaxTokens(n int) Option {
	return func(o *Options) { o.MaxTokens = n }
}

// WithMistakeLimit sets the consecutive-mistake ceiling.
func WithMistakeLimit(n int) Option {
	return func(o *Options) {
		if n > 0 {
			o.MistakeLimit = n
		}
	}
}

// WithCompletionTool overrides the finish-tool name.
func WithCompletionTool(name string) Option {
	return func(o *Options) {
		if name != "" {
			o.CompletionTool = name
		}
	}
}

// WithMaxTurns bounds the number of turns. Zero means unbounded.
func WithMaxTurns(n int) Option {
	return func(o *Options) { o.MaxTurns = n }
}

// WithAutoResubmit authorizes automatic retry of pre-stream request
// failures.
func WithAutoResubmit(enabled bool) Option {
	return func(o *Options) { o.AutoResubmit = enabled }
}

// WithRetry sets the backoff configuration for authorized resubmission.
func WithRetry(cfg retry.Config) Option {
	return func(o *Options) { o.Retry = cfg }
}

// WithEnvironment sets the per-request environment details supplier.
func WithEnvironment(fn EnvironmentFunc) Option {
	return func(o *Options) { o.Environment = fn }
}

// WithHistoryKey persists conversation history under the given key at every
// turn boundary.
func WithHistoryKey(key string) Option {
	return func(o *Options) { o.HistoryKey = key }
}

// WithCondenseHistory summarizes elided history instead of dropping it.
func WithCondenseHistory(enabled bool) Option {
	return func(o *Options) { o.CondenseHistory = enabled }
}

// ApplyOptions applies functional options to an Options struct with
// defaults.
func ApplyOptions(opts ...Option) *Options {
	o := &Options{
		Operator:       AutoOperator{},
		Limiter:        retry.Shared(),
		Checkpointer:   NopCheckpointer{},
		MistakeLimit:   DefaultMistakeLimit,
		CompletionTool: DefaultCompletionTool,
		Retry:          retry.RequestConfig(),
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.Operator == nil {
		o.Operator = AutoOperator{}
	}
	if o.Limiter == nil {
		o.Limiter = retry.Shared()
	}
	if o.Checkpointer == nil {
		o.Checkpointer = NopCheckpointer{}
	}
	return o
}
