package task

import (
	"context"

	crank "github.com/spetersoncode/crank"
)

// AskKind identifies the kind of blocking question put to the operator.
type AskKind string

const (
	// AskToolApproval asks whether a tool invocation may execute.
	AskToolApproval AskKind = "tool_approval"

	// AskRequestFailed offers a manual retry after a failed model request.
	AskRequestFailed AskKind = "api_request_failed"

	// AskStreamInterrupted reports a mid-stream failure and asks whether to
	// resume from history.
	AskStreamInterrupted AskKind = "stream_interrupted"

	// AskMistakeLimit reports the consecutive-mistake ceiling and asks
	// whether to continue.
	AskMistakeLimit AskKind = "mistake_limit"

	// AskCompletion presents the task's final result for acceptance.
	AskCompletion AskKind = "completion_result"
)

// SayKind identifies a non-blocking operator notification.
type SayKind string

const (
	// SayText carries streamed assistant text. Partial updates address the
	// same in-progress message.
	SayText SayKind = "text"

	// SayReasoning carries streamed model reasoning.
	SayReasoning SayKind = "reasoning"

	// SayToolPreview carries a partial tool invocation as it streams.
	SayToolPreview SayKind = "tool_preview"

	// SayToolResult carries a tool outcome.
	SayToolResult SayKind = "tool_result"

	// SayError carries a non-fatal error notice.
	SayError SayKind = "error"
)

// Decision is the operator's answer to an Ask.
type Decision string

const (
	DecisionApproved Decision = "approved"
	DecisionRejected Decision = "rejected"

	// DecisionMessage means the operator answered with feedback text rather
	// than a plain yes or no.
	DecisionMessage Decision = "message"
)

// AskResponse is the operator's response to a blocking question. Text and
// Images carry optional feedback accompanying any decision.
type AskResponse struct {
	Decision Decision
	Text     string
	Images   []crank.ContentPart
}

// Operator is the human-in-the-loop surface. Ask blocks until the operator
// responds; Say is fire-and-forget. A partial Say updates the operator's
// in-progress message in place rather than starting a new one.
type Operator interface {
	Ask(ctx context.Context, kind AskKind, payload string, partial bool) (AskResponse, error)
	Say(kind SayKind, payload string, partial bool)
}

// AutoOperator approves every question without feedback and discards
// notifications. Useful for unattended runs with a permissive approval
// policy, and in tests.
type AutoOperator struct{}

func (AutoOperator) Ask(context.Context, AskKind, string, bool) (AskResponse, error) {
	return AskResponse{Decision: DecisionApproved}, nil
}

func (AutoOperator) Say(SayKind, string, bool) {}
