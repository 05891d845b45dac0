// Package event provides the observation channel for task execution.
// Events cover the run and turn lifecycle, streamed message content, tool
// dispatch and approval, retries, and context-window truncation. The event
// types are designed for 1:1 mapping with the AG-UI protocol.
package event

import (
	"time"

	crank "github.com/spetersoncode/crank"
)

// Type identifies the kind of event.
type Type string

// Run lifecycle events
const (
	// RunStart fires when a task run begins.
	RunStart Type = "run_start"

	// RunEnd fires when a task run completes.
	RunEnd Type = "run_end"

	// RunError fires when an unrecoverable error ends the run.
	RunError Type = "run_error"

	// RunAborted fires when the run ends due to user cancellation.
	RunAborted Type = "run_aborted"
)

// Turn lifecycle events
const (
	// TurnStart fires when a request/response turn begins.
	TurnStart Type = "turn_start"

	// TurnEnd fires when a turn completes, carrying its metrics.
	TurnEnd Type = "turn_end"
)

// Message lifecycle events
const (
	// MessageStart fires when an assistant message begins.
	MessageStart Type = "message_start"

	// MessageDelta fires for each streamed text chunk.
	MessageDelta Type = "message_delta"

	// MessageEnd fires when an assistant message completes.
	MessageEnd Type = "message_end"

	// Reasoning fires for streamed model reasoning chunks.
	Reasoning Type = "reasoning"
)

// Tool lifecycle events
const (
	// ToolStart fires when a complete tool block is accepted for dispatch.
	ToolStart Type = "tool_start"

	// ToolPreview fires while a partial tool block is streaming.
	ToolPreview Type = "tool_preview"

	// ToolApproved fires when a tool is approved, automatically or by the user.
	ToolApproved Type = "tool_approved"

	// ToolRejected fires when the user rejects a tool.
	ToolRejected Type = "tool_rejected"

	// ToolResult fires with the outcome of tool execution.
	ToolResult Type = "tool_result"

	// ToolSkipped fires for tool blocks ignored after the turn's tool ran.
	ToolSkipped Type = "tool_skipped"
)

// Recovery and housekeeping events
const (
	// RetryScheduled fires before a delayed retry of a failed request.
	RetryScheduled Type = "retry_scheduled"

	// Truncation fires when conversation history is elided to fit the
	// context window.
	Truncation Type = "truncation"

	// Interrupted fires when streaming is cut off by cancellation.
	Interrupted Type = "interrupted"

	// Paused and Resumed bracket user-initiated suspension of the loop.
	Paused  Type = "paused"
	Resumed Type = "resumed"
)

// Event is an observable occurrence during task execution.
type Event struct {
	// Type identifies the kind of event.
	Type Type

	// MessageID correlates MessageStart/Delta/End sequences.
	MessageID string

	// Delta contains streamed content for MessageDelta and Reasoning events.
	Delta string

	// ToolName identifies the tool for tool events.
	ToolName string

	// ToolUse contains the parsed tool block for tool events.
	ToolUse *crank.ToolUseBlock

	// Response contains the tool outcome for ToolResult events.
	Response *crank.ToolResponse

	// Metrics carries accumulated usage and cost for TurnEnd and RunEnd.
	Metrics *crank.RequestMetrics

	// Turn is the current turn number (1-indexed).
	Turn int

	// Attempt is the retry attempt for RetryScheduled events.
	Attempt int

	// Delay is the wait before the next attempt for RetryScheduled events.
	Delay time.Duration

	// Removed is the number of messages elided for Truncation events.
	Removed int

	// Error contains the error for RunError events.
	Error error

	// Message contains additional context such as a rejection reason.
	Message string

	// Timestamp is when the event occurred.
	Timestamp time.Time
}

// Emit sends an event with timestamp to the channel without blocking. A full
// channel drops the event rather than stalling the task loop.
func Emit(ch chan<- Event, e Event) {
	if ch == nil {
		return
	}
	e.Timestamp = time.Now()
	select {
	case ch <- e:
	default:
	}
}

// NewChannel creates a buffered event channel with standard capacity.
func NewChannel() chan Event {
	return make(chan Event, 100)
}
