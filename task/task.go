// Package task composes the parser, tool coordinator, approval gate, retry
// policy, and context-window manager into the autonomous task loop: stream a
// model response, present parsed blocks as they arrive, dispatch at most one
// tool per turn through the approval gate, feed the result back into
// history, and recurse until the finish tool is accepted or the task is
// aborted.
package task

import (
	"context"
	"errors"
	"strings"
	"time"

	crank "github.com/spetersoncode/crank"
	"github.com/spetersoncode/crank/event"
	"github.com/spetersoncode/crank/model"
	"github.com/spetersoncode/crank/parser"
	"github.com/spetersoncode/crank/provider"
	"github.com/spetersoncode/crank/retry"
	"github.com/spetersoncode/crank/store"
	"github.com/spetersoncode/crank/tool"
)

// ErrAborted is returned when a run ends due to cooperative cancellation.
var ErrAborted = errors.New("task: aborted")

// Task drives one autonomous conversation against a model provider.
type Task struct {
	client      provider.Client
	coordinator *tool.Coordinator
	history     *store.History
	state       *State
	opts        *Options
	totals      crank.RequestMetrics
}

// Result is the outcome of a completed run.
type Result struct {
	// Completed is true when the finish tool was invoked and accepted.
	Completed bool
	// Output is the accepted completion text.
	Output string
	// Turns is the number of request/response turns executed.
	Turns int
	// Metrics is the accumulated usage and cost across all requests.
	Metrics crank.RequestMetrics
	// Phase is the terminal phase, PhaseCompleted or PhaseAborted.
	Phase Phase
}

// New creates a Task. A nil history starts an empty in-memory conversation.
func New(client provider.Client, coordinator *tool.Coordinator, history *store.History, opts ...Option) *Task {
	if history == nil {
		history = store.NewHistory(nil)
	}
	return &Task{
		client:      client,
		coordinator: coordinator,
		history:     history,
		state:       NewState(),
		opts:        ApplyOptions(opts...),
	}
}

// State returns the task's mutable state for abort and pause control.
func (t *Task) State() *State {
	return t.state
}

// History returns the task's conversation history.
func (t *Task) History() *store.History {
	return t.history
}

// Metrics returns the accumulated usage and cost so far.
func (t *Task) Metrics() crank.RequestMetrics {
	return t.totals
}

// Run executes the task loop to completion. The given parts form the initial
// user message; omit them when resuming a loaded history. Run blocks until
// the task completes, aborts, or fails.
func (t *Task) Run(ctx context.Context, parts ...crank.ContentPart) (*Result, error) {
	if len(parts) > 0 {
		t.history.Append(crank.NewUserMessage(parts...))
	}
	t.emit(event.Event{Type: event.RunStart})

	res, err := t.run(ctx)
	res.Metrics = t.totals
	return res, err
}

func (t *Task) run(ctx context.Context) (*Result, error) {
	turn := 0
	for {
		turn++
		if t.opts.MaxTurns > 0 && turn > t.opts.MaxTurns {
			return t.finishAborted(ctx, turn-1, errors.New("task: turn limit reached"))
		}

		if err := t.suspensionPoint(ctx); err != nil {
			return t.finishAborted(ctx, turn-1, err)
		}

		if t.state.MistakeCount() >= t.opts.MistakeLimit {
			resp, err := t.opts.Operator.Ask(ctx, AskMistakeLimit, mistakeLimitPayload(t.state.MistakeCount()), false)
			if err != nil || resp.Decision == DecisionRejected {
				return t.finishAborted(ctx, turn-1, err)
			}
			t.state.clearMistakes()
			if resp.Text != "" || len(resp.Images) > 0 {
				t.history.Append(crank.NewUserMessage(appendFeedback(nil, resp)...))
			}
		}

		t.maybeTruncate(ctx)

		t.state.beginTurn()
		t.emit(event.Event{Type: event.TurnStart, Turn: turn})

		outcome, err := t.requestAndStream(ctx, turn)
		if err != nil {
			if errors.Is(err, ErrAborted) || errors.Is(err, context.Canceled) || t.state.Aborted() {
				return t.finishAborted(ctx, turn, err)
			}
			// Fatal request failure: record an error turn and end this
			// branch without crashing the process.
			t.history.Append(crank.NewAssistantMessage("[Request failed: " + err.Error() + "]"))
			t.saveTurn(ctx)
			t.emit(event.Event{Type: event.RunError, Turn: turn, Error: err})
			t.state.setPhase(PhaseAborted)
			return &Result{Turns: turn, Phase: PhaseAborted}, err
		}

		if outcome.text == "" && outcome.reasoning == "" && !outcome.interrupted {
			err := crank.ErrNoContent
			t.history.Append(crank.NewAssistantMessage("[No response received from the model]"))
			t.saveTurn(ctx)
			t.emit(event.Event{Type: event.RunError, Turn: turn, Error: err})
			t.state.setPhase(PhaseAborted)
			return &Result{Turns: turn, Phase: PhaseAborted}, err
		}

		content := outcome.text
		if outcome.interrupted {
			content += interruptionMarker
		}
		t.history.Append(crank.NewAssistantMessage(content))

		metrics := crank.RequestMetrics{
			Usage: outcome.usage,
			Cost:  model.Cost(t.opts.Model, outcome.usage),
		}
		if outcome.interrupted {
			if outcome.streamErr != nil {
				metrics.CancelReason = crank.CancelReasonStreamError
			} else {
				metrics.CancelReason = crank.CancelReasonAborted
			}
		}
		t.totals.Add(metrics)
		if t.opts.Window != nil {
			t.opts.Window.Record(metrics)
		}
		t.emit(event.Event{Type: event.TurnEnd, Turn: turn, Metrics: &metrics})

		if outcome.interrupted {
			t.saveTurn(ctx)
			if t.state.Aborted() {
				return t.finishAborted(ctx, turn, nil)
			}
			// Mid-stream failure: never silently retried, the operator
			// decides whether to resume from history.
			t.emit(event.Event{Type: event.Interrupted, Turn: turn, Error: outcome.streamErr})
			resp, err := t.opts.Operator.Ask(ctx, AskStreamInterrupted, outcome.streamErr.Error(), false)
			if err != nil || resp.Decision == DecisionRejected {
				return t.finishAborted(ctx, turn, outcome.streamErr)
			}
			parts := appendFeedback([]crank.ContentPart{crank.NewTextPart(streamInterruptedNotice)}, resp)
			t.history.Append(crank.NewUserMessage(parts...))
			t.saveTurn(ctx)
			continue
		}

		// Dispatch waits for the stream to drain rather than firing on the
		// first complete tool block: the model may still emit text (or the
		// completion tool) after it, and the partial-block previews during
		// streaming already give the operator early sight of the call.
		blocks := parser.Finalize(parser.Parse(outcome.text))
		toolBlock, ok := parser.FirstToolUse(blocks)
		if !ok {
			t.state.addMistake()
			t.history.Append(crank.NewUserMessage(crank.NewTextPart(noToolUsedMessage)))
			t.saveTurn(ctx)
			t.state.setPhase(PhaseRecursing)
			continue
		}

		if toolBlock.Name == t.opts.CompletionTool {
			done, output, parts := t.handleCompletion(ctx, toolBlock)
			if done {
				t.saveTurn(ctx)
				t.emit(event.Event{Type: event.RunEnd, Turn: turn, Message: output})
				t.state.setPhase(PhaseCompleted)
				return &Result{Completed: true, Output: output, Turns: turn, Phase: PhaseCompleted}, nil
			}
			t.history.Append(crank.NewUserMessage(parts...))
			t.saveTurn(ctx)
			t.state.setPhase(PhaseRecursing)
			continue
		}

		t.state.setPhase(PhaseAwaitingTool)
		response := t.dispatchTool(ctx, toolBlock, turn)

		userParts := make([]crank.ContentPart, 0, len(response.Parts)+2)
		userParts = append(userParts, crank.NewTextPart(toolResultHeader(toolBlock.Name)))
		userParts = append(userParts, response.Parts...)

		// Only one tool runs per turn; later blocks get a skipped notice so
		// the model learns the constraint.
		for _, extra := range laterToolUses(blocks) {
			t.emit(event.Event{Type: event.ToolSkipped, Turn: turn, ToolName: extra.Name})
			userParts = append(userParts, crank.NewTextPart(tool.AlreadyUsedResponse(extra.Name).Text()))
		}

		t.state.setToolUsed()
		t.state.setContentReady()
		t.history.Append(crank.NewUserMessage(userParts...))
		t.saveTurn(ctx)

		if t.state.Aborted() {
			return t.finishAborted(ctx, turn, nil)
		}
		t.state.setPhase(PhaseRecursing)
	}
}

// suspensionPoint checks abort and pause at a turn boundary.
func (t *Task) suspensionPoint(ctx context.Context) error {
	if t.state.Aborted() {
		return ErrAborted
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if t.state.Paused() {
		t.emit(event.Event{Type: event.Paused})
		if err := t.state.awaitResume(ctx); err != nil {
			return err
		}
		t.emit(event.Event{Type: event.Resumed})
	}
	if t.state.Aborted() {
		return ErrAborted
	}
	return nil
}

func (t *Task) finishAborted(ctx context.Context, turns int, cause error) (*Result, error) {
	t.saveTurn(ctx)
	t.emit(event.Event{Type: event.RunAborted, Turn: turns, Error: cause})
	t.state.setPhase(PhaseAborted)
	if cause == nil || errors.Is(cause, ErrAborted) {
		cause = ErrAborted
	}
	return &Result{Turns: turns, Phase: PhaseAborted}, cause
}

// maybeTruncate elides old history when the latest request crossed the
// window threshold. A condense failure is surfaced and truncation skipped
// for this turn.
func (t *Task) maybeTruncate(ctx context.Context) {
	w := t.opts.Window
	if w == nil || !w.ShouldTruncate() {
		return
	}

	var (
		r   store.Range
		ok  bool
		err error
	)
	if t.opts.CondenseHistory {
		r, ok, err = w.Condense(ctx, t.client, t.history)
	} else {
		r, ok, err = w.Truncate(t.history)
	}
	if err != nil {
		t.opts.Operator.Say(SayError, "failed to condense history: "+err.Error(), false)
		return
	}
	if ok {
		t.emit(event.Event{Type: event.Truncation, Removed: r.End - r.Start})
	}
}

// streamOutcome is the accumulated result of consuming one response stream.
type streamOutcome struct {
	text      string
	reasoning string
	usage     crank.Usage
	// interrupted means content was cut off, by abort or stream failure.
	interrupted bool
	streamErr   error
}

// requestAndStream issues the model request, retrying pre-stream failures
// per the retry policy, and consumes the response stream.
func (t *Task) requestAndStream(ctx context.Context, turn int) (*streamOutcome, error) {
	attempt := 0
	var lastErr error

	for {
		if t.state.Aborted() {
			return nil, ErrAborted
		}

		var minDelay time.Duration
		if attempt > 0 {
			minDelay = t.opts.Retry.DelayFor(attempt-1, lastErr)
			t.emit(event.Event{Type: event.RetryScheduled, Turn: turn, Attempt: attempt, Delay: minDelay})
		}
		// The rate-limit window and the backoff delay layer: the effective
		// wait is whichever is longer.
		if err := t.opts.Limiter.Wait(ctx, minDelay); err != nil {
			return nil, err
		}
		if t.state.Aborted() {
			return nil, ErrAborted
		}

		t.state.setPhase(PhaseStreaming)
		events, err := t.client.CreateCompletion(ctx, t.buildRequest(ctx))
		if err == nil {
			outcome := t.consumeStream(events, turn)
			if outcome.streamErr != nil && outcome.text == "" && outcome.reasoning == "" {
				// Failed before any content streamed; retry-eligible.
				err = outcome.streamErr
			} else {
				return outcome, nil
			}
		}

		lastErr = err
		if t.opts.AutoResubmit && retry.IsTransient(err) {
			attempt++
			continue
		}

		resp, askErr := t.opts.Operator.Ask(ctx, AskRequestFailed, err.Error(), false)
		if askErr != nil || resp.Decision == DecisionRejected {
			return nil, err
		}
		attempt++
	}
}

func (t *Task) buildRequest(ctx context.Context) provider.Request {
	msgs := t.history.Messages()
	if t.opts.Environment != nil {
		if details := t.opts.Environment(ctx); details != "" {
			msgs = withEnvironment(msgs, details)
		}
	}
	return provider.Request{
		SystemPrompt: t.opts.SystemPrompt,
		Messages:     msgs,
		Model:        t.opts.Model,
		MaxTokens:    t.opts.MaxTokens,
	}
}

// withEnvironment appends environment details to the latest user message on
// a copy of the slice, leaving persisted history untouched.
func withEnvironment(msgs []crank.Message, details string) []crank.Message {
	if len(msgs) == 0 {
		return msgs
	}
	last := msgs[len(msgs)-1]
	if last.Role != crank.RoleUser {
		return msgs
	}

	out := make([]crank.Message, len(msgs))
	copy(out, msgs)
	if last.HasParts() {
		parts := make([]crank.ContentPart, len(last.Parts), len(last.Parts)+1)
		copy(parts, last.Parts)
		last.Parts = append(parts, crank.NewTextPart(details))
	} else {
		last.Content = last.Content + "\n\n" + details
	}
	out[len(out)-1] = last
	return out
}

// consumeStream drains the response stream, re-parsing the accumulated text
// on every chunk and presenting blocks as they complete. Abort is observed
// between chunks; the remaining stream is drained in the background so the
// adapter can finish.
func (t *Task) consumeStream(events <-chan provider.StreamEvent, turn int) *streamOutcome {
	out := &streamOutcome{}
	messageID := crank.GenerateMessageID()
	t.emit(event.Event{Type: event.MessageStart, Turn: turn, MessageID: messageID})

	presented := 0
	for ev := range events {
		if t.state.Aborted() {
			out.interrupted = true
			go func() {
				for range events {
				}
			}()
			break
		}

		if ev.Usage != nil {
			out.usage = *ev.Usage
		}
		if ev.Err != nil {
			out.streamErr = ev.Err
			if out.text != "" || out.reasoning != "" {
				out.interrupted = true
			}
			continue
		}
		if ev.Reasoning != "" {
			out.reasoning += ev.Reasoning
			t.opts.Operator.Say(SayReasoning, ev.Reasoning, true)
			t.emit(event.Event{Type: event.Reasoning, Turn: turn, MessageID: messageID, Delta: ev.Reasoning})
		}
		if ev.Text != "" {
			out.text += ev.Text
			t.emit(event.Event{Type: event.MessageDelta, Turn: turn, MessageID: messageID, Delta: ev.Text})
			presented = t.present(out.text, presented, turn)
		}
	}

	t.emit(event.Event{Type: event.MessageEnd, Turn: turn, MessageID: messageID})
	return out
}

// present re-parses the accumulated text and surfaces blocks from the
// presented index onward. Completed blocks advance the index; the trailing
// partial block is re-presented in place on each call.
func (t *Task) present(accum string, presented int, turn int) int {
	t.state.setPhase(PhasePresenting)
	blocks := parser.Parse(accum)

	for i := presented; i < len(blocks); i++ {
		partial := blocks[i].IsPartial()
		switch b := blocks[i].(type) {
		case crank.TextBlock:
			t.opts.Operator.Say(SayText, b.Text, partial)
		case crank.ToolUseBlock:
			if partial {
				t.coordinator.Preview(b)
				t.opts.Operator.Say(SayToolPreview, b.Name, true)
				t.emit(event.Event{Type: event.ToolPreview, Turn: turn, ToolName: b.Name, ToolUse: &b})
			}
		}
		if !partial {
			presented = i + 1
		}
	}

	t.state.setStreamingIndex(presented)
	return presented
}

// dispatchTool runs the turn's single tool through validation, the approval
// gate, and the coordinator. Every failure mode comes back as a structured
// response; dispatch itself never errors.
func (t *Task) dispatchTool(ctx context.Context, block crank.ToolUseBlock, turn int) crank.ToolResponse {
	t.emit(event.Event{Type: event.ToolStart, Turn: turn, ToolName: block.Name, ToolUse: &block})

	if resp, ok := t.coordinator.Validate(block); !ok {
		t.state.addMistake()
		t.opts.Operator.Say(SayToolResult, resp.Text(), false)
		t.emit(event.Event{Type: event.ToolResult, Turn: turn, ToolName: block.Name, Response: &resp})
		return resp
	}

	var approvalFeedback *AskResponse
	autoApproved := false
	reason := "no approval policy configured"
	if t.opts.Gate != nil {
		d := t.opts.Gate.Decide(block.Name, t.coordinator.TargetPath(block))
		autoApproved = d.AutoApprove
		if d.Reason != "" {
			reason = d.Reason
		}
	}

	if autoApproved {
		t.emit(event.Event{Type: event.ToolApproved, Turn: turn, ToolName: block.Name})
	} else {
		resp, err := t.opts.Operator.Ask(ctx, AskToolApproval, block.Name+": "+reason, false)
		if err != nil || resp.Decision != DecisionApproved {
			t.state.setRejected()
			t.emit(event.Event{Type: event.ToolRejected, Turn: turn, ToolName: block.Name, Message: resp.Text})
			// Ordering: rejection notice first, then the operator's
			// feedback, so the model sees cause before elaboration.
			parts := appendFeedback([]crank.ContentPart{crank.NewTextPart(rejectionNotice(block.Name))}, resp)
			return crank.ToolResponse{Parts: parts, Rejected: true}
		}
		t.emit(event.Event{Type: event.ToolApproved, Turn: turn, ToolName: block.Name})
		if resp.Text != "" || len(resp.Images) > 0 {
			approvalFeedback = &resp
		}
	}

	result := t.coordinator.Execute(ctx, block)
	if approvalFeedback != nil {
		result.Parts = appendFeedback(result.Parts, *approvalFeedback)
	}
	if !result.IsError {
		t.state.clearMistakes()
	}

	t.opts.Operator.Say(SayToolResult, result.Text(), false)
	t.emit(event.Event{Type: event.ToolResult, Turn: turn, ToolName: block.Name, Response: &result})
	return result
}

// handleCompletion processes the finish tool. Returns done=true with the
// accepted output, or the user parts to continue with when the operator
// sends the task back.
func (t *Task) handleCompletion(ctx context.Context, block crank.ToolUseBlock) (bool, string, []crank.ContentPart) {
	output := strings.TrimSpace(block.Param("result"))
	if output == "" {
		t.state.addMistake()
		resp, _ := t.coordinator.Validate(block)
		if resp.IsEmpty() {
			resp = crank.ErrorResponse("Missing value for required parameter \"result\" of the completion tool.")
		}
		return false, "", append([]crank.ContentPart{crank.NewTextPart(toolResultHeader(block.Name))}, resp.Parts...)
	}

	resp, err := t.opts.Operator.Ask(ctx, AskCompletion, output, false)
	if err == nil && resp.Decision == DecisionApproved {
		return true, output, nil
	}

	parts := appendFeedback([]crank.ContentPart{crank.NewTextPart(completionFeedbackNotice)}, resp)
	return false, "", parts
}

// saveTurn commits turn-boundary side effects: the workspace checkpoint and
// the persisted history snapshot. Failures are surfaced, never fatal.
func (t *Task) saveTurn(ctx context.Context) {
	if err := t.opts.Checkpointer.Save(ctx); err != nil {
		t.opts.Operator.Say(SayError, "checkpoint save failed: "+err.Error(), false)
	}
	if t.opts.HistoryKey != "" {
		if err := t.history.Save(ctx, t.opts.HistoryKey); err != nil {
			t.opts.Operator.Say(SayError, "history save failed: "+err.Error(), false)
		}
	}
}

func laterToolUses(blocks []crank.ContentBlock) []crank.ToolUseBlock {
	var out []crank.ToolUseBlock
	seen := false
	for _, b := range blocks {
		if tb, ok := b.(crank.ToolUseBlock); ok {
			if seen {
				out = append(out, tb)
			}
			seen = true
		}
	}
	return out
}

func (t *Task) emit(e event.Event) {
	event.Emit(t.opts.Events, e)
}
