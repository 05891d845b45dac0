package agui

import (
	"errors"
	"testing"

	"github.com/ag-ui-protocol/ag-ui/sdks/community/go/pkg/core/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	crank "github.com/spetersoncode/crank"
	"github.com/spetersoncode/crank/event"
)

func TestNewMapperGeneratesIDs(t *testing.T) {
	m := NewMapper("", "")
	assert.NotEmpty(t, m.ThreadID())
	assert.NotEmpty(t, m.RunID())

	m2 := NewMapper("thread-1", "run-1")
	assert.Equal(t, "thread-1", m2.ThreadID())
	assert.Equal(t, "run-1", m2.RunID())
}

func TestMapEventRunLifecycle(t *testing.T) {
	m := NewMapper("t", "r")

	out := m.MapEvent(event.Event{Type: event.RunStart})
	require.Len(t, out, 1)
	assert.Equal(t, events.EventTypeRunStarted, out[0].Type())

	out = m.MapEvent(event.Event{Type: event.RunEnd})
	require.Len(t, out, 1)
	assert.Equal(t, events.EventTypeRunFinished, out[0].Type())

	out = m.MapEvent(event.Event{Type: event.RunError, Error: errors.New("boom")})
	require.Len(t, out, 1)
	assert.Equal(t, events.EventTypeRunError, out[0].Type())

	out = m.MapEvent(event.Event{Type: event.RunAborted})
	require.Len(t, out, 1)
	assert.Equal(t, events.EventTypeRunError, out[0].Type())
}

func TestMapEventMessageLifecycle(t *testing.T) {
	m := NewMapper("t", "r")

	out := m.MapEvent(event.Event{Type: event.MessageStart, MessageID: "m1"})
	require.Len(t, out, 1)
	assert.Equal(t, events.EventTypeTextMessageStart, out[0].Type())

	out = m.MapEvent(event.Event{Type: event.MessageDelta, MessageID: "m1", Delta: "hi"})
	require.Len(t, out, 1)
	assert.Equal(t, events.EventTypeTextMessageContent, out[0].Type())

	out = m.MapEvent(event.Event{Type: event.MessageEnd, MessageID: "m1"})
	require.Len(t, out, 1)
	assert.Equal(t, events.EventTypeTextMessageEnd, out[0].Type())
}

func TestMapEventToolDispatchExpands(t *testing.T) {
	m := NewMapper("t", "r")
	block := &crank.ToolUseBlock{
		Name:   "read_file",
		Params: map[string]string{"path": "main.go"},
	}

	out := m.MapEvent(event.Event{Type: event.ToolStart, ToolName: "read_file", ToolUse: block})
	require.Len(t, out, 3)
	assert.Equal(t, events.EventTypeToolCallStart, out[0].Type())
	assert.Equal(t, events.EventTypeToolCallArgs, out[1].Type())
	assert.Equal(t, events.EventTypeToolCallEnd, out[2].Type())

	resp := crank.TextResponse("file contents")
	out = m.MapEvent(event.Event{Type: event.ToolResult, ToolName: "read_file", Response: &resp})
	require.Len(t, out, 1)
	assert.Equal(t, events.EventTypeToolCallResult, out[0].Type())
}

func TestMapEventNoEquivalent(t *testing.T) {
	m := NewMapper("t", "r")
	assert.Nil(t, m.MapEvent(event.Event{Type: event.RetryScheduled}))
	assert.Nil(t, m.MapEvent(event.Event{Type: event.Truncation}))
	assert.Nil(t, m.MapEvent(event.Event{Type: event.ToolPreview}))
}

func TestMessageRoundTrip(t *testing.T) {
	msgs := []crank.Message{
		crank.NewUserMessage(crank.NewTextPart("hello")),
		crank.NewAssistantMessage("hi there"),
	}

	agMsgs := FromMessages(msgs)
	require.Len(t, agMsgs, 2)
	assert.Equal(t, RoleUser, agMsgs[0].Role)
	assert.Equal(t, RoleAssistant, agMsgs[1].Role)
	require.NotNil(t, agMsgs[1].Content)
	assert.Equal(t, "hi there", *agMsgs[1].Content)

	back := ToMessages(agMsgs)
	require.Len(t, back, 2)
	assert.Equal(t, crank.RoleUser, back[0].Role)
	assert.Equal(t, "hello", back[0].Text())
	assert.Equal(t, crank.RoleAssistant, back[1].Role)
}
