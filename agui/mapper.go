package agui

import (
	"encoding/json"
	"strconv"

	"github.com/ag-ui-protocol/ag-ui/sdks/community/go/pkg/core/events"
	"github.com/google/uuid"

	"github.com/spetersoncode/crank/event"
)

// Role constants matching the AG-UI protocol.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
	RoleTool      = "tool"
)

// Mapper converts task events to AG-UI events. One task event may expand to
// several protocol events (a tool dispatch becomes Start, Args, End).
//
// Create a new Mapper for each run. The Mapper is not safe for concurrent
// use; each goroutine should have its own.
type Mapper struct {
	threadID      string
	runID         string
	currentToolID string
}

// NewMapper creates a Mapper for a single run. Empty IDs are generated.
func NewMapper(threadID, runID string) *Mapper {
	if threadID == "" {
		threadID = events.GenerateThreadID()
	}
	if runID == "" {
		runID = events.GenerateRunID()
	}
	return &Mapper{threadID: threadID, runID: runID}
}

// ThreadID returns the thread ID for this mapper.
func (m *Mapper) ThreadID() string {
	return m.threadID
}

// RunID returns the run ID for this mapper.
func (m *Mapper) RunID() string {
	return m.runID
}

// MapEvent converts a task event to its AG-UI equivalents. Returns nil for
// events with no protocol equivalent.
func (m *Mapper) MapEvent(e event.Event) []events.Event {
	switch e.Type {
	case event.RunStart:
		return one(events.NewRunStartedEvent(m.threadID, m.runID))
	case event.RunEnd:
		return one(events.NewRunFinishedEvent(m.threadID, m.runID))
	case event.RunAborted:
		return one(events.NewRunErrorEvent("task aborted"))
	case event.RunError:
		msg := "unknown error"
		if e.Error != nil {
			msg = e.Error.Error()
		}
		return one(events.NewRunErrorEvent(msg))

	case event.TurnStart:
		return one(events.NewStepStartedEvent(turnName(e.Turn)))
	case event.TurnEnd:
		return one(events.NewStepFinishedEvent(turnName(e.Turn)))

	case event.MessageStart:
		return one(events.NewTextMessageStartEvent(e.MessageID, events.WithRole(RoleAssistant)))
	case event.MessageDelta:
		return one(events.NewTextMessageContentEvent(e.MessageID, e.Delta))
	case event.MessageEnd:
		return one(events.NewTextMessageEndEvent(e.MessageID))

	case event.ToolStart:
		m.currentToolID = "call-" + uuid.New().String()
		out := []events.Event{events.NewToolCallStartEvent(m.currentToolID, e.ToolName)}
		if e.ToolUse != nil {
			if args, err := json.Marshal(e.ToolUse.Params); err == nil {
				out = append(out, events.NewToolCallArgsEvent(m.currentToolID, string(args)))
			}
		}
		return append(out, events.NewToolCallEndEvent(m.currentToolID))

	case event.ToolResult:
		if e.Response == nil {
			return nil
		}
		return one(events.NewToolCallResultEvent(events.GenerateMessageID(), m.toolID(), e.Response.Text()))

	case event.ToolRejected:
		content := "Rejected by the user."
		if e.Message != "" {
			content += " " + e.Message
		}
		return one(events.NewToolCallResultEvent(events.GenerateMessageID(), m.toolID(), content))

	// Approval, preview, retry, truncation, and pause events have no AG-UI
	// equivalent.
	default:
		return nil
	}
}

func (m *Mapper) toolID() string {
	if m.currentToolID == "" {
		m.currentToolID = "call-" + uuid.New().String()
	}
	return m.currentToolID
}

func turnName(turn int) string {
	return "turn-" + strconv.Itoa(turn)
}

func one(e events.Event) []events.Event {
	return []events.Event{e}
}
