package agui

import (
	"github.com/ag-ui-protocol/ag-ui/sdks/community/go/pkg/core/events"

	crank "github.com/spetersoncode/crank"
)

// ToMessages converts AG-UI messages to conversation messages. System and
// tool roles are folded into the user role, the only roles the task loop
// distinguishes.
func ToMessages(msgs []events.Message) []crank.Message {
	result := make([]crank.Message, 0, len(msgs))
	for _, msg := range msgs {
		result = append(result, ToMessage(msg))
	}
	return result
}

// ToMessage converts a single AG-UI message.
func ToMessage(msg events.Message) crank.Message {
	m := crank.Message{
		ID:   msg.ID,
		Role: toRole(msg.Role),
	}
	if msg.Content != nil {
		m.Content = *msg.Content
	}
	return m
}

// FromMessages converts conversation messages to AG-UI messages, e.g. for a
// messages snapshot. Image parts are dropped; AG-UI message content is text.
func FromMessages(msgs []crank.Message) []events.Message {
	result := make([]events.Message, 0, len(msgs))
	for _, msg := range msgs {
		result = append(result, FromMessage(msg))
	}
	return result
}

// FromMessage converts a single conversation message.
func FromMessage(msg crank.Message) events.Message {
	id := msg.ID
	if id == "" {
		id = events.GenerateMessageID()
	}
	m := events.Message{
		ID:   id,
		Role: fromRole(msg.Role),
	}
	if text := msg.Text(); text != "" {
		m.Content = &text
	}
	return m
}

func toRole(role string) crank.Role {
	if role == RoleAssistant {
		return crank.RoleAssistant
	}
	return crank.RoleUser
}

func fromRole(role crank.Role) string {
	if role == crank.RoleAssistant {
		return RoleAssistant
	}
	return RoleUser
}
