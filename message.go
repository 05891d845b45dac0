package crank

import (
	"time"

	"github.com/google/uuid"
)

// Role represents the role of a message sender in a conversation.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ContentPartType represents the type of content in a message part.
type ContentPartType string

const (
	ContentPartTypeText  ContentPartType = "text"
	ContentPartTypeImage ContentPartType = "image"
)

// ContentPart represents a single segment of message content.
// Use either Text (for text parts) or Base64/MimeType (for image parts).
// Tool responses and operator feedback may carry images alongside text.
type ContentPart struct {
	// Type indicates the content type: "text" or "image".
	Type ContentPartType `json:"type"`
	// Text contains the text content. Only used when Type is "text".
	Text string `json:"text,omitempty"`
	// Base64 contains base64-encoded image data. Only used when Type is "image".
	Base64 string `json:"base64,omitempty"`
	// MimeType specifies the image format (e.g., "image/png").
	// Required when using Base64.
	MimeType string `json:"mimeType,omitempty"`
}

// NewTextPart creates a text content part.
func NewTextPart(text string) ContentPart {
	return ContentPart{
		Type: ContentPartTypeText,
		Text: text,
	}
}

// NewImagePart creates an image content part from base64 data.
func NewImagePart(base64Data, mimeType string) ContentPart {
	return ContentPart{
		Type:     ContentPartTypeImage,
		Base64:   base64Data,
		MimeType: mimeType,
	}
}

// Message represents a single message in a conversation.
//
// History is an ordered, append-only list of Messages. Older entries may be
// elided by the context-window manager via a deleted-range marker on the
// store, never by physical removal, so a persisted conversation stays
// resumable.
type Message struct {
	// ID is a unique identifier for the message.
	ID string `json:"id,omitempty"`
	Role Role `json:"role"`
	// Content is the plain-text content when the message has no Parts.
	Content string `json:"content,omitempty"`
	// Parts contains multi-segment content (text and images). If populated,
	// Content is ignored.
	Parts []ContentPart `json:"parts,omitempty"`
	// Ts is the creation time in Unix milliseconds. It is the stable address
	// used to update a partial operator-facing message in place.
	Ts int64 `json:"ts"`
}

// GenerateMessageID creates a unique message identifier.
func GenerateMessageID() string {
	return "msg-" + uuid.New().String()
}

// NewUserMessage creates a user message from content parts.
func NewUserMessage(parts ...ContentPart) Message {
	return Message{
		ID:    GenerateMessageID(),
		Role:  RoleUser,
		Parts: parts,
		Ts:    time.Now().UnixMilli(),
	}
}

// NewAssistantMessage creates an assistant message with text content.
func NewAssistantMessage(content string) Message {
	return Message{
		ID:      GenerateMessageID(),
		Role:    RoleAssistant,
		Content: content,
		Ts:      time.Now().UnixMilli(),
	}
}

// HasParts returns true if the message has multi-segment content.
func (m Message) HasParts() bool {
	return len(m.Parts) > 0
}

// Text returns the textual content of the message: Content when Parts is
// empty, otherwise all text parts joined by newlines.
func (m Message) Text() string {
	if len(m.Parts) == 0 {
		return m.Content
	}
	text := ""
	for _, p := range m.Parts {
		if p.Type != ContentPartTypeText {
			continue
		}
		if text != "" {
			text += "\n"
		}
		text += p.Text
	}
	return text
}
