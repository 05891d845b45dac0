package anthropic

import (
	"github.com/anthropics/anthropic-sdk-go"

	crank "github.com/spetersoncode/crank"
)

func convertMessages(messages []crank.Message) []anthropic.MessageParam {
	var result []anthropic.MessageParam

	for _, msg := range messages {
		switch msg.Role {
		case crank.RoleUser:
			if msg.HasParts() {
				blocks := convertParts(msg.Parts)
				if len(blocks) > 0 {
					result = append(result, anthropic.MessageParam{
						Role:    anthropic.MessageParamRoleUser,
						Content: blocks,
					})
				}
			} else if msg.Content != "" {
				// The Anthropic API rejects empty text blocks.
				result = append(result, anthropic.NewUserMessage(anthropic.NewTextBlock(msg.Content)))
			}
		case crank.RoleAssistant:
			if text := msg.Text(); text != "" {
				result = append(result, anthropic.NewAssistantMessage(anthropic.NewTextBlock(text)))
			}
		}
	}

	return result
}

func convertParts(parts []crank.ContentPart) []anthropic.ContentBlockParamUnion {
	var blocks []anthropic.ContentBlockParamUnion
	for _, part := range parts {
		switch part.Type {
		case crank.ContentPartTypeText:
			if part.Text != "" {
				blocks = append(blocks, anthropic.NewTextBlock(part.Text))
			}
		case crank.ContentPartTypeImage:
			if part.Base64 != "" {
				mediaType := part.MimeType
				if mediaType == "" {
					mediaType = "image/png"
				}
				blocks = append(blocks, anthropic.NewImageBlockBase64(mediaType, part.Base64))
			}
		}
	}
	return blocks
}
