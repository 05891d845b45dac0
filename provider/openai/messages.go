package openai

import (
	"fmt"

	"github.com/openai/openai-go"

	crank "github.com/spetersoncode/crank"
	"github.com/spetersoncode/crank/provider"
)

func convertMessages(req provider.Request) []openai.ChatCompletionMessageParamUnion {
	var result []openai.ChatCompletionMessageParamUnion

	if req.SystemPrompt != "" {
		result = append(result, openai.SystemMessage(req.SystemPrompt))
	}

	for _, msg := range req.Messages {
		switch msg.Role {
		case crank.RoleUser:
			if msg.HasParts() {
				parts := convertParts(msg.Parts)
				if len(parts) > 0 {
					result = append(result, openai.UserMessage(parts))
				}
			} else if msg.Content != "" {
				result = append(result, openai.UserMessage(msg.Content))
			}
		case crank.RoleAssistant:
			if text := msg.Text(); text != "" {
				result = append(result, openai.AssistantMessage(text))
			}
		}
	}

	return result
}

func convertParts(parts []crank.ContentPart) []openai.ChatCompletionContentPartUnionParam {
	var out []openai.ChatCompletionContentPartUnionParam
	for _, part := range parts {
		switch part.Type {
		case crank.ContentPartTypeText:
			if part.Text != "" {
				out = append(out, openai.TextContentPart(part.Text))
			}
		case crank.ContentPartTypeImage:
			if part.Base64 != "" {
				mimeType := part.MimeType
				if mimeType == "" {
					mimeType = "image/png"
				}
				out = append(out, openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
					URL: fmt.Sprintf("data:%s;base64,%s", mimeType, part.Base64),
				}))
			}
		}
	}
	return out
}
