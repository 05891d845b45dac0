package google

import (
	"encoding/base64"
	"fmt"

	"google.golang.org/genai"

	crank "github.com/spetersoncode/crank"
)

func convertMessages(messages []crank.Message) ([]*genai.Content, error) {
	var contents []*genai.Content

	for _, msg := range messages {
		role := genai.RoleUser
		if msg.Role == crank.RoleAssistant {
			role = genai.RoleModel
		}

		var parts []*genai.Part
		if msg.HasParts() {
			for _, part := range msg.Parts {
				p, err := convertPart(part)
				if err != nil {
					return nil, err
				}
				if p != nil {
					parts = append(parts, p)
				}
			}
		} else if msg.Content != "" {
			parts = append(parts, &genai.Part{Text: msg.Content})
		}

		if len(parts) > 0 {
			contents = append(contents, &genai.Content{Role: role, Parts: parts})
		}
	}

	return contents, nil
}

func convertPart(part crank.ContentPart) (*genai.Part, error) {
	switch part.Type {
	case crank.ContentPartTypeText:
		if part.Text == "" {
			return nil, nil
		}
		return &genai.Part{Text: part.Text}, nil
	case crank.ContentPartTypeImage:
		if part.Base64 == "" {
			return nil, nil
		}
		data, err := base64.StdEncoding.DecodeString(part.Base64)
		if err != nil {
			return nil, fmt.Errorf("google: decode image: %w", err)
		}
		mimeType := part.MimeType
		if mimeType == "" {
			mimeType = "image/png"
		}
		return &genai.Part{
			InlineData: &genai.Blob{MIMEType: mimeType, Data: data},
		}, nil
	default:
		return nil, nil
	}
}
