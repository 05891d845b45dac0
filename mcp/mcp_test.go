package mcp

import (
	"context"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	crank "github.com/spetersoncode/crank"
	"github.com/spetersoncode/crank/tool"
)

func TestRegisterTools(t *testing.T) {
	registry := tool.NewRegistry()
	require.NoError(t, RegisterTools(registry, NewHub()))

	assert.True(t, registry.Has(UseToolName))
	assert.True(t, registry.Has(ReadResourceName))

	def, ok := registry.GetTool(UseToolName)
	require.True(t, ok)
	assert.Equal(t, []string{"server_name", "tool_name"}, def.Required)
}

func TestUseToolHandlerUnknownServer(t *testing.T) {
	handler := useToolHandler(NewHub())

	resp, err := handler(context.Background(), crank.ToolUseBlock{
		Name: UseToolName,
		Params: map[string]string{
			"server_name": "ghost",
			"tool_name":   "anything",
		},
	})
	require.NoError(t, err, "protocol failures come back as responses, not errors")
	assert.True(t, resp.IsError)
	assert.Contains(t, resp.Text(), `no connected server named "ghost"`)
}

func TestUseToolHandlerInvalidArguments(t *testing.T) {
	handler := useToolHandler(NewHub())

	resp, err := handler(context.Background(), crank.ToolUseBlock{
		Name: UseToolName,
		Params: map[string]string{
			"server_name": "srv",
			"tool_name":   "echo",
			"arguments":   "{not json",
		},
	})
	require.NoError(t, err)
	assert.True(t, resp.IsError)
	assert.Contains(t, resp.Text(), "Invalid JSON")
}

func TestReadResourceHandlerUnknownServer(t *testing.T) {
	handler := readResourceHandler(NewHub())

	resp, err := handler(context.Background(), crank.ToolUseBlock{
		Name: ReadResourceName,
		Params: map[string]string{
			"server_name": "ghost",
			"uri":         "file:///tmp/x",
		},
	})
	require.NoError(t, err)
	assert.True(t, resp.IsError)
}

func TestToolResponse(t *testing.T) {
	t.Run("nil result", func(t *testing.T) {
		resp := toolResponse(nil)
		assert.True(t, resp.IsError)
	})

	t.Run("text and image content", func(t *testing.T) {
		resp := toolResponse(&mcp.CallToolResult{
			Content: []mcp.Content{
				mcp.TextContent{Type: "text", Text: "line one"},
				mcp.TextContent{Type: "text", Text: "line two"},
				mcp.ImageContent{Type: "image", Data: "aGk=", MIMEType: "image/png"},
			},
		})
		assert.False(t, resp.IsError)
		assert.Contains(t, resp.Text(), "line one\nline two")

		require.Len(t, resp.Parts, 2)
		assert.Equal(t, crank.ContentPartTypeImage, resp.Parts[1].Type)
		assert.Equal(t, "image/png", resp.Parts[1].MimeType)
	})

	t.Run("error flag propagates", func(t *testing.T) {
		resp := toolResponse(&mcp.CallToolResult{
			IsError: true,
			Content: []mcp.Content{mcp.TextContent{Type: "text", Text: "it broke"}},
		})
		assert.True(t, resp.IsError)
	})
}

func TestResourceResponse(t *testing.T) {
	resp := resourceResponse(&mcp.ReadResourceResult{
		Contents: []mcp.ResourceContents{
			mcp.TextResourceContents{URI: "file:///a", Text: "contents"},
			mcp.BlobResourceContents{URI: "file:///b", Blob: "aGk=", MIMEType: "image/jpeg"},
		},
	})
	require.Len(t, resp.Parts, 2)
	assert.Equal(t, "contents", resp.Parts[0].Text)
	assert.Equal(t, crank.ContentPartTypeImage, resp.Parts[1].Type)
}

func TestHubNames(t *testing.T) {
	hub := NewHub()
	assert.Empty(t, hub.Names())
	assert.NoError(t, hub.Close())
}
