package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	crank "github.com/spetersoncode/crank"
	"github.com/spetersoncode/crank/tool"
)

// Tool names surfaced to the model for MCP access.
const (
	UseToolName      = "use_mcp_tool"
	ReadResourceName = "access_mcp_resource"
)

// RegisterTools registers the MCP proxy tools on a registry, backed by the
// hub's connections. Invalid invocations come back as structured error
// responses so the model can self-correct.
func RegisterTools(registry *tool.Registry, hub *Hub) error {
	if err := registry.Register(tool.Tool{
		Name:        UseToolName,
		Description: "Invoke a tool provided by a connected MCP server.",
		Required:    []string{"server_name", "tool_name"},
		Optional:    []string{"arguments"},
	}, useToolHandler(hub)); err != nil {
		return err
	}
	return registry.Register(tool.Tool{
		Name:        ReadResourceName,
		Description: "Read a resource exposed by a connected MCP server.",
		Required:    []string{"server_name", "uri"},
	}, readResourceHandler(hub))
}

func useToolHandler(hub *Hub) tool.Handler {
	return func(ctx context.Context, block crank.ToolUseBlock) (crank.ToolResponse, error) {
		serverName := block.Param("server_name")
		toolName := block.Param("tool_name")

		var args any
		if raw := block.Param("arguments"); raw != "" {
			if err := json.Unmarshal([]byte(raw), &args); err != nil {
				return crank.ErrorResponse(fmt.Sprintf(
					"Invalid JSON in the arguments parameter for %s on server %q: %v. Provide a valid JSON object.",
					toolName, serverName, err)), nil
			}
		}

		result, err := hub.CallTool(ctx, serverName, toolName, args)
		if err != nil {
			return crank.ErrorResponse(err.Error()), nil
		}
		return toolResponse(result), nil
	}
}

func readResourceHandler(hub *Hub) tool.Handler {
	return func(ctx context.Context, block crank.ToolUseBlock) (crank.ToolResponse, error) {
		result, err := hub.ReadResource(ctx, block.Param("server_name"), block.Param("uri"))
		if err != nil {
			return crank.ErrorResponse(err.Error()), nil
		}
		return resourceResponse(result), nil
	}
}

// toolResponse flattens an MCP tool result into a ToolResponse. Text content
// is concatenated; image content becomes image parts; anything else is
// marshalled as JSON.
func toolResponse(result *mcp.CallToolResult) crank.ToolResponse {
	if result == nil {
		return crank.ErrorResponse("MCP server returned an empty result.")
	}

	var texts []string
	var images []crank.ContentPart
	for _, c := range result.Content {
		switch content := c.(type) {
		case mcp.TextContent:
			texts = append(texts, content.Text)
		case *mcp.TextContent:
			texts = append(texts, content.Text)
		case mcp.ImageContent:
			images = append(images, crank.NewImagePart(content.Data, content.MIMEType))
		case *mcp.ImageContent:
			images = append(images, crank.NewImagePart(content.Data, content.MIMEType))
		default:
			if data, err := json.Marshal(content); err == nil {
				texts = append(texts, string(data))
			}
		}
	}
	if result.StructuredContent != nil {
		if data, err := json.Marshal(result.StructuredContent); err == nil {
			texts = append(texts, string(data))
		}
	}

	var parts []crank.ContentPart
	if joined := strings.Join(texts, "\n"); joined != "" {
		parts = append(parts, crank.NewTextPart(joined))
	}
	parts = append(parts, images...)

	return crank.ToolResponse{Parts: parts, IsError: result.IsError}
}

// resourceResponse flattens an MCP resource read into a ToolResponse.
func resourceResponse(result *mcp.ReadResourceResult) crank.ToolResponse {
	if result == nil {
		return crank.ErrorResponse("MCP server returned an empty resource.")
	}

	var parts []crank.ContentPart
	for _, c := range result.Contents {
		switch content := c.(type) {
		case mcp.TextResourceContents:
			parts = append(parts, crank.NewTextPart(content.Text))
		case *mcp.TextResourceContents:
			parts = append(parts, crank.NewTextPart(content.Text))
		case mcp.BlobResourceContents:
			parts = append(parts, crank.NewImagePart(content.Blob, content.MIMEType))
		case *mcp.BlobResourceContents:
			parts = append(parts, crank.NewImagePart(content.Blob, content.MIMEType))
		}
	}
	return crank.ToolResponse{Parts: parts}
}
