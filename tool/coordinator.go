package tool

import (
	"context"
	"fmt"
	"strings"

	crank "github.com/spetersoncode/crank"
)

// Coordinator is the single dispatch entry point for tool-use blocks. It
// validates an invocation against the registered tool definition, runs the
// handler, and converts every protocol-level problem into a structured error
// response the model can self-correct from.
type Coordinator struct {
	registry *Registry
}

// NewCoordinator creates a Coordinator over the given registry.
func NewCoordinator(registry *Registry) *Coordinator {
	return &Coordinator{registry: registry}
}

// Registry returns the underlying registry.
func (c *Coordinator) Registry() *Registry {
	return c.registry
}

// Has returns true if the named tool is registered.
func (c *Coordinator) Has(name string) bool {
	return c.registry.Has(name)
}

// Validate checks a complete tool-use block against its definition. It
// returns a structured error response and false if the tool is unknown or a
// required parameter is missing, or an empty response and true if the block
// is dispatchable.
func (c *Coordinator) Validate(block crank.ToolUseBlock) (crank.ToolResponse, bool) {
	def, ok := c.registry.GetTool(block.Name)
	if !ok {
		return crank.ErrorResponse(unknownToolMessage(block.Name, c.registry.Names())), false
	}

	var missing []string
	for _, name := range def.Required {
		if !block.HasParam(name) {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return crank.ErrorResponse(missingParamsMessage(block.Name, missing)), false
	}

	return crank.ToolResponse{}, true
}

// Execute validates and runs a complete tool-use block. Partial blocks are
// never executed. Handler errors are captured as error responses rather than
// returned, so one bad tool run never aborts the task.
func (c *Coordinator) Execute(ctx context.Context, block crank.ToolUseBlock) crank.ToolResponse {
	if block.Partial {
		return crank.ErrorResponse(fmt.Sprintf("Tool %q was dispatched before its invocation finished streaming.", block.Name))
	}

	if resp, ok := c.Validate(block); !ok {
		return resp
	}

	handler, _ := c.registry.Get(block.Name)
	if handler == nil {
		return crank.ErrorResponse(fmt.Sprintf("Tool %q has no handler registered.", block.Name))
	}

	resp, err := handler(ctx, block)
	if err != nil {
		return crank.ErrorResponse(fmt.Sprintf("Error executing %s: %v", block.Name, err))
	}
	if resp.IsEmpty() {
		resp = crank.TextResponse("(tool completed with no output)")
	}
	return resp
}

// Preview invokes the tool's preview callback for a still-streaming block,
// purely for operator feedback. It is a no-op for complete blocks, unknown
// tools, or tools without a preview.
func (c *Coordinator) Preview(block crank.ToolUseBlock) {
	if !block.Partial {
		return
	}
	if preview := c.registry.getPreview(block.Name); preview != nil {
		preview(block)
	}
}

// TargetPath extracts the approval-relevant target path from a block using
// the tool definition's PathParam declaration. Returns "" for tools with no
// path target or when the parameter has not arrived.
func (c *Coordinator) TargetPath(block crank.ToolUseBlock) string {
	def, ok := c.registry.GetTool(block.Name)
	if !ok || def.PathParam == "" {
		return ""
	}
	return block.Param(def.PathParam)
}

// AlreadyUsedResponse is the notice returned for a second tool-use block in
// a turn that has already produced a tool result. Only one tool is executed
// per assistant turn.
func AlreadyUsedResponse(name string) crank.ToolResponse {
	return crank.ErrorResponse(fmt.Sprintf(
		"Tool %q was not executed because a tool has already been used in this message. Only one tool may be used per message.", name))
}

func unknownToolMessage(name string, known []string) string {
	return fmt.Sprintf("Unknown tool %q. Available tools: %s. Retry with one of the available tools.",
		name, strings.Join(known, ", "))
}

func missingParamsMessage(name string, missing []string) string {
	return fmt.Sprintf("Missing value for required parameter(s) %s of tool %q. Retry with a complete invocation.",
		strings.Join(missing, ", "), name)
}
