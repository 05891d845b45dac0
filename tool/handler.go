package tool

import (
	"context"

	crank "github.com/spetersoncode/crank"
)

// Tool describes a dispatchable action: its name as it appears in the
// assistant's tag micro-language, a description for the system prompt, and
// the parameter names the coordinator validates before dispatch.
type Tool struct {
	Name        string
	Description string
	// Required parameter names. A call missing any of them is answered with
	// a structured error response instead of being executed.
	Required []string
	// Optional parameter names, listed for prompt generation only.
	Optional []string
	// PathParam names the parameter holding the target path for
	// path-sensitive tools, consumed by the approval gate. Empty for tools
	// with no path target.
	PathParam string
}

// Handler executes a tool invocation.
// The context supports cancellation and timeout; handlers that hold external
// resources must release them on context cancellation, not best-effort.
// Returns the result, or an error if execution failed. Handler errors are
// converted into error responses so the model can recover.
type Handler func(ctx context.Context, block crank.ToolUseBlock) (crank.ToolResponse, error)

// Previewer renders operator feedback for a still-streaming invocation.
// It is called with partial blocks as they grow and must not perform side
// effects.
type Previewer func(block crank.ToolUseBlock)
