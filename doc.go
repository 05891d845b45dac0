// Package crank provides the task execution loop and tool-dispatch engine
// for an autonomous, conversation-driven agent.
//
// An agent converses with a language model, incrementally parses the model's
// streamed output into content blocks (narrative text and embedded tool
// invocations), and executes requested tools against a workspace under an
// approval policy, feeding results back into the conversation until the model
// finishes or the task is aborted.
//
// # Architecture
//
// The root package holds the shared data model: [Message], [ContentBlock]
// ([TextBlock], [ToolUseBlock]), [ToolResponse], [RequestMetrics], and the
// categorized [Error] type. The concern packages compose on top of it:
//
//   - [github.com/spetersoncode/crank/parser]: incremental assistant-message
//     parser (tag micro-language to content blocks)
//   - [github.com/spetersoncode/crank/tool]: tool registry and the
//     validation/dispatch coordinator
//   - [github.com/spetersoncode/crank/approval]: approval gate policy
//   - [github.com/spetersoncode/crank/retry]: backoff policy and the
//     process-wide request rate limiter
//   - [github.com/spetersoncode/crank/contextwindow]: token accounting,
//     truncation, and history condensing
//   - [github.com/spetersoncode/crank/store]: conversation history with
//     deleted-range elision and persistence adapters
//   - [github.com/spetersoncode/crank/task]: the orchestrator state machine
//     tying everything together
//   - [github.com/spetersoncode/crank/provider]: model-completion stream
//     interface with Anthropic, OpenAI, and Google adapters
//   - [github.com/spetersoncode/crank/event]: lifecycle event stream for
//     observing a running task
//   - [github.com/spetersoncode/crank/model]: model catalog with context
//     windows and pricing
//   - [github.com/spetersoncode/crank/mcp]: Model Context Protocol server hub
//     exposed through the tool registry
//   - [github.com/spetersoncode/crank/agui]: AG-UI protocol bridge for
//     frontend-driven operation
//
// # Basic Usage
//
//	p := anthropic.New(os.Getenv("ANTHROPIC_API_KEY"))
//	registry := tool.NewRegistry()
//	registry.MustRegister(readFileTool, readFileHandler)
//
//	tk := task.New(p, tool.NewCoordinator(registry), nil,
//	    task.WithGate(gate),
//	    task.WithOperator(op),
//	)
//	result, err := tk.Run(ctx, crank.NewTextPart("List the files in the project root"))
package crank
