// Package tool provides the registry of named tool handlers and the
// coordinator that validates and dispatches parsed tool-use blocks.
//
// A [Tool] declares its name and its required and optional parameters. A
// [Handler] implements the side-effecting action. The [Coordinator] is the
// single dispatch entry point used by the task orchestrator: it validates
// that required parameters are present, runs the handler, and returns a
// [crank.ToolResponse]. Protocol problems (unknown tool, missing parameter)
// come back as structured error responses the model can self-correct from,
// never as Go errors.
//
// Handlers may optionally register a preview callback, invoked while the
// invocation is still streaming, purely for operator feedback. Previews never
// execute side effects.
package tool
