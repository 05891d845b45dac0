package crank

// BlockKind identifies the variant of a ContentBlock.
type BlockKind string

const (
	BlockKindText    BlockKind = "text"
	BlockKindToolUse BlockKind = "tool_use"
)

// ContentBlock is one unit of parsed assistant output: either narrative text
// or a structured tool invocation. Blocks are produced by the parser package
// and consumed by the task orchestrator for presentation and dispatch.
//
// At most one block in a parsed sequence is partial, and it is always the
// last one. A block is immutable once complete.
type ContentBlock interface {
	Kind() BlockKind
	// IsPartial reports whether the block may still grow as more stream
	// data arrives.
	IsPartial() bool
}

// TextBlock is a span of narrative assistant text.
type TextBlock struct {
	Text    string
	Partial bool
}

// Kind returns BlockKindText.
func (TextBlock) Kind() BlockKind { return BlockKindText }

// IsPartial reports whether the text span may still grow.
func (b TextBlock) IsPartial() bool { return b.Partial }

// ToolUseBlock is a request, embedded in model output, to perform a named
// action with parameters. Parameter values are raw text as they appeared in
// the stream; the parser does not type-check names or values — validation is
// the coordinator's job.
type ToolUseBlock struct {
	Name    string
	Params  map[string]string
	Partial bool
}

// Kind returns BlockKindToolUse.
func (ToolUseBlock) Kind() BlockKind { return BlockKindToolUse }

// IsPartial reports whether more parameter data may still arrive.
func (b ToolUseBlock) IsPartial() bool { return b.Partial }

// Param returns the named parameter value, or "" if absent.
func (b ToolUseBlock) Param(name string) string {
	return b.Params[name]
}

// HasParam returns true if the named parameter was supplied, even if empty.
func (b ToolUseBlock) HasParam(name string) bool {
	_, ok := b.Params[name]
	return ok
}
