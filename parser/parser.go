// Package parser turns raw accumulated assistant output into an ordered
// sequence of content blocks: narrative text spans and embedded tool
// invocations written in the tag micro-language
//
//	<toolName><paramName>value</paramName>...</toolName>
//
// Parse is pure and idempotent over stream prefixes: calling it again with a
// longer prefix of the same stream reproduces every previously-complete block
// unchanged and only extends or finalizes the trailing block. The task loop
// re-parses the full accumulated text on every chunk; messages are bounded,
// so reparse-from-scratch keeps the scanner allocation-light and simple.
package parser

import (
	"strings"

	crank "github.com/spetersoncode/crank"
)

// Parse scans accumulated assistant text and returns the content blocks seen
// so far. At most the last block is partial. Unknown tool or parameter names
// are accepted into the block as-is; validation belongs to the tool
// coordinator. Malformed nesting is never an error: the scanner treats it as
// conservative partial state and waits for more input.
func Parse(text string) []crank.ContentBlock {
	var blocks []crank.ContentBlock

	i := 0
	textStart := 0
	for i < len(text) {
		if text[i] != '<' {
			i++
			continue
		}

		name, tagLen, ok := scanOpenTag(text[i:])
		if ok {
			if tb, keep := textBlock(text[textStart:i], false); keep {
				blocks = append(blocks, tb)
			}
			block, consumed := scanToolUse(text[i+tagLen:], name)
			blocks = append(blocks, block)
			if block.Partial {
				return blocks
			}
			i += tagLen + consumed
			textStart = i
			continue
		}

		if openTagPrefix(text[i:]) {
			// The tail might still become an open tag; withhold it from the
			// partial text until the next chunk decides.
			if tb, keep := textBlock(text[textStart:i], true); keep {
				blocks = append(blocks, tb)
			}
			return blocks
		}

		i++
	}

	if tb, keep := textBlock(text[textStart:], true); keep {
		blocks = append(blocks, tb)
	}
	return blocks
}

// Finalize marks the trailing partial block of a completed stream as
// complete. A trailing partial text block that trimmed to nothing is dropped.
func Finalize(blocks []crank.ContentBlock) []crank.ContentBlock {
	if len(blocks) == 0 {
		return blocks
	}
	last := blocks[len(blocks)-1]
	if !last.IsPartial() {
		return blocks
	}

	out := make([]crank.ContentBlock, len(blocks))
	copy(out, blocks)

	switch b := last.(type) {
	case crank.TextBlock:
		if strings.TrimSpace(b.Text) == "" {
			return out[:len(out)-1]
		}
		b.Partial = false
		out[len(out)-1] = b
	case crank.ToolUseBlock:
		b.Partial = false
		out[len(out)-1] = b
	}
	return out
}

// FirstToolUse returns the first complete tool-use block, or false if none.
func FirstToolUse(blocks []crank.ContentBlock) (crank.ToolUseBlock, bool) {
	for _, b := range blocks {
		if tu, ok := b.(crank.ToolUseBlock); ok && !tu.Partial {
			return tu, true
		}
	}
	return crank.ToolUseBlock{}, false
}

// textBlock builds a text block from a raw span, dropping whitespace-only
// spans that have no other attached content.
func textBlock(raw string, partial bool) (crank.TextBlock, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return crank.TextBlock{}, false
	}
	return crank.TextBlock{Text: trimmed, Partial: partial}, true
}

// scanOpenTag matches "<name>" at the start of s, where name is an
// identifier. Returns the name and total tag length.
func scanOpenTag(s string) (string, int, bool) {
	if len(s) < 3 || s[0] != '<' {
		return "", 0, false
	}
	j := 1
	for j < len(s) && isIdentChar(s[j], j == 1) {
		j++
	}
	if j == 1 || j >= len(s) || s[j] != '>' {
		return "", 0, false
	}
	return s[1:j], j + 1, true
}

// openTagPrefix reports whether s is a prefix that could still grow into an
// open tag: "<" followed only by identifier characters to end of input.
func openTagPrefix(s string) bool {
	if len(s) == 0 || s[0] != '<' {
		return false
	}
	for j := 1; j < len(s); j++ {
		if !isIdentChar(s[j], j == 1) {
			return false
		}
	}
	return true
}

func isIdentChar(c byte, first bool) bool {
	if c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c == '_' {
		return true
	}
	return !first && c >= '0' && c <= '9'
}

// scanToolUse parses the body of a tool invocation after its open tag.
// Returns the block and the number of bytes consumed when complete; a
// partial block consumes nothing (the caller stops scanning).
func scanToolUse(s, name string) (crank.ToolUseBlock, int) {
	block := crank.ToolUseBlock{
		Name:   name,
		Params: map[string]string{},
	}
	closeTag := "</" + name + ">"

	i := 0
	for {
		for i < len(s) && isSpace(s[i]) {
			i++
		}
		if i >= len(s) {
			block.Partial = true
			return block, 0
		}

		if strings.HasPrefix(s[i:], closeTag) {
			return block, i + len(closeTag)
		}

		pname, tagLen, ok := scanOpenTag(s[i:])
		if !ok {
			// Not a parameter tag and not our close tag yet. Either an
			// ambiguous tag prefix at end of input or stray content from
			// malformed nesting; wait for more input rather than guessing.
			block.Partial = true
			return block, 0
		}

		valueStart := i + tagLen
		paramClose := "</" + pname + ">"
		end := strings.Index(s[valueStart:], paramClose)
		if end < 0 {
			// Parameter still streaming. Nested open tags with the same name
			// inside the value are content, not new blocks: only the literal
			// close tag terminates the value.
			value := stripPartialClose(s[valueStart:], paramClose)
			block.Params[pname] = strings.TrimSpace(value)
			block.Partial = true
			return block, 0
		}

		block.Params[pname] = strings.TrimSpace(s[valueStart : valueStart+end])
		i = valueStart + end + len(paramClose)
	}
}

// stripPartialClose removes a trailing fragment of the close tag from a
// still-streaming value, so "ls -la</comm" yields "ls -la" until the close
// tag completes.
func stripPartialClose(value, closeTag string) string {
	max := len(closeTag) - 1
	if max > len(value) {
		max = len(value)
	}
	for k := max; k > 0; k-- {
		if strings.HasSuffix(value, closeTag[:k]) {
			return value[:len(value)-k]
		}
	}
	return value
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
