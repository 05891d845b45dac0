// Package contextwindow tracks token usage across requests and elides old
// conversation history, by deletion marker or model-generated summary, when
// usage approaches the model's context window.
package contextwindow

import (
	"strings"
	"sync"

	"github.com/pkoukk/tiktoken-go"

	crank "github.com/spetersoncode/crank"
)

var (
	encOnce  sync.Once
	encoding *tiktoken.Tiktoken
)

func initEncoding() {
	encOnce.Do(func() {
		enc, err := tiktoken.GetEncoding("cl100k_base")
		if err == nil {
			encoding = enc
		}
	})
}

// CountTokens returns a token count for text using the cl100k_base encoding,
// falling back to EstimateFast if the encoding is unavailable.
func CountTokens(text string) int {
	initEncoding()
	if encoding != nil {
		return len(encoding.Encode(text, nil, nil))
	}
	return EstimateFast(text)
}

// EstimateFast returns a heuristic token estimate, max(runes/4, word count).
// Images count as a flat overhead per part.
func EstimateFast(text string) int {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return 0
	}
	runes := len([]rune(trimmed))
	words := len(strings.Fields(trimmed))
	estimate := runes / 4
	if estimate < words {
		estimate = words
	}
	if estimate == 0 {
		estimate = 1
	}
	return estimate
}

// imageTokenOverhead approximates the prompt cost of one inline image.
const imageTokenOverhead = 1000

// CountMessageTokens returns the token count of a message's visible content,
// including a flat overhead for each image part.
func CountMessageTokens(msg crank.Message) int {
	n := CountTokens(msg.Text())
	for _, part := range msg.Parts {
		if part.Type == crank.ContentPartTypeImage {
			n += imageTokenOverhead
		}
	}
	return n
}

// CountHistoryTokens sums CountMessageTokens over messages.
func CountHistoryTokens(msgs []crank.Message) int {
	total := 0
	for _, m := range msgs {
		total += CountMessageTokens(m)
	}
	return total
}
