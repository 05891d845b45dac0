// Package model provides context-window limits and per-token pricing for
// known chat models, used for context accounting and request cost
// estimation.
package model

import (
	"strings"

	crank "github.com/spetersoncode/crank"
)

// DefaultContextWindow is assumed for unknown models. Conservative: smaller
// than most current models, so truncation errs on the early side.
const DefaultContextWindow = 128_000

// Pricing contains pricing per million tokens (USD). Fields are zero when a
// provider has no corresponding rate.
type Pricing struct {
	InputPerMillion      float64
	OutputPerMillion     float64
	CacheWritePerMillion float64
	CacheReadPerMillion  float64
}

// Info describes a chat model's limits and pricing.
type Info struct {
	// ContextWindow is the total token window.
	ContextWindow int
	// MaxOutputTokens caps a single response.
	MaxOutputTokens int
	Pricing         Pricing
}

// catalog keys are matched exactly first, then as substrings of the model
// name, so versioned names like "claude-sonnet-4-5-20250929" resolve.
var catalog = map[string]Info{
	"claude-opus-4": {
		ContextWindow:   200_000,
		MaxOutputTokens: 32_000,
		Pricing:         Pricing{InputPerMillion: 15, OutputPerMillion: 75, CacheWritePerMillion: 18.75, CacheReadPerMillion: 1.50},
	},
	"claude-sonnet-4": {
		ContextWindow:   200_000,
		MaxOutputTokens: 64_000,
		Pricing:         Pricing{InputPerMillion: 3, OutputPerMillion: 15, CacheWritePerMillion: 3.75, CacheReadPerMillion: 0.30},
	},
	"claude-haiku-4": {
		ContextWindow:   200_000,
		MaxOutputTokens: 64_000,
		Pricing:         Pricing{InputPerMillion: 1, OutputPerMillion: 5, CacheWritePerMillion: 1.25, CacheReadPerMillion: 0.10},
	},
	"gpt-4.1": {
		ContextWindow:   1_047_576,
		MaxOutputTokens: 32_768,
		Pricing:         Pricing{InputPerMillion: 2, OutputPerMillion: 8, CacheReadPerMillion: 0.50},
	},
	"gpt-4o": {
		ContextWindow:   128_000,
		MaxOutputTokens: 16_384,
		Pricing:         Pricing{InputPerMillion: 2.50, OutputPerMillion: 10, CacheReadPerMillion: 1.25},
	},
	"o3": {
		ContextWindow:   200_000,
		MaxOutputTokens: 100_000,
		Pricing:         Pricing{InputPerMillion: 2, OutputPerMillion: 8, CacheReadPerMillion: 0.50},
	},
	"gemini-2.5-pro": {
		ContextWindow:   1_048_576,
		MaxOutputTokens: 65_536,
		Pricing:         Pricing{InputPerMillion: 1.25, OutputPerMillion: 10, CacheReadPerMillion: 0.31},
	},
	"gemini-2.5-flash": {
		ContextWindow:   1_048_576,
		MaxOutputTokens: 65_536,
		Pricing:         Pricing{InputPerMillion: 0.30, OutputPerMillion: 2.50, CacheReadPerMillion: 0.075},
	},
}

// Lookup resolves a model name to its Info. Exact matches win; otherwise
// the longest catalog key contained in the name is used.
func Lookup(name string) (Info, bool) {
	if info, ok := catalog[name]; ok {
		return info, true
	}

	bestLen := 0
	var best Info
	for key, info := range catalog {
		if strings.Contains(name, key) && len(key) > bestLen {
			bestLen = len(key)
			best = info
		}
	}
	if bestLen > 0 {
		return best, true
	}
	return Info{}, false
}

// ContextWindow returns the model's context window, or DefaultContextWindow
// for unknown models.
func ContextWindow(name string) int {
	if info, ok := Lookup(name); ok {
		return info.ContextWindow
	}
	return DefaultContextWindow
}

// Cost estimates the USD cost of a request's usage for the named model.
// Unknown models cost zero.
func Cost(name string, u crank.Usage) float64 {
	info, ok := Lookup(name)
	if !ok {
		return 0
	}
	p := info.Pricing
	const million = 1_000_000
	return float64(u.InputTokens)*p.InputPerMillion/million +
		float64(u.OutputTokens)*p.OutputPerMillion/million +
		float64(u.CacheWriteTokens)*p.CacheWritePerMillion/million +
		float64(u.CacheReadTokens)*p.CacheReadPerMillion/million
}
