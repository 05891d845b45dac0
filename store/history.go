package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	crank "github.com/spetersoncode/crank"
)

// Range marks a half-open span [Start, End) of physical message indices as
// elided from the effective conversation.
type Range struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// History manages conversation history. Messages are append-only; elision
// happens through deleted ranges, each optionally replaced by a condensed
// summary message in the effective view.
type History struct {
	mu        sync.RWMutex
	messages  []crank.Message
	deleted   []Range
	summaries map[int]crank.Message // keyed by range start
	adapter   Adapter
}

// NewHistory creates an empty History. If adapter is nil, an in-memory
// adapter is used.
func NewHistory(adapter Adapter) *History {
	if adapter == nil {
		adapter = NewMemoryAdapter()
	}
	return &History{
		summaries: make(map[int]crank.Message),
		adapter:   adapter,
	}
}

// NewHistoryFrom creates a History initialized with existing messages.
func NewHistoryFrom(messages []crank.Message, adapter Adapter) *History {
	h := NewHistory(adapter)
	if len(messages) > 0 {
		h.messages = make([]crank.Message, len(messages))
		copy(h.messages, messages)
	}
	return h
}

// Append adds messages to the history.
func (h *History) Append(msgs ...crank.Message) {
	if len(msgs) == 0 {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.messages = append(h.messages, msgs...)
}

// Len returns the physical number of messages, including elided ones.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.messages)
}

// All returns a copy of every message, including elided ones.
func (h *History) All() []crank.Message {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]crank.Message, len(h.messages))
	copy(out, h.messages)
	return out
}

// Messages returns the effective conversation: messages outside any deleted
// range, with condensed summaries substituted at the start of their range.
// This is what gets sent to the model.
func (h *History) Messages() []crank.Message {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]crank.Message, 0, len(h.messages))
	i := 0
	for i < len(h.messages) {
		if r, ok := h.rangeStartingAt(i); ok {
			if summary, ok := h.summaries[r.Start]; ok {
				out = append(out, summary)
			}
			i = r.End
			continue
		}
		out = append(out, h.messages[i])
		i++
	}
	return out
}

// Last returns the last n effective messages.
func (h *History) Last(n int) []crank.Message {
	if n <= 0 {
		return nil
	}
	msgs := h.Messages()
	if n >= len(msgs) {
		return msgs
	}
	return msgs[len(msgs)-n:]
}

// MarkDeleted elides the span [r.Start, r.End) from the effective view.
// Messages are not removed. Returns an error for out-of-bounds or inverted
// ranges, or a range overlapping an existing one.
func (h *History) MarkDeleted(r Range) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.markDeletedLocked(r)
}

// Condense elides the span and substitutes a summary message for it in the
// effective view.
func (h *History) Condense(r Range, summary crank.Message) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.markDeletedLocked(r); err != nil {
		return err
	}
	h.summaries[r.Start] = summary
	return nil
}

// DeletedRanges returns a copy of the deleted range markers.
func (h *History) DeletedRanges() []Range {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]Range, len(h.deleted))
	copy(out, h.deleted)
	return out
}

func (h *History) markDeletedLocked(r Range) error {
	if r.Start < 0 || r.End > len(h.messages) || r.Start >= r.End {
		return fmt.Errorf("store: invalid range [%d,%d) over %d messages", r.Start, r.End, len(h.messages))
	}
	for _, existing := range h.deleted {
		if r.Start < existing.End && existing.Start < r.End {
			return fmt.Errorf("store: range [%d,%d) overlaps existing [%d,%d)", r.Start, r.End, existing.Start, existing.End)
		}
	}
	h.deleted = append(h.deleted, r)
	return nil
}

func (h *History) rangeStartingAt(i int) (Range, bool) {
	for _, r := range h.deleted {
		if r.Start == i {
			return r, true
		}
	}
	return Range{}, false
}

// snapshot is the persisted form of a History.
type snapshot struct {
	Messages  []crank.Message       `json:"messages"`
	Deleted   []Range               `json:"deleted,omitempty"`
	Summaries map[int]crank.Message `json:"summaries,omitempty"`
}

// Save persists the full history (messages, deleted ranges, summaries)
// under the given key.
func (h *History) Save(ctx context.Context, key string) error {
	h.mu.RLock()
	snap := snapshot{
		Messages:  h.messages,
		Deleted:   h.deleted,
		Summaries: h.summaries,
	}
	data, err := json.Marshal(snap)
	h.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("store: marshal history: %w", err)
	}
	return h.adapter.Set(ctx, key, data)
}

// Load replaces the history contents from a persisted snapshot. Returns
// false if no snapshot exists under the key.
func (h *History) Load(ctx context.Context, key string) (bool, error) {
	data, ok, err := h.adapter.Get(ctx, key)
	if err != nil || !ok {
		return false, err
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return false, fmt.Errorf("store: unmarshal history: %w", err)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.messages = snap.Messages
	h.deleted = snap.Deleted
	h.summaries = snap.Summaries
	if h.summaries == nil {
		h.summaries = make(map[int]crank.Message)
	}
	return true, nil
}
