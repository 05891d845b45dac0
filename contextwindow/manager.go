package contextwindow

import (
	"context"
	"fmt"
	"strings"
	"sync"

	crank "github.com/spetersoncode/crank"
	"github.com/spetersoncode/crank/model"
	"github.com/spetersoncode/crank/provider"
	"github.com/spetersoncode/crank/store"
)

// KeepPolicy controls how many of the most recent messages a condense pass
// keeps verbatim. Keeping the last exchange avoids summarizing away a tool
// call that has not been acknowledged yet.
type KeepPolicy int

const (
	// KeepNone condenses everything after the first message.
	KeepNone KeepPolicy = 0

	// KeepLastTwo keeps the most recent exchange verbatim.
	KeepLastTwo KeepPolicy = 2
)

// DefaultThreshold is the fraction of the context window at which
// truncation triggers.
const DefaultThreshold = 0.8

// summarySystemPrompt instructs the model during a condense request.
const summarySystemPrompt = `Summarize the following conversation between a user and an assistant. Preserve every technical detail needed to continue the task: file paths, commands run and their outcomes, decisions made, and unresolved items. Respond with the summary only.`

// Manager tracks token usage from request metrics and decides when and how
// to elide old history. One Manager serves one task.
type Manager struct {
	mu        sync.Mutex
	modelName string
	window    int
	threshold float64
	keep      KeepPolicy
	last      crank.Usage
	totals    crank.RequestMetrics
}

// Option configures a Manager.
type Option func(*Manager)

// WithThreshold overrides the window fraction that triggers truncation.
func WithThreshold(f float64) Option {
	return func(m *Manager) {
		if f > 0 && f <= 1 {
			m.threshold = f
		}
	}
}

// WithContextWindow overrides the window size derived from the model name.
func WithContextWindow(tokens int) Option {
	return func(m *Manager) {
		if tokens > 0 {
			m.window = tokens
		}
	}
}

// WithKeepPolicy sets how many recent messages a condense pass preserves.
func WithKeepPolicy(p KeepPolicy) Option {
	return func(m *Manager) { m.keep = p }
}

// NewManager creates a Manager for the named model. The window size comes
// from the model catalog unless overridden.
func NewManager(modelName string, opts ...Option) *Manager {
	m := &Manager{
		modelName: modelName,
		window:    model.ContextWindow(modelName),
		threshold: DefaultThreshold,
		keep:      KeepLastTwo,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Record accumulates a completed request's metrics. The most recent usage
// drives the truncation decision.
func (m *Manager) Record(metrics crank.RequestMetrics) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.last = metrics.Usage
	m.totals.Add(metrics)
}

// Totals returns the accumulated metrics across all recorded requests.
func (m *Manager) Totals() crank.RequestMetrics {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.totals
}

// Window returns the context window size in tokens.
func (m *Manager) Window() int {
	return m.window
}

// ShouldTruncate reports whether the latest request's usage crossed the
// configured fraction of the context window.
func (m *Manager) ShouldTruncate() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return float64(m.last.Total()) >= m.threshold*float64(m.window)
}

// Truncate marks the oldest live span of history as deleted. The first
// message (the task statement) and the most recent messages per the keep
// policy stay live. Returns the elided range, or ok=false when there is
// nothing safe to elide.
func (m *Manager) Truncate(h *store.History) (store.Range, bool, error) {
	r, ok := m.truncationRange(h)
	if !ok {
		return store.Range{}, false, nil
	}
	if err := h.MarkDeleted(r); err != nil {
		return store.Range{}, false, err
	}
	return r, true, nil
}

// Condense replaces the oldest live span of history with a model-generated
// summary. On summarization failure the error is returned and history is
// left untouched.
func (m *Manager) Condense(ctx context.Context, client provider.Client, h *store.History) (store.Range, bool, error) {
	r, ok := m.truncationRange(h)
	if !ok {
		return store.Range{}, false, nil
	}

	all := h.All()
	summary, err := m.summarize(ctx, client, all[r.Start:r.End])
	if err != nil {
		return store.Range{}, false, fmt.Errorf("contextwindow: condense: %w", err)
	}

	msg := crank.NewAssistantMessage("[Earlier conversation condensed]\n" + summary)
	if err := h.Condense(r, msg); err != nil {
		return store.Range{}, false, err
	}
	return r, true, nil
}

// truncationRange finds the first contiguous run of live messages after the
// first message and returns a span from its older end, rounded to an even
// count so role alternation survives elision. The span starts at half the run
// and grows until the estimated live token count after elision fits under the
// threshold, or the run is exhausted.
func (m *Manager) truncationRange(h *store.History) (store.Range, bool) {
	total := h.Len()
	deleted := h.DeletedRanges()

	// First live index at or after 1.
	start := 1
	for {
		advanced := false
		for _, r := range deleted {
			if start >= r.Start && start < r.End {
				start = r.End
				advanced = true
			}
		}
		if !advanced {
			break
		}
	}
	if start >= total {
		return store.Range{}, false
	}

	// Run ends at the next deleted range or the keep-policy tail.
	end := total - int(m.keep)
	for _, r := range deleted {
		if r.Start > start && r.Start < end {
			end = r.Start
		}
	}

	avail := end - start
	if avail < 2 {
		return store.Range{}, false
	}

	all := h.All()
	budget := int(m.threshold * float64(m.window))
	live := CountHistoryTokens(h.Messages())

	n := avail / 2
	n -= n % 2
	if n < 2 {
		n = 2
	}
	elided := CountHistoryTokens(all[start : start+n])
	for live-elided > budget && n < avail {
		grow := 2
		if n+grow > avail {
			grow = avail - n
		}
		elided += CountHistoryTokens(all[start+n : start+n+grow])
		n += grow
	}
	n -= n % 2
	if n < 2 {
		return store.Range{}, false
	}
	return store.Range{Start: start, End: start + n}, true
}

// summarize runs a single summarization request and accumulates its text.
func (m *Manager) summarize(ctx context.Context, client provider.Client, msgs []crank.Message) (string, error) {
	var transcript strings.Builder
	for _, msg := range msgs {
		transcript.WriteString(string(msg.Role))
		transcript.WriteString(": ")
		transcript.WriteString(msg.Text())
		transcript.WriteString("\n\n")
	}

	events, err := client.CreateCompletion(ctx, provider.Request{
		SystemPrompt: summarySystemPrompt,
		Messages:     []crank.Message{crank.NewUserMessage(crank.NewTextPart(transcript.String()))},
		Model:        m.modelName,
	})
	if err != nil {
		return "", err
	}

	var out strings.Builder
	for ev := range events {
		if ev.Err != nil {
			return "", ev.Err
		}
		out.WriteString(ev.Text)
	}
	if strings.TrimSpace(out.String()) == "" {
		return "", crank.ErrNoContent
	}
	return out.String(), nil
}
