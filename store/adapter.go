// Package store manages conversation history with persistence support and
// deleted-range elision.
//
// History is append-only: the context-window manager elides old spans by
// marking a deleted range (optionally replaced by a condensed summary)
// rather than physically removing messages, so a persisted conversation can
// always be resumed or audited in full.
package store

import (
	"context"
	"encoding/json"
	"sync"
)

// Adapter provides key-value persistence for history snapshots.
// Implementations must be safe for concurrent use.
type Adapter interface {
	// Get retrieves a value by key. The second return is false if absent.
	Get(ctx context.Context, key string) (json.RawMessage, bool, error)
	// Set stores a value by key.
	Set(ctx context.Context, key string, value json.RawMessage) error
	// Delete removes a key.
	Delete(ctx context.Context, key string) error
}

// MemoryAdapter provides thread-safe in-memory storage.
type MemoryAdapter struct {
	mu   sync.RWMutex
	data map[string]json.RawMessage
}

// NewMemoryAdapter creates a new in-memory adapter.
func NewMemoryAdapter() *MemoryAdapter {
	return &MemoryAdapter{
		data: make(map[string]json.RawMessage),
	}
}

// Get retrieves a value by key.
func (m *MemoryAdapter) Get(_ context.Context, key string) (json.RawMessage, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok, nil
}

// Set stores a value by key.
func (m *MemoryAdapter) Set(_ context.Context, key string, value json.RawMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

// Delete removes a key.
func (m *MemoryAdapter) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}
