package task

import "context"

// Checkpointer snapshots external workspace state at turn boundaries, after
// a tool result is committed or rejected, so a task can be rolled back. The
// snapshot format is the implementation's concern.
type Checkpointer interface {
	Save(ctx context.Context) error
}

// NopCheckpointer satisfies Checkpointer without taking snapshots.
type NopCheckpointer struct{}

func (NopCheckpointer) Save(context.Context) error { return nil }
