package task

import (
	"context"
	"sync"
)

// Phase is the orchestrator's position in the turn lifecycle.
type Phase string

const (
	PhaseIdle         Phase = "idle"
	PhaseStreaming    Phase = "streaming"
	PhasePresenting   Phase = "presenting"
	PhaseAwaitingTool Phase = "awaiting_tool"
	PhaseRecursing    Phase = "recursing"
	PhaseCompleted    Phase = "completed"
	PhaseAborted      Phase = "aborted"
)

// State holds the mutable per-task flags. The turn-scoped flags are mutated
// only by the orchestrator; Abort, Pause, and Resume may be called from any
// goroutine.
type State struct {
	mu       sync.Mutex
	phase    Phase
	abort    bool
	paused   bool
	resumeCh chan struct{}

	// Turn-scoped flags, reset at the start of each turn.
	didRejectTool           bool
	didAlreadyUseTool       bool
	userMessageContentReady bool
	currentStreamingIndex   int

	// consecutiveMistakeCount persists across turns until explicitly cleared.
	consecutiveMistakeCount int
}

// NewState creates a State in the idle phase.
func NewState() *State {
	return &State{phase: PhaseIdle}
}

// Phase returns the current lifecycle phase.
func (s *State) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

func (s *State) setPhase(p Phase) {
	s.mu.Lock()
	s.phase = p
	s.mu.Unlock()
}

// Abort requests cooperative cancellation. The loop observes it at the next
// suspension boundary and finalizes deterministically. A paused task is
// resumed so the abort can be observed.
func (s *State) Abort() {
	s.mu.Lock()
	s.abort = true
	s.resumeLocked()
	s.mu.Unlock()
}

// Aborted reports whether cancellation has been requested.
func (s *State) Aborted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.abort
}

// Pause suspends the loop at its next turn boundary, e.g. while a child task
// runs. It is a no-op if already paused.
func (s *State) Pause() {
	s.mu.Lock()
	if !s.paused {
		s.paused = true
		s.resumeCh = make(chan struct{})
	}
	s.mu.Unlock()
}

// Resume releases a paused loop.
func (s *State) Resume() {
	s.mu.Lock()
	s.resumeLocked()
	s.mu.Unlock()
}

func (s *State) resumeLocked() {
	if s.paused {
		s.paused = false
		close(s.resumeCh)
		s.resumeCh = nil
	}
}

// Paused reports whether the loop is suspended.
func (s *State) Paused() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paused
}

// awaitResume blocks while paused. Returns the context's error if it is
// cancelled first.
func (s *State) awaitResume(ctx context.Context) error {
	s.mu.Lock()
	ch := s.resumeCh
	s.mu.Unlock()
	if ch == nil {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-ch:
		return nil
	}
}

// MistakeCount returns the consecutive protocol-mistake count.
func (s *State) MistakeCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.consecutiveMistakeCount
}

func (s *State) addMistake() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.consecutiveMistakeCount++
	return s.consecutiveMistakeCount
}

func (s *State) clearMistakes() {
	s.mu.Lock()
	s.consecutiveMistakeCount = 0
	s.mu.Unlock()
}

// beginTurn resets the turn-scoped flags.
func (s *State) beginTurn() {
	s.mu.Lock()
	s.didRejectTool = false
	s.didAlreadyUseTool = false
	s.userMessageContentReady = false
	s.currentStreamingIndex = 0
	s.mu.Unlock()
}

func (s *State) setRejected() {
	s.mu.Lock()
	s.didRejectTool = true
	s.mu.Unlock()
}

func (s *State) setToolUsed() {
	s.mu.Lock()
	s.didAlreadyUseTool = true
	s.mu.Unlock()
}

func (s *State) toolUsed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.didAlreadyUseTool
}

func (s *State) setContentReady() {
	s.mu.Lock()
	s.userMessageContentReady = true
	s.mu.Unlock()
}

func (s *State) setStreamingIndex(i int) {
	s.mu.Lock()
	s.currentStreamingIndex = i
	s.mu.Unlock()
}
