package agui

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spetersoncode/crank/task"
)

func TestBrokerAskAnswer(t *testing.T) {
	var mu sync.Mutex
	var published []Question
	b := NewBroker(WithOnAsk(func(q Question) {
		mu.Lock()
		published = append(published, q)
		mu.Unlock()
	}))

	done := make(chan task.AskResponse, 1)
	go func() {
		resp, err := b.Ask(context.Background(), task.AskToolApproval, "execute_command: rm -rf build", false)
		require.NoError(t, err)
		done <- resp
	}()

	// Wait for the question to be published, then answer it.
	var id string
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		if len(published) == 0 {
			return false
		}
		id = published[0].ID
		return true
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, b.Answer(id, task.AskResponse{Decision: task.DecisionApproved}))

	resp := <-done
	assert.Equal(t, task.DecisionApproved, resp.Decision)

	mu.Lock()
	assert.Equal(t, task.AskToolApproval, published[0].Kind)
	mu.Unlock()
}

func TestBrokerAnswerJSON(t *testing.T) {
	var q Question
	var mu sync.Mutex
	b := NewBroker(WithOnAsk(func(question Question) {
		mu.Lock()
		q = question
		mu.Unlock()
	}))

	done := make(chan task.AskResponse, 1)
	go func() {
		resp, err := b.Ask(context.Background(), task.AskCompletion, "done", false)
		require.NoError(t, err)
		done <- resp
	}()

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return q.ID != ""
	}, time.Second, 5*time.Millisecond)

	mu.Lock()
	payload, err := json.Marshal(AnswerInput{ID: q.ID, Decision: task.DecisionMessage, Text: "more detail please"})
	mu.Unlock()
	require.NoError(t, err)
	require.NoError(t, b.AnswerJSON(payload))

	resp := <-done
	assert.Equal(t, task.DecisionMessage, resp.Decision)
	assert.Equal(t, "more detail please", resp.Text)
}

func TestBrokerAnswerUnknownID(t *testing.T) {
	b := NewBroker()
	assert.Error(t, b.Answer("ghost", task.AskResponse{}))
}

func TestBrokerAskTimeout(t *testing.T) {
	b := NewBroker(WithAskTimeout(10 * time.Millisecond))
	_, err := b.Ask(context.Background(), task.AskToolApproval, "x", false)
	assert.Error(t, err)
}

func TestBrokerAskContextCancelled(t *testing.T) {
	b := NewBroker()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := b.Ask(ctx, task.AskToolApproval, "x", false)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBrokerSayForwards(t *testing.T) {
	var got []string
	b := NewBroker(WithOnSay(func(kind task.SayKind, payload string, partial bool) {
		got = append(got, string(kind)+":"+payload)
	}))

	b.Say(task.SayText, "hello", false)
	assert.Equal(t, []string{"text:hello"}, got)

	// No callback configured is a no-op.
	NewBroker().Say(task.SayText, "dropped", false)
}
