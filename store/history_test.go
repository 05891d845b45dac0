package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	crank "github.com/spetersoncode/crank"
)

func userMsg(text string) crank.Message {
	return crank.NewUserMessage(crank.NewTextPart(text))
}

func TestHistoryAppend(t *testing.T) {
	h := NewHistory(nil)
	assert.Zero(t, h.Len())

	h.Append(userMsg("one"), crank.NewAssistantMessage("two"))
	assert.Equal(t, 2, h.Len())
	assert.Len(t, h.Messages(), 2)

	// Append of nothing is a no-op.
	h.Append()
	assert.Equal(t, 2, h.Len())
}

func TestHistoryFromCopies(t *testing.T) {
	orig := []crank.Message{userMsg("a")}
	h := NewHistoryFrom(orig, nil)
	h.Append(userMsg("b"))

	assert.Len(t, orig, 1)
	assert.Equal(t, 2, h.Len())
}

func TestHistoryMarkDeleted(t *testing.T) {
	h := NewHistoryFrom([]crank.Message{
		userMsg("0"), crank.NewAssistantMessage("1"),
		userMsg("2"), crank.NewAssistantMessage("3"),
		userMsg("4"),
	}, nil)

	t.Run("elides range from effective view", func(t *testing.T) {
		require.NoError(t, h.MarkDeleted(Range{Start: 1, End: 3}))

		msgs := h.Messages()
		require.Len(t, msgs, 3)
		assert.Equal(t, "0", msgs[0].Text())
		assert.Equal(t, "3", msgs[1].Text())
		assert.Equal(t, "4", msgs[2].Text())

		// Physical history untouched.
		assert.Equal(t, 5, h.Len())
		assert.Len(t, h.All(), 5)
	})

	t.Run("overlapping range rejected", func(t *testing.T) {
		assert.Error(t, h.MarkDeleted(Range{Start: 2, End: 4}))
	})

	t.Run("invalid ranges rejected", func(t *testing.T) {
		assert.Error(t, h.MarkDeleted(Range{Start: -1, End: 2}))
		assert.Error(t, h.MarkDeleted(Range{Start: 3, End: 3}))
		assert.Error(t, h.MarkDeleted(Range{Start: 3, End: 99}))
	})
}

func TestHistoryCondense(t *testing.T) {
	h := NewHistoryFrom([]crank.Message{
		userMsg("task"), crank.NewAssistantMessage("step1"),
		userMsg("result1"), crank.NewAssistantMessage("step2"),
		userMsg("result2"),
	}, nil)

	summary := crank.NewAssistantMessage("Earlier: ran step1 against result1.")
	require.NoError(t, h.Condense(Range{Start: 1, End: 3}, summary))

	msgs := h.Messages()
	require.Len(t, msgs, 4)
	assert.Equal(t, "task", msgs[0].Text())
	assert.Equal(t, summary.Text(), msgs[1].Text())
	assert.Equal(t, "step2", msgs[2].Text())
}

func TestHistoryLast(t *testing.T) {
	h := NewHistoryFrom([]crank.Message{userMsg("a"), userMsg("b"), userMsg("c")}, nil)

	last := h.Last(2)
	require.Len(t, last, 2)
	assert.Equal(t, "b", last[0].Text())

	assert.Len(t, h.Last(10), 3)
	assert.Nil(t, h.Last(0))
}

func TestHistorySaveLoad(t *testing.T) {
	ctx := context.Background()
	adapter := NewMemoryAdapter()

	h := NewHistoryFrom([]crank.Message{
		userMsg("a"), crank.NewAssistantMessage("b"), userMsg("c"),
	}, adapter)
	require.NoError(t, h.Condense(Range{Start: 0, End: 2}, crank.NewAssistantMessage("sum")))
	require.NoError(t, h.Save(ctx, "task-1"))

	restored := NewHistory(adapter)
	ok, err := restored.Load(ctx, "task-1")
	require.NoError(t, err)
	require.True(t, ok)

	assert.Equal(t, 3, restored.Len())
	msgs := restored.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "sum", msgs[0].Text())
	assert.Equal(t, "c", msgs[1].Text())

	t.Run("load of absent key", func(t *testing.T) {
		ok, err := NewHistory(adapter).Load(ctx, "missing")
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestMemoryAdapter(t *testing.T) {
	ctx := context.Background()
	a := NewMemoryAdapter()

	_, ok, err := a.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, a.Set(ctx, "k", []byte(`{"x":1}`)))
	v, ok, err := a.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `{"x":1}`, string(v))

	require.NoError(t, a.Delete(ctx, "k"))
	_, ok, _ = a.Get(ctx, "k")
	assert.False(t, ok)
}
