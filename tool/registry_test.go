package tool

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	crank "github.com/spetersoncode/crank"
)

func echoHandler(_ context.Context, block crank.ToolUseBlock) (crank.ToolResponse, error) {
	return crank.TextResponse("echo: " + block.Param("text")), nil
}

func TestRegistryRegister(t *testing.T) {
	t.Run("registers and looks up a tool", func(t *testing.T) {
		r := NewRegistry()
		err := r.Register(Tool{Name: "echo", Required: []string{"text"}}, echoHandler)
		require.NoError(t, err)

		assert.True(t, r.Has("echo"))
		assert.Equal(t, 1, r.Len())

		def, ok := r.GetTool("echo")
		require.True(t, ok)
		assert.Equal(t, []string{"text"}, def.Required)

		handler, ok := r.Get("echo")
		require.True(t, ok)
		assert.NotNil(t, handler)
	})

	t.Run("duplicate registration fails", func(t *testing.T) {
		r := NewRegistry()
		require.NoError(t, r.Register(Tool{Name: "echo"}, echoHandler))

		err := r.Register(Tool{Name: "echo"}, echoHandler)
		var dup *ErrToolAlreadyRegistered
		require.ErrorAs(t, err, &dup)
		assert.Equal(t, "echo", dup.Name)
	})

	t.Run("MustRegister panics on duplicate", func(t *testing.T) {
		r := NewRegistry()
		r.MustRegister(Tool{Name: "echo"}, echoHandler)
		assert.Panics(t, func() {
			r.MustRegister(Tool{Name: "echo"}, echoHandler)
		})
	})

	t.Run("unregister", func(t *testing.T) {
		r := NewRegistry()
		r.MustRegister(Tool{Name: "echo"}, echoHandler)
		r.Unregister("echo")
		assert.False(t, r.Has("echo"))

		// No-op for unknown names.
		r.Unregister("missing")
	})

	t.Run("names and tools are sorted", func(t *testing.T) {
		r := NewRegistry()
		r.MustRegister(Tool{Name: "write_file"}, echoHandler)
		r.MustRegister(Tool{Name: "execute_command"}, echoHandler)
		r.MustRegister(Tool{Name: "read_file"}, echoHandler)

		assert.Equal(t, []string{"execute_command", "read_file", "write_file"}, r.Names())

		tools := r.Tools()
		require.Len(t, tools, 3)
		assert.Equal(t, "execute_command", tools[0].Name)
	})
}
