package approval

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGate(t *testing.T, settings Settings) (*Gate, string) {
	t.Helper()
	root := t.TempDir()
	g, err := NewGate(root, settings)
	require.NoError(t, err)
	return g, g.Root()
}

func TestGateDecisionMatrix(t *testing.T) {
	settings := Settings{
		Categories: map[Category]Setting{
			CategoryRead: {Local: true, External: false},
			CategoryEdit: {Local: true, External: true},
		},
	}
	g, root := newTestGate(t, settings)

	t.Run("local path with local setting auto-approves", func(t *testing.T) {
		d := g.Decide("read_file", filepath.Join(root, "src", "a.go"))
		assert.True(t, d.AutoApprove)
	})

	t.Run("relative path resolves against root", func(t *testing.T) {
		d := g.Decide("read_file", "src/a.go")
		assert.True(t, d.AutoApprove)
	})

	t.Run("external path without external setting requires approval", func(t *testing.T) {
		d := g.Decide("read_file", "/etc/passwd")
		assert.False(t, d.AutoApprove)
		assert.NotEmpty(t, d.Reason)
	})

	t.Run("external path with both settings auto-approves", func(t *testing.T) {
		d := g.Decide("write_file", "/tmp/outside.txt")
		assert.True(t, d.AutoApprove)
	})

	t.Run("path escaping root via dotdot is external", func(t *testing.T) {
		d := g.Decide("read_file", "../sibling/secret.txt")
		assert.False(t, d.AutoApprove)
	})

	t.Run("local setting disabled requires approval even inside root", func(t *testing.T) {
		g2, root2 := newTestGate(t, Settings{
			Categories: map[Category]Setting{
				// External alone is never sufficient.
				CategoryRead: {Local: false, External: true},
			},
		})
		d := g2.Decide("read_file", filepath.Join(root2, "a.go"))
		assert.False(t, d.AutoApprove)

		d = g2.Decide("read_file", "/tmp/elsewhere.txt")
		assert.False(t, d.AutoApprove)
	})
}

func TestGatePathlessTools(t *testing.T) {
	g, _ := newTestGate(t, Settings{
		Categories: map[Category]Setting{
			CategoryRead:    {Local: true},
			CategoryCommand: {Local: true},
		},
	})

	t.Run("path-sensitive tool without path requires approval", func(t *testing.T) {
		d := g.Decide("read_file", "")
		assert.False(t, d.AutoApprove)
	})

	t.Run("pathless category uses local setting", func(t *testing.T) {
		d := g.Decide("execute_command", "")
		assert.True(t, d.AutoApprove)
	})

	t.Run("pathless category defaults to approval when unset", func(t *testing.T) {
		d := g.Decide("browser_action", "")
		assert.False(t, d.AutoApprove)
	})
}

func TestGateFullAuto(t *testing.T) {
	g, _ := newTestGate(t, Settings{FullAuto: true})

	for _, tc := range []struct{ tool, path string }{
		{"read_file", "/etc/passwd"},
		{"execute_command", ""},
		{"write_file", "../outside.txt"},
		{"unknown_tool", ""},
	} {
		d := g.Decide(tc.tool, tc.path)
		assert.True(t, d.AutoApprove, "tool %s path %s", tc.tool, tc.path)
	}
}

func TestGateSymlinkEscape(t *testing.T) {
	settings := Settings{
		Categories: map[Category]Setting{
			CategoryRead: {Local: true},
			CategoryEdit: {Local: true},
		},
	}

	t.Run("symlinked file", func(t *testing.T) {
		root := t.TempDir()
		outside := t.TempDir()

		target := filepath.Join(outside, "secret.txt")
		require.NoError(t, os.WriteFile(target, []byte("x"), 0o600))

		link := filepath.Join(root, "innocent.txt")
		require.NoError(t, os.Symlink(target, link))

		g, err := NewGate(root, settings)
		require.NoError(t, err)

		// The link sits inside the root but resolves outside it.
		d := g.Decide("read_file", link)
		assert.False(t, d.AutoApprove)
	})

	t.Run("new file under symlinked parent", func(t *testing.T) {
		root := t.TempDir()
		outside := t.TempDir()

		sub := filepath.Join(root, "sub")
		require.NoError(t, os.Symlink(outside, sub))

		g, err := NewGate(root, settings)
		require.NoError(t, err)

		// The target does not exist yet, so only its parent reveals the
		// escape.
		d := g.Decide("write_file", filepath.Join(sub, "new.txt"))
		assert.False(t, d.AutoApprove)
	})

	t.Run("new file under symlinked parent inside root", func(t *testing.T) {
		root := t.TempDir()

		real := filepath.Join(root, "real")
		require.NoError(t, os.Mkdir(real, 0o755))
		alias := filepath.Join(root, "alias")
		require.NoError(t, os.Symlink(real, alias))

		g, err := NewGate(root, settings)
		require.NoError(t, err)

		d := g.Decide("write_file", filepath.Join(alias, "new.txt"))
		assert.True(t, d.AutoApprove)
	})

	t.Run("deeply missing path stays local", func(t *testing.T) {
		g, root := newTestGate(t, settings)

		d := g.Decide("write_file", filepath.Join(root, "a", "b", "c", "new.txt"))
		assert.True(t, d.AutoApprove)
	})
}

func TestGateNewFileInsideRoot(t *testing.T) {
	g, root := newTestGate(t, Settings{
		Categories: map[Category]Setting{
			CategoryEdit: {Local: true},
		},
	})

	// A write target that does not exist yet still counts as local.
	d := g.Decide("write_file", filepath.Join(root, "new", "file.txt"))
	assert.True(t, d.AutoApprove)
}

func TestToolCategoryOverrides(t *testing.T) {
	s := Settings{
		Tools: map[string]Category{"read_file": CategoryCommand},
	}
	assert.Equal(t, CategoryCommand, s.categoryOf("read_file"))
	assert.Equal(t, CategoryCommand, s.categoryOf("execute_command"))
	assert.Equal(t, CategoryEdit, s.categoryOf("something_new"))
}

func TestLoadSettings(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "approval.yaml")
		data := []byte("fullAuto: false\ncategories:\n  read:\n    local: true\n  edit:\n    local: true\n    external: true\ntools:\n  fetch_url: browser\n")
		require.NoError(t, os.WriteFile(path, data, 0o600))

		s, err := LoadSettings(path)
		require.NoError(t, err)
		assert.True(t, s.Categories[CategoryRead].Local)
		assert.True(t, s.Categories[CategoryEdit].External)
		assert.Equal(t, CategoryBrowser, s.Tools["fetch_url"])
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadSettings(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})
}
