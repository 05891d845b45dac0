// Package approval decides whether a requested tool action executes
// automatically or needs explicit operator consent.
//
// The policy combines two independent booleans per tool category — one for
// operations local to the workspace root, one for operations outside it —
// with a path-locality check. External auto-approval is strictly additive:
// it never applies unless the local setting is also enabled. A full-auto
// override short-circuits every check.
package approval

import (
	"errors"
	"io/fs"
	"path/filepath"
)

// Category groups tools by the kind of action they perform. Each category
// carries its own auto-approval settings.
type Category string

const (
	CategoryRead    Category = "read"
	CategoryEdit    Category = "edit"
	CategoryCommand Category = "command"
	CategoryBrowser Category = "browser"
	CategoryMCP     Category = "mcp"
)

// DefaultCategory maps a tool name to its category. Unknown tools fall into
// CategoryEdit, whose settings default to requiring approval.
func DefaultCategory(toolName string) Category {
	switch toolName {
	case "read_file", "list_files", "search_files", "list_code_definition_names":
		return CategoryRead
	case "write_file", "apply_diff", "insert_content", "search_and_replace":
		return CategoryEdit
	case "execute_command":
		return CategoryCommand
	case "browser_action":
		return CategoryBrowser
	case "use_mcp_tool", "access_mcp_resource":
		return CategoryMCP
	default:
		return CategoryEdit
	}
}

// pathSensitive reports whether a category's locality depends on a target
// path. Tools in these categories with no path supplied get the safer
// outcome: require approval.
func pathSensitive(cat Category) bool {
	return cat == CategoryRead || cat == CategoryEdit
}

// Decision is the outcome of the gate for one tool request.
type Decision struct {
	// AutoApprove is true when the tool may execute without asking the
	// operator.
	AutoApprove bool
	// Reason describes why approval is required. Empty when auto-approved.
	Reason string
}

// Gate evaluates the approval policy for tool requests against a workspace
// root. Decide performs no side effects beyond resolving the target path on
// the filesystem.
type Gate struct {
	root     string
	settings Settings
}

// NewGate creates a Gate for the given workspace root. The root is resolved
// to an absolute, symlink-free path once at construction.
func NewGate(workspaceRoot string, settings Settings) (*Gate, error) {
	abs, err := filepath.Abs(workspaceRoot)
	if err != nil {
		return nil, err
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		abs = resolved
	}
	return &Gate{root: abs, settings: settings}, nil
}

// Root returns the resolved workspace root.
func (g *Gate) Root() string {
	return g.root
}

// Decide returns the approval decision for a tool and its target path.
// targetPath may be empty for tools that do not address a path; for
// path-sensitive tools an empty or unresolvable path defaults to requiring
// approval.
func (g *Gate) Decide(toolName, targetPath string) Decision {
	if g.settings.FullAuto {
		return Decision{AutoApprove: true}
	}

	cat := g.settings.categoryOf(toolName)
	setting := g.settings.Categories[cat]

	if targetPath == "" {
		if pathSensitive(cat) {
			return Decision{Reason: "no target path supplied for a path-sensitive tool"}
		}
		if setting.Local {
			return Decision{AutoApprove: true}
		}
		return Decision{Reason: "auto-approval disabled for " + string(cat) + " operations"}
	}

	local, ok := g.isLocal(targetPath)
	if !ok {
		// Ambiguous resolution is treated as external, never guessed local.
		local = false
	}

	if local {
		if setting.Local {
			return Decision{AutoApprove: true}
		}
		return Decision{Reason: "auto-approval disabled for " + string(cat) + " operations"}
	}

	if setting.Local && setting.External {
		return Decision{AutoApprove: true}
	}
	return Decision{Reason: "target is outside the workspace root"}
}

// isLocal resolves targetPath against the workspace root and reports whether
// it lands inside it. The second return is false when resolution is
// ambiguous (e.g. symlink resolution failed for an existing path).
func (g *Gate) isLocal(targetPath string) (bool, bool) {
	p := targetPath
	if !filepath.IsAbs(p) {
		p = filepath.Join(g.root, p)
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return false, false
	}

	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return false, false
		}
		// Not-yet-created targets (e.g. a new file write) resolve through
		// their deepest existing ancestor, so a symlinked parent directory
		// cannot smuggle the target outside the root.
		resolved, err = resolveMissing(abs)
		if err != nil {
			return false, false
		}
	}

	rel, err := filepath.Rel(g.root, resolved)
	if err != nil {
		return false, false
	}
	if rel == ".." || len(rel) >= 3 && rel[:3] == ".."+string(filepath.Separator) {
		return false, true
	}
	return true, true
}

// resolveMissing resolves a path that does not exist yet: the deepest
// existing ancestor is resolved through symlinks and the missing suffix is
// re-joined lexically.
func resolveMissing(abs string) (string, error) {
	dir := abs
	var missing []string
	for {
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("approval: no existing ancestor for " + abs)
		}
		missing = append(missing, filepath.Base(dir))
		dir = parent

		resolved, err := filepath.EvalSymlinks(dir)
		if err == nil {
			for i := len(missing) - 1; i >= 0; i-- {
				resolved = filepath.Join(resolved, missing[i])
			}
			return resolved, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", err
		}
	}
}
