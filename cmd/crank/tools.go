package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	crank "github.com/spetersoncode/crank"
	"github.com/spetersoncode/crank/tool"
)

const maxOutputBytes = 64 * 1024

// registerWorkspaceTools installs the basic filesystem and command tools the
// demo exposes to the model.
func registerWorkspaceTools(registry *tool.Registry, workspace string) {
	resolve := func(path string) string {
		if filepath.IsAbs(path) {
			return filepath.Clean(path)
		}
		return filepath.Join(workspace, path)
	}

	registry.MustRegister(tool.Tool{
		Name:        "read_file",
		Description: "Read the contents of a file.",
		Required:    []string{"path"},
		PathParam:   "path",
	}, func(_ context.Context, block crank.ToolUseBlock) (crank.ToolResponse, error) {
		data, err := os.ReadFile(resolve(block.Param("path")))
		if err != nil {
			return crank.ToolResponse{}, err
		}
		return crank.TextResponse(clip(string(data))), nil
	})

	registry.MustRegister(tool.Tool{
		Name:        "write_file",
		Description: "Write content to a file, creating parent directories as needed.",
		Required:    []string{"path", "content"},
		PathParam:   "path",
	}, func(_ context.Context, block crank.ToolUseBlock) (crank.ToolResponse, error) {
		target := resolve(block.Param("path"))
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return crank.ToolResponse{}, err
		}
		if err := os.WriteFile(target, []byte(block.Param("content")), 0o644); err != nil {
			return crank.ToolResponse{}, err
		}
		return crank.TextResponse("Wrote " + block.Param("path")), nil
	})

	registry.MustRegister(tool.Tool{
		Name:        "list_files",
		Description: "List files under a directory.",
		Optional:    []string{"path"},
		PathParam:   "path",
	}, func(_ context.Context, block crank.ToolUseBlock) (crank.ToolResponse, error) {
		dir := resolve(block.Param("path"))
		if block.Param("path") == "" {
			dir = workspace
		}
		entries, err := os.ReadDir(dir)
		if err != nil {
			return crank.ToolResponse{}, err
		}
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			name := e.Name()
			if e.IsDir() {
				name += "/"
			}
			names = append(names, name)
		}
		sort.Strings(names)
		return crank.TextResponse(strings.Join(names, "\n")), nil
	})

	registry.MustRegister(tool.Tool{
		Name:        "search_files",
		Description: "Search files under a directory for a regular expression.",
		Required:    []string{"regex"},
		Optional:    []string{"path"},
		PathParam:   "path",
	}, func(_ context.Context, block crank.ToolUseBlock) (crank.ToolResponse, error) {
		re, err := regexp.Compile(block.Param("regex"))
		if err != nil {
			return crank.ErrorResponse(fmt.Sprintf("Invalid regex: %v. Provide a valid Go regular expression.", err)), nil
		}
		root := resolve(block.Param("path"))
		if block.Param("path") == "" {
			root = workspace
		}

		var hits []string
		err = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
			if err != nil || d.IsDir() {
				return err
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return nil
			}
			for i, line := range strings.Split(string(data), "\n") {
				if re.MatchString(line) {
					rel, _ := filepath.Rel(workspace, path)
					hits = append(hits, fmt.Sprintf("%s:%d: %s", rel, i+1, strings.TrimSpace(line)))
					if len(hits) >= 200 {
						return filepath.SkipAll
					}
				}
			}
			return nil
		})
		if err != nil {
			return crank.ToolResponse{}, err
		}
		if len(hits) == 0 {
			return crank.TextResponse("No matches."), nil
		}
		return crank.TextResponse(clip(strings.Join(hits, "\n"))), nil
	})

	registry.MustRegister(tool.Tool{
		Name:        "execute_command",
		Description: "Run a shell command in the workspace and return its output.",
		Required:    []string{"command"},
	}, func(ctx context.Context, block crank.ToolUseBlock) (crank.ToolResponse, error) {
		cmd := exec.CommandContext(ctx, "sh", "-c", block.Param("command"))
		cmd.Dir = workspace
		out, err := cmd.CombinedOutput()
		text := clip(string(out))
		if err != nil {
			return crank.ErrorResponse(fmt.Sprintf("Command failed: %v\n%s", err, text)), nil
		}
		if text == "" {
			text = "(no output)"
		}
		return crank.TextResponse(text), nil
	})
}

func clip(s string) string {
	if len(s) > maxOutputBytes {
		return s[:maxOutputBytes] + "\n[output truncated]"
	}
	return s
}

// systemPrompt describes the tag-based tool protocol and the available
// tools.
func systemPrompt(registry *tool.Registry, workspace string) string {
	var sb strings.Builder
	sb.WriteString("You are an autonomous software agent working in " + workspace + ".\n\n")
	sb.WriteString("Invoke exactly one tool per response using XML-style tags:\n")
	sb.WriteString("<tool_name><param>value</param></tool_name>\n\n")
	sb.WriteString("Available tools:\n")
	for _, t := range registry.Tools() {
		sb.WriteString(fmt.Sprintf("- %s: %s", t.Name, t.Description))
		if len(t.Required) > 0 {
			sb.WriteString(" Required: " + strings.Join(t.Required, ", ") + ".")
		}
		if len(t.Optional) > 0 {
			sb.WriteString(" Optional: " + strings.Join(t.Optional, ", ") + ".")
		}
		sb.WriteString("\n")
	}
	sb.WriteString("\nWhen the task is finished, call:\n")
	sb.WriteString("<attempt_completion><result>summary of what was done</result></attempt_completion>\n")
	return sb.String()
}
