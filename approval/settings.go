package approval

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Setting holds the two auto-approval booleans for one tool category.
// External is additive to Local: it only takes effect when Local is also
// enabled.
type Setting struct {
	Local    bool `yaml:"local"`
	External bool `yaml:"external"`
}

// Settings is the approval policy configuration. The zero value requires
// operator approval for everything.
type Settings struct {
	// FullAuto short-circuits the gate to always approve. Intended for
	// unattended runs only.
	FullAuto bool `yaml:"fullAuto"`

	// Categories holds per-category settings. Absent categories require
	// approval.
	Categories map[Category]Setting `yaml:"categories"`

	// Tools overrides the default tool-to-category mapping by tool name.
	Tools map[string]Category `yaml:"tools"`
}

// DefaultSettings returns a conservative policy: local reads auto-approved,
// everything else gated.
func DefaultSettings() Settings {
	return Settings{
		Categories: map[Category]Setting{
			CategoryRead: {Local: true},
		},
	}
}

// categoryOf resolves a tool name to a category, honoring overrides.
func (s Settings) categoryOf(toolName string) Category {
	if cat, ok := s.Tools[toolName]; ok {
		return cat
	}
	return DefaultCategory(toolName)
}

// LoadSettings reads a YAML policy file.
func LoadSettings(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("approval: read settings: %w", err)
	}
	var s Settings
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Settings{}, fmt.Errorf("approval: parse settings: %w", err)
	}
	return s, nil
}
