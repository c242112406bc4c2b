package cfg

import (
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultListLimit     = 5
	DefaultExpandedLimit = 10
)

// DefaultCategories is the display order used when no layout file is configured.
var DefaultCategories = []string{
	"Notion News & Updates",
	"Tips & Tutorials",
	"Community",
}

// Layout controls how the assembled feed is presented
type Layout struct {
	Categories    []string `yaml:"categories"`
	DefaultLimit  int      `yaml:"default_limit"`
	ExpandedLimit int      `yaml:"expanded_limit"`
}

// DefaultLayout returns the layout used without a layout file
func DefaultLayout() *Layout {
	layout := &Layout{}
	setLayoutDefaults(layout)
	return layout
}

// LoadLayout reads a YAML layout file. An empty path yields the default layout.
func LoadLayout(path string) (*Layout, error) {
	if path == "" {
		return DefaultLayout(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read layout file: %w", err)
	}

	var layout Layout
	if err := yaml.Unmarshal(data, &layout); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	setLayoutDefaults(&layout)

	if err := validateLayout(&layout); err != nil {
		return nil, fmt.Errorf("invalid layout %s: %w", path, err)
	}

	slog.Debug("Layout loaded", "path", path, "categories", len(layout.Categories))

	return &layout, nil
}

func setLayoutDefaults(layout *Layout) {
	if len(layout.Categories) == 0 {
		layout.Categories = append([]string(nil), DefaultCategories...)
	}
	if layout.DefaultLimit == 0 {
		layout.DefaultLimit = DefaultListLimit
	}
	if layout.ExpandedLimit == 0 {
		layout.ExpandedLimit = max(DefaultExpandedLimit, layout.DefaultLimit)
	}
}

func validateLayout(layout *Layout) error {
	if layout.DefaultLimit < 0 {
		return fmt.Errorf("default limit must be non-negative")
	}
	if layout.ExpandedLimit < 0 {
		return fmt.Errorf("expanded limit must be non-negative")
	}
	if layout.ExpandedLimit < layout.DefaultLimit {
		return fmt.Errorf("expanded limit %d is below default limit %d", layout.ExpandedLimit, layout.DefaultLimit)
	}

	seen := make(map[string]bool, len(layout.Categories))
	for i, category := range layout.Categories {
		if category == "" {
			return fmt.Errorf("empty category at index %d", i)
		}
		if seen[category] {
			return fmt.Errorf("duplicate category at index %d: %s", i, category)
		}
		seen[category] = true
	}

	return nil
}
