package render

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Kind selects how a summary field is displayed.
type Kind string

const (
	KindParagraph Kind = "paragraph"
	KindList      Kind = "list"
	KindInline    Kind = "inline"
	KindEmphasis  Kind = "emphasis"
)

// SectionSpec maps one summary field to a titled section.
type SectionSpec struct {
	Field string `yaml:"field"`
	Title string `yaml:"title"`
	Kind  Kind   `yaml:"kind"`
}

// Layout is the ordered list of sections a summary may produce.
type Layout struct {
	Sections []SectionSpec `yaml:"sections"`
}

//go:embed layout.yaml
var defaultLayoutYAML []byte

var defaultLayout = sync.OnceValues(func() (Layout, error) {
	return ParseLayout(defaultLayoutYAML)
})

// DefaultLayout returns the built-in result card layout.
func DefaultLayout() Layout {
	layout, err := defaultLayout()
	if err != nil {
		panic(fmt.Sprintf("embedded summary layout is invalid: %v", err))
	}
	return layout
}

// LoadLayout reads a layout file, falling back to the built-in layout when path is empty.
func LoadLayout(path string) (Layout, error) {
	if strings.TrimSpace(path) == "" {
		return DefaultLayout(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Layout{}, fmt.Errorf("failed to read summary layout %q: %w", path, err)
	}
	layout, err := ParseLayout(data)
	if err != nil {
		return Layout{}, fmt.Errorf("failed to parse summary layout %q: %w", path, err)
	}
	return layout, nil
}

// ParseLayout decodes and validates a YAML layout.
func ParseLayout(data []byte) (Layout, error) {
	var layout Layout
	if err := yaml.Unmarshal(data, &layout); err != nil {
		return Layout{}, err
	}
	if len(layout.Sections) == 0 {
		return Layout{}, fmt.Errorf("layout has no sections")
	}

	seen := make(map[string]struct{}, len(layout.Sections))
	for i := range layout.Sections {
		section := &layout.Sections[i]
		section.Field = strings.TrimSpace(section.Field)
		if section.Field == "" {
			return Layout{}, fmt.Errorf("section %d has no field", i+1)
		}
		if _, dup := seen[section.Field]; dup {
			return Layout{}, fmt.Errorf("field %q appears more than once", section.Field)
		}
		seen[section.Field] = struct{}{}

		if section.Title == "" {
			section.Title = section.Field
		}
		switch section.Kind {
		case "":
			section.Kind = KindParagraph
		case KindParagraph, KindList, KindInline, KindEmphasis:
		default:
			return Layout{}, fmt.Errorf("field %q has unknown kind %q", section.Field, section.Kind)
		}
	}
	return layout, nil
}
