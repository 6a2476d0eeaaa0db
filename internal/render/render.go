// Package render turns an interview summary into a display document.
//
// Rendering never fails: fields missing from the summary, fields the layout
// does not mention and empty values are left out of the document.
package render

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"anamnesa/internal/domain"
)

// Section is one titled block of the result card.
type Section struct {
	Field string   `json:"field"`
	Title string   `json:"title"`
	Kind  Kind     `json:"kind"`
	Text  string   `json:"text,omitempty"`
	Items []string `json:"items,omitempty"`
}

// Document is the rendered summary.
type Document struct {
	Sections []Section `json:"sections"`
}

// Empty reports whether no section was produced.
func (d Document) Empty() bool {
	return len(d.Sections) == 0
}

// PlainText formats the document for the clipboard.
func (d Document) PlainText() string {
	blocks := lo.Map(d.Sections, func(section Section, _ int) string {
		var b strings.Builder
		b.WriteString(section.Title)
		if section.Kind == KindList {
			for _, item := range section.Items {
				b.WriteString("\n- ")
				b.WriteString(item)
			}
		} else {
			b.WriteString("\n")
			b.WriteString(section.Text)
		}
		return b.String()
	})
	return strings.Join(blocks, "\n\n")
}

// Render projects summary through layout.
func Render(summary domain.Summary, layout Layout) Document {
	doc := Document{Sections: []Section{}}
	for _, spec := range layout.Sections {
		value, ok := summary[spec.Field]
		if !ok {
			continue
		}
		section := Section{Field: spec.Field, Title: spec.Title, Kind: spec.Kind}
		if spec.Kind == KindList {
			section.Items = listItems(value)
			if len(section.Items) == 0 {
				continue
			}
		} else {
			section.Text = formatValue(value)
			if section.Text == "" {
				continue
			}
		}
		doc.Sections = append(doc.Sections, section)
	}
	return doc
}

// listItems normalizes a list field. A scalar becomes a single item and an
// object becomes one "key: value" item per key.
func listItems(value any) []string {
	switch v := value.(type) {
	case nil:
		return nil
	case []any, []string:
		return listItemsFlat(v)
	case map[string]any:
		return keyedPairs(v)
	default:
		if text := formatValue(v); text != "" {
			return []string{text}
		}
		return nil
	}
}

func formatValue(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case bool:
		if v {
			return "ya"
		}
		return "tidak"
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case json.Number:
		return v.String()
	case []any, []string:
		return strings.Join(listItemsFlat(v), ", ")
	case map[string]any:
		return strings.Join(keyedPairs(v), ", ")
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

func listItemsFlat(value any) []string {
	switch v := value.(type) {
	case []any:
		return lo.FilterMap(v, func(item any, _ int) (string, bool) {
			text := formatValue(item)
			return text, text != ""
		})
	case []string:
		return lo.FilterMap(v, func(item string, _ int) (string, bool) {
			text := strings.TrimSpace(item)
			return text, text != ""
		})
	}
	return nil
}

func keyedPairs(m map[string]any) []string {
	keys := lo.Keys(m)
	sort.Strings(keys)
	return lo.FilterMap(keys, func(key string, _ int) (string, bool) {
		text := formatValue(m[key])
		if text == "" {
			return "", false
		}
		return key + ": " + text, true
	})
}
