package render

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"anamnesa/internal/domain"
)

func TestRenderScalarListFieldMatchesSingleItemList(t *testing.T) {
	t.Parallel()

	layout := DefaultLayout()
	scalar := Render(domain.Summary{"gejala": "batuk"}, layout)
	list := Render(domain.Summary{"gejala": []any{"batuk"}}, layout)

	require.Len(t, scalar.Sections, 1)
	assert.Equal(t, []string{"batuk"}, scalar.Sections[0].Items)
	assert.Equal(t, "Gejala Terdeteksi", scalar.Sections[0].Title)
	assert.Equal(t, list, scalar)
}

func TestRenderFullSummary(t *testing.T) {
	t.Parallel()

	summary := domain.Summary{
		"keluhan_utama": "Batuk lebih dari dua minggu",
		"gejala":        []any{"batuk", "demam", ""},
		"data_vital":    map[string]any{"suhu": 38.5, "berat": 60.0},
		"analisis_tb":   "Risiko tinggi",
		"saran":         "Periksa dahak ke puskesmas",
		"catatan_lain":  "tidak ditampilkan",
	}

	doc := Render(summary, DefaultLayout())

	require.Len(t, doc.Sections, 5)
	assert.Equal(t, "keluhan_utama", doc.Sections[0].Field)
	assert.Equal(t, []string{"batuk", "demam"}, doc.Sections[1].Items)
	assert.Equal(t, "berat: 60, suhu: 38.5", doc.Sections[2].Text)
	assert.Equal(t, KindEmphasis, doc.Sections[3].Kind)
	assert.Equal(t, "Periksa dahak ke puskesmas", doc.Sections[4].Text)
}

func TestRenderOmitsAbsentAndEmptyFields(t *testing.T) {
	t.Parallel()

	summary := domain.Summary{
		"keluhan_utama": "   ",
		"gejala":        []any{},
		"data_vital":    map[string]any{},
		"analisis_tb":   nil,
	}

	doc := Render(summary, DefaultLayout())
	assert.True(t, doc.Empty())
	assert.Equal(t, "", doc.PlainText())

	assert.True(t, Render(nil, DefaultLayout()).Empty())
}

func TestRenderNormalizesScalarTypes(t *testing.T) {
	t.Parallel()

	layout := Layout{Sections: []SectionSpec{
		{Field: "list", Title: "List", Kind: KindList},
		{Field: "flag", Title: "Flag", Kind: KindParagraph},
		{Field: "count", Title: "Count", Kind: KindParagraph},
		{Field: "nested", Title: "Nested", Kind: KindList},
	}}
	summary := domain.Summary{
		"list":   3.0,
		"flag":   true,
		"count":  []any{1.0, 2.5},
		"nested": map[string]any{"b": []any{"x", "y"}, "a": false},
	}

	doc := Render(summary, layout)

	require.Len(t, doc.Sections, 4)
	assert.Equal(t, []string{"3"}, doc.Sections[0].Items)
	assert.Equal(t, "ya", doc.Sections[1].Text)
	assert.Equal(t, "1, 2.5", doc.Sections[2].Text)
	assert.Equal(t, []string{"a: tidak", "b: x, y"}, doc.Sections[3].Items)
}

func TestDocumentPlainText(t *testing.T) {
	t.Parallel()

	doc := Render(domain.Summary{
		"keluhan_utama": "Batuk",
		"gejala":        []string{"batuk", "sesak"},
	}, DefaultLayout())

	assert.Equal(t, "Keluhan Utama\nBatuk\n\nGejala Terdeteksi\n- batuk\n- sesak", doc.PlainText())
}

func TestScalarAndSingletonListRenderIdentically(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)
	layout := DefaultLayout()

	properties.Property("scalar list field renders like a one-element list", prop.ForAll(
		func(value string) bool {
			scalar := Render(domain.Summary{"gejala": value}, layout)
			list := Render(domain.Summary{"gejala": []any{value}}, layout)
			return reflect.DeepEqual(scalar, list)
		},
		gen.AnyString(),
	))

	properties.TestingRun(t)
}

func TestParseLayoutValidation(t *testing.T) {
	t.Parallel()

	_, err := ParseLayout([]byte("sections: []\n"))
	assert.Error(t, err)

	_, err = ParseLayout([]byte("sections:\n  - title: Missing field\n"))
	assert.Error(t, err)

	_, err = ParseLayout([]byte("sections:\n  - field: a\n  - field: a\n"))
	assert.Error(t, err)

	_, err = ParseLayout([]byte("sections:\n  - field: a\n    kind: table\n"))
	assert.Error(t, err)

	layout, err := ParseLayout([]byte("sections:\n  - field: a\n"))
	require.NoError(t, err)
	assert.Equal(t, KindParagraph, layout.Sections[0].Kind)
	assert.Equal(t, "a", layout.Sections[0].Title)
}

func TestLoadLayout(t *testing.T) {
	t.Parallel()

	layout, err := LoadLayout("")
	require.NoError(t, err)
	assert.Equal(t, DefaultLayout(), layout)

	path := filepath.Join(t.TempDir(), "layout.yaml")
	require.NoError(t, os.WriteFile(path, []byte("sections:\n  - field: diagnosis\n    title: Diagnosis\n    kind: emphasis\n"), 0o600))

	layout, err = LoadLayout(path)
	require.NoError(t, err)
	require.Len(t, layout.Sections, 1)
	assert.Equal(t, KindEmphasis, layout.Sections[0].Kind)

	_, err = LoadLayout(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
