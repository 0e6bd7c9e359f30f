package ui

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	metaerrors "github.com/conduit-lang/classmeta/pkg/meta/errors"
)

func TestFormatError(t *testing.T) {
	out := FormatError(ErrorOptions{
		Context:      "class not found",
		Problem:      "Cannot find class 'X'.",
		Detail:       "more detail",
		Suggestions:  []string{"Y", "Z"},
		HelpCommands: []string{"classmeta --help"},
		NoColor:      true,
	})

	assert.Contains(t, out, "❌ CLASS NOT FOUND: Cannot find class 'X'.")
	assert.Contains(t, out, "   more detail")
	assert.Contains(t, out, "Did you mean: Y, Z?")
	assert.Contains(t, out, "→ classmeta --help")
	assert.NotContains(t, out, "\x1b[", "no escape codes when color is disabled")
}

func TestFormatError_Levels(t *testing.T) {
	assert.True(t, strings.HasPrefix(Warning("careful", true), "⚠️ careful"))
	assert.True(t, strings.HasPrefix(FormatError(ErrorOptions{Level: ErrorLevelInfo, Problem: "fyi", NoColor: true}), "ℹ️ fyi"))
	assert.Equal(t, "✓ done", FormatSuccess("done", true))
}

func TestManifestError(t *testing.T) {
	err := fmt.Errorf("class Shop::Item: %w", metaerrors.NewUnknownType("money"))
	out := ManifestError("shop.yaml", err, true)

	assert.Contains(t, out, "MANIFEST FAILED (UNKNOWN_TYPE): shop.yaml")
	assert.Contains(t, out, `[TYP201] no data type "money" has been registered`)
	assert.Contains(t, out, "Did you mean: a built-in type")

	plain := ManifestError("shop.yaml", fmt.Errorf("boom"), true)
	assert.Contains(t, plain, "MANIFEST FAILED: shop.yaml")
}

func TestClassNotFoundError(t *testing.T) {
	out := ClassNotFoundError("Shop::Itme", []string{"Shop::Item"}, true)
	assert.Contains(t, out, "CLASS NOT FOUND: Cannot find class 'Shop::Itme'.")
	assert.Contains(t, out, "Did you mean: Shop::Item?")
}

func TestTable_Render(t *testing.T) {
	var buf bytes.Buffer
	table := NewTable(&buf, true, "NAME", "TYPE")
	table.AddRow("title", "string")
	table.AddRow("id", "integer")
	table.Render()

	assert.Equal(t, 2, table.Len())
	assert.Equal(t, strings.Join([]string{
		"NAME   TYPE",
		"─────  ───────",
		"title  string",
		"id     integer",
		"",
	}, "\n"), buf.String())
}

func TestKeyValueTable_Render(t *testing.T) {
	var buf bytes.Buffer
	kv := NewKeyValueTable(&buf, true)
	kv.AddRow("Key", "shop_item")
	kv.AddRow("Abstract", "no")
	kv.Render()

	assert.Equal(t, "Key:      shop_item\nAbstract: no\n", buf.String())
}

func TestHeader(t *testing.T) {
	var buf bytes.Buffer
	Header(&buf, "Types", true)
	assert.Equal(t, "Types\n─────\n", buf.String())
}

func TestSuggest(t *testing.T) {
	candidates := []string{"Shop::Item", "Shop::Order", "Zoo::Animal"}

	assert.Equal(t, []string{"Shop::Item"}, Suggest("Shop::Itme", candidates, 3))
	assert.Equal(t, []string{"Shop::Item"}, Suggest("shop::item", candidates, 3), "case-insensitive")
	assert.Empty(t, Suggest("Completely::Different", candidates, 3))
	assert.Len(t, Suggest("Shop::", []string{"Shop::A", "Shop::B", "Shop::C", "Shop::D"}, 2), 2)
}

func TestEditDistance(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"", "abc", 3},
		{"abc", "", 3},
		{"kitten", "sitting", 3},
		{"saturday", "sunday", 3},
		{"same", "same", 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, EditDistance(tt.a, tt.b), "%q vs %q", tt.a, tt.b)
	}
}
