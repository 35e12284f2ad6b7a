package quotemill

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSchema = []Field{
	{Name: "quote_text", Kind: FieldString, Required: true, MaxLen: 50},
	{Name: "url", Kind: FieldURL, Required: true},
	{Name: "author", Kind: FieldString, MaxLen: 20},
	{Name: "aliases", Kind: FieldStringArray},
}

func TestNormalizeAttributesHappyPath(t *testing.T) {
	attrs, errs := NormalizeAttributes(testSchema, map[string]any{
		"quote_text": "  less is more  ",
		"url":        "https://example.com/essay",
		"author":     "Anonymous",
	})
	require.Empty(t, errs)
	assert.Equal(t, "less is more", attrs["quote_text"])
	assert.Equal(t, "https://example.com/essay", attrs["url"])
	assert.Equal(t, "Anonymous", attrs["author"])
	assert.NotContains(t, attrs, "aliases")
}

func TestNormalizeAttributesMissingRequired(t *testing.T) {
	_, errs := NormalizeAttributes(testSchema, map[string]any{
		"quote_text": "no source for this one",
	})
	require.Len(t, errs, 1)
	assert.Equal(t, "url", errs[0].Field)
	assert.Equal(t, "missing required field: url", errs[0].Message)
}

func TestNormalizeAttributesAccumulatesErrors(t *testing.T) {
	_, errs := NormalizeAttributes(testSchema, map[string]any{
		"quote_text": strings.Repeat("x", 60),
		"url":        "ftp://example.com/file",
		"author":     strings.Repeat("y", 30),
	})
	require.Len(t, errs, 3)

	fields := make(map[string]bool)
	for _, fe := range errs {
		fields[fe.Field] = true
	}
	assert.True(t, fields["quote_text"], "expected an error for quote_text")
	assert.True(t, fields["url"], "expected an error for url")
	assert.True(t, fields["author"], "expected an error for author")
}

func TestNormalizeAttributesRejectsUnknownKeys(t *testing.T) {
	attrs, errs := NormalizeAttributes(testSchema, map[string]any{
		"quote_text": "known",
		"url":        "https://example.com",
		"color":      "teal",
	})
	require.Empty(t, errs)
	assert.NotContains(t, attrs, "color")
}

func TestNormalizeAttributesStringArray(t *testing.T) {
	attrs, errs := NormalizeAttributes(testSchema, map[string]any{
		"quote_text": "quoted",
		"url":        "https://example.com",
		"aliases":    []any{" one ", "", "two"},
	})
	require.Empty(t, errs)
	assert.Equal(t, []string{"one", "two"}, attrs["aliases"])
}

func TestNormalizeAttributesIdempotent(t *testing.T) {
	raw := map[string]any{
		"quote_text": "  stable  text  ",
		"url":        "https://Example.com/Path",
		"aliases":    []any{" a ", "b"},
	}
	first, errs := NormalizeAttributes(testSchema, raw)
	require.Empty(t, errs)

	second, errs := NormalizeAttributes(testSchema, first)
	require.Empty(t, errs)
	assert.Equal(t, first, second)
}

func TestSourceDomain(t *testing.T) {
	assert.Equal(t, "example.com", SourceDomain("https://www.example.com/a/b"))
	assert.Equal(t, "blog.example.com", SourceDomain("https://blog.example.com/post"))
	assert.Equal(t, "", SourceDomain("not a url at all \x7f"))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "Hello", Truncate("Hello", 80))
	got := Truncate("the quick brown fox jumps over the lazy dog", 20)
	assert.LessOrEqual(t, len([]rune(got)), 21)
	assert.True(t, strings.HasSuffix(got, "…"), "truncated string should end with ellipsis, got %q", got)
}
