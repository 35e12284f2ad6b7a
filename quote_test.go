package quotemill

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuoteNormalize(t *testing.T) {
	qt := QuoteType{}
	attrs, errs := qt.Normalize(map[string]any{
		"quote_text": "Clear is better than clever.",
		"url":        "https://example.com/proverbs",
		"author":     "Rob Pike",
	})
	require.Empty(t, errs)
	assert.Equal(t, "Clear is better than clever.", attrs["quote_text"])
	assert.Equal(t, "Rob Pike", attrs["author"])
}

func TestQuoteNormalizeMissingURL(t *testing.T) {
	qt := QuoteType{}
	_, errs := qt.Normalize(map[string]any{
		"quote_text": "unsourced wisdom",
	})
	require.Len(t, errs, 1)
	assert.Equal(t, "missing required field: url", errs[0].Message)
}

func TestQuoteTitle(t *testing.T) {
	qt := QuoteType{}

	assert.Equal(t, "Hello", qt.Title(map[string]any{"quote_text": "Hello"}))

	long := strings.Repeat("lengthy words here ", 10)
	title := qt.Title(map[string]any{"quote_text": long})
	assert.LessOrEqual(t, len([]rune(title)), quoteTitleMax+1)
	assert.True(t, strings.HasSuffix(title, "…"))

	multi := qt.Title(map[string]any{"quote_text": "line one\nline two"})
	assert.Equal(t, "line one line two", multi)
}

func TestQuoteRenderMarkdownRoundTrip(t *testing.T) {
	now := time.Now()
	item := &Item{
		ID:        42,
		Type:      "quote",
		Title:     "Make it correct, make it clear",
		SourceURL: "https://example.com/essays/style",
		Attributes: map[string]any{
			"quote_text":    "Make it correct,\nmake it clear.",
			"author":        "Kernighan",
			"article_title": "On Style",
		},
		Tags:      []string{"writing", "craft"},
		CreatedAt: now,
		UpdatedAt: now,
	}

	md := QuoteType{}.RenderMarkdown(item)

	fm := ParseFrontMatter(md)
	assert.Equal(t, "quote", fm["type"])
	assert.Equal(t, "Make it correct, make it clear", fm["title"])
	assert.Equal(t, "Kernighan", fm["author"])
	assert.Equal(t, "On Style", fm["article"])
	assert.Equal(t, "https://example.com/essays/style", fm["url"])
	assert.Equal(t, "writing, craft", fm["tags"])
	assert.Equal(t, "42", fm["id"])

	assert.Contains(t, md, "> Make it correct,\n> make it clear.\n")
	assert.Contains(t, md, "— Kernighan, [On Style](https://example.com/essays/style)")
}

func TestFrontMatterCollapsesInteriorWhitespace(t *testing.T) {
	// Normalization trims ends but keeps interior whitespace runs; front
	// matter collapses them so every value stays a single parseable line.
	// The round trip therefore holds against the collapsed form.
	item := &Item{
		ID:        3,
		Type:      "quote",
		Title:     "double  spaced  title",
		SourceURL: "https://example.com",
		Attributes: map[string]any{
			"quote_text":    "double  spaced  title",
			"author":        "First  Last",
			"article_title": "Tabs\tand  spaces",
		},
	}

	md := QuoteType{}.RenderMarkdown(item)

	fm := ParseFrontMatter(md)
	assert.Equal(t, "double spaced title", fm["title"])
	assert.Equal(t, "First Last", fm["author"])
	assert.Equal(t, "Tabs and spaces", fm["article"])
}

func TestQuoteRenderMarkdownMinimal(t *testing.T) {
	item := &Item{
		ID:        7,
		Type:      "quote",
		Title:     "bare minimum",
		SourceURL: "https://example.com",
		Attributes: map[string]any{
			"quote_text": "bare minimum",
		},
	}

	md := QuoteType{}.RenderMarkdown(item)

	fm := ParseFrontMatter(md)
	assert.NotContains(t, fm, "author")
	assert.NotContains(t, fm, "article")
	assert.Contains(t, md, "> bare minimum\n")
	assert.Contains(t, md, "— https://example.com")
}

func TestQuoteFeedEntry(t *testing.T) {
	rendered := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	item := &Item{
		ID:    9,
		Type:  "quote",
		Title: "A short one",
		Attributes: map[string]any{
			"quote_text": "A short one",
			"author":     "Unknown",
		},
		UpdatedAt:  rendered.Add(-time.Hour),
		RenderedAt: &rendered,
	}
	urls := ArtifactURLs{Embed: "https://example.com/shared/embed/quote/9.html"}

	entry := QuoteType{}.FeedEntry(item, urls)
	assert.Equal(t, "quote-9", entry.GUID)
	assert.Equal(t, "A short one", entry.Title)
	assert.Equal(t, urls.Embed, entry.Link)
	assert.Equal(t, "A short one — Unknown", entry.Summary)
	assert.Equal(t, rendered, entry.PubDate)
}

func TestFormatAttribution(t *testing.T) {
	assert.Equal(t, "", formatAttribution("", "", ""))
	assert.Equal(t, "— Ada", formatAttribution("Ada", "", ""))
	assert.Equal(t, "— https://x.test", formatAttribution("", "", "https://x.test"))
	assert.Equal(t, "— Ada, [Notes](https://x.test)", formatAttribution("Ada", "Notes", "https://x.test"))
}
