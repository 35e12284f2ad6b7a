package quotemill

import (
	"fmt"
	"strings"
)

// QuoteType is the built-in content type: a pull quote with a source URL and
// optional attribution.
type QuoteType struct{}

var quoteSchema = []Field{
	{Name: "quote_text", Kind: FieldString, Required: true, MaxLen: 2000},
	{Name: "url", Kind: FieldURL, Required: true},
	{Name: "author", Kind: FieldString, MaxLen: 200},
	{Name: "article_title", Kind: FieldString, MaxLen: 300},
}

const quoteTitleMax = 80

func (QuoteType) Name() string { return "quote" }

func (QuoteType) Normalize(raw map[string]any) (map[string]any, ValidationErrors) {
	return NormalizeAttributes(quoteSchema, raw)
}

func (QuoteType) Title(attrs map[string]any) string {
	text, _ := attrs["quote_text"].(string)
	return Truncate(singleLine(text), quoteTitleMax)
}

func (QuoteType) SourceURL(attrs map[string]any) string {
	u, _ := attrs["url"].(string)
	return u
}

func (QuoteType) RenderContext(item *Item, urls ArtifactURLs) RenderContext {
	text, _ := item.Attributes["quote_text"].(string)
	author, _ := item.Attributes["author"].(string)
	article, _ := item.Attributes["article_title"].(string)
	return RenderContext{
		Text:         text,
		Author:       author,
		ArticleTitle: article,
		SourceURL:    item.SourceURL,
		SourceDomain: SourceDomain(item.SourceURL),
		Tags:         item.Tags,
		ImageURL:     urls.Image,
		EmbedURL:     urls.Embed,
		MarkdownURL:  urls.Markdown,
		SourceLink:   item.SourceURL,
	}
}

func (QuoteType) RenderMarkdown(item *Item) string {
	text, _ := item.Attributes["quote_text"].(string)
	author, _ := item.Attributes["author"].(string)
	article, _ := item.Attributes["article_title"].(string)

	var b strings.Builder
	b.WriteString("---\n")
	writeFrontMatter(&b, "type", item.Type)
	writeFrontMatter(&b, "title", item.Title)
	writeFrontMatter(&b, "author", author)
	writeFrontMatter(&b, "article", article)
	writeFrontMatter(&b, "url", item.SourceURL)
	writeFrontMatter(&b, "tags", strings.Join(item.Tags, ", "))
	writeFrontMatter(&b, "id", fmt.Sprintf("%d", item.ID))
	b.WriteString("---\n\n")

	for _, line := range strings.Split(text, "\n") {
		b.WriteString("> ")
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString("\n")

	attribution := formatAttribution(author, article, item.SourceURL)
	if attribution != "" {
		b.WriteString(attribution)
		b.WriteString("\n")
	}
	return b.String()
}

func (QuoteType) FeedEntry(item *Item, urls ArtifactURLs) FeedEntry {
	author, _ := item.Attributes["author"].(string)
	text, _ := item.Attributes["quote_text"].(string)

	summary := Truncate(singleLine(text), 300)
	if author != "" {
		summary = summary + " — " + author
	}

	pubDate := item.UpdatedAt
	if item.RenderedAt != nil {
		pubDate = *item.RenderedAt
	}

	return FeedEntry{
		GUID:    fmt.Sprintf("%s-%d", item.Type, item.ID),
		Title:   item.Title,
		Link:    urls.Embed,
		Summary: summary,
		PubDate: pubDate,
	}
}

// formatAttribution builds the "— author, [article](url)" trailer for the
// markdown export. Any part may be missing.
func formatAttribution(author, article, sourceURL string) string {
	var parts []string
	if author != "" {
		parts = append(parts, author)
	}
	switch {
	case article != "" && sourceURL != "":
		parts = append(parts, fmt.Sprintf("[%s](%s)", article, sourceURL))
	case sourceURL != "":
		parts = append(parts, sourceURL)
	case article != "":
		parts = append(parts, article)
	}
	if len(parts) == 0 {
		return ""
	}
	return "— " + strings.Join(parts, ", ")
}

// writeFrontMatter emits one front-matter line, skipping empty values.
// Values are forced onto a single line so the block stays parseable.
func writeFrontMatter(b *strings.Builder, key, value string) {
	if value == "" {
		return
	}
	b.WriteString(key)
	b.WriteString(": ")
	b.WriteString(singleLine(value))
	b.WriteString("\n")
}

// singleLine collapses all whitespace runs (including newlines) to single
// spaces.
func singleLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
