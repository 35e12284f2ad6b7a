package quotemill

import (
	"context"
	"fmt"
	"html"
	"io"
	"strings"

	"github.com/a-h/templ"

	"github.com/eringen/quotemill/markdown"
)

// EmbedPage builds the self-contained embeddable document for one rendered
// item: Open Graph and Twitter card metadata, the canonical source link, a
// human-rendered version of the content, and a link to the markdown export.
// Written in the markdown package's style: a templ.ComponentFunc, no
// generated templates.
func EmbedPage(rc RenderContext, siteName string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		title := html.EscapeString(pageTitle(rc, siteName))
		desc := html.EscapeString(EmbedDescription(rc))

		var err error
		write := func(format string, args ...any) {
			if err != nil {
				return
			}
			_, err = fmt.Fprintf(w, format, args...)
		}

		write("<!doctype html>\n<html lang=\"en\">\n<head>\n")
		write("<meta charset=\"utf-8\"/>\n")
		write("<meta name=\"viewport\" content=\"width=device-width, initial-scale=1\"/>\n")
		write("<title>%s</title>\n", title)
		write("<meta name=\"description\" content=\"%s\"/>\n", desc)
		write("<link rel=\"canonical\" href=\"%s\"/>\n", html.EscapeString(rc.SourceLink))
		write("<meta property=\"og:type\" content=\"article\"/>\n")
		write("<meta property=\"og:title\" content=\"%s\"/>\n", title)
		write("<meta property=\"og:description\" content=\"%s\"/>\n", desc)
		write("<meta property=\"og:image\" content=\"%s\"/>\n", html.EscapeString(rc.ImageURL))
		write("<meta property=\"og:url\" content=\"%s\"/>\n", html.EscapeString(rc.EmbedURL))
		write("<meta name=\"twitter:card\" content=\"summary_large_image\"/>\n")
		write("<meta name=\"twitter:title\" content=\"%s\"/>\n", title)
		write("<meta name=\"twitter:description\" content=\"%s\"/>\n", desc)
		write("<meta name=\"twitter:image\" content=\"%s\"/>\n", html.EscapeString(rc.ImageURL))
		write("<link rel=\"stylesheet\" href=\"../style.css\"/>\n")
		write("</head>\n<body>\n<main class=\"card\">\n")
		if err != nil {
			return err
		}

		if err := markdown.Markdown(blockquoteSource(rc.Text)).Render(ctx, w); err != nil {
			return err
		}

		write("<footer>\n")
		if rc.Author != "" {
			write("<span class=\"author\">— %s</span>\n", html.EscapeString(rc.Author))
		}
		write("<a class=\"source\" href=\"%s\" rel=\"noopener\">%s</a>\n",
			html.EscapeString(rc.SourceLink), html.EscapeString(sourceLabel(rc)))
		write("<a class=\"export\" href=\"%s\">markdown</a>\n", html.EscapeString(rc.MarkdownURL))
		write("</footer>\n</main>\n</body>\n</html>\n")
		return err
	})
}

// EmbedDescription composes the share description. Preference order: the
// article title, then author plus source domain, then the domain alone,
// then a generic label.
func EmbedDescription(rc RenderContext) string {
	switch {
	case rc.ArticleTitle != "":
		return rc.ArticleTitle
	case rc.Author != "" && rc.SourceDomain != "":
		return rc.Author + ", " + rc.SourceDomain
	case rc.SourceDomain != "":
		return rc.SourceDomain
	default:
		return "A shared quote"
	}
}

func pageTitle(rc RenderContext, siteName string) string {
	title := Truncate(singleLine(rc.Text), quoteTitleMax)
	if siteName != "" {
		return title + " · " + siteName
	}
	return title
}

func sourceLabel(rc RenderContext) string {
	if rc.ArticleTitle != "" {
		return rc.ArticleTitle
	}
	if rc.SourceDomain != "" {
		return rc.SourceDomain
	}
	return rc.SourceLink
}

// blockquoteSource reframes the raw quote text as markdown blockquote lines
// so the page body renders it the same way the export does.
func blockquoteSource(text string) string {
	var b strings.Builder
	for _, line := range strings.Split(text, "\n") {
		b.WriteString("> ")
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}
