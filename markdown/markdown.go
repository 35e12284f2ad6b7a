// Package markdown renders the small markdown subset used in quote content
// (emphasis, links, inline code, paragraphs, blockquotes) to HTML, exposed
// as a templ component for embedding in pages.
package markdown

import (
	"bytes"
	"context"
	"html"
	"io"
	"regexp"
	"strings"

	"github.com/a-h/templ"
)

var (
	reBold             = regexp.MustCompile(`\*\*(.+?)\*\*`)
	reBoldUnderscore   = regexp.MustCompile(`__(.+?)__`)
	reItalic           = regexp.MustCompile(`\*([^*]+)\*`)
	reItalicUnderscore = regexp.MustCompile(`_([^_]+)_`)
	reInlineCode       = regexp.MustCompile("`([^`]+)`")
	reLink             = regexp.MustCompile(`\[(.*?)\]\((.*?)\)`)
)

// Markdown returns a templ.Component that renders md as HTML.
func Markdown(content string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var buf bytes.Buffer
		Render(&buf, content)
		_, err := w.Write(buf.Bytes())
		return err
	})
}

// Render writes the HTML representation of md to buf.
func Render(buf *bytes.Buffer, md string) {
	inPara := false
	inQuote := false

	flushPara := func() {
		if inPara {
			buf.WriteString("</p>")
			inPara = false
		}
	}
	flushQuote := func() {
		if inQuote {
			buf.WriteString("</blockquote>")
			inQuote = false
		}
	}

	for _, raw := range strings.Split(md, "\n") {
		line := strings.TrimRight(raw, "\r")
		if strings.TrimSpace(line) == "" {
			flushPara()
			flushQuote()
			continue
		}

		if strings.HasPrefix(line, "> ") {
			if !inQuote {
				flushPara()
				buf.WriteString("<blockquote>")
				inQuote = true
			} else {
				buf.WriteString(" ")
			}
			buf.WriteString(FormatInline(strings.TrimSpace(line[2:])))
			continue
		}

		if !inPara {
			flushQuote()
			buf.WriteString("<p>")
			inPara = true
		} else {
			buf.WriteString(" ")
		}
		buf.WriteString(FormatInline(strings.TrimSpace(line)))
	}
	flushPara()
	flushQuote()
}

// FormatInline escapes text and applies inline markdown formatting.
// Bold runs before italic so ** is not consumed as two *.
func FormatInline(text string) string {
	out := html.EscapeString(text)
	out = reInlineCode.ReplaceAllString(out, "<code>$1</code>")
	out = reBold.ReplaceAllString(out, "<strong>$1</strong>")
	out = reBoldUnderscore.ReplaceAllString(out, "<strong>$1</strong>")
	out = reItalic.ReplaceAllString(out, "<em>$1</em>")
	out = reItalicUnderscore.ReplaceAllString(out, "<em>$1</em>")
	out = reLink.ReplaceAllString(out, `<a href="$2" rel="noopener">$1</a>`)
	return out
}
