package quotemill

import (
	"reflect"
	"testing"
)

func TestBuildURL(t *testing.T) {
	tests := []struct {
		base     string
		segments []string
		want     string
	}{
		{"https://example.com", []string{"shared", "og"}, "https://example.com/shared/og"},
		{"https://example.com/", []string{"sitemap.xml"}, "https://example.com/sitemap.xml"},
		{"https://example.com/sub", []string{"a", "b.jpg"}, "https://example.com/sub/a/b.jpg"},
		{"https://example.com", nil, "https://example.com"},
	}
	for _, tt := range tests {
		if got := BuildURL(tt.base, tt.segments...); got != tt.want {
			t.Errorf("BuildURL(%q, %v) = %q, want %q", tt.base, tt.segments, got, tt.want)
		}
	}
}

func TestFilterEmpty(t *testing.T) {
	got := FilterEmpty([]string{" a ", "", "  ", "b"})
	want := []string{"a", "b"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("FilterEmpty = %v, want %v", got, want)
	}
}

func TestItemArtifactPaths(t *testing.T) {
	item := &Item{ID: 12, Type: "quote"}
	p := ItemArtifactPaths(item)
	if p.OG != "og/quote/12.jpg" {
		t.Errorf("OG = %q", p.OG)
	}
	if p.Embed != "embed/quote/12.html" {
		t.Errorf("Embed = %q", p.Embed)
	}
	if p.Markdown != "markdown/quote/12.md" {
		t.Errorf("Markdown = %q", p.Markdown)
	}
}

func TestPublicArtifactURLs(t *testing.T) {
	item := &Item{ID: 12, Type: "quote"}
	urls := PublicArtifactURLs("https://quotes.example.com", item)
	if urls.Image != "https://quotes.example.com/shared/og/quote/12.jpg" {
		t.Errorf("Image = %q", urls.Image)
	}
	if urls.Embed != "https://quotes.example.com/shared/embed/quote/12.html" {
		t.Errorf("Embed = %q", urls.Embed)
	}
	if urls.Markdown != "https://quotes.example.com/shared/markdown/quote/12.md" {
		t.Errorf("Markdown = %q", urls.Markdown)
	}
}

func TestParseFrontMatter(t *testing.T) {
	md := "---\ntype: quote\nurl: https://example.com/a\n---\n\n> body\n"
	fm := ParseFrontMatter(md)
	if fm["type"] != "quote" {
		t.Errorf("type = %q", fm["type"])
	}
	if fm["url"] != "https://example.com/a" {
		t.Errorf("url = %q", fm["url"])
	}
}

func TestParseFrontMatterAbsent(t *testing.T) {
	if fm := ParseFrontMatter("# just a heading\n"); fm != nil {
		t.Errorf("expected nil for missing front matter, got %v", fm)
	}
	if fm := ParseFrontMatter("---\nnever closed\n"); fm != nil {
		t.Errorf("expected nil for unterminated front matter, got %v", fm)
	}
}
