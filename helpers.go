package quotemill

import (
	"fmt"
	"net/url"
	"path"
	"strings"
)

// BuildURL joins a base URL with path segments.
func BuildURL(base string, pathSegments ...string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	u.Path = path.Join(u.Path, path.Join(pathSegments...))
	return u.String()
}

// FilterEmpty trims every string and drops empty ones, preserving order.
func FilterEmpty(vals []string) []string {
	var out []string
	for _, v := range vals {
		if s := strings.TrimSpace(v); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// ItemArtifactPaths returns the artifact locations for an item, relative to
// the share root: og/<type>/<id>.jpg, embed/<type>/<id>.html,
// markdown/<type>/<id>.md.
func ItemArtifactPaths(item *Item) ArtifactPaths {
	id := fmt.Sprintf("%d", item.ID)
	return ArtifactPaths{
		OG:       path.Join("og", item.Type, id+".jpg"),
		Embed:    path.Join("embed", item.Type, id+".html"),
		Markdown: path.Join("markdown", item.Type, id+".md"),
	}
}

// PublicArtifactURLs resolves the public URLs the artifacts will be served
// from, under /shared/ on the site base URL. Resolved before rendering so
// artifacts can reference each other.
func PublicArtifactURLs(base string, item *Item) ArtifactURLs {
	p := ItemArtifactPaths(item)
	return ArtifactURLs{
		Image:    BuildURL(base, "shared", p.OG),
		Embed:    BuildURL(base, "shared", p.Embed),
		Markdown: BuildURL(base, "shared", p.Markdown),
	}
}

// ParseFrontMatter extracts the key/value block between the leading "---"
// fences of a markdown export. Returns nil when no front matter is present.
func ParseFrontMatter(md string) map[string]string {
	lines := strings.Split(md, "\n")
	if len(lines) == 0 || strings.TrimSpace(lines[0]) != "---" {
		return nil
	}
	fields := make(map[string]string)
	for _, line := range lines[1:] {
		if strings.TrimSpace(line) == "---" {
			return fields
		}
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		fields[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	return nil
}
