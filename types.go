package quotemill

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// RenderStatus tracks where an item is in the rendering lifecycle.
type RenderStatus string

const (
	StatusQueued    RenderStatus = "queued"
	StatusRendering RenderStatus = "rendering"
	StatusRendered  RenderStatus = "rendered"
	StatusFailed    RenderStatus = "failed"
)

// Item is the unit of work: a validated content payload plus the outcome of
// its most recent render. Attributes always hold normalized data, never raw
// input.
type Item struct {
	ID             int64          `json:"id"`
	Type           string         `json:"type"`
	Title          string         `json:"title"`
	SourceURL      string         `json:"source_url"`
	Attributes     map[string]any `json:"attributes"`
	Tags           []string       `json:"tags"`
	SubmittedBy    string         `json:"submitted_by,omitempty"`
	RenderStatus   RenderStatus   `json:"render_status"`
	OGPath         string         `json:"og_path,omitempty"`
	EmbedPath      string         `json:"embed_path,omitempty"`
	MarkdownPath   string         `json:"markdown_path,omitempty"`
	RenderedAt     *time.Time     `json:"rendered_at,omitempty"`
	RenderFailures int            `json:"render_failures"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// ArtifactPaths holds the relative locations of a successful render's outputs.
type ArtifactPaths struct {
	OG       string
	Embed    string
	Markdown string
}

// Sentinel errors returned by the store and registry.
var (
	// ErrItemNotFound is returned when an item id does not exist.
	ErrItemNotFound = errors.New("item not found")

	// ErrUnknownType is returned when no type definition is registered
	// under the requested name.
	ErrUnknownType = errors.New("unknown content type")

	// ErrNoQueuedItems is returned by ClaimNext when the queue is empty.
	ErrNoQueuedItems = errors.New("no queued items")
)

// FieldError describes a single validation failure on one field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e FieldError) Error() string {
	return e.Field + ": " + e.Message
}

// ValidationErrors is the accumulated result of normalizing a payload.
// Validation never short-circuits: every field is checked independently so
// callers see all violations at once.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	msgs := make([]string, len(v))
	for i, e := range v {
		msgs[i] = e.Error()
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(msgs, "; "))
}

// RenderContext is everything the asset renderer needs to draw one item:
// the display fields extracted by the type definition plus pre-resolved
// public URLs for the artifacts being produced.
type RenderContext struct {
	Text         string
	Author       string
	ArticleTitle string
	SourceURL    string
	SourceDomain string
	Tags         []string

	ImageURL    string
	EmbedURL    string
	MarkdownURL string
	SourceLink  string
}

// FeedEntry is one item's contribution to a per-type syndication feed.
type FeedEntry struct {
	GUID    string
	Title   string
	Link    string
	Summary string
	PubDate time.Time
}
