package quotemill

import (
	"fmt"
	"sort"
)

// TypeDefinition bundles the per-type behavior the pipeline dispatches on:
// validation, display-field derivation, render-context building, markdown
// serialization, and feed-entry construction. Implementations must be
// stateless; a definition is registered once at startup and shared.
type TypeDefinition interface {
	// Name is the type tag stored on items.
	Name() string

	// Normalize validates raw attributes and returns a sanitized payload.
	// All field violations are accumulated, never short-circuited.
	Normalize(raw map[string]any) (map[string]any, ValidationErrors)

	// Title derives the display title from normalized attributes.
	Title(attrs map[string]any) string

	// SourceURL extracts the canonical source link, or "" when absent.
	SourceURL(attrs map[string]any) string

	// RenderContext assembles the renderer input from an item and its
	// pre-resolved public artifact URLs.
	RenderContext(item *Item, urls ArtifactURLs) RenderContext

	// RenderMarkdown serializes an item as a markdown export with front
	// matter. Front-matter fields must survive re-extraction unchanged.
	RenderMarkdown(item *Item) string

	// FeedEntry maps a rendered item to a syndication feed entry.
	FeedEntry(item *Item, urls ArtifactURLs) FeedEntry
}

// ArtifactURLs are the public URLs artifacts will be served from, resolved
// before rendering so artifacts can reference each other.
type ArtifactURLs struct {
	Image    string
	Embed    string
	Markdown string
}

// Registry is the catalog of registered content types. It is populated once
// at process start and read-only afterwards, so lookups need no locking.
type Registry struct {
	types map[string]TypeDefinition
}

// NewRegistry returns an empty type registry.
func NewRegistry() *Registry {
	return &Registry{types: make(map[string]TypeDefinition)}
}

// Register adds a type definition. Registering the same name twice is a
// configuration error.
func (r *Registry) Register(def TypeDefinition) error {
	name := def.Name()
	if name == "" {
		return fmt.Errorf("register type: empty type name")
	}
	if _, exists := r.types[name]; exists {
		return fmt.Errorf("register type: %q already registered", name)
	}
	r.types[name] = def
	return nil
}

// Lookup returns the definition for a type name.
func (r *Registry) Lookup(name string) (TypeDefinition, error) {
	def, ok := r.types[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, name)
	}
	return def, nil
}

// Names returns the registered type names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.types))
	for name := range r.types {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
