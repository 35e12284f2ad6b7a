package quotemill

import (
	"context"
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// feedItemCap bounds how many rendered items a regenerated feed carries.
const feedItemCap = 50

type rssXML struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title       string    `xml:"title"`
	Link        string    `xml:"link"`
	Description string    `xml:"description"`
	Items       []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	Description string `xml:"description"`
	PubDate     string `xml:"pubDate"`
	GUID        string `xml:"guid"`
}

// FeedPublisher rebuilds per-type RSS documents from recently rendered
// items. Output is written atomically so readers never observe a partial
// document.
type FeedPublisher struct {
	store    *Store
	registry *Registry
	cfg      Config
}

// NewFeedPublisher creates a FeedPublisher over the given store and registry.
func NewFeedPublisher(store *Store, registry *Registry, cfg Config) *FeedPublisher {
	return &FeedPublisher{store: store, registry: registry, cfg: cfg}
}

// Regenerate rewrites the feed for one content type at
// <root>/rss/<type>.xml. A type with no rendered items still produces a
// valid, empty feed document.
func (p *FeedPublisher) Regenerate(ctx context.Context, typeName string) error {
	def, err := p.registry.Lookup(typeName)
	if err != nil {
		return err
	}
	items, err := p.store.ListRenderedByType(ctx, typeName, feedItemCap)
	if err != nil {
		return fmt.Errorf("regenerate feed %q: %w", typeName, err)
	}

	feedItems := make([]rssItem, 0, len(items))
	for i := range items {
		item := &items[i]
		entry := def.FeedEntry(item, PublicArtifactURLs(p.cfg.URL, item))
		feedItems = append(feedItems, rssItem{
			Title:       entry.Title,
			Link:        entry.Link,
			Description: entry.Summary,
			PubDate:     entry.PubDate.Format(time.RFC1123Z),
			GUID:        entry.GUID,
		})
	}

	feed := rssXML{
		Version: "2.0",
		Channel: rssChannel{
			Title:       p.cfg.Name + " — " + typeName,
			Link:        p.cfg.URL,
			Description: p.cfg.Description,
			Items:       feedItems,
		},
	}

	data, err := xml.MarshalIndent(feed, "", "  ")
	if err != nil {
		return fmt.Errorf("encode feed %q: %w", typeName, err)
	}

	path := filepath.Join(p.cfg.ShareRoot, "rss", typeName+".xml")
	return writeFileAtomic(path, append([]byte(xml.Header), data...))
}

// writeFileAtomic writes data to a temp file in the target directory and
// renames it into place, so a crash mid-write never exposes a truncated
// document.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
