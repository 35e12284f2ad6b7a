package quotemill

import (
	"context"
	"encoding/xml"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupFeedPublisher(t *testing.T) (*FeedPublisher, *Store, string) {
	t.Helper()
	s := setupTestStore(t)
	registry := NewRegistry()
	require.NoError(t, registry.Register(QuoteType{}))

	shareRoot := t.TempDir()
	cfg := Config{
		Name:        "Quotemill Test",
		URL:         "https://quotes.example.com",
		Description: "test feed",
		ShareRoot:   shareRoot,
	}
	return NewFeedPublisher(s, registry, cfg), s, shareRoot
}

func TestRegenerateEmptyFeed(t *testing.T) {
	p, _, shareRoot := setupFeedPublisher(t)

	require.NoError(t, p.Regenerate(context.Background(), "quote"))

	data, err := os.ReadFile(filepath.Join(shareRoot, "rss", "quote.xml"))
	require.NoError(t, err)

	var feed rssXML
	require.NoError(t, xml.Unmarshal(data, &feed))
	assert.Equal(t, "2.0", feed.Version)
	assert.Equal(t, "Quotemill Test — quote", feed.Channel.Title)
	assert.Empty(t, feed.Channel.Items)
}

func TestRegenerateUnknownType(t *testing.T) {
	p, _, _ := setupFeedPublisher(t)
	err := p.Regenerate(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrUnknownType)
}

func TestRegenerateWithRenderedItems(t *testing.T) {
	p, s, shareRoot := setupFeedPublisher(t)
	ctx := context.Background()

	item := mustCreate(t, s, testItem("quote", "feed me"))
	_, err := s.ClaimNext(ctx, "")
	require.NoError(t, err)
	require.NoError(t, s.MarkRendered(ctx, item.ID, ItemArtifactPaths(item), time.Now().UTC()))

	// Items still in the queue must not appear in the feed.
	mustCreate(t, s, testItem("quote", "not rendered yet"))

	require.NoError(t, p.Regenerate(ctx, "quote"))

	data, err := os.ReadFile(filepath.Join(shareRoot, "rss", "quote.xml"))
	require.NoError(t, err)

	var feed rssXML
	require.NoError(t, xml.Unmarshal(data, &feed))
	require.Len(t, feed.Channel.Items, 1)

	entry := feed.Channel.Items[0]
	assert.Equal(t, "feed me", entry.Title)
	assert.Equal(t, "quote-"+itoa(item.ID), entry.GUID)
	assert.Contains(t, entry.Link, "/shared/embed/quote/")
	_, err = time.Parse(time.RFC1123Z, entry.PubDate)
	assert.NoError(t, err, "pubDate should be RFC 1123Z")
}

func TestWriteFileAtomicReplaces(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "feed.xml")

	require.NoError(t, writeFileAtomic(path, []byte("first")))
	require.NoError(t, writeFileAtomic(path, []byte("second")))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files should not linger")
}

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}
