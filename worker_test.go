package quotemill

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupWorker(t *testing.T) (*Worker, *Store, string) {
	t.Helper()
	s := setupTestStore(t)
	registry := NewRegistry()
	require.NoError(t, registry.Register(QuoteType{}))

	renderer, err := NewImageRenderer()
	require.NoError(t, err)

	shareRoot := t.TempDir()
	cfg := Config{
		Name:      "Quotemill Test",
		URL:       "https://quotes.example.com",
		Author:    "House Editor",
		ShareRoot: shareRoot,
	}
	cfg.setDefaults()

	feeds := NewFeedPublisher(s, registry, cfg)
	return NewWorker(s, registry, renderer, feeds, cfg, nil), s, shareRoot
}

func TestWorkerProcessSuccess(t *testing.T) {
	w, s, shareRoot := setupWorker(t)
	ctx := context.Background()

	mustCreate(t, s, testItem("quote", "Do not communicate by sharing memory."))
	claimed, err := s.ClaimNext(ctx, "")
	require.NoError(t, err)

	w.process(ctx, claimed)

	got, err := s.GetItem(ctx, claimed.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusRendered, got.RenderStatus)
	assert.Zero(t, got.RenderFailures)
	require.NotNil(t, got.RenderedAt)

	for _, rel := range []string{got.OGPath, got.EmbedPath, got.MarkdownPath} {
		require.NotEmpty(t, rel)
		info, err := os.Stat(filepath.Join(shareRoot, rel))
		require.NoError(t, err, "artifact %s should exist", rel)
		assert.Positive(t, info.Size())
	}

	// The per-type feed is regenerated alongside the artifacts.
	_, err = os.Stat(filepath.Join(shareRoot, "rss", "quote.xml"))
	assert.NoError(t, err)

	embedHTML, err := os.ReadFile(filepath.Join(shareRoot, got.EmbedPath))
	require.NoError(t, err)
	assert.Contains(t, string(embedHTML), "Do not communicate by sharing memory.")
	assert.Contains(t, string(embedHTML), `property="og:image"`)

	og, err := os.ReadFile(filepath.Join(shareRoot, got.OGPath))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(og), "\xff\xd8"), "OG artifact should be a JPEG")
}

func TestWorkerProcessUnknownTypeFails(t *testing.T) {
	w, s, _ := setupWorker(t)
	ctx := context.Background()

	mustCreate(t, s, testItem("hymn", "not a registered type"))
	claimed, err := s.ClaimNext(ctx, "")
	require.NoError(t, err)

	w.process(ctx, claimed)

	got, err := s.GetItem(ctx, claimed.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, got.RenderStatus)
	assert.Equal(t, 1, got.RenderFailures)
	assert.Empty(t, got.OGPath)
}

func TestWorkerRunStopsOnCancel(t *testing.T) {
	w, _, _ := setupWorker(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop after cancel")
	}
}

func TestWorkerFallbackAuthor(t *testing.T) {
	w, s, shareRoot := setupWorker(t)
	ctx := context.Background()

	// testItem sets no author attribute, so the configured site author
	// stands in for the attribution.
	mustCreate(t, s, testItem("quote", "attributed to the house"))
	claimed, err := s.ClaimNext(ctx, "")
	require.NoError(t, err)
	w.process(ctx, claimed)

	got, err := s.GetItem(ctx, claimed.ID)
	require.NoError(t, err)
	embedHTML, err := os.ReadFile(filepath.Join(shareRoot, got.EmbedPath))
	require.NoError(t, err)
	assert.Contains(t, string(embedHTML), "— House Editor")
}

func TestWorkerAuthorOnItemWins(t *testing.T) {
	w, s, shareRoot := setupWorker(t)
	ctx := context.Background()

	item := testItem("quote", "attributed to its own author")
	item.Attributes["author"] = "Named Author"
	mustCreate(t, s, item)
	claimed, err := s.ClaimNext(ctx, "")
	require.NoError(t, err)
	w.process(ctx, claimed)

	got, err := s.GetItem(ctx, claimed.ID)
	require.NoError(t, err)
	embedHTML, err := os.ReadFile(filepath.Join(shareRoot, got.EmbedPath))
	require.NoError(t, err)
	assert.Contains(t, string(embedHTML), "— Named Author")
	assert.NotContains(t, string(embedHTML), "House Editor")
}

func TestWorkerRerenderAfterEdit(t *testing.T) {
	w, s, shareRoot := setupWorker(t)
	ctx := context.Background()

	item := mustCreate(t, s, testItem("quote", "first version"))
	claimed, err := s.ClaimNext(ctx, "")
	require.NoError(t, err)
	w.process(ctx, claimed)

	item, err = s.GetItem(ctx, item.ID)
	require.NoError(t, err)
	item.Attributes["quote_text"] = "second version"
	item.Title = "second version"
	require.NoError(t, s.UpdateItem(ctx, item))

	claimed, err = s.ClaimNext(ctx, "")
	require.NoError(t, err)
	require.Equal(t, item.ID, claimed.ID)
	w.process(ctx, claimed)

	got, err := s.GetItem(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusRendered, got.RenderStatus)

	embedHTML, err := os.ReadFile(filepath.Join(shareRoot, got.EmbedPath))
	require.NoError(t, err)
	assert.Contains(t, string(embedHTML), "second version")
	assert.NotContains(t, string(embedHTML), "first version")
}
