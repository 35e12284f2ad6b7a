package quotemill

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// storageRetryDelay is how long the loop backs off after a storage error
// before polling again.
const storageRetryDelay = 2 * time.Second

// Worker is the render control loop: it claims queued items one at a time,
// produces their artifacts, persists the outcome, and regenerates the
// affected feed. A single bad item never halts the loop.
type Worker struct {
	store    *Store
	registry *Registry
	renderer *ImageRenderer
	feeds    *FeedPublisher
	cfg      Config
	logger   *slog.Logger
}

// NewWorker wires a worker over the shared store, registry, renderer, and
// feed publisher.
func NewWorker(store *Store, registry *Registry, renderer *ImageRenderer, feeds *FeedPublisher, cfg Config, logger *slog.Logger) *Worker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Worker{
		store:    store,
		registry: registry,
		renderer: renderer,
		feeds:    feeds,
		cfg:      cfg,
		logger:   logger.With(slog.String("component", "render_worker")),
	}
}

// Run polls the queue until ctx is cancelled. Items left in rendering by a
// crashed worker are requeued at startup and re-checked periodically.
func (w *Worker) Run(ctx context.Context) error {
	w.reclaimStuck(ctx)
	lastStuckCheck := time.Now()

	for {
		if ctx.Err() != nil {
			return nil
		}

		if time.Since(lastStuckCheck) > w.cfg.StuckRenderAge {
			w.reclaimStuck(ctx)
			lastStuckCheck = time.Now()
		}

		item, err := w.store.ClaimNext(ctx, "")
		if errors.Is(err, ErrNoQueuedItems) {
			if !w.sleep(ctx, w.cfg.PollInterval) {
				return nil
			}
			continue
		}
		if err != nil {
			// Storage errors abort only this iteration; the loop
			// must keep running.
			w.logger.Error("claim failed", slog.String("error", err.Error()))
			if !w.sleep(ctx, storageRetryDelay) {
				return nil
			}
			continue
		}

		w.process(ctx, item)
	}
}

// process renders one claimed item. Any failure marks the item failed and
// returns; artifact files already written are left in place — the persisted
// render status alone decides whether they are current.
func (w *Worker) process(ctx context.Context, item *Item) {
	log := w.logger.With(
		slog.Int64("item_id", item.ID),
		slog.String("item_type", item.Type),
	)
	log.Info("rendering item")

	def, err := w.registry.Lookup(item.Type)
	if err != nil {
		w.fail(ctx, item, log, err)
		return
	}

	rc := def.RenderContext(item, PublicArtifactURLs(w.cfg.URL, item))
	if rc.Author == "" {
		rc.Author = w.cfg.Author
	}

	imageBytes, err := w.renderer.Render(rc)
	if err != nil {
		w.fail(ctx, item, log, fmt.Errorf("render image: %w", err))
		return
	}

	var embedBuf bytes.Buffer
	if err := EmbedPage(rc, w.cfg.Name).Render(ctx, &embedBuf); err != nil {
		w.fail(ctx, item, log, fmt.Errorf("render embed page: %w", err))
		return
	}

	paths := ItemArtifactPaths(item)
	artifacts := []struct {
		relPath string
		data    []byte
	}{
		{paths.OG, imageBytes},
		{paths.Embed, embedBuf.Bytes()},
		{paths.Markdown, []byte(def.RenderMarkdown(item))},
	}
	for _, a := range artifacts {
		if err := w.writeArtifact(a.relPath, a.data); err != nil {
			w.fail(ctx, item, log, err)
			return
		}
	}

	renderedAt := time.Now().UTC()
	if err := w.store.MarkRendered(ctx, item.ID, paths, renderedAt); err != nil {
		log.Error("mark rendered failed", slog.String("error", err.Error()))
		return
	}
	log.Info("item rendered",
		slog.String("og_path", paths.OG),
		slog.String("embed_path", paths.Embed),
		slog.String("markdown_path", paths.Markdown))

	if err := w.feeds.Regenerate(ctx, item.Type); err != nil {
		// The item is already rendered; a feed failure is repaired by
		// the next successful render of this type.
		log.Error("feed regeneration failed", slog.String("error", err.Error()))
	}
}

func (w *Worker) writeArtifact(relPath string, data []byte) error {
	full := filepath.Join(w.cfg.ShareRoot, relPath)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("create artifact dir: %w", err)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return fmt.Errorf("write artifact %s: %w", relPath, err)
	}
	return nil
}

func (w *Worker) fail(ctx context.Context, item *Item, log *slog.Logger, cause error) {
	log.Error("render failed", slog.String("error", cause.Error()))
	if err := w.store.MarkFailed(ctx, item.ID); err != nil {
		log.Error("mark failed errored", slog.String("error", err.Error()))
	}
}

func (w *Worker) reclaimStuck(ctx context.Context) {
	n, err := w.store.RequeueStuck(ctx, w.cfg.StuckRenderAge)
	if err != nil {
		w.logger.Error("requeue stuck items failed", slog.String("error", err.Error()))
		return
	}
	if n > 0 {
		w.logger.Warn("requeued stuck items", slog.Int64("count", n))
	}
}

// sleep waits for d or until ctx is cancelled; it reports false on cancel.
func (w *Worker) sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
