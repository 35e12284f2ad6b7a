package quotemill

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Store wraps a SQLite database and provides the item repository plus the
// render job queue. SQLite's single-writer transaction model is what makes
// ClaimNext exclusive across concurrent workers.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the SQLite database at path, ensures the data
// directory exists, and runs schema migrations.
func NewStore(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// Enable WAL mode for concurrent read/write access, set a busy timeout
	// so writers wait instead of returning SQLITE_BUSY immediately, and tune
	// performance: synchronous=NORMAL is safe with WAL and avoids an fsync
	// per transaction; larger cache and mmap reduce disk I/O.
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
		PRAGMA cache_size=-8000;
		PRAGMA mmap_size=268435456;
	`); err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS items (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    type TEXT NOT NULL,
    title TEXT NOT NULL DEFAULT '',
    source_url TEXT NOT NULL DEFAULT '',
    attributes TEXT NOT NULL DEFAULT '{}',
    tags TEXT NOT NULL DEFAULT '[]',
    submitted_by TEXT NOT NULL DEFAULT '',
    render_status TEXT NOT NULL DEFAULT 'queued',
    og_path TEXT,
    embed_path TEXT,
    markdown_path TEXT,
    rendered_at TIMESTAMP,
    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL,
    render_failures INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_items_queue ON items(render_status, type, id);
CREATE INDEX IF NOT EXISTS idx_items_rendered ON items(type, render_status, rendered_at);
`)
	return err
}

const itemColumns = `id, type, title, source_url, attributes, tags, submitted_by,
	render_status, og_path, embed_path, markdown_path, rendered_at,
	created_at, updated_at, render_failures`

// CreateItem inserts a new item with render_status=queued and assigns its id.
func (s *Store) CreateItem(ctx context.Context, item *Item) error {
	attrs, tags, err := encodePayload(item)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	item.RenderStatus = StatusQueued
	item.CreatedAt = now
	item.UpdatedAt = now

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO items (type, title, source_url, attributes, tags, submitted_by,
			render_status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		item.Type, item.Title, item.SourceURL, attrs, tags, item.SubmittedBy,
		StatusQueued, now, now)
	if err != nil {
		return fmt.Errorf("create item: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("create item: %w", err)
	}
	item.ID = id
	return nil
}

// GetItem returns a single item by id.
func (s *Store) GetItem(ctx context.Context, id int64) (*Item, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM items WHERE id = ?`, id)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrItemNotFound
	}
	return item, err
}

// ListOptions filters and paginates ListItems. Cursor is an item id: results
// exclude that item and everything created at or after it (keyset
// pagination; ids are assigned in creation order).
type ListOptions struct {
	Type   string
	Tag    string
	Cursor int64
	Limit  int
}

// ListItems returns items ordered by creation time descending.
func (s *Store) ListItems(ctx context.Context, opts ListOptions) ([]Item, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}
	if limit > 100 {
		limit = 100
	}

	query := `SELECT ` + itemColumns + ` FROM items WHERE 1=1`
	var args []any
	if opts.Type != "" {
		query += ` AND type = ?`
		args = append(args, opts.Type)
	}
	if opts.Tag != "" {
		query += ` AND EXISTS (SELECT 1 FROM json_each(items.tags) WHERE lower(json_each.value) = lower(?))`
		args = append(args, opts.Tag)
	}
	if opts.Cursor > 0 {
		query += ` AND id < ?`
		args = append(args, opts.Cursor)
	}
	query += ` ORDER BY id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// UpdateItem persists new content for an existing item. Editing always
// resets render_status to queued and clears the artifact paths so stale
// assets are never served as current.
func (s *Store) UpdateItem(ctx context.Context, item *Item) error {
	attrs, tags, err := encodePayload(item)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `
		UPDATE items
		SET title = ?, source_url = ?, attributes = ?, tags = ?,
			render_status = ?, og_path = NULL, embed_path = NULL,
			markdown_path = NULL, updated_at = ?
		WHERE id = ?`,
		item.Title, item.SourceURL, attrs, tags, StatusQueued, now, item.ID)
	if err != nil {
		return fmt.Errorf("update item %d: %w", item.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrItemNotFound
	}
	item.RenderStatus = StatusQueued
	item.OGPath, item.EmbedPath, item.MarkdownPath = "", "", ""
	item.UpdatedAt = now
	return nil
}

// ClaimNext atomically transitions the oldest queued item (optionally
// filtered by type) to rendering and returns it. The single UPDATE with a
// subquery runs inside one exclusive SQLite write transaction, so two
// concurrent callers can never claim the same row: the second caller's
// subquery re-evaluates after the first commits and picks a different row
// or nothing. Returns ErrNoQueuedItems when the queue is empty.
func (s *Store) ClaimNext(ctx context.Context, typeName string) (*Item, error) {
	now := time.Now().UTC()
	row := s.db.QueryRowContext(ctx, `
		UPDATE items
		SET render_status = ?, updated_at = ?
		WHERE id = (
			SELECT id FROM items
			WHERE render_status = ? AND (? = '' OR type = ?)
			ORDER BY id
			LIMIT 1
		)
		RETURNING `+itemColumns,
		StatusRendering, now, StatusQueued, typeName, typeName)

	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoQueuedItems
	}
	if err != nil {
		return nil, fmt.Errorf("claim next: %w", err)
	}
	return item, nil
}

// MarkRendered records a successful render: status, artifact paths, render
// timestamp, and a reset failure counter.
func (s *Store) MarkRendered(ctx context.Context, id int64, paths ArtifactPaths, renderedAt time.Time) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE items
		SET render_status = ?, og_path = ?, embed_path = ?, markdown_path = ?,
			rendered_at = ?, render_failures = 0, updated_at = ?
		WHERE id = ?`,
		StatusRendered, paths.OG, paths.Embed, paths.Markdown,
		renderedAt.UTC(), time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("mark rendered %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrItemNotFound
	}
	return nil
}

// MarkFailed records a failed render attempt. Artifact paths from any prior
// successful render are left untouched; the failed status alone marks them
// stale.
func (s *Store) MarkFailed(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE items
		SET render_status = ?, render_failures = render_failures + 1, updated_at = ?
		WHERE id = ?`,
		StatusFailed, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("mark failed %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrItemNotFound
	}
	return nil
}

// RequeueItem forces an item back to queued and clears its artifact paths,
// regardless of current status. Used by the admin requeue action.
func (s *Store) RequeueItem(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE items
		SET render_status = ?, og_path = NULL, embed_path = NULL,
			markdown_path = NULL, updated_at = ?
		WHERE id = ?`,
		StatusQueued, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("requeue item %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrItemNotFound
	}
	return nil
}

// RequeueStuck returns items abandoned mid-render to the queue. An item
// counts as stuck when it has sat in rendering longer than age, which only
// happens after a worker crash. Returns the number of requeued items.
func (s *Store) RequeueStuck(ctx context.Context, age time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-age)
	res, err := s.db.ExecContext(ctx, `
		UPDATE items
		SET render_status = ?, updated_at = ?
		WHERE render_status = ? AND updated_at < ?`,
		StatusQueued, time.Now().UTC(), StatusRendering, cutoff)
	if err != nil {
		return 0, fmt.Errorf("requeue stuck: %w", err)
	}
	return res.RowsAffected()
}

// ListRenderedByType returns up to limit rendered items of the given type,
// most recently rendered first. Used by the feed publisher.
func (s *Store) ListRenderedByType(ctx context.Context, typeName string, limit int) ([]Item, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+itemColumns+` FROM items
		WHERE type = ? AND render_status = ?
		ORDER BY rendered_at DESC
		LIMIT ?`,
		typeName, StatusRendered, limit)
	if err != nil {
		return nil, fmt.Errorf("list rendered: %w", err)
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// StatusCounts returns the number of items in each render status.
func (s *Store) StatusCounts(ctx context.Context) (map[RenderStatus]int, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT render_status, COUNT(*) FROM items GROUP BY render_status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[RenderStatus]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[RenderStatus(status)] = n
	}
	return counts, rows.Err()
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanItem(row scanner) (*Item, error) {
	var item Item
	var attrs, tags string
	var status string
	var ogPath, embedPath, mdPath sql.NullString
	var renderedAt sql.NullTime

	err := row.Scan(&item.ID, &item.Type, &item.Title, &item.SourceURL,
		&attrs, &tags, &item.SubmittedBy, &status,
		&ogPath, &embedPath, &mdPath, &renderedAt,
		&item.CreatedAt, &item.UpdatedAt, &item.RenderFailures)
	if err != nil {
		return nil, err
	}

	item.RenderStatus = RenderStatus(status)
	item.OGPath = ogPath.String
	item.EmbedPath = embedPath.String
	item.MarkdownPath = mdPath.String
	if renderedAt.Valid {
		t := renderedAt.Time.UTC()
		item.RenderedAt = &t
	}
	if err := json.Unmarshal([]byte(attrs), &item.Attributes); err != nil {
		return nil, fmt.Errorf("decode attributes for item %d: %w", item.ID, err)
	}
	if err := json.Unmarshal([]byte(tags), &item.Tags); err != nil {
		return nil, fmt.Errorf("decode tags for item %d: %w", item.ID, err)
	}
	return &item, nil
}

func encodePayload(item *Item) (attrs, tags string, err error) {
	if item.Attributes == nil {
		item.Attributes = map[string]any{}
	}
	if item.Tags == nil {
		item.Tags = []string{}
	}
	a, err := json.Marshal(item.Attributes)
	if err != nil {
		return "", "", fmt.Errorf("encode attributes: %w", err)
	}
	t, err := json.Marshal(item.Tags)
	if err != nil {
		return "", "", fmt.Errorf("encode tags: %w", err)
	}
	return string(a), string(t), nil
}
