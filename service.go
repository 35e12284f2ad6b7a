package quotemill

import (
	"context"
	"log/slog"
	"maps"
)

// ItemService implements the ingestion-facing operations: submit, fetch,
// list, and patch. Validation failures are returned as ValidationErrors
// values, never as process faults, so callers can surface every field
// violation at once.
type ItemService struct {
	store    *Store
	registry *Registry
	logger   *slog.Logger
}

// NewItemService wires the service over the shared store and registry.
func NewItemService(store *Store, registry *Registry, logger *slog.Logger) *ItemService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ItemService{
		store:    store,
		registry: registry,
		logger:   logger.With(slog.String("component", "item_service")),
	}
}

// Submit validates raw attributes against the named type and persists a new
// queued item. Nothing is persisted when validation fails.
func (s *ItemService) Submit(ctx context.Context, typeName string, raw map[string]any, tags []string, submittedBy string) (*Item, error) {
	def, err := s.registry.Lookup(typeName)
	if err != nil {
		return nil, err
	}
	attrs, verrs := def.Normalize(raw)
	if len(verrs) > 0 {
		return nil, verrs
	}

	item := &Item{
		Type:        typeName,
		Title:       def.Title(attrs),
		SourceURL:   def.SourceURL(attrs),
		Attributes:  attrs,
		Tags:        FilterEmpty(tags),
		SubmittedBy: submittedBy,
	}
	if err := s.store.CreateItem(ctx, item); err != nil {
		return nil, err
	}
	s.logger.Info("item submitted",
		slog.Int64("item_id", item.ID),
		slog.String("item_type", typeName),
		slog.String("submitted_by", submittedBy))
	return item, nil
}

// Fetch returns a single item by id.
func (s *ItemService) Fetch(ctx context.Context, id int64) (*Item, error) {
	return s.store.GetItem(ctx, id)
}

// List returns items filtered and paginated per opts.
func (s *ItemService) List(ctx context.Context, opts ListOptions) ([]Item, error) {
	return s.store.ListItems(ctx, opts)
}

// Patch merges partial attributes over an item's current payload,
// revalidates the merged result, and persists it. A successful patch always
// requeues the item for a full re-render; artifact paths are cleared so
// stale assets are never treated as current. tags of nil leaves the item's
// tags unchanged.
func (s *ItemService) Patch(ctx context.Context, id int64, partial map[string]any, tags []string) (*Item, error) {
	item, err := s.store.GetItem(ctx, id)
	if err != nil {
		return nil, err
	}
	def, err := s.registry.Lookup(item.Type)
	if err != nil {
		return nil, err
	}

	merged := make(map[string]any, len(item.Attributes)+len(partial))
	maps.Copy(merged, item.Attributes)
	maps.Copy(merged, partial)

	attrs, verrs := def.Normalize(merged)
	if len(verrs) > 0 {
		return nil, verrs
	}

	item.Attributes = attrs
	item.Title = def.Title(attrs)
	item.SourceURL = def.SourceURL(attrs)
	if tags != nil {
		item.Tags = FilterEmpty(tags)
	}
	if err := s.store.UpdateItem(ctx, item); err != nil {
		return nil, err
	}
	s.logger.Info("item patched", slog.Int64("item_id", item.ID))
	return item, nil
}

// Requeue forces an item back onto the render queue without a content
// change. Used by the admin dashboard.
func (s *ItemService) Requeue(ctx context.Context, id int64) error {
	if err := s.store.RequeueItem(ctx, id); err != nil {
		return err
	}
	s.logger.Info("item requeued", slog.Int64("item_id", id))
	return nil
}
