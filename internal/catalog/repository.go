package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/m3rciful/ribbonbot/core/logger"
	"github.com/m3rciful/ribbonbot/internal/domain"
)

// Store persists the full catalog snapshot on every mutation.
type Store interface {
	Load(ctx context.Context) ([]domain.Product, error)
	Save(ctx context.Context, products []domain.Product) error
}

// Repository keeps the ordered product list in memory and writes through Store.
// Mutations are serialized by a single writer lock; reads run concurrently on
// copied snapshots.
type Repository struct {
	mu    sync.RWMutex
	store Store
	items []domain.Product
}

// New creates a Repository backed by the given store. Call Load before use.
func New(store Store) *Repository {
	return &Repository{store: store}
}

// Load replaces the in-memory catalog with the stored snapshot.
func (r *Repository) Load(ctx context.Context) error {
	items, err := r.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("catalog load: %w", err)
	}
	r.mu.Lock()
	r.items = items
	r.mu.Unlock()
	logger.SVCCatalog.Info("catalog loaded",
		slog.String("event", "catalog.load"),
		slog.Int("count", len(items)),
	)
	return nil
}

// List returns a snapshot of the catalog in display order.
func (r *Repository) List() []domain.Product {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Product, len(r.items))
	copy(out, r.items)
	return out
}

// Len reports the current number of products.
func (r *Repository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}

// At returns the product at the given display index.
func (r *Repository) At(index int) (domain.Product, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if index < 0 || index >= len(r.items) {
		return domain.Product{}, false
	}
	return r.items[index], true
}

// Get returns the product with the given id or domain.ErrProductNotFound.
func (r *Repository) Get(id int64) (domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.items {
		if p.ID == id {
			return p, nil
		}
	}
	return domain.Product{}, domain.ErrProductNotFound
}

// Add appends a new product, assigning id max(existing)+1 (1 when empty),
// and persists the catalog before returning.
func (r *Repository) Add(ctx context.Context, name, description, photoRef string) (domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	product := domain.Product{
		ID:          r.nextID(),
		Name:        name,
		Description: description,
		PhotoRef:    photoRef,
	}
	r.items = append(r.items, product)

	if err := r.persist(ctx); err != nil {
		return product, err
	}
	logger.SVCCatalog.Info("product added",
		slog.String("event", "catalog.add"),
		slog.Int64("product_id", product.ID),
		slog.Int("count", len(r.items)),
	)
	return product, nil
}

// Remove deletes the product with the given id and persists the catalog.
func (r *Repository) Remove(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := -1
	for i, p := range r.items {
		if p.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return domain.ErrProductNotFound
	}
	r.items = append(r.items[:idx], r.items[idx+1:]...)

	if err := r.persist(ctx); err != nil {
		return err
	}
	logger.SVCCatalog.Info("product removed",
		slog.String("event", "catalog.remove"),
		slog.Int64("product_id", id),
		slog.Int("count", len(r.items)),
	)
	return nil
}

// Update mutates a single field of the product with the given id and persists.
func (r *Repository) Update(ctx context.Context, id int64, field domain.Field, value string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := -1
	for i, p := range r.items {
		if p.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return domain.ErrProductNotFound
	}

	switch field {
	case domain.FieldName:
		r.items[idx].Name = value
	case domain.FieldDescription:
		r.items[idx].Description = value
	default:
		return fmt.Errorf("%w: %q", domain.ErrUnknownField, field)
	}

	if err := r.persist(ctx); err != nil {
		return err
	}
	logger.SVCCatalog.Info("product updated",
		slog.String("event", "catalog.update"),
		slog.Int64("product_id", id),
		slog.String("field", string(field)),
	)
	return nil
}

// persist writes the current snapshot through the store. Callers hold the
// write lock, so store writes are globally serialized. On failure the
// in-memory mutation is kept and the error surfaced; there is no rollback.
func (r *Repository) persist(ctx context.Context) error {
	snapshot := make([]domain.Product, len(r.items))
	copy(snapshot, r.items)
	if err := r.store.Save(ctx, snapshot); err != nil {
		logger.SVCCatalog.Error("catalog persist failed",
			slog.String("event", "catalog.persist"),
			slog.Int("count", len(snapshot)),
			slog.String("err", err.Error()),
		)
		return fmt.Errorf("catalog persist: %w", err)
	}
	return nil
}

func (r *Repository) nextID() int64 {
	var max int64
	for _, p := range r.items {
		if p.ID > max {
			max = p.ID
		}
	}
	return max + 1
}
