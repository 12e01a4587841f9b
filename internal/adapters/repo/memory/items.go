package memory

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/phenrril/stockroom/internal/domain"
)

type itemRepo struct{ s *Store }

func (r itemRepo) FindByIDs(_ context.Context, ids []uuid.UUID) ([]domain.Item, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []domain.Item{}
	for _, id := range uniq(ids) {
		if it, ok := r.s.items[id]; ok && !it.Deleted {
			out = append(out, liveItem(it))
		}
	}
	return out, nil
}

func (r itemRepo) ListByBusiness(_ context.Context, businessID uuid.UUID) ([]domain.Item, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []domain.Item{}
	for _, it := range r.s.items {
		if it.BusinessID == businessID && !it.Deleted {
			out = append(out, liveItem(it))
		}
	}
	slices.SortFunc(out, func(a, b domain.Item) int { return strings.Compare(a.Name, b.Name) })
	return out, nil
}

func (r itemRepo) Save(_ context.Context, it *domain.Item) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	now := time.Now()
	if it.ID == uuid.Nil {
		it.ID = uuid.New()
	}
	if it.CreatedAt.IsZero() {
		it.CreatedAt = now
	}
	it.UpdatedAt = now
	r.s.items[it.ID] = cloneItem(*it)
	return nil
}

func (r itemRepo) SoftDelete(_ context.Context, businessID, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	it, ok := r.s.items[id]
	if !ok || it.Deleted || it.BusinessID != businessID {
		return domain.ErrNotFound
	}
	it.Deleted = true
	r.s.items[id] = it
	return nil
}

// liveItem copies it without deleted groups or variants.
func liveItem(it domain.Item) domain.Item {
	groups := make([]domain.VariantGroup, 0, len(it.VariantGroups))
	for _, g := range it.VariantGroups {
		if g.Deleted {
			continue
		}
		variants := make([]domain.Variant, 0, len(g.Variants))
		for _, v := range g.Variants {
			if !v.Deleted {
				variants = append(variants, v)
			}
		}
		slices.SortStableFunc(variants, func(a, b domain.Variant) int { return a.Position - b.Position })
		g.Variants = variants
		groups = append(groups, g)
	}
	slices.SortStableFunc(groups, func(a, b domain.VariantGroup) int { return a.Position - b.Position })
	it.VariantGroups = groups
	return it
}

func cloneItem(it domain.Item) domain.Item {
	it.VariantGroups = slices.Clone(it.VariantGroups)
	for i := range it.VariantGroups {
		it.VariantGroups[i].Variants = slices.Clone(it.VariantGroups[i].Variants)
	}
	return it
}

// ItemCache is an in-process domain.ItemCache.
type ItemCache struct {
	mu    sync.RWMutex
	items map[uuid.UUID]domain.Item
}

func NewItemCache() *ItemCache {
	return &ItemCache{items: map[uuid.UUID]domain.Item{}}
}

func (c *ItemCache) Get(_ context.Context, ids []uuid.UUID) ([]domain.Item, []uuid.UUID, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var found []domain.Item
	var missing []uuid.UUID
	for _, id := range uniq(ids) {
		if it, ok := c.items[id]; ok {
			found = append(found, cloneItem(it))
			continue
		}
		missing = append(missing, id)
	}
	return found, missing, nil
}

func (c *ItemCache) Put(_ context.Context, items []domain.Item) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, it := range items {
		c.items[it.ID] = cloneItem(it)
	}
	return nil
}

func (c *ItemCache) Invalidate(_ context.Context, ids ...uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, id := range ids {
		delete(c.items, id)
	}
	return nil
}

// Len is the number of cached items.
func (c *ItemCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}
