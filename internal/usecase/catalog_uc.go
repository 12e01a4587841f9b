package usecase

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/phenrril/stockroom/internal/domain"
)

// CatalogUC serves items through Cache when one is set. Writes invalidate the
// touched ids; a nil Cache reads straight from Items.
type CatalogUC struct {
	Items domain.ItemRepo
	Cache domain.ItemCache

	// generation counts invalidations. A fill whose repo read overlapped one is
	// invalidated again so it cannot resurrect an edited or deleted item.
	generation atomic.Uint64
}

func (uc *CatalogUC) Lookup(ctx context.Context, ids []uuid.UUID) ([]domain.Item, error) {
	if len(ids) == 0 {
		return []domain.Item{}, nil
	}
	if uc.Cache == nil {
		return uc.Items.FindByIDs(ctx, ids)
	}
	found, missing, err := uc.Cache.Get(ctx, ids)
	if err != nil {
		log.Warn().Err(err).Msg("catalog cache read failed")
		return uc.Items.FindByIDs(ctx, ids)
	}
	if len(missing) == 0 {
		return found, nil
	}
	gen := uc.generation.Load()
	loaded, err := uc.Items.FindByIDs(ctx, missing)
	if err != nil {
		return nil, err
	}
	if err := uc.Cache.Put(ctx, loaded); err != nil {
		log.Warn().Err(err).Int("items", len(loaded)).Msg("catalog cache fill failed")
	}
	if uc.generation.Load() != gen {
		if err := uc.Cache.Invalidate(ctx, missing...); err != nil {
			log.Warn().Err(err).Int("items", len(missing)).Msg("catalog cache refill rollback failed")
		}
	}
	return append(found, loaded...), nil
}

func (uc *CatalogUC) List(ctx context.Context, actor domain.Actor) ([]domain.Item, error) {
	return uc.Items.ListByBusiness(ctx, actor.BusinessID)
}

// Save creates the item, or replaces it when it.ID names an existing item of
// the actor's business.
func (uc *CatalogUC) Save(ctx context.Context, actor domain.Actor, it *domain.Item) error {
	it.Name = strings.TrimSpace(it.Name)
	if it.Name == "" || !it.Type.Valid() || it.Price.IsNegative() {
		return domain.ErrInvalidItem
	}
	if it.ID != uuid.Nil {
		existing, err := uc.Items.FindByIDs(ctx, []uuid.UUID{it.ID})
		if err != nil {
			return err
		}
		if len(existing) == 0 || existing[0].BusinessID != actor.BusinessID {
			return domain.ErrNoSuchItem
		}
	} else {
		it.ID = uuid.New()
	}
	it.BusinessID = actor.BusinessID
	for gi := range it.VariantGroups {
		g := &it.VariantGroups[gi]
		if strings.TrimSpace(g.Name) == "" {
			return domain.ErrInvalidItem
		}
		if g.ID == uuid.Nil {
			g.ID = uuid.New()
		}
		g.ItemID = it.ID
		for vi := range g.Variants {
			v := &g.Variants[vi]
			if strings.TrimSpace(v.Name) == "" {
				return domain.ErrInvalidItem
			}
			if v.ID == uuid.Nil {
				v.ID = uuid.New()
			}
			v.VariantGroupID = g.ID
		}
	}
	if err := uc.Items.Save(ctx, it); err != nil {
		return err
	}
	return uc.invalidate(ctx, it.ID)
}

func (uc *CatalogUC) Delete(ctx context.Context, actor domain.Actor, id uuid.UUID) error {
	if id == uuid.Nil {
		return domain.ErrNoSuchItem
	}
	if err := uc.Items.SoftDelete(ctx, actor.BusinessID, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNoSuchItem
		}
		return err
	}
	return uc.invalidate(ctx, id)
}

func (uc *CatalogUC) invalidate(ctx context.Context, ids ...uuid.UUID) error {
	if uc.Cache == nil {
		return nil
	}
	uc.generation.Add(1)
	return uc.Cache.Invalidate(ctx, ids...)
}
