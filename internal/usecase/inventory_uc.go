package usecase

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/phenrril/stockroom/internal/domain"
	"github.com/phenrril/stockroom/internal/ledger"
)

// InventoryEntry is a stock line with its catalog item.
type InventoryEntry struct {
	domain.InventoryLine
	Item        *domain.Item `json:"item"`
	Description string       `json:"description"`
}

type InventoryUC struct {
	Locations domain.LocationRepo
	Ledger    *ledger.Ledger
	Catalog   ItemSource
	Audit     AuditSink
}

// Get returns the location and its current stock. Lines of items that have
// since been deleted stay in the ledger but are not listed.
func (uc *InventoryUC) Get(ctx context.Context, actor domain.Actor, locationID uuid.UUID) (*domain.Location, []InventoryEntry, error) {
	loc, err := uc.location(ctx, actor, locationID)
	if err != nil {
		return nil, nil, err
	}
	lines, err := uc.Ledger.Get(ctx, loc.ID)
	if err != nil {
		return nil, nil, err
	}
	ids := make([]uuid.UUID, 0, len(lines))
	for _, l := range lines {
		ids = append(ids, l.ItemID)
	}
	items, err := uc.Catalog.Lookup(ctx, ids)
	if err != nil {
		return nil, nil, fmt.Errorf("load items: %w", err)
	}
	byID := itemsByID(items)

	out := make([]InventoryEntry, 0, len(lines))
	for _, l := range lines {
		it, ok := byID[l.ItemID]
		if !ok {
			continue
		}
		out = append(out, InventoryEntry{InventoryLine: l, Item: it, Description: it.DescribeSelection(l.Variants)})
	}
	return loc, out, nil
}

// Replace overwrites the location's stock with lines. Repeated keys are summed.
func (uc *InventoryUC) Replace(ctx context.Context, actor domain.Actor, locationID uuid.UUID, lines []domain.StockLine) error {
	for i := range lines {
		if err := validate.Struct(&lines[i]); err != nil {
			return fmt.Errorf("%w: line %d: %v", domain.ErrInvalidInventoryLines, i, err)
		}
	}
	loc, err := uc.location(ctx, actor, locationID)
	if err != nil {
		return err
	}

	ids := make([]uuid.UUID, 0, len(lines))
	for _, l := range lines {
		ids = append(ids, l.ItemID)
	}
	items, err := uc.Catalog.Lookup(ctx, ids)
	if err != nil {
		return fmt.Errorf("load items: %w", err)
	}
	byID := itemsByID(items)
	snapshot := make([]domain.InventoryLine, 0, len(lines))
	for _, l := range lines {
		if it, ok := byID[l.ItemID]; !ok || it.BusinessID != actor.BusinessID {
			return fmt.Errorf("%w: %s", domain.ErrNonExistentItem, l.ItemID)
		}
		snapshot = append(snapshot, domain.InventoryLine{ItemID: l.ItemID, Variants: l.Variants, Quantity: l.Quantity})
	}

	if err := uc.Ledger.SetAll(ctx, loc.ID, snapshot); err != nil {
		return notFound(err, domain.ErrNoSuchLocation)
	}
	logActivity(ctx, uc.Audit, fmt.Sprintf("Modified location inventory %s", loc.ID), actor.BusinessID)
	return nil
}

func (uc *InventoryUC) location(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.Location, error) {
	loc, err := uc.Locations.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, domain.ErrNoSuchLocation)
	}
	if loc.BusinessID != actor.BusinessID {
		return nil, domain.ErrNoSuchLocation
	}
	return loc, nil
}
