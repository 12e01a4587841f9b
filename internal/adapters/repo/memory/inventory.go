package memory

import (
	"context"
	"slices"

	"github.com/google/uuid"

	"github.com/phenrril/stockroom/internal/domain"
)

type inventoryRepo struct{ s *Store }

func (r inventoryRepo) List(_ context.Context, locationID uuid.UUID) ([]domain.InventoryLine, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := slices.Clone(r.s.inventory[locationID])
	if out == nil {
		out = []domain.InventoryLine{}
	}
	return out, nil
}

// WithLocation holds the store's write lock for the whole unit of work. Line
// writes are staged and shipment writes keep an undo log, so a failing fn
// leaves the store as it found it.
func (r inventoryRepo) WithLocation(ctx context.Context, locationID uuid.UUID, fn func(ctx context.Context, tx domain.InventoryTx) error) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if l, ok := r.s.locations[locationID]; !ok || l.Deleted {
		return domain.ErrNotFound
	}
	tx := &inventoryTx{s: r.s, locationID: locationID, lines: slices.Clone(r.s.inventory[locationID])}
	if err := fn(ctx, tx); err != nil {
		for i := len(tx.undo) - 1; i >= 0; i-- {
			tx.undo[i]()
		}
		return err
	}
	if tx.replaced {
		r.s.inventory[locationID] = tx.lines
	}
	return nil
}

type inventoryTx struct {
	s          *Store
	locationID uuid.UUID
	lines      []domain.InventoryLine
	replaced   bool
	undo       []func()
}

func (tx *inventoryTx) Lines(context.Context) ([]domain.InventoryLine, error) {
	return slices.Clone(tx.lines), nil
}

func (tx *inventoryTx) Replace(_ context.Context, lines []domain.InventoryLine) error {
	staged := make([]domain.InventoryLine, 0, len(lines))
	for _, l := range lines {
		if l.ID == uuid.Nil {
			l.ID = uuid.New()
		}
		l.LocationID = tx.locationID
		staged = append(staged, l)
	}
	tx.lines = staged
	tx.replaced = true
	return nil
}

func (tx *inventoryTx) Shipments() domain.ShipmentRepo {
	return &shipmentRepo{s: tx.s, tx: tx}
}
