package domain

import (
	"context"

	"github.com/google/uuid"
)

// InventoryLine is the on-hand quantity of one (item, selection) at a location.
// A location holds at most one line per (item, selection).
type InventoryLine struct {
	ID         uuid.UUID        `gorm:"type:uuid;primaryKey" json:"-"`
	LocationID uuid.UUID        `gorm:"type:uuid;index;not null" json:"location_id"`
	ItemID     uuid.UUID        `gorm:"type:uuid;index;not null" json:"item_id"`
	Variants   VariantSelection `gorm:"type:jsonb;not null" json:"variants"`
	Quantity   int              `gorm:"not null;default:0" json:"quantity"`
}

func (InventoryLine) TableName() string { return "location_items" }

// Matches reports whether the line tracks the given item and selection.
func (l InventoryLine) Matches(itemID uuid.UUID, sel VariantSelection) bool {
	return l.ItemID == itemID && l.Variants.Equal(sel)
}

// StockLine is a requested quantity of one (item, selection): a deduction or an addition.
type StockLine struct {
	ItemID   uuid.UUID        `json:"item_id" validate:"required"`
	Variants VariantSelection `json:"variants"`
	Quantity int              `json:"quantity" validate:"gte=0"`
}

// InventoryTx is one location's stock inside a locked unit of work. Nothing is
// visible to other callers until the unit of work returns nil.
type InventoryTx interface {
	Lines(ctx context.Context) ([]InventoryLine, error)
	// Replace overwrites the location's full snapshot.
	Replace(ctx context.Context, lines []InventoryLine) error
	// Shipments writes shipment state in the same unit of work.
	Shipments() ShipmentRepo
}

type InventoryRepo interface {
	List(ctx context.Context, locationID uuid.UUID) ([]InventoryLine, error)
	// WithLocation runs fn holding an exclusive lock on the location. It returns
	// ErrNotFound when the location is missing or deleted. A non-nil error from fn
	// discards every write made through tx.
	WithLocation(ctx context.Context, locationID uuid.UUID, fn func(ctx context.Context, tx InventoryTx) error) error
}
