package domain

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ItemType string

const (
	ItemTypeRawMaterial  ItemType = "raw-material"
	ItemTypeAssemblyPart ItemType = "assembly-part"
	ItemTypeEndProduct   ItemType = "end-product"
)

func (t ItemType) Valid() bool {
	switch t {
	case ItemTypeRawMaterial, ItemTypeAssemblyPart, ItemTypeEndProduct:
		return true
	}
	return false
}

// Item is a catalog entry. Price is expressed in the owning business's home currency.
type Item struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	BusinessID    uuid.UUID       `gorm:"type:uuid;index;not null" json:"business_id"`
	Name          string          `gorm:"size:180;not null" json:"name"`
	Price         decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"price"`
	Type          ItemType        `gorm:"type:varchar(20);not null" json:"type"`
	Deleted       bool            `gorm:"not null;default:false;index" json:"-"`
	VariantGroups []VariantGroup  `gorm:"foreignKey:ItemID" json:"variant_groups"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

type VariantGroup struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ItemID   uuid.UUID `gorm:"type:uuid;index;not null" json:"item_id"`
	Name     string    `gorm:"size:100;not null" json:"name"`
	Position int       `gorm:"not null;default:0" json:"position"`
	Deleted  bool      `gorm:"not null;default:false" json:"-"`
	Variants []Variant `gorm:"foreignKey:VariantGroupID" json:"variants"`
}

type Variant struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	VariantGroupID uuid.UUID `gorm:"type:uuid;index;not null" json:"variant_group_id"`
	Name           string    `gorm:"size:100;not null" json:"name"`
	Position       int       `gorm:"not null;default:0" json:"position"`
	Deleted        bool      `gorm:"not null;default:false" json:"-"`
}

func (g *VariantGroup) Variant(id uuid.UUID) (*Variant, bool) {
	for i := range g.Variants {
		if g.Variants[i].ID == id {
			return &g.Variants[i], true
		}
	}
	return nil, false
}

// ValidSelection reports whether sel picks exactly one existing variant for
// every variant group of the item, and nothing else.
func (it *Item) ValidSelection(sel VariantSelection) bool {
	if sel.Len() != len(it.VariantGroups) {
		return false
	}
	for i := range it.VariantGroups {
		g := &it.VariantGroups[i]
		vid, ok := sel.Variant(g.ID)
		if !ok {
			return false
		}
		if _, ok := g.Variant(vid); !ok {
			return false
		}
	}
	return true
}

// DescribeSelection renders sel with display names, e.g. "Color: Red, Size: M".
// Unknown ids are rendered as-is.
func (it *Item) DescribeSelection(sel VariantSelection) string {
	parts := make([]string, 0, sel.Len())
	for _, c := range sel.Choices() {
		group, variant := c.GroupID.String(), c.VariantID.String()
		for i := range it.VariantGroups {
			g := &it.VariantGroups[i]
			if g.ID != c.GroupID {
				continue
			}
			group = g.Name
			if v, ok := g.Variant(c.VariantID); ok {
				variant = v.Name
			}
		}
		parts = append(parts, group+": "+variant)
	}
	return strings.Join(parts, ", ")
}

func (it *Item) Snapshot() ItemSnapshot {
	return ItemSnapshot{ID: it.ID, Name: it.Name, Type: it.Type, Price: it.Price}
}

// ItemRepo is the catalog storage. Reads never return deleted items, groups or variants.
type ItemRepo interface {
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Item, error)
	ListByBusiness(ctx context.Context, businessID uuid.UUID) ([]Item, error)
	Save(ctx context.Context, it *Item) error
	SoftDelete(ctx context.Context, businessID, id uuid.UUID) error
}

// ItemCache is a read-through cache in front of ItemRepo. Invalidate must be
// called whenever a cached item is created, edited or deleted.
type ItemCache interface {
	Get(ctx context.Context, ids []uuid.UUID) (found []Item, missing []uuid.UUID, err error)
	Put(ctx context.Context, items []Item) error
	Invalidate(ctx context.Context, ids ...uuid.UUID) error
}
