package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type LocationType string

const (
	LocationTypeSupplier    LocationType = "supplier"
	LocationTypeManufacture LocationType = "manufacture"
	LocationTypeWarehouse   LocationType = "warehouse"
	LocationTypeStore       LocationType = "store"
)

type Location struct {
	ID         uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	BusinessID uuid.UUID    `gorm:"type:uuid;index;not null" json:"business_id"`
	Name       string       `gorm:"size:50;not null" json:"name"`
	Type       LocationType `gorm:"type:varchar(20);not null" json:"type"`
	Address    string       `gorm:"size:200" json:"address"`
	City       string       `gorm:"size:100" json:"city"`
	Country    string       `gorm:"size:100" json:"country"`
	Latitude   float64      `json:"latitude"`
	Longitude  float64      `json:"longitude"`
	Deleted    bool         `gorm:"not null;default:false;index" json:"-"`
	CreatedAt  time.Time    `json:"created_at"`
}

// LocationRepo reads never return deleted locations.
type LocationRepo interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Location, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Location, error)
	Save(ctx context.Context, l *Location) error
}
