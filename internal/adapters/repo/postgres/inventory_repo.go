package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/phenrril/stockroom/internal/domain"
)

type InventoryRepo struct{ db *gorm.DB }

func NewInventoryRepo(db *gorm.DB) *InventoryRepo { return &InventoryRepo{db: db} }

func (r *InventoryRepo) List(ctx context.Context, locationID uuid.UUID) ([]domain.InventoryLine, error) {
	return listLines(r.db.WithContext(ctx), locationID)
}

func listLines(db *gorm.DB, locationID uuid.UUID) ([]domain.InventoryLine, error) {
	list := []domain.InventoryLine{}
	if err := db.Where("location_id = ?", locationID).Order("id asc").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// WithLocation runs fn in a transaction holding SELECT ... FOR UPDATE on the
// location row, so concurrent writers of the same location queue up here.
func (r *InventoryRepo) WithLocation(ctx context.Context, locationID uuid.UUID, fn func(ctx context.Context, tx domain.InventoryTx) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var loc domain.Location
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&loc, "id = ? AND deleted = ?", locationID, false).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrNotFound
			}
			return fmt.Errorf("lock location %s: %w", locationID, err)
		}
		return fn(ctx, &inventoryTx{db: tx, locationID: locationID})
	})
}

type inventoryTx struct {
	db         *gorm.DB
	locationID uuid.UUID
}

func (t *inventoryTx) Lines(ctx context.Context) ([]domain.InventoryLine, error) {
	return listLines(t.db.WithContext(ctx), t.locationID)
}

// Replace deletes every line of the location and inserts lines.
func (t *inventoryTx) Replace(ctx context.Context, lines []domain.InventoryLine) error {
	db := t.db.WithContext(ctx)
	if err := db.Where("location_id = ?", t.locationID).Delete(&domain.InventoryLine{}).Error; err != nil {
		return fmt.Errorf("clear inventory: %w", err)
	}
	if len(lines) == 0 {
		return nil
	}
	rows := make([]domain.InventoryLine, len(lines))
	for i, l := range lines {
		l.ID = uuid.New()
		l.LocationID = t.locationID
		rows[i] = l
	}
	if err := db.Create(&rows).Error; err != nil {
		return fmt.Errorf("write inventory: %w", err)
	}
	return nil
}

func (t *inventoryTx) Shipments() domain.ShipmentRepo { return NewShipmentRepo(t.db) }
