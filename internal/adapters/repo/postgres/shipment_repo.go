package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/phenrril/stockroom/internal/domain"
)

type ShipmentRepo struct{ db *gorm.DB }

func NewShipmentRepo(db *gorm.DB) *ShipmentRepo { return &ShipmentRepo{db: db} }

func (r *ShipmentRepo) FindByID(ctx context.Context, businessID, id uuid.UUID) (*domain.Shipment, error) {
	var sh domain.Shipment
	if err := r.db.WithContext(ctx).Preload("Lines").
		First(&sh, "id = ? AND business_id = ? AND deleted = ?", id, businessID, false).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &sh, nil
}

func (r *ShipmentRepo) ListSchedules(ctx context.Context, businessID uuid.UUID) ([]domain.Shipment, error) {
	list := []domain.Shipment{}
	if err := r.db.WithContext(ctx).Preload("Lines").
		Where("business_id = ? AND deleted = ? AND scheduled_shipment_id IS NULL", businessID, false).
		Order("created_at asc").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *ShipmentRepo) ListInstancesCreatedBetween(ctx context.Context, businessID uuid.UUID, from, to time.Time) ([]domain.Shipment, error) {
	list := []domain.Shipment{}
	if err := r.db.WithContext(ctx).Preload("Lines").
		Where("business_id = ? AND deleted = ? AND scheduled_shipment_id IS NOT NULL", businessID, false).
		Where("created_at BETWEEN ? AND ?", from, to).
		Order("created_at asc").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *ShipmentRepo) Save(ctx context.Context, sh *domain.Shipment) error {
	if sh.ID == uuid.Nil {
		sh.ID = uuid.New()
	}
	for i := range sh.Lines {
		if sh.Lines[i].ID == uuid.Nil {
			sh.Lines[i].ID = uuid.New()
		}
		sh.Lines[i].ShipmentID = sh.ID
	}
	return r.db.WithContext(ctx).Session(&gorm.Session{FullSaveAssociations: true}).Save(sh).Error
}

func (r *ShipmentRepo) MarkDeparted(ctx context.Context, id, actorID uuid.UUID, at time.Time) error {
	return r.stamp(ctx, id, "departed_at", map[string]any{
		"departed_at":            at,
		"departure_validated_by": actorID,
	}, domain.ErrShipmentAlreadyDeparted)
}

func (r *ShipmentRepo) MarkArrived(ctx context.Context, id, actorID uuid.UUID, at time.Time) error {
	return r.stamp(ctx, id, "arrived_at", map[string]any{
		"arrived_at":           at,
		"arrival_validated_by": actorID,
	}, domain.ErrShipmentAlreadyArrived)
}

// stamp sets column only while it is still NULL; a lost race reports already.
func (r *ShipmentRepo) stamp(ctx context.Context, id uuid.UUID, column string, values map[string]any, already error) error {
	db := r.db.WithContext(ctx)
	res := db.Model(&domain.Shipment{}).
		Where("id = ? AND deleted = ? AND "+column+" IS NULL", id, false).
		Updates(values)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 1 {
		return nil
	}
	var n int64
	if err := db.Model(&domain.Shipment{}).Where("id = ? AND deleted = ?", id, false).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return already
}
