package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/phenrril/stockroom/internal/domain"
)

type OrderRepo struct{ db *gorm.DB }

func NewOrderRepo(db *gorm.DB) *OrderRepo { return &OrderRepo{db: db} }

func (r *OrderRepo) Create(ctx context.Context, o *domain.Order, newCustomer *domain.Customer) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if newCustomer != nil {
			if err := saveCustomer(tx, newCustomer); err != nil {
				return err
			}
			o.CustomerID = newCustomer.ID
		}
		if o.ID == uuid.Nil {
			o.ID = uuid.New()
		}
		for i := range o.Lines {
			if o.Lines[i].ID == uuid.Nil {
				o.Lines[i].ID = uuid.New()
			}
			o.Lines[i].OrderID = o.ID
		}
		return tx.Create(o).Error
	})
}

func (r *OrderRepo) FindByID(ctx context.Context, businessID, id uuid.UUID) (*domain.Order, error) {
	var o domain.Order
	if err := r.db.WithContext(ctx).Preload("Lines").
		First(&o, "id = ? AND business_id = ?", id, businessID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &o, nil
}

func (r *OrderRepo) ListByBusiness(ctx context.Context, businessID uuid.UUID) ([]domain.Order, error) {
	list := []domain.Order{}
	if err := r.db.WithContext(ctx).Preload("Lines").
		Where("business_id = ?", businessID).
		Order("created_at desc").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

type LogRepo struct{ db *gorm.DB }

func NewLogRepo(db *gorm.DB) *LogRepo { return &LogRepo{db: db} }

func (r *LogRepo) Append(ctx context.Context, e *domain.SystemLog) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(e).Error
}

// Models lists every table the service owns, in dependency order.
func Models() []any {
	return []any{
		&domain.Business{}, &domain.Customer{}, &domain.Location{},
		&domain.Item{}, &domain.VariantGroup{}, &domain.Variant{},
		&domain.InventoryLine{},
		&domain.Shipment{}, &domain.ShipmentLine{},
		&domain.Order{}, &domain.OrderLine{},
		&domain.SystemLog{},
	}
}
