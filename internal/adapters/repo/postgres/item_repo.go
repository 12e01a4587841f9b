package postgres

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/phenrril/stockroom/internal/domain"
)

type ItemRepo struct{ db *gorm.DB }

func NewItemRepo(db *gorm.DB) *ItemRepo { return &ItemRepo{db: db} }

// withTree preloads live variant groups and variants in display order.
func withTree(db *gorm.DB) *gorm.DB {
	return db.
		Preload("VariantGroups", func(db *gorm.DB) *gorm.DB {
			return db.Where("deleted = ?", false).Order("position asc")
		}).
		Preload("VariantGroups.Variants", func(db *gorm.DB) *gorm.DB {
			return db.Where("deleted = ?", false).Order("position asc")
		})
}

func (r *ItemRepo) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Item, error) {
	list := []domain.Item{}
	if len(ids) == 0 {
		return list, nil
	}
	if err := withTree(r.db.WithContext(ctx)).
		Where("id IN ? AND deleted = ?", ids, false).
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *ItemRepo) ListByBusiness(ctx context.Context, businessID uuid.UUID) ([]domain.Item, error) {
	list := []domain.Item{}
	if err := withTree(r.db.WithContext(ctx)).
		Where("business_id = ? AND deleted = ?", businessID, false).
		Order("name asc").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// Save upserts the item with its whole variant tree.
func (r *ItemRepo) Save(ctx context.Context, it *domain.Item) error {
	if it.ID == uuid.Nil {
		it.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Session(&gorm.Session{FullSaveAssociations: true}).Save(it).Error
}

func (r *ItemRepo) SoftDelete(ctx context.Context, businessID, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Model(&domain.Item{}).
		Where("id = ? AND business_id = ? AND deleted = ?", id, businessID, false).
		Update("deleted", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
