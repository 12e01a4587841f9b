package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/phenrril/stockroom/internal/domain"
)

type LocationRepo struct{ db *gorm.DB }

func NewLocationRepo(db *gorm.DB) *LocationRepo { return &LocationRepo{db: db} }

func (r *LocationRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.Location, error) {
	var l domain.Location
	if err := r.db.WithContext(ctx).First(&l, "id = ? AND deleted = ?", id, false).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &l, nil
}

func (r *LocationRepo) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Location, error) {
	list := []domain.Location{}
	if len(ids) == 0 {
		return list, nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ? AND deleted = ?", ids, false).Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *LocationRepo) Save(ctx context.Context, l *domain.Location) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Save(l).Error
}
