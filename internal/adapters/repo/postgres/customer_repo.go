package postgres

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/phenrril/stockroom/internal/domain"
)

type CustomerRepo struct{ db *gorm.DB }

func NewCustomerRepo(db *gorm.DB) *CustomerRepo { return &CustomerRepo{db: db} }

func (r *CustomerRepo) FindByID(ctx context.Context, businessID, id uuid.UUID) (*domain.Customer, error) {
	var c domain.Customer
	if err := r.db.WithContext(ctx).First(&c, "id = ? AND business_id = ? AND deleted = ?", id, businessID, false).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *CustomerRepo) Save(ctx context.Context, c *domain.Customer) error {
	return saveCustomer(r.db.WithContext(ctx), c)
}

func saveCustomer(db *gorm.DB, c *domain.Customer) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.Email != "" {
		c.Email = strings.ToLower(strings.TrimSpace(c.Email))
	}
	return db.Save(c).Error
}

type BusinessRepo struct{ db *gorm.DB }

func NewBusinessRepo(db *gorm.DB) *BusinessRepo { return &BusinessRepo{db: db} }

func (r *BusinessRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.Business, error) {
	var b domain.Business
	if err := r.db.WithContext(ctx).First(&b, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &b, nil
}

func (r *BusinessRepo) Save(ctx context.Context, b *domain.Business) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Save(b).Error
}
