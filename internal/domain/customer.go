package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Customer struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	BusinessID  uuid.UUID `gorm:"type:uuid;index;not null" json:"business_id"`
	FirstName   string    `gorm:"size:50" json:"first_name"`
	LastName    string    `gorm:"size:50" json:"last_name"`
	Email       string    `gorm:"size:250;index" json:"email"`
	PhoneNumber string    `gorm:"size:30" json:"phone_number"`
	Address     string    `gorm:"size:200" json:"address"`
	City        string    `gorm:"size:100" json:"city"`
	State       string    `gorm:"size:100" json:"state"`
	Country     string    `gorm:"size:100" json:"country"`
	PostalCode  string    `gorm:"size:50" json:"postal_code"`
	Deleted     bool      `gorm:"not null;default:false" json:"-"`
	CreatedAt   time.Time `json:"created_at"`
}

type CustomerRepo interface {
	FindByID(ctx context.Context, businessID, id uuid.UUID) (*Customer, error)
	Save(ctx context.Context, c *Customer) error
}

// Business is the tenant owning locations, items and orders. Currency is the
// home currency catalog prices are expressed in.
type Business struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"size:140;not null" json:"name"`
	Currency  string    `gorm:"size:3;not null" json:"currency"`
	CreatedAt time.Time `json:"created_at"`
}

type BusinessRepo interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Business, error)
	Save(ctx context.Context, b *Business) error
}

// Actor is the authenticated user on whose behalf an operation runs.
type Actor struct {
	UserID     uuid.UUID
	BusinessID uuid.UUID
}
