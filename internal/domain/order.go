package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPaid OrderStatus = "paid"
)

// Order is frozen once created: lines, prices and totals are never recomputed.
type Order struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	BusinessID     uuid.UUID       `gorm:"type:uuid;index;not null" json:"business_id"`
	EmployeeID     uuid.UUID       `gorm:"type:uuid;index" json:"employee_id"`
	CustomerID     uuid.UUID       `gorm:"type:uuid;index;not null" json:"customer_id"`
	Customer       Customer        `gorm:"type:jsonb;serializer:json" json:"customer"`
	Status         OrderStatus     `gorm:"type:varchar(30);index" json:"status"`
	Currency       string          `gorm:"size:3;not null" json:"currency"`
	ConversionRate decimal.Decimal `gorm:"type:decimal(20,8);not null" json:"conversion_rate"`
	TotalItems     int             `gorm:"not null" json:"total_items"`
	SubtotalAmount decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"subtotal_amount"`
	TaxRate        decimal.Decimal `gorm:"type:decimal(5,4);not null" json:"tax_rate"`
	TaxAmount      decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"tax_amount"`
	TotalAmount    decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"total_amount"`
	Lines          []OrderLine     `gorm:"foreignKey:OrderID" json:"items"`
	CreatedAt      time.Time       `json:"created_at"`
}

// OrderLine carries the item as it was when the order was placed. UnitPrice is in
// the order currency.
type OrderLine struct {
	ID        uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	OrderID   uuid.UUID        `gorm:"type:uuid;index;not null" json:"order_id"`
	ItemID    uuid.UUID        `gorm:"type:uuid;index;not null" json:"item_id"`
	Item      ItemSnapshot     `gorm:"type:jsonb;serializer:json" json:"item"`
	Variants  VariantSelection `gorm:"type:jsonb;not null" json:"variants"`
	Quantity  int              `gorm:"not null" json:"quantity"`
	UnitPrice decimal.Decimal  `gorm:"type:decimal(20,4);not null" json:"unit_price"`
}

type ItemSnapshot struct {
	ID    uuid.UUID       `json:"id"`
	Name  string          `json:"name"`
	Type  ItemType        `json:"type"`
	Price decimal.Decimal `json:"price"`
}

type OrderRepo interface {
	// Create stores the order and its lines as one unit. newCustomer, when not
	// nil, is inserted in the same unit.
	Create(ctx context.Context, o *Order, newCustomer *Customer) error
	FindByID(ctx context.Context, businessID, id uuid.UUID) (*Order, error)
	ListByBusiness(ctx context.Context, businessID uuid.UUID) ([]Order, error)
}
