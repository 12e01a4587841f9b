package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type ShipmentState string

const (
	ShipmentStateScheduled ShipmentState = "scheduled"
	ShipmentStateInTransit ShipmentState = "in_transit"
	ShipmentStateCompleted ShipmentState = "completed"
)

type ShipmentFrequency string

const (
	ShipmentDaily    ShipmentFrequency = "daily"
	ShipmentWeekly   ShipmentFrequency = "weekly"
	ShipmentBiWeekly ShipmentFrequency = "bi-weekly"
	ShipmentMonthly  ShipmentFrequency = "monthly"
)

// Shipment is either a standing schedule (ScheduledShipmentID nil) or one
// concrete instance of a schedule. Only instances move stock.
type Shipment struct {
	ID                   uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	BusinessID           uuid.UUID         `gorm:"type:uuid;index;not null" json:"business_id"`
	ScheduledShipmentID  *uuid.UUID        `gorm:"type:uuid;index" json:"scheduled_shipment_id"`
	Frequency            ShipmentFrequency `gorm:"type:varchar(20)" json:"frequency,omitempty"`
	LocationStartID      uuid.UUID         `gorm:"type:uuid;index;not null" json:"location_start_id"`
	LocationEndID        uuid.UUID         `gorm:"type:uuid;index;not null" json:"location_end_id"`
	Lines                []ShipmentLine    `gorm:"foreignKey:ShipmentID" json:"items"`
	DepartedAt           *time.Time        `json:"departed_at"`
	ArrivedAt            *time.Time        `json:"arrived_at"`
	DepartureValidatedBy *uuid.UUID        `gorm:"type:uuid" json:"departure_validated_by"`
	ArrivalValidatedBy   *uuid.UUID        `gorm:"type:uuid" json:"arrival_validated_by"`
	Deleted              bool              `gorm:"not null;default:false;index" json:"-"`
	CreatedAt            time.Time         `gorm:"index" json:"created_at"`

	LocationStart *Location `gorm:"-" json:"location_start,omitempty"`
	LocationEnd   *Location `gorm:"-" json:"location_end,omitempty"`
}

func (s *Shipment) IsInstance() bool { return s.ScheduledShipmentID != nil }

func (s *Shipment) State() ShipmentState {
	switch {
	case s.ArrivedAt != nil:
		return ShipmentStateCompleted
	case s.DepartedAt != nil:
		return ShipmentStateInTransit
	}
	return ShipmentStateScheduled
}

// ShipmentLine is a requested transfer amount, fixed when the instance is created.
type ShipmentLine struct {
	ID         uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	ShipmentID uuid.UUID        `gorm:"type:uuid;index;not null" json:"shipment_id"`
	ItemID     uuid.UUID        `gorm:"type:uuid;not null" json:"item_id"`
	Variants   VariantSelection `gorm:"type:jsonb;not null" json:"variants"`
	Quantity   int              `gorm:"not null" json:"quantity"`
}

func (ShipmentLine) TableName() string { return "shipment_items" }

func (s *Shipment) StockLines() []StockLine {
	out := make([]StockLine, 0, len(s.Lines))
	for _, l := range s.Lines {
		out = append(out, StockLine{ItemID: l.ItemID, Variants: l.Variants, Quantity: l.Quantity})
	}
	return out
}

type ShipmentRepo interface {
	// FindByID returns a non-deleted shipment of the business with its lines.
	FindByID(ctx context.Context, businessID, id uuid.UUID) (*Shipment, error)
	ListSchedules(ctx context.Context, businessID uuid.UUID) ([]Shipment, error)
	ListInstancesCreatedBetween(ctx context.Context, businessID uuid.UUID, from, to time.Time) ([]Shipment, error)
	Save(ctx context.Context, s *Shipment) error
	// MarkDeparted returns ErrShipmentAlreadyDeparted if departed_at is already set.
	MarkDeparted(ctx context.Context, id, actorID uuid.UUID, at time.Time) error
	// MarkArrived returns ErrShipmentAlreadyArrived if arrived_at is already set.
	MarkArrived(ctx context.Context, id, actorID uuid.UUID, at time.Time) error
}
