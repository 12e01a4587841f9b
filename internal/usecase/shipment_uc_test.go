package usecase

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phenrril/stockroom/internal/domain"
	"github.com/phenrril/stockroom/internal/ledger"
)

func TestDepartureDeductsStartStock(t *testing.T) {
	f := newFixture(t)
	f.stock(f.warehouse, domain.InventoryLine{ItemID: f.widget.ID, Variants: f.red, Quantity: 5})
	sh := f.instance(f.warehouse, f.shop, 5)

	got, err := f.shipments.ValidateDeparture(f.ctx, f.actor, sh.ID)
	require.NoError(t, err)
	require.NotNil(t, got.DepartedAt)
	assert.Equal(t, f.now, *got.DepartedAt)
	assert.Equal(t, f.actor.UserID, *got.DepartureValidatedBy)
	assert.Equal(t, domain.ShipmentStateInTransit, got.State())
	assert.Equal(t, 0, f.quantity(f.warehouse, f.red))
	assert.Equal(t, 0, f.quantity(f.shop, f.red), "in-transit stock is not recorded anywhere")

	stored, err := f.store.Shipments().FindByID(f.ctx, f.actor.BusinessID, sh.ID)
	require.NoError(t, err)
	assert.NotNil(t, stored.DepartedAt)
	assert.Contains(t, f.messages(), "Shipment "+sh.ID.String()+" departed from location Warehouse")

	_, err = f.shipments.ValidateDeparture(f.ctx, f.actor, sh.ID)
	assert.ErrorIs(t, err, domain.ErrShipmentAlreadyDeparted)
}

func TestDepartureShortfallLeavesEverythingUnchanged(t *testing.T) {
	f := newFixture(t)
	f.stock(f.warehouse,
		domain.InventoryLine{ItemID: f.widget.ID, Variants: f.red, Quantity: 5},
		domain.InventoryLine{ItemID: f.widget.ID, Variants: f.blue, Quantity: 2},
	)
	sh := f.instance(f.warehouse, f.shop, 6)

	_, err := f.shipments.ValidateDeparture(f.ctx, f.actor, sh.ID)
	require.ErrorIs(t, err, domain.ErrInsufficientStartInventory)
	assert.Equal(t, "insufficient_start_location_inventory", domain.CodeOf(err))

	var sf *ledger.ShortfallError
	require.True(t, errors.As(err, &sf))
	assert.Equal(t, f.widget.ID, sf.ItemID)
	assert.Equal(t, 1, sf.Missing)

	assert.Equal(t, 5, f.quantity(f.warehouse, f.red))
	assert.Equal(t, 2, f.quantity(f.warehouse, f.blue))
	stored, err := f.store.Shipments().FindByID(f.ctx, f.actor.BusinessID, sh.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.DepartedAt)
}

func TestArrivalAddsEndStock(t *testing.T) {
	f := newFixture(t)
	f.stock(f.warehouse, domain.InventoryLine{ItemID: f.widget.ID, Variants: f.red, Quantity: 8})
	f.stock(f.shop, domain.InventoryLine{ItemID: f.widget.ID, Variants: f.blue, Quantity: 1})
	sh := f.instance(f.warehouse, f.shop, 5)

	_, err := f.shipments.ValidateDeparture(f.ctx, f.actor, sh.ID)
	require.NoError(t, err)
	f.now = f.now.Add(2 * time.Hour)

	got, err := f.shipments.ValidateArrival(f.ctx, f.actor, sh.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ShipmentStateCompleted, got.State())
	assert.Equal(t, f.now, *got.ArrivedAt)
	assert.Equal(t, 3, f.quantity(f.warehouse, f.red))
	assert.Equal(t, 5, f.quantity(f.shop, f.red))
	assert.Equal(t, 1, f.quantity(f.shop, f.blue))
	assert.Contains(t, f.messages(), "Shipment "+sh.ID.String()+" arrived at location Shop")

	_, err = f.shipments.ValidateArrival(f.ctx, f.actor, sh.ID)
	assert.ErrorIs(t, err, domain.ErrShipmentAlreadyArrived)
	assert.Equal(t, 5, f.quantity(f.shop, f.red))
}

func TestArrivalMergesIntoExistingLine(t *testing.T) {
	f := newFixture(t)
	f.stock(f.warehouse, domain.InventoryLine{ItemID: f.widget.ID, Variants: f.red, Quantity: 4})
	f.stock(f.shop, domain.InventoryLine{ItemID: f.widget.ID, Variants: f.red, Quantity: 7})
	sh := f.instance(f.warehouse, f.shop, 4)

	_, err := f.shipments.ValidateDeparture(f.ctx, f.actor, sh.ID)
	require.NoError(t, err)
	_, err = f.shipments.ValidateArrival(f.ctx, f.actor, sh.ID)
	require.NoError(t, err)

	lines, err := f.ledger.Get(f.ctx, f.shop.ID)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, 11, lines[0].Quantity)
}

func TestArrivalBeforeDeparture(t *testing.T) {
	f := newFixture(t)
	sh := f.instance(f.warehouse, f.shop, 5)

	_, err := f.shipments.ValidateArrival(f.ctx, f.actor, sh.ID)
	assert.ErrorIs(t, err, domain.ErrShipmentNotDeparted)
	assert.Equal(t, 0, f.quantity(f.shop, f.red))
}

func TestTransitionsRejectUnknownShipments(t *testing.T) {
	f := newFixture(t)
	sh := f.instance(f.warehouse, f.shop, 1)

	_, err := f.shipments.ValidateDeparture(f.ctx, f.actor, *sh.ScheduledShipmentID)
	assert.ErrorIs(t, err, domain.ErrNoSuchShipment, "schedules never move stock")

	_, err = f.shipments.ValidateDeparture(f.ctx, f.actor, uuid.New())
	assert.ErrorIs(t, err, domain.ErrNoSuchShipment)

	other := domain.Actor{UserID: uuid.New(), BusinessID: uuid.New()}
	_, err = f.shipments.ValidateArrival(f.ctx, other, sh.ID)
	assert.ErrorIs(t, err, domain.ErrNoSuchShipment)
}

func TestTransitionsRequireLocations(t *testing.T) {
	f := newFixture(t)
	foreign := &domain.Location{BusinessID: uuid.New(), Name: "Elsewhere", Type: domain.LocationTypeStore}
	require.NoError(t, f.store.Locations().Save(f.ctx, foreign))

	sh := f.instance(foreign, f.shop, 1)
	_, err := f.shipments.ValidateDeparture(f.ctx, f.actor, sh.ID)
	assert.ErrorIs(t, err, domain.ErrNoSuchStartLocation)

	f.stock(f.warehouse, domain.InventoryLine{ItemID: f.widget.ID, Variants: f.red, Quantity: 1})
	sh = f.instance(f.warehouse, foreign, 1)
	_, err = f.shipments.ValidateDeparture(f.ctx, f.actor, sh.ID)
	assert.ErrorIs(t, err, domain.ErrNoSuchEndLocation)
	assert.Equal(t, 1, f.quantity(f.warehouse, f.red))
}

func TestListToday(t *testing.T) {
	f := newFixture(t)
	today := f.instance(f.warehouse, f.shop, 1)
	old := f.instance(f.warehouse, f.shop, 1)
	old.CreatedAt = f.now.AddDate(0, 0, -1)
	require.NoError(t, f.store.Shipments().Save(f.ctx, old))

	list, err := f.shipments.ListToday(f.ctx, f.actor)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, today.ID, list[0].ID)
	require.NotNil(t, list[0].LocationStart)
	assert.Equal(t, "Warehouse", list[0].LocationStart.Name)
	assert.Equal(t, "Shop", list[0].LocationEnd.Name)

	schedules, err := f.shipments.ListSchedules(f.ctx, f.actor)
	require.NoError(t, err)
	assert.Len(t, schedules, 2)
	for _, s := range schedules {
		assert.False(t, s.IsInstance())
	}
}
