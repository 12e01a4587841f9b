package usecase

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phenrril/stockroom/internal/domain"
)

func TestReplaceInventory(t *testing.T) {
	f := newFixture(t)
	f.stock(f.warehouse, domain.InventoryLine{ItemID: f.widget.ID, Variants: f.blue, Quantity: 9})

	err := f.inventory.Replace(f.ctx, f.actor, f.warehouse.ID, []domain.StockLine{
		{ItemID: f.widget.ID, Variants: f.red, Quantity: 2},
		{ItemID: f.widget.ID, Variants: f.red, Quantity: 3},
	})
	require.NoError(t, err)

	loc, entries, err := f.inventory.Get(f.ctx, f.actor, f.warehouse.ID)
	require.NoError(t, err)
	assert.Equal(t, "Warehouse", loc.Name)
	require.Len(t, entries, 1)
	assert.Equal(t, 5, entries[0].Quantity)
	assert.Equal(t, "Color: Red", entries[0].Description)
	require.NotNil(t, entries[0].Item)
	assert.Equal(t, "Widget", entries[0].Item.Name)
	assert.Equal(t, 0, f.quantity(f.warehouse, f.blue))
	assert.Contains(t, f.messages(), "Modified location inventory "+f.warehouse.ID.String())
}

func TestReplaceInventoryRejects(t *testing.T) {
	f := newFixture(t)
	f.stock(f.warehouse, domain.InventoryLine{ItemID: f.widget.ID, Variants: f.red, Quantity: 4})

	cases := []struct {
		name  string
		actor domain.Actor
		loc   uuid.UUID
		lines []domain.StockLine
		want  *domain.Error
	}{
		{"negative quantity", f.actor, f.warehouse.ID, []domain.StockLine{{ItemID: f.widget.ID, Variants: f.red, Quantity: -1}}, domain.ErrInvalidInventoryLines},
		{"missing item id", f.actor, f.warehouse.ID, []domain.StockLine{{Quantity: 1}}, domain.ErrInvalidInventoryLines},
		{"unknown item", f.actor, f.warehouse.ID, []domain.StockLine{{ItemID: uuid.New(), Quantity: 1}}, domain.ErrNonExistentItem},
		{"unknown location", f.actor, uuid.New(), nil, domain.ErrNoSuchLocation},
		{"other business", domain.Actor{UserID: uuid.New(), BusinessID: uuid.New()}, f.warehouse.ID, nil, domain.ErrNoSuchLocation},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := f.inventory.Replace(f.ctx, c.actor, c.loc, c.lines)
			assert.ErrorIs(t, err, c.want)
		})
	}
	assert.Equal(t, 4, f.quantity(f.warehouse, f.red))
}

func TestReplaceInventoryWithNothingEmptiesLocation(t *testing.T) {
	f := newFixture(t)
	f.stock(f.warehouse, domain.InventoryLine{ItemID: f.widget.ID, Variants: f.red, Quantity: 4})

	require.NoError(t, f.inventory.Replace(f.ctx, f.actor, f.warehouse.ID, nil))
	_, entries, err := f.inventory.Get(f.ctx, f.actor, f.warehouse.ID)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestInventoryHidesLinesOfDeletedItems(t *testing.T) {
	f := newFixture(t)
	bolt := &domain.Item{Name: "Bolt", Type: domain.ItemTypeRawMaterial}
	require.NoError(t, f.catalog.Save(f.ctx, f.actor, bolt))
	f.stock(f.warehouse,
		domain.InventoryLine{ItemID: f.widget.ID, Variants: f.red, Quantity: 4},
		domain.InventoryLine{ItemID: bolt.ID, Quantity: 50},
	)
	require.NoError(t, f.catalog.Delete(f.ctx, f.actor, f.widget.ID))

	_, entries, err := f.inventory.Get(f.ctx, f.actor, f.warehouse.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, bolt.ID, entries[0].ItemID)
	require.NotNil(t, entries[0].Item)
	assert.Equal(t, 4, f.quantity(f.warehouse, f.red), "the ledger keeps the stock")
}
