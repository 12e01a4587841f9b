package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phenrril/stockroom/internal/domain"
)

func seedShipment(t *testing.T, st *Store) (*domain.Location, *domain.Shipment) {
	t.Helper()
	ctx := context.Background()
	biz := uuid.New()
	loc := &domain.Location{BusinessID: biz, Name: "A", Type: domain.LocationTypeWarehouse}
	require.NoError(t, st.Locations().Save(ctx, loc))
	schedule := uuid.New()
	sh := &domain.Shipment{BusinessID: biz, ScheduledShipmentID: &schedule, LocationStartID: loc.ID, LocationEndID: loc.ID}
	require.NoError(t, st.Shipments().Save(ctx, sh))
	return loc, sh
}

func TestWithLocationRollsBackShipmentStamp(t *testing.T) {
	ctx := context.Background()
	st := NewStore()
	loc, sh := seedShipment(t, st)
	boom := errors.New("boom")

	err := st.Inventory().WithLocation(ctx, loc.ID, func(ctx context.Context, tx domain.InventoryTx) error {
		require.NoError(t, tx.Replace(ctx, []domain.InventoryLine{{ItemID: uuid.New(), Quantity: 3}}))
		require.NoError(t, tx.Shipments().MarkDeparted(ctx, sh.ID, uuid.New(), time.Now()))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := st.Shipments().FindByID(ctx, sh.BusinessID, sh.ID)
	require.NoError(t, err)
	assert.Nil(t, got.DepartedAt)
	lines, err := st.Inventory().List(ctx, loc.ID)
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestWithLocationCommits(t *testing.T) {
	ctx := context.Background()
	st := NewStore()
	loc, sh := seedShipment(t, st)
	item := uuid.New()

	err := st.Inventory().WithLocation(ctx, loc.ID, func(ctx context.Context, tx domain.InventoryTx) error {
		if err := tx.Replace(ctx, []domain.InventoryLine{{ItemID: item, Quantity: 3}}); err != nil {
			return err
		}
		return tx.Shipments().MarkDeparted(ctx, sh.ID, uuid.New(), time.Now())
	})
	require.NoError(t, err)

	lines, err := st.Inventory().List(ctx, loc.ID)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, loc.ID, lines[0].LocationID)
	assert.NotEqual(t, uuid.Nil, lines[0].ID)

	err = st.Shipments().MarkDeparted(ctx, sh.ID, uuid.New(), time.Now())
	assert.ErrorIs(t, err, domain.ErrShipmentAlreadyDeparted)
	assert.ErrorIs(t, st.Shipments().MarkArrived(ctx, uuid.New(), uuid.New(), time.Now()), domain.ErrNotFound)
}

func TestWithLocationUnknown(t *testing.T) {
	err := NewStore().Inventory().WithLocation(context.Background(), uuid.New(), func(context.Context, domain.InventoryTx) error {
		t.Fatal("must not run")
		return nil
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestItemsHideDeletedVariants(t *testing.T) {
	ctx := context.Background()
	st := NewStore()
	biz := uuid.New()
	it := &domain.Item{BusinessID: biz, Name: "W", Type: domain.ItemTypeEndProduct, VariantGroups: []domain.VariantGroup{
		{ID: uuid.New(), Name: "Size", Position: 1, Variants: []domain.Variant{{ID: uuid.New(), Name: "L", Position: 2}, {ID: uuid.New(), Name: "S"}, {ID: uuid.New(), Name: "X", Deleted: true}}},
		{ID: uuid.New(), Name: "Color"},
		{ID: uuid.New(), Name: "Old", Deleted: true},
	}}
	require.NoError(t, st.Items().Save(ctx, it))

	got, err := st.Items().FindByIDs(ctx, []uuid.UUID{it.ID, it.ID})
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Len(t, got[0].VariantGroups, 2)
	assert.Equal(t, "Color", got[0].VariantGroups[0].Name)
	size := got[0].VariantGroups[1]
	require.Len(t, size.Variants, 2)
	assert.Equal(t, "S", size.Variants[0].Name)

	require.NoError(t, st.Items().SoftDelete(ctx, biz, it.ID))
	assert.ErrorIs(t, st.Items().SoftDelete(ctx, biz, it.ID), domain.ErrNotFound)
	got, err = st.Items().FindByIDs(ctx, []uuid.UUID{it.ID})
	require.NoError(t, err)
	assert.Empty(t, got)
}
