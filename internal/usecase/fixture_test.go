package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/phenrril/stockroom/internal/adapters/repo/memory"
	"github.com/phenrril/stockroom/internal/audit"
	"github.com/phenrril/stockroom/internal/currency"
	"github.com/phenrril/stockroom/internal/domain"
	"github.com/phenrril/stockroom/internal/ledger"
	"github.com/phenrril/stockroom/internal/metrics"
)

// fixture is one business with a warehouse, a store and a two-colour widget,
// wired over the in-memory store.
type fixture struct {
	t     *testing.T
	ctx   context.Context
	store *memory.Store
	cache *memory.ItemCache
	actor domain.Actor
	now   time.Time

	warehouse, shop *domain.Location
	widget          *domain.Item
	red, blue       domain.VariantSelection

	ledger    *ledger.Ledger
	catalog   *CatalogUC
	inventory *InventoryUC
	orders    *OrderUC
	shipments *ShipmentUC
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		t:     t,
		ctx:   context.Background(),
		store: memory.NewStore(),
		cache: memory.NewItemCache(),
		actor: domain.Actor{UserID: uuid.New(), BusinessID: uuid.New()},
		now:   time.Date(2024, 5, 14, 15, 30, 0, 0, time.UTC),
	}
	st := f.store
	require.NoError(t, st.Businesses().Save(f.ctx, &domain.Business{ID: f.actor.BusinessID, Name: "Acme", Currency: "USD"}))

	f.warehouse = f.location("Warehouse", domain.LocationTypeWarehouse)
	f.shop = f.location("Shop", domain.LocationTypeStore)

	m := metrics.New()
	sink := audit.New(st.Logs())
	f.ledger = ledger.New(st.Inventory(), nil)
	f.catalog = &CatalogUC{Items: st.Items(), Cache: f.cache}
	f.inventory = &InventoryUC{Locations: st.Locations(), Ledger: f.ledger, Catalog: f.catalog, Audit: sink}
	f.orders = &OrderUC{
		Orders:     st.Orders(),
		Customers:  st.Customers(),
		Businesses: st.Businesses(),
		Catalog:    f.catalog,
		Currencies: currency.Default(),
		Audit:      sink,
		Metrics:    m,
	}
	f.shipments = &ShipmentUC{
		Shipments: st.Shipments(),
		Locations: st.Locations(),
		Ledger:    f.ledger,
		Audit:     sink,
		Metrics:   m,
		Now:       func() time.Time { return f.now },
	}

	f.widget = &domain.Item{
		Name:  "Widget",
		Price: decimal.NewFromInt(100),
		Type:  domain.ItemTypeEndProduct,
		VariantGroups: []domain.VariantGroup{{
			Name:     "Color",
			Variants: []domain.Variant{{Name: "Red"}, {Name: "Blue", Position: 1}},
		}},
	}
	require.NoError(t, f.catalog.Save(f.ctx, f.actor, f.widget))
	g := f.widget.VariantGroups[0]
	f.red = domain.Select(domain.VariantChoice{GroupID: g.ID, VariantID: g.Variants[0].ID})
	f.blue = domain.Select(domain.VariantChoice{GroupID: g.ID, VariantID: g.Variants[1].ID})
	return f
}

func (f *fixture) location(name string, typ domain.LocationType) *domain.Location {
	f.t.Helper()
	l := &domain.Location{BusinessID: f.actor.BusinessID, Name: name, Type: typ}
	require.NoError(f.t, f.store.Locations().Save(f.ctx, l))
	return l
}

func (f *fixture) stock(loc *domain.Location, lines ...domain.InventoryLine) {
	f.t.Helper()
	require.NoError(f.t, f.ledger.SetAll(f.ctx, loc.ID, lines))
}

func (f *fixture) quantity(loc *domain.Location, sel domain.VariantSelection) int {
	f.t.Helper()
	lines, err := f.ledger.Get(f.ctx, loc.ID)
	require.NoError(f.t, err)
	return ledger.Totals(lines)[ledger.KeyOf(f.widget.ID, sel)]
}

// instance saves a shipment instance of a fresh schedule moving qty red widgets.
func (f *fixture) instance(from, to *domain.Location, qty int) *domain.Shipment {
	f.t.Helper()
	schedule := &domain.Shipment{
		BusinessID:      f.actor.BusinessID,
		Frequency:       domain.ShipmentDaily,
		LocationStartID: from.ID,
		LocationEndID:   to.ID,
		Lines:           []domain.ShipmentLine{{ItemID: f.widget.ID, Variants: f.red, Quantity: qty}},
	}
	require.NoError(f.t, f.store.Shipments().Save(f.ctx, schedule))
	sh := &domain.Shipment{
		BusinessID:          f.actor.BusinessID,
		ScheduledShipmentID: &schedule.ID,
		Frequency:           domain.ShipmentDaily,
		LocationStartID:     from.ID,
		LocationEndID:       to.ID,
		Lines:               []domain.ShipmentLine{{ItemID: f.widget.ID, Variants: f.red, Quantity: qty}},
		CreatedAt:           f.now.Add(-time.Hour),
	}
	require.NoError(f.t, f.store.Shipments().Save(f.ctx, sh))
	return sh
}

func (f *fixture) messages() []string {
	var out []string
	for _, l := range f.store.SystemLogs() {
		out = append(out, l.Message)
	}
	return out
}
