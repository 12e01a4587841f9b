package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/phenrril/stockroom/internal/adapters/cache/rediscache"
	"github.com/phenrril/stockroom/internal/adapters/httpserver"
	"github.com/phenrril/stockroom/internal/adapters/repo/memory"
	"github.com/phenrril/stockroom/internal/adapters/repo/postgres"
	"github.com/phenrril/stockroom/internal/audit"
	"github.com/phenrril/stockroom/internal/currency"
	"github.com/phenrril/stockroom/internal/domain"
	"github.com/phenrril/stockroom/internal/ledger"
	"github.com/phenrril/stockroom/internal/lock"
	"github.com/phenrril/stockroom/internal/metrics"
	"github.com/phenrril/stockroom/internal/usecase"
)

type repos struct {
	businesses domain.BusinessRepo
	customers  domain.CustomerRepo
	items      domain.ItemRepo
	locations  domain.LocationRepo
	inventory  domain.InventoryRepo
	shipments  domain.ShipmentRepo
	orders     domain.OrderRepo
	logs       domain.LogRepo
}

type App struct {
	DB         *gorm.DB
	Redis      *redis.Client
	Metrics    *metrics.Metrics
	Currencies *currency.Table
	Ledger     *ledger.Ledger

	CatalogUC   *usecase.CatalogUC
	InventoryUC *usecase.InventoryUC
	OrderUC     *usecase.OrderUC
	ShipmentUC  *usecase.ShipmentUC

	repos repos
}

// NewApp wires the service. A nil db keeps everything in process memory; a
// nil rdb falls back to in-process locks and catalog cache.
func NewApp(db *gorm.DB, rdb *redis.Client) (*App, error) {
	cur, err := currency.Load(os.Getenv("CURRENCIES_FILE"))
	if err != nil {
		return nil, err
	}
	lockTTL, err := durationEnv("LOCK_TTL", 10*time.Second)
	if err != nil {
		return nil, err
	}
	cacheTTL, err := durationEnv("CATALOG_CACHE_TTL", 5*time.Minute)
	if err != nil {
		return nil, err
	}

	var rp repos
	if db != nil {
		rp = repos{
			businesses: postgres.NewBusinessRepo(db),
			customers:  postgres.NewCustomerRepo(db),
			items:      postgres.NewItemRepo(db),
			locations:  postgres.NewLocationRepo(db),
			inventory:  postgres.NewInventoryRepo(db),
			shipments:  postgres.NewShipmentRepo(db),
			orders:     postgres.NewOrderRepo(db),
			logs:       postgres.NewLogRepo(db),
		}
	} else {
		st := memory.NewStore()
		rp = repos{
			businesses: st.Businesses(),
			customers:  st.Customers(),
			items:      st.Items(),
			locations:  st.Locations(),
			inventory:  st.Inventory(),
			shipments:  st.Shipments(),
			orders:     st.Orders(),
			logs:       st.Logs(),
		}
	}

	var locker lock.Locker
	var cache domain.ItemCache
	if rdb != nil {
		locker = lock.NewRedis(rdb, lockTTL)
		cache = rediscache.NewItemCache(rdb, cacheTTL)
	} else {
		locker = lock.NewLocal()
		cache = memory.NewItemCache()
	}

	m := metrics.New()
	sink := audit.New(rp.logs)
	led := ledger.New(rp.inventory, locker)
	catalog := &usecase.CatalogUC{Items: rp.items, Cache: cache}

	a := &App{DB: db, Redis: rdb, Metrics: m, Currencies: cur, Ledger: led, repos: rp}
	a.CatalogUC = catalog
	a.InventoryUC = &usecase.InventoryUC{Locations: rp.locations, Ledger: led, Catalog: catalog, Audit: sink}
	a.OrderUC = &usecase.OrderUC{
		Orders:     rp.orders,
		Customers:  rp.customers,
		Businesses: rp.businesses,
		Catalog:    catalog,
		Currencies: cur,
		Audit:      sink,
		Metrics:    m,
	}
	a.ShipmentUC = &usecase.ShipmentUC{
		Shipments: rp.shipments,
		Locations: rp.locations,
		Ledger:    led,
		Audit:     sink,
		Metrics:   m,
	}
	return a, nil
}

func (a *App) HTTPHandler() http.Handler {
	return httpserver.New(a.CatalogUC, a.InventoryUC, a.OrderUC, a.ShipmentUC, a.Currencies, a.Metrics)
}

func (a *App) MigrateAndSeed(ctx context.Context) error {
	if a.DB != nil {
		if err := a.DB.WithContext(ctx).AutoMigrate(postgres.Models()...); err != nil {
			return err
		}
		_ = a.DB.Exec("CREATE INDEX IF NOT EXISTS idx_location_items_key ON location_items (location_id, item_id)").Error
		_ = a.DB.Exec("CREATE INDEX IF NOT EXISTS idx_shipments_instances ON shipments (business_id, created_at) WHERE scheduled_shipment_id IS NOT NULL").Error
	}
	if strings.EqualFold(os.Getenv("SEED_DEMO"), "true") {
		return a.seedDemo(ctx)
	}
	return nil
}

// Fixed ids so a local client can send the demo actor headers.
var (
	DemoBusinessID = uuid.MustParse("8a1c5b0e-6f0e-4c53-9a51-1f1d0c3b7a01")
	DemoUserID     = uuid.MustParse("8a1c5b0e-6f0e-4c53-9a51-1f1d0c3b7a02")
	demoWarehouse  = uuid.MustParse("8a1c5b0e-6f0e-4c53-9a51-1f1d0c3b7a10")
	demoStore      = uuid.MustParse("8a1c5b0e-6f0e-4c53-9a51-1f1d0c3b7a11")
	demoItem       = uuid.MustParse("8a1c5b0e-6f0e-4c53-9a51-1f1d0c3b7a20")
	demoColor      = uuid.MustParse("8a1c5b0e-6f0e-4c53-9a51-1f1d0c3b7a21")
	demoRed        = uuid.MustParse("8a1c5b0e-6f0e-4c53-9a51-1f1d0c3b7a22")
	demoBlue       = uuid.MustParse("8a1c5b0e-6f0e-4c53-9a51-1f1d0c3b7a23")
	demoSchedule   = uuid.MustParse("8a1c5b0e-6f0e-4c53-9a51-1f1d0c3b7a30")
)

func (a *App) seedDemo(ctx context.Context) error {
	if _, err := a.repos.businesses.FindByID(ctx, DemoBusinessID); err == nil {
		return nil
	} else if !errors.Is(err, domain.ErrNotFound) {
		return err
	}

	biz := &domain.Business{ID: DemoBusinessID, Name: "Demo Workshop", Currency: "USD"}
	if err := a.repos.businesses.Save(ctx, biz); err != nil {
		return fmt.Errorf("seed business: %w", err)
	}
	for _, l := range []*domain.Location{
		{ID: demoWarehouse, BusinessID: DemoBusinessID, Name: "Main Warehouse", Type: domain.LocationTypeWarehouse, City: "Toronto", Country: "CA"},
		{ID: demoStore, BusinessID: DemoBusinessID, Name: "Downtown Store", Type: domain.LocationTypeStore, City: "Toronto", Country: "CA"},
	} {
		if err := a.repos.locations.Save(ctx, l); err != nil {
			return fmt.Errorf("seed location: %w", err)
		}
	}

	widget := &domain.Item{
		ID:         demoItem,
		BusinessID: DemoBusinessID,
		Name:       "Widget",
		Price:      decimal.NewFromInt(100),
		Type:       domain.ItemTypeEndProduct,
		VariantGroups: []domain.VariantGroup{{
			ID:     demoColor,
			ItemID: demoItem,
			Name:   "Color",
			Variants: []domain.Variant{
				{ID: demoRed, VariantGroupID: demoColor, Name: "Red", Position: 0},
				{ID: demoBlue, VariantGroupID: demoColor, Name: "Blue", Position: 1},
			},
		}},
	}
	if err := a.repos.items.Save(ctx, widget); err != nil {
		return fmt.Errorf("seed item: %w", err)
	}

	red := domain.Select(domain.VariantChoice{GroupID: demoColor, VariantID: demoRed})
	if err := a.Ledger.SetAll(ctx, demoWarehouse, []domain.InventoryLine{
		{ItemID: demoItem, Variants: red, Quantity: 20},
	}); err != nil {
		return fmt.Errorf("seed inventory: %w", err)
	}

	schedule := &domain.Shipment{
		ID:              demoSchedule,
		BusinessID:      DemoBusinessID,
		Frequency:       domain.ShipmentWeekly,
		LocationStartID: demoWarehouse,
		LocationEndID:   demoStore,
		Lines:           []domain.ShipmentLine{{ItemID: demoItem, Variants: red, Quantity: 5}},
	}
	if err := a.repos.shipments.Save(ctx, schedule); err != nil {
		return fmt.Errorf("seed schedule: %w", err)
	}
	scheduleID := demoSchedule
	instance := &domain.Shipment{
		BusinessID:          DemoBusinessID,
		ScheduledShipmentID: &scheduleID,
		Frequency:           domain.ShipmentWeekly,
		LocationStartID:     demoWarehouse,
		LocationEndID:       demoStore,
		Lines:               []domain.ShipmentLine{{ItemID: demoItem, Variants: red, Quantity: 5}},
	}
	if err := a.repos.shipments.Save(ctx, instance); err != nil {
		return fmt.Errorf("seed shipment: %w", err)
	}

	log.Info().
		Str("business_id", DemoBusinessID.String()).
		Str("user_id", DemoUserID.String()).
		Str("shipment_id", instance.ID.String()).
		Msg("demo data seeded")
	return nil
}

func durationEnv(name string, def time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	return d, nil
}
