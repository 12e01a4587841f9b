package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/phenrril/stockroom/internal/domain"
	"github.com/phenrril/stockroom/internal/ledger"
	"github.com/phenrril/stockroom/internal/metrics"
)

// ShipmentUC moves stock between locations. Departure deducts the shipment's
// lines from the start location and arrival adds them to the end location.
// Stock in transit between the two is not recorded at either location.
type ShipmentUC struct {
	Shipments domain.ShipmentRepo
	Locations domain.LocationRepo
	Ledger    *ledger.Ledger
	Audit     AuditSink
	Metrics   *metrics.Metrics
	Now       func() time.Time
}

func (uc *ShipmentUC) now() time.Time {
	if uc.Now != nil {
		return uc.Now()
	}
	return time.Now()
}

func (uc *ShipmentUC) ValidateDeparture(ctx context.Context, actor domain.Actor, id uuid.UUID) (sh *domain.Shipment, err error) {
	defer func() { uc.Metrics.ObserveTransition("departure", err) }()

	sh, err = uc.loadInstance(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if sh.DepartedAt != nil {
		return nil, domain.ErrShipmentAlreadyDeparted
	}
	if err := uc.resolveEnds(ctx, actor, sh); err != nil {
		return nil, err
	}

	at := uc.now()
	err = uc.Ledger.Reserve(ctx, sh.LocationStartID, sh.StockLines(), func(ctx context.Context, tx domain.InventoryTx) error {
		return notFound(tx.Shipments().MarkDeparted(ctx, sh.ID, actor.UserID, at), domain.ErrNoSuchShipment)
	})
	if err != nil {
		var shortfall *ledger.ShortfallError
		if errors.As(err, &shortfall) {
			return nil, fmt.Errorf("%w: %w", domain.ErrInsufficientStartInventory, shortfall)
		}
		return nil, notFound(err, domain.ErrNoSuchStartLocation)
	}
	sh.DepartedAt = &at
	sh.DepartureValidatedBy = &actor.UserID

	logActivity(ctx, uc.Audit, fmt.Sprintf("Shipment %s departed from location %s", sh.ID, sh.LocationStart.Name), actor.BusinessID)
	return sh, nil
}

func (uc *ShipmentUC) ValidateArrival(ctx context.Context, actor domain.Actor, id uuid.UUID) (sh *domain.Shipment, err error) {
	defer func() { uc.Metrics.ObserveTransition("arrival", err) }()

	sh, err = uc.loadInstance(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if sh.ArrivedAt != nil {
		return nil, domain.ErrShipmentAlreadyArrived
	}
	if sh.DepartedAt == nil {
		return nil, domain.ErrShipmentNotDeparted
	}
	if err := uc.resolveEnds(ctx, actor, sh); err != nil {
		return nil, err
	}

	at := uc.now()
	err = uc.Ledger.Receive(ctx, sh.LocationEndID, sh.StockLines(), func(ctx context.Context, tx domain.InventoryTx) error {
		return notFound(tx.Shipments().MarkArrived(ctx, sh.ID, actor.UserID, at), domain.ErrNoSuchShipment)
	})
	if err != nil {
		return nil, notFound(err, domain.ErrNoSuchEndLocation)
	}
	sh.ArrivedAt = &at
	sh.ArrivalValidatedBy = &actor.UserID

	logActivity(ctx, uc.Audit, fmt.Sprintf("Shipment %s arrived at location %s", sh.ID, sh.LocationEnd.Name), actor.BusinessID)
	return sh, nil
}

// loadInstance returns ErrNoSuchShipment for schedule templates as well as misses.
func (uc *ShipmentUC) loadInstance(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.Shipment, error) {
	sh, err := uc.Shipments.FindByID(ctx, actor.BusinessID, id)
	if err != nil {
		return nil, notFound(err, domain.ErrNoSuchShipment)
	}
	if !sh.IsInstance() {
		return nil, domain.ErrNoSuchShipment
	}
	return sh, nil
}

func (uc *ShipmentUC) resolveEnds(ctx context.Context, actor domain.Actor, sh *domain.Shipment) error {
	start, err := uc.location(ctx, actor, sh.LocationStartID, domain.ErrNoSuchStartLocation)
	if err != nil {
		return err
	}
	end, err := uc.location(ctx, actor, sh.LocationEndID, domain.ErrNoSuchEndLocation)
	if err != nil {
		return err
	}
	sh.LocationStart, sh.LocationEnd = start, end
	return nil
}

func (uc *ShipmentUC) location(ctx context.Context, actor domain.Actor, id uuid.UUID, missing *domain.Error) (*domain.Location, error) {
	l, err := uc.Locations.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, missing)
	}
	if l.BusinessID != actor.BusinessID {
		return nil, missing
	}
	return l, nil
}

func (uc *ShipmentUC) Get(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.Shipment, error) {
	sh, err := uc.Shipments.FindByID(ctx, actor.BusinessID, id)
	if err != nil {
		return nil, notFound(err, domain.ErrNoSuchShipment)
	}
	list := []domain.Shipment{*sh}
	if err := uc.attachLocations(ctx, list); err != nil {
		return nil, err
	}
	return &list[0], nil
}

// ListSchedules returns the business's schedule templates.
func (uc *ShipmentUC) ListSchedules(ctx context.Context, actor domain.Actor) ([]domain.Shipment, error) {
	list, err := uc.Shipments.ListSchedules(ctx, actor.BusinessID)
	if err != nil {
		return nil, err
	}
	return list, uc.attachLocations(ctx, list)
}

// ListToday returns shipment instances created since local midnight.
func (uc *ShipmentUC) ListToday(ctx context.Context, actor domain.Actor) ([]domain.Shipment, error) {
	now := uc.now()
	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	to := from.AddDate(0, 0, 1).Add(-time.Nanosecond)
	list, err := uc.Shipments.ListInstancesCreatedBetween(ctx, actor.BusinessID, from, to)
	if err != nil {
		return nil, err
	}
	return list, uc.attachLocations(ctx, list)
}

func (uc *ShipmentUC) attachLocations(ctx context.Context, list []domain.Shipment) error {
	if len(list) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, 0, 2*len(list))
	for _, sh := range list {
		ids = append(ids, sh.LocationStartID, sh.LocationEndID)
	}
	locs, err := uc.Locations.FindByIDs(ctx, ids)
	if err != nil {
		return err
	}
	byID := make(map[uuid.UUID]*domain.Location, len(locs))
	for i := range locs {
		byID[locs[i].ID] = &locs[i]
	}
	for i := range list {
		list[i].LocationStart = byID[list[i].LocationStartID]
		list[i].LocationEnd = byID[list[i].LocationEndID]
	}
	return nil
}
