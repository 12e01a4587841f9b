package memory

import (
	"context"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/phenrril/stockroom/internal/domain"
)

// shipmentRepo bound to a tx runs under the store lock already held by
// WithLocation and records undo steps instead of locking.
type shipmentRepo struct {
	s  *Store
	tx *inventoryTx
}

func (r *shipmentRepo) rlock() func() {
	if r.tx != nil {
		return func() {}
	}
	r.s.mu.RLock()
	return r.s.mu.RUnlock
}

func (r *shipmentRepo) lock() func() {
	if r.tx != nil {
		return func() {}
	}
	r.s.mu.Lock()
	return r.s.mu.Unlock
}

func (r *shipmentRepo) FindByID(_ context.Context, businessID, id uuid.UUID) (*domain.Shipment, error) {
	defer r.rlock()()
	sh, ok := r.s.shipments[id]
	if !ok || sh.Deleted || sh.BusinessID != businessID {
		return nil, domain.ErrNotFound
	}
	sh = cloneShipment(sh)
	return &sh, nil
}

func (r *shipmentRepo) ListSchedules(_ context.Context, businessID uuid.UUID) ([]domain.Shipment, error) {
	defer r.rlock()()
	return r.filter(func(sh domain.Shipment) bool {
		return sh.BusinessID == businessID && !sh.IsInstance()
	}), nil
}

func (r *shipmentRepo) ListInstancesCreatedBetween(_ context.Context, businessID uuid.UUID, from, to time.Time) ([]domain.Shipment, error) {
	defer r.rlock()()
	return r.filter(func(sh domain.Shipment) bool {
		return sh.BusinessID == businessID && sh.IsInstance() &&
			!sh.CreatedAt.Before(from) && !sh.CreatedAt.After(to)
	}), nil
}

func (r *shipmentRepo) filter(keep func(domain.Shipment) bool) []domain.Shipment {
	out := []domain.Shipment{}
	for _, sh := range r.s.shipments {
		if !sh.Deleted && keep(sh) {
			out = append(out, cloneShipment(sh))
		}
	}
	slices.SortFunc(out, func(a, b domain.Shipment) int { return a.CreatedAt.Compare(b.CreatedAt) })
	return out
}

func (r *shipmentRepo) Save(_ context.Context, sh *domain.Shipment) error {
	defer r.lock()()
	if sh.ID == uuid.Nil {
		sh.ID = uuid.New()
	}
	if sh.CreatedAt.IsZero() {
		sh.CreatedAt = time.Now()
	}
	for i := range sh.Lines {
		if sh.Lines[i].ID == uuid.Nil {
			sh.Lines[i].ID = uuid.New()
		}
		sh.Lines[i].ShipmentID = sh.ID
	}
	r.s.shipments[sh.ID] = cloneShipment(*sh)
	return nil
}

func (r *shipmentRepo) MarkDeparted(_ context.Context, id, actorID uuid.UUID, at time.Time) error {
	defer r.lock()()
	return r.update(id, func(sh *domain.Shipment) error {
		if sh.DepartedAt != nil {
			return domain.ErrShipmentAlreadyDeparted
		}
		sh.DepartedAt = &at
		sh.DepartureValidatedBy = &actorID
		return nil
	})
}

func (r *shipmentRepo) MarkArrived(_ context.Context, id, actorID uuid.UUID, at time.Time) error {
	defer r.lock()()
	return r.update(id, func(sh *domain.Shipment) error {
		if sh.ArrivedAt != nil {
			return domain.ErrShipmentAlreadyArrived
		}
		sh.ArrivedAt = &at
		sh.ArrivalValidatedBy = &actorID
		return nil
	})
}

func (r *shipmentRepo) update(id uuid.UUID, fn func(sh *domain.Shipment) error) error {
	prev, ok := r.s.shipments[id]
	if !ok || prev.Deleted {
		return domain.ErrNotFound
	}
	next := cloneShipment(prev)
	if err := fn(&next); err != nil {
		return err
	}
	r.s.shipments[id] = next
	if r.tx != nil {
		r.tx.undo = append(r.tx.undo, func() { r.s.shipments[id] = prev })
	}
	return nil
}

func cloneShipment(sh domain.Shipment) domain.Shipment {
	sh.Lines = slices.Clone(sh.Lines)
	sh.LocationStart, sh.LocationEnd = nil, nil
	return sh
}
