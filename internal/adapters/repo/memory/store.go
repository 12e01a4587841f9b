// Package memory keeps every repository in process memory. Values are copied on
// the way in and out so callers never share state with the store.
package memory

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/phenrril/stockroom/internal/domain"
)

type Store struct {
	mu         sync.RWMutex
	businesses map[uuid.UUID]domain.Business
	customers  map[uuid.UUID]domain.Customer
	items      map[uuid.UUID]domain.Item
	locations  map[uuid.UUID]domain.Location
	inventory  map[uuid.UUID][]domain.InventoryLine
	shipments  map[uuid.UUID]domain.Shipment
	orders     map[uuid.UUID]domain.Order
	logs       []domain.SystemLog

	// FailLogs makes LogRepo.Append fail, for exercising audit failure paths.
	FailLogs bool
}

func NewStore() *Store {
	return &Store{
		businesses: map[uuid.UUID]domain.Business{},
		customers:  map[uuid.UUID]domain.Customer{},
		items:      map[uuid.UUID]domain.Item{},
		locations:  map[uuid.UUID]domain.Location{},
		inventory:  map[uuid.UUID][]domain.InventoryLine{},
		shipments:  map[uuid.UUID]domain.Shipment{},
		orders:     map[uuid.UUID]domain.Order{},
	}
}

func (s *Store) Businesses() domain.BusinessRepo { return businessRepo{s} }
func (s *Store) Customers() domain.CustomerRepo { return customerRepo{s} }
func (s *Store) Items() domain.ItemRepo { return itemRepo{s} }
func (s *Store) Locations() domain.LocationRepo { return locationRepo{s} }
func (s *Store) Inventory() domain.InventoryRepo { return inventoryRepo{s} }
func (s *Store) Shipments() domain.ShipmentRepo { return &shipmentRepo{s: s} }
func (s *Store) Orders() domain.OrderRepo { return orderRepo{s} }
func (s *Store) Logs() domain.LogRepo { return logRepo{s} }

// SystemLogs returns a copy of every audit entry written so far.
func (s *Store) SystemLogs() []domain.SystemLog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.logs)
}

// --- businesses ---

type businessRepo struct{ s *Store }

func (r businessRepo) FindByID(_ context.Context, id uuid.UUID) (*domain.Business, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	b, ok := r.s.businesses[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &b, nil
}

func (r businessRepo) Save(_ context.Context, b *domain.Business) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now()
	}
	r.s.businesses[b.ID] = *b
	return nil
}

// --- customers ---

type customerRepo struct{ s *Store }

func (r customerRepo) FindByID(_ context.Context, businessID, id uuid.UUID) (*domain.Customer, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.customers[id]
	if !ok || c.Deleted || c.BusinessID != businessID {
		return nil, domain.ErrNotFound
	}
	return &c, nil
}

func (r customerRepo) Save(_ context.Context, c *domain.Customer) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.saveCustomer(c)
	return nil
}

func (s *Store) saveCustomer(c *domain.Customer) {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	s.customers[c.ID] = *c
}

// --- locations ---

type locationRepo struct{ s *Store }

func (r locationRepo) FindByID(_ context.Context, id uuid.UUID) (*domain.Location, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	l, ok := r.s.locations[id]
	if !ok || l.Deleted {
		return nil, domain.ErrNotFound
	}
	return &l, nil
}

func (r locationRepo) FindByIDs(_ context.Context, ids []uuid.UUID) ([]domain.Location, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []domain.Location{}
	for _, id := range uniq(ids) {
		if l, ok := r.s.locations[id]; ok && !l.Deleted {
			out = append(out, l)
		}
	}
	return out, nil
}

func (r locationRepo) Save(_ context.Context, l *domain.Location) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	if l.CreatedAt.IsZero() {
		l.CreatedAt = time.Now()
	}
	r.s.locations[l.ID] = *l
	return nil
}

// --- orders ---

type orderRepo struct{ s *Store }

func (r orderRepo) Create(_ context.Context, o *domain.Order, newCustomer *domain.Customer) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if newCustomer != nil {
		r.s.saveCustomer(newCustomer)
	}
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now()
	}
	for i := range o.Lines {
		if o.Lines[i].ID == uuid.Nil {
			o.Lines[i].ID = uuid.New()
		}
		o.Lines[i].OrderID = o.ID
	}
	r.s.orders[o.ID] = cloneOrder(*o)
	return nil
}

func (r orderRepo) FindByID(_ context.Context, businessID, id uuid.UUID) (*domain.Order, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	o, ok := r.s.orders[id]
	if !ok || o.BusinessID != businessID {
		return nil, domain.ErrNotFound
	}
	o = cloneOrder(o)
	return &o, nil
}

func (r orderRepo) ListByBusiness(_ context.Context, businessID uuid.UUID) ([]domain.Order, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []domain.Order{}
	for _, o := range r.s.orders {
		if o.BusinessID == businessID {
			out = append(out, cloneOrder(o))
		}
	}
	slices.SortFunc(out, func(a, b domain.Order) int { return b.CreatedAt.Compare(a.CreatedAt) })
	return out, nil
}

func cloneOrder(o domain.Order) domain.Order {
	o.Lines = slices.Clone(o.Lines)
	return o
}

// --- logs ---

type logRepo struct{ s *Store }

var errLogsUnavailable = errors.New("memory: log sink unavailable")

func (r logRepo) Append(_ context.Context, e *domain.SystemLog) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.FailLogs {
		return errLogsUnavailable
	}
	r.s.logs = append(r.s.logs, *e)
	return nil
}

func uniq(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
