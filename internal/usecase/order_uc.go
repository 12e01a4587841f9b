package usecase

import (
	"context"
	"fmt"
	"slices"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/phenrril/stockroom/internal/currency"
	"github.com/phenrril/stockroom/internal/domain"
	"github.com/phenrril/stockroom/internal/metrics"
)

// TaxRate applies to every order subtotal.
var TaxRate = decimal.RequireFromString("0.15")

const rateDigits = 8

type CustomerInput struct {
	FirstName   string `json:"first_name" validate:"required,max=50"`
	LastName    string `json:"last_name" validate:"required,max=50"`
	Email       string `json:"email" validate:"omitempty,email,max=250"`
	PhoneNumber string `json:"phone_number" validate:"max=30"`
	Address     string `json:"address" validate:"max=200"`
	City        string `json:"city" validate:"max=100"`
	State       string `json:"state" validate:"max=100"`
	Country     string `json:"country" validate:"max=100"`
	PostalCode  string `json:"postal_code" validate:"max=50"`
}

type OrderLineInput struct {
	ItemID   uuid.UUID               `json:"item_id"`
	Variants domain.VariantSelection `json:"variants"`
	Quantity int                     `json:"quantity"`
}

// PlaceOrder names an existing customer through CustomerID or a new one through Customer.
type PlaceOrder struct {
	CustomerID *uuid.UUID       `json:"customer_id"`
	Customer   *CustomerInput   `json:"customer"`
	Currency   string           `json:"currency"`
	Items      []OrderLineInput `json:"items"`
}

type OrderUC struct {
	Orders     domain.OrderRepo
	Customers  domain.CustomerRepo
	Businesses domain.BusinessRepo
	Catalog    ItemSource
	Currencies *currency.Table
	Audit      AuditSink
	Metrics    *metrics.Metrics
}

// Create prices and stores an order. Every input check runs before the first
// read, and nothing is written unless the whole order is valid.
func (uc *OrderUC) Create(ctx context.Context, actor domain.Actor, req PlaceOrder) (o *domain.Order, err error) {
	label := "invalid"
	defer func() {
		var total float64
		if o != nil {
			total = o.TotalAmount.InexactFloat64()
		}
		uc.Metrics.ObserveOrder(label, total, err)
	}()

	cur, err := uc.checkRequest(req)
	if err != nil {
		return nil, err
	}
	label = cur.Code

	biz, err := uc.Businesses.FindByID(ctx, actor.BusinessID)
	if err != nil {
		return nil, notFound(err, domain.ErrNoSuchBusiness)
	}
	home, ok := uc.Currencies.Lookup(biz.Currency)
	if !ok {
		return nil, fmt.Errorf("business %s: home currency %q not in table", biz.ID, biz.Currency)
	}
	rate, err := uc.Currencies.Rate(home.Code, cur.Code)
	if err != nil {
		return nil, err
	}
	// Stored as decimal(20,8); pricing uses the stored value so a reloaded order reproduces its amounts.
	rate = rate.Round(rateDigits)

	var customer domain.Customer
	var newCustomer *domain.Customer
	if req.CustomerID != nil {
		c, err := uc.Customers.FindByID(ctx, actor.BusinessID, *req.CustomerID)
		if err != nil {
			return nil, notFound(err, domain.ErrNoSuchCustomer)
		}
		customer = *c
	} else {
		customer = newCustomerFrom(*req.Customer, actor.BusinessID)
		newCustomer = &customer
	}

	lines, err := uc.resolveLines(ctx, actor.BusinessID, req.Items)
	if err != nil {
		return nil, err
	}

	o = &domain.Order{
		ID:             uuid.New(),
		BusinessID:     actor.BusinessID,
		EmployeeID:     actor.UserID,
		CustomerID:     customer.ID,
		Customer:       customer,
		Status:         domain.OrderStatusPaid,
		Currency:       cur.Code,
		ConversionRate: rate,
		TaxRate:        TaxRate,
		Lines:          lines,
	}
	price(o, cur)

	if err := uc.Orders.Create(ctx, o, newCustomer); err != nil {
		return nil, fmt.Errorf("store order: %w", err)
	}
	if newCustomer != nil {
		logActivity(ctx, uc.Audit, fmt.Sprintf("Created customer %s %s", customer.FirstName, customer.LastName), actor.BusinessID)
	}
	logActivity(ctx, uc.Audit, fmt.Sprintf("Created order %s for %s %s", o.TotalAmount.StringFixed(cur.DecimalDigits), cur.Code, o.ID), actor.BusinessID)
	return o, nil
}

func (uc *OrderUC) checkRequest(req PlaceOrder) (currency.Currency, error) {
	switch {
	case req.CustomerID == nil && req.Customer == nil:
		return currency.Currency{}, domain.ErrNoCustomerSpecified
	case req.CustomerID == nil:
		if err := validate.Struct(req.Customer); err != nil {
			return currency.Currency{}, fmt.Errorf("%w: %v", domain.ErrInvalidCustomerFields, err)
		}
	}
	if len(req.Items) == 0 {
		return currency.Currency{}, domain.ErrEmptyOrderItems
	}
	for i, l := range req.Items {
		if l.ItemID == uuid.Nil || l.Quantity <= 0 {
			return currency.Currency{}, fmt.Errorf("%w: line %d", domain.ErrInvalidOrderItem, i)
		}
	}
	cur, ok := uc.Currencies.Lookup(req.Currency)
	if !ok {
		return currency.Currency{}, domain.ErrInvalidCurrency
	}
	return cur, nil
}

// resolveLines checks every requested item against the catalog and snapshots it.
func (uc *OrderUC) resolveLines(ctx context.Context, businessID uuid.UUID, in []OrderLineInput) ([]domain.OrderLine, error) {
	ids := make([]uuid.UUID, 0, len(in))
	for _, l := range in {
		ids = append(ids, l.ItemID)
	}
	items, err := uc.Catalog.Lookup(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load items: %w", err)
	}
	byID := itemsByID(items)

	out := make([]domain.OrderLine, 0, len(in))
	for i, l := range in {
		it, ok := byID[l.ItemID]
		if !ok || it.BusinessID != businessID {
			return nil, fmt.Errorf("%w: %s", domain.ErrNonExistentItem, l.ItemID)
		}
		if !it.ValidSelection(l.Variants) {
			return nil, fmt.Errorf("%w: line %d has an invalid variant selection", domain.ErrInvalidOrderItem, i)
		}
		out = append(out, domain.OrderLine{
			ID:       uuid.New(),
			ItemID:   it.ID,
			Item:     it.Snapshot(),
			Variants: l.Variants,
			Quantity: l.Quantity,
		})
	}
	return out, nil
}

// price fills unit prices and totals from the catalog snapshot and o.ConversionRate.
// The subtotal sums the exact converted line amounts and is rounded once; the
// stored unit prices are rounded for display only.
func price(o *domain.Order, cur currency.Currency) {
	subtotal := decimal.Zero
	for i := range o.Lines {
		l := &o.Lines[i]
		unit := l.Item.Price.Mul(o.ConversionRate)
		l.UnitPrice = cur.Round(unit)
		subtotal = subtotal.Add(unit.Mul(decimal.NewFromInt(int64(l.Quantity))))
		o.TotalItems += l.Quantity
	}
	o.SubtotalAmount = cur.Round(subtotal)
	o.TaxAmount = cur.Round(o.SubtotalAmount.Mul(o.TaxRate))
	o.TotalAmount = cur.Round(o.SubtotalAmount.Add(o.TaxAmount))
}

func newCustomerFrom(in CustomerInput, businessID uuid.UUID) domain.Customer {
	return domain.Customer{
		ID:          uuid.New(),
		BusinessID:  businessID,
		FirstName:   in.FirstName,
		LastName:    in.LastName,
		Email:       in.Email,
		PhoneNumber: in.PhoneNumber,
		Address:     in.Address,
		City:        in.City,
		State:       in.State,
		Country:     in.Country,
		PostalCode:  in.PostalCode,
	}
}

func (uc *OrderUC) Get(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.Order, error) {
	o, err := uc.Orders.FindByID(ctx, actor.BusinessID, id)
	if err != nil {
		return nil, notFound(err, domain.ErrNoSuchOrder)
	}
	return o, nil
}

func (uc *OrderUC) List(ctx context.Context, actor domain.Actor) ([]domain.Order, error) {
	orders, err := uc.Orders.ListByBusiness(ctx, actor.BusinessID)
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(orders, func(a, b domain.Order) int { return b.CreatedAt.Compare(a.CreatedAt) })
	return orders, nil
}
