package domain

import "errors"

// ErrNotFound is returned by repositories on a lookup miss. Use cases translate
// it into one of the named errors below.
var ErrNotFound = errors.New("not found")

type ErrorKind int

const (
	KindValidation ErrorKind = iota + 1
	KindNotFound
	KindConflict
	KindShortfall
	KindUnavailable
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindShortfall:
		return "shortfall"
	case KindUnavailable:
		return "unavailable"
	}
	return "unknown"
}

// Error is a named failure condition. Code is the wire string returned to API callers.
type Error struct {
	Code string
	Kind ErrorKind
}

func (e *Error) Error() string { return e.Code }

// Order placement
var (
	ErrNoCustomerSpecified   = &Error{Code: "no_customer_specified", Kind: KindValidation}
	ErrInvalidCustomerFields = &Error{Code: "invalid_customer_fields", Kind: KindValidation}
	ErrEmptyOrderItems       = &Error{Code: "order_items_type_mismatch", Kind: KindValidation}
	ErrInvalidOrderItem      = &Error{Code: "invalid_order_item", Kind: KindValidation}
	ErrInvalidCurrency       = &Error{Code: "invalid_currency", Kind: KindValidation}
	ErrNoSuchCustomer        = &Error{Code: "no_such_customer", Kind: KindNotFound}
	ErrNonExistentItem       = &Error{Code: "non_existent_item", Kind: KindNotFound}
	ErrNoSuchBusiness        = &Error{Code: "no_such_business", Kind: KindNotFound}
	ErrNoSuchOrder           = &Error{Code: "no_such_order", Kind: KindNotFound}
)

// Shipments and inventory
var (
	ErrNoSuchShipment             = &Error{Code: "no_such_shipment", Kind: KindNotFound}
	ErrNoSuchStartLocation        = &Error{Code: "no_such_start_location", Kind: KindNotFound}
	ErrNoSuchEndLocation          = &Error{Code: "no_such_end_location", Kind: KindNotFound}
	ErrNoSuchLocation             = &Error{Code: "no_such_location", Kind: KindNotFound}
	ErrShipmentAlreadyDeparted    = &Error{Code: "shipment_already_departed", Kind: KindConflict}
	ErrShipmentAlreadyArrived     = &Error{Code: "shipment_already_arrived", Kind: KindConflict}
	ErrShipmentNotDeparted        = &Error{Code: "shipment_not_departed", Kind: KindConflict}
	ErrInsufficientStartInventory = &Error{Code: "insufficient_start_location_inventory", Kind: KindShortfall}
	ErrInvalidInventoryLines      = &Error{Code: "item_list_format_mismatch", Kind: KindValidation}
	ErrLocationBusy               = &Error{Code: "location_busy", Kind: KindUnavailable}
)

// Request bodies that are not valid JSON for the endpoint, or too large.
var ErrInvalidBody = &Error{Code: "invalid_request_body", Kind: KindValidation}

// Catalog
var (
	ErrInvalidItem = &Error{Code: "invalid_item_fields", Kind: KindValidation}
	ErrNoSuchItem  = &Error{Code: "no_such_item", Kind: KindNotFound}
)

// AsError returns the first *Error in err's chain.
func AsError(err error) (*Error, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// CodeOf returns the wire code of err, or "" when err carries no named condition.
func CodeOf(err error) string {
	if de, ok := AsError(err); ok {
		return de.Code
	}
	return ""
}
