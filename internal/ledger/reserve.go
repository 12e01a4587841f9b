// Package ledger keeps per-location stock keyed by (item, variant selection).
package ledger

import (
	"fmt"
	"slices"

	"github.com/google/uuid"

	"github.com/phenrril/stockroom/internal/domain"
)

// ShortfallError names the requested line that the available stock could not cover.
type ShortfallError struct {
	ItemID    uuid.UUID
	Variants  domain.VariantSelection
	Requested int
	Missing   int
}

func (e *ShortfallError) Error() string {
	return fmt.Sprintf("shortfall for item %s %s: requested %d, missing %d", e.ItemID, e.Variants, e.Requested, e.Missing)
}

// TryReserve deducts every requested line from a copy of lines. A request may be
// served by several matching lines if duplicates exist. On any shortfall nothing
// is returned and lines is left as it was. Lines that reach zero are dropped.
func TryReserve(lines []domain.InventoryLine, deductions []domain.StockLine) ([]domain.InventoryLine, error) {
	left := slices.Clone(lines)
	for _, d := range deductions {
		remaining := d.Quantity
		for remaining > 0 {
			i := slices.IndexFunc(left, func(l domain.InventoryLine) bool {
				return l.Quantity > 0 && l.Matches(d.ItemID, d.Variants)
			})
			if i < 0 {
				return nil, &ShortfallError{ItemID: d.ItemID, Variants: d.Variants, Requested: d.Quantity, Missing: remaining}
			}
			take := min(remaining, left[i].Quantity)
			left[i].Quantity -= take
			remaining -= take
		}
	}
	return slices.DeleteFunc(left, func(l domain.InventoryLine) bool { return l.Quantity <= 0 }), nil
}

// Merge adds every line to a copy of lines, appending a new line for an
// (item, selection) not yet present. Non-positive additions are ignored.
func Merge(lines []domain.InventoryLine, additions []domain.StockLine) []domain.InventoryLine {
	out := slices.Clone(lines)
	for _, a := range additions {
		if a.Quantity <= 0 {
			continue
		}
		i := slices.IndexFunc(out, func(l domain.InventoryLine) bool { return l.Matches(a.ItemID, a.Variants) })
		if i < 0 {
			out = append(out, domain.InventoryLine{ItemID: a.ItemID, Variants: a.Variants, Quantity: a.Quantity})
			continue
		}
		out[i].Quantity += a.Quantity
	}
	return out
}

// Normalize collapses duplicate (item, selection) lines and drops empty ones,
// keeping first-seen order.
func Normalize(lines []domain.InventoryLine) []domain.InventoryLine {
	stock := make([]domain.StockLine, 0, len(lines))
	for _, l := range lines {
		stock = append(stock, domain.StockLine{ItemID: l.ItemID, Variants: l.Variants, Quantity: l.Quantity})
	}
	return Merge(nil, stock)
}

// Totals sums quantities per (item, selection).
func Totals(lines []domain.InventoryLine) map[StockKey]int {
	out := make(map[StockKey]int, len(lines))
	for _, l := range lines {
		out[KeyOf(l.ItemID, l.Variants)] += l.Quantity
	}
	return out
}

// StockKey is the comparable form of (item, selection).
type StockKey struct {
	ItemID    uuid.UUID
	Selection string
}

func KeyOf(itemID uuid.UUID, sel domain.VariantSelection) StockKey {
	return StockKey{ItemID: itemID, Selection: sel.Key()}
}
