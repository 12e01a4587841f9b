// Package currency holds the static conversion table used to price orders.
package currency

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/shopspring/decimal"
)

//go:embed currencies.json
var defaultTable []byte

// Currency rates are expressed against a common base: converting an amount
// from A to B multiplies by B.ConversionRate / A.ConversionRate.
type Currency struct {
	Code           string          `json:"code"`
	Name           string          `json:"name"`
	Symbol         string          `json:"symbol"`
	DecimalDigits  int32           `json:"decimal_digits"`
	ConversionRate decimal.Decimal `json:"conversion_rate"`
}

// Round rounds d to the currency's precision.
func (c Currency) Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(c.DecimalDigits)
}

type Table struct {
	byCode map[string]Currency
}

// Default returns the table shipped with the binary.
func Default() *Table {
	t, err := Parse(defaultTable)
	if err != nil {
		panic(fmt.Sprintf("currency: embedded table: %v", err))
	}
	return t
}

// Load reads a table from path, or returns Default when path is empty.
func Load(path string) (*Table, error) {
	if strings.TrimSpace(path) == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("currency: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes a JSON object keyed by currency code.
func Parse(data []byte) (*Table, error) {
	var raw map[string]Currency
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("currency: decode table: %w", err)
	}
	t := &Table{byCode: make(map[string]Currency, len(raw))}
	for code, c := range raw {
		code = strings.ToUpper(strings.TrimSpace(code))
		if !c.ConversionRate.IsPositive() {
			return nil, fmt.Errorf("currency: %s: conversion rate must be positive", code)
		}
		if c.DecimalDigits < 0 {
			return nil, fmt.Errorf("currency: %s: negative decimal digits", code)
		}
		c.Code = code
		t.byCode[code] = c
	}
	return t, nil
}

func (t *Table) Lookup(code string) (Currency, bool) {
	c, ok := t.byCode[code]
	return c, ok
}

func (t *Table) All() []Currency {
	out := make([]Currency, 0, len(t.byCode))
	for _, c := range t.byCode {
		out = append(out, c)
	}
	slices.SortFunc(out, func(a, b Currency) int { return strings.Compare(a.Code, b.Code) })
	return out
}

// Rate is the multiplier converting an amount in from into to.
func (t *Table) Rate(from, to string) (decimal.Decimal, error) {
	f, ok := t.Lookup(from)
	if !ok {
		return decimal.Zero, fmt.Errorf("currency: unknown code %q", from)
	}
	c, ok := t.Lookup(to)
	if !ok {
		return decimal.Zero, fmt.Errorf("currency: unknown code %q", to)
	}
	if f.Code == c.Code {
		return decimal.NewFromInt(1), nil
	}
	return c.ConversionRate.Div(f.ConversionRate), nil
}

// Convert converts amount without rounding.
func (t *Table) Convert(amount decimal.Decimal, from, to string) (decimal.Decimal, error) {
	rate, err := t.Rate(from, to)
	if err != nil {
		return decimal.Zero, err
	}
	return amount.Mul(rate), nil
}
