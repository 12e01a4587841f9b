// Package export reads and writes location inventory as XLSX workbooks.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/phenrril/stockroom/internal/domain"
)

const sheet = "Inventory"

var header = []any{"Item ID", "Item", "Variants", "Selection", "Quantity"}

// Row is one inventory line as it appears in the workbook.
type Row struct {
	ItemID      uuid.UUID
	ItemName    string
	Variants    domain.VariantSelection
	Description string
	Quantity    int
}

// WriteInventory writes rows to w as a single-sheet workbook. The Variants
// column holds the selection as JSON so the file can be read back.
func WriteInventory(w io.Writer, rows []Row) error {
	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	for i, r := range rows {
		variants, err := json.Marshal(r.Variants)
		if err != nil {
			return err
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := []any{r.ItemID.String(), r.ItemName, string(variants), r.Description, r.Quantity}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return err
		}
	}
	if err := f.SetColWidth(sheet, "A", "A", 38); err != nil {
		return err
	}
	return f.Write(w)
}

// ReadInventory parses a workbook produced by WriteInventory. Only the Item
// ID, Variants and Quantity columns are read; blank rows are skipped.
func ReadInventory(r io.Reader) ([]domain.StockLine, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInventoryLines, err)
	}
	defer f.Close()

	name := sheet
	if idx, _ := f.GetSheetIndex(sheet); idx < 0 {
		name = f.GetSheetName(0)
	}
	rows, err := f.GetRows(name)
	if err != nil {
		return nil, err
	}
	out := []domain.StockLine{}
	for n, row := range rows {
		if n == 0 || len(row) == 0 || strings.TrimSpace(row[0]) == "" {
			continue
		}
		if len(row) < 5 {
			return nil, fmt.Errorf("%w: row %d: expected 5 columns", domain.ErrInvalidInventoryLines, n+1)
		}
		id, err := uuid.Parse(strings.TrimSpace(row[0]))
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: item id: %v", domain.ErrInvalidInventoryLines, n+1, err)
		}
		var sel domain.VariantSelection
		if v := strings.TrimSpace(row[2]); v != "" {
			if err := json.Unmarshal([]byte(v), &sel); err != nil {
				return nil, fmt.Errorf("%w: row %d: variants: %v", domain.ErrInvalidInventoryLines, n+1, err)
			}
		}
		qty, err := strconv.Atoi(strings.TrimSpace(row[4]))
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: quantity: %v", domain.ErrInvalidInventoryLines, n+1, err)
		}
		out = append(out, domain.StockLine{ItemID: id, Variants: sel, Quantity: qty})
	}
	return out, nil
}
