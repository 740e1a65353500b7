package collection

import (
	"fmt"
	"strings"

	"collection-manager/core/utils"
)

// Column names shared by the spreadsheet and delimited formats, in write order.
const (
	ColumnSet      = "Set"
	ColumnNumber   = "Number"
	ColumnFinish   = "Finish"
	ColumnName     = "Name"
	ColumnQuantity = "Quantity"
	ColumnNotes    = "Notes"
)

// Columns is the header written by every adapter.
var Columns = []string{ColumnSet, ColumnNumber, ColumnFinish, ColumnName, ColumnQuantity, ColumnNotes}

var requiredColumns = []string{ColumnSet, ColumnNumber, ColumnQuantity}

var columnAliases = map[string]string{
	"set":              ColumnSet,
	"set code":         ColumnSet,
	"set_code":         ColumnSet,
	"edition":          ColumnSet,
	"number":           ColumnNumber,
	"collector number": ColumnNumber,
	"collector_number": ColumnNumber,
	"#":                ColumnNumber,
	"finish":           ColumnFinish,
	"foil":             ColumnFinish,
	"name":             ColumnName,
	"card":             ColumnName,
	"card name":        ColumnName,
	"quantity":         ColumnQuantity,
	"qty":              ColumnQuantity,
	"count":            ColumnQuantity,
	"notes":            ColumnNotes,
	"note":             ColumnNotes,
	"condition":        ColumnNotes,
}

// Header maps canonical column names to cell positions.
type Header map[string]int

// MapHeader resolves a header row case-insensitively, in any column order.
// Unknown columns are ignored; Set, Number and Quantity must be present.
func MapHeader(cells []string) (Header, error) {
	h := make(Header, len(Columns))
	for i, cell := range cells {
		name := strings.ToLower(utils.CleanCell(cell))
		col, ok := columnAliases[name]
		if !ok {
			continue
		}
		if prev, dup := h[col]; dup {
			return nil, fmt.Errorf("%w: column %s appears at positions %d and %d", ErrHeader, col, prev+1, i+1)
		}
		h[col] = i
	}

	var missing []string
	for _, col := range requiredColumns {
		if _, ok := h[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing column(s) %s", ErrHeader, strings.Join(missing, ", "))
	}
	return h, nil
}

// Record extracts a record from a row of cells. Short rows yield empty values.
func (h Header) Record(row int, cells []string) Record {
	get := func(col string) string {
		i, ok := h[col]
		if !ok || i >= len(cells) {
			return ""
		}
		return cells[i]
	}
	return Record{
		Row:      row,
		SetCode:  get(ColumnSet),
		Number:   get(ColumnNumber),
		Finish:   get(ColumnFinish),
		Name:     get(ColumnName),
		Quantity: get(ColumnQuantity),
		Notes:    get(ColumnNotes),
	}
}
