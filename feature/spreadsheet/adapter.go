package spreadsheet

import (
	"context"
	"fmt"
	"io"

	"collection-manager/core/collection"
	"collection-manager/core/reconcile"

	"github.com/xuri/excelize/v2"
)

// SheetName is the sheet written by the adapter and preferred when reading.
const SheetName = "Collection"

// fixedTimestamp is stamped into the document properties so repeated writes
// of the same collection produce identical files.
const fixedTimestamp = "2000-01-01T00:00:00Z"

// Adapter reads and writes the collection as an xlsx workbook.
type Adapter struct{}

// NewAdapter creates a new spreadsheet adapter.
func NewAdapter() *Adapter {
	return &Adapter{}
}

// Name returns the adapter name.
func (a *Adapter) Name() string {
	return "xlsx"
}

// Extension returns the file extension.
func (a *Adapter) Extension() string {
	return ".xlsx"
}

// ReadSnapshot reads the Collection sheet, or the first sheet when there is
// none, and resolves every row against the catalog.
func (a *Adapter) ReadSnapshot(ctx context.Context, r io.Reader, index collection.Index, source collection.Source, name string) (*collection.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", name, err)
	}
	defer f.Close()

	sheet := SheetName
	if idx, err := f.GetSheetIndex(SheetName); err != nil || idx < 0 {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("workbook %s has no sheets", name)
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: sheet %s of %s is empty", collection.ErrHeader, sheet, name)
	}

	header, err := collection.MapHeader(rows[0])
	if err != nil {
		return nil, fmt.Errorf("sheet %s of %s: %w", sheet, name, err)
	}

	records := make([]collection.Record, 0, len(rows)-1)
	for rowIdx := 1; rowIdx < len(rows); rowIdx++ {
		records = append(records, header.Record(rowIdx+1, rows[rowIdx]))
	}

	return collection.BuildSnapshot(source, name, records, index)
}

// WriteCollection writes one row per merged entry, in collection order, to a
// single Collection sheet.
func (a *Adapter) WriteCollection(ctx context.Context, w io.Writer, merged *reconcile.MergedCollection) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}
	if err := f.SetDocProps(&excelize.DocProperties{
		Creator:        "collection-manager",
		LastModifiedBy: "collection-manager",
		Title:          "Card collection",
		Created:        fixedTimestamp,
		Modified:       fixedTimestamp,
	}); err != nil {
		return fmt.Errorf("failed to set document properties: %w", err)
	}

	sw, err := f.NewStreamWriter(SheetName)
	if err != nil {
		return fmt.Errorf("failed to create stream writer: %w", err)
	}

	header := make([]interface{}, len(collection.Columns))
	for i, col := range collection.Columns {
		header[i] = col
	}
	if err := sw.SetRow("A1", header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, e := range merged.Entries {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{
			e.Printing.SetCode,
			e.Printing.Number,
			string(e.Printing.Finish),
			e.Printing.Name,
			e.Quantity,
			e.Notes,
		}
		if err := sw.SetRow(cell, row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("failed to flush sheet: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

var _ reconcile.Adapter = (*Adapter)(nil)
