package delimited

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"

	"collection-manager/core/collection"
	"collection-manager/core/reconcile"
)

// Adapter reads and writes the collection as delimited text.
type Adapter struct {
	name  string
	ext   string
	comma rune
}

// NewAdapter creates the comma-separated "csv" adapter.
func NewAdapter() *Adapter {
	return &Adapter{name: "csv", ext: ".csv", comma: ','}
}

// NewTabAdapter creates the tab-separated "tsv" adapter.
func NewTabAdapter() *Adapter {
	return &Adapter{name: "tsv", ext: ".tsv", comma: '\t'}
}

// Name returns the format name used to select the adapter.
func (a *Adapter) Name() string {
	return a.name
}

// Extension returns the file extension.
func (a *Adapter) Extension() string {
	return a.ext
}

// ReadSnapshot parses delimited text with a header row and resolves every
// record against the catalog. Row numbers are the line a record starts on.
func (a *Adapter) ReadSnapshot(ctx context.Context, r io.Reader, index collection.Index, source collection.Source, name string) (*collection.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cr := csv.NewReader(r)
	cr.Comma = a.comma
	cr.FieldsPerRecord = -1

	headerCells, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %s is empty", collection.ErrHeader, name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header of %s: %w", name, err)
	}
	header, err := collection.MapHeader(headerCells)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	var records []collection.Record
	for {
		cells, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", name, err)
		}
		line, _ := cr.FieldPos(0)
		records = append(records, header.Record(line, cells))
	}

	return collection.BuildSnapshot(source, name, records, index)
}

// WriteCollection writes a header and one record per merged entry in
// collection order.
func (a *Adapter) WriteCollection(ctx context.Context, w io.Writer, merged *reconcile.MergedCollection) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	cw.Comma = a.comma

	if err := cw.Write(collection.Columns); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, e := range merged.Entries {
		record := []string{
			e.Printing.SetCode,
			e.Printing.Number,
			string(e.Printing.Finish),
			e.Printing.Name,
			strconv.Itoa(e.Quantity),
			e.Notes,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write %s: %w", e.Identity().Key(), err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush delimited output: %w", err)
	}
	return nil
}

var _ reconcile.Adapter = (*Adapter)(nil)
