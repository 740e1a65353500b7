package reconcile

import (
	"context"
	"io"

	"collection-manager/core/collection"
)

// Adapter defines a file format the collection can be read from and written to
// (e.g., "xlsx", "csv").
type Adapter interface {
	// Name returns the unique name of this adapter (e.g., "xlsx", "csv").
	Name() string

	// Extension returns the file extension including the dot.
	Extension() string

	// ReadSnapshot parses r and resolves every row against the catalog index.
	// Unresolvable rows are collected and reported together in a
	// *collection.ReportError after the whole input has been scanned.
	ReadSnapshot(ctx context.Context, r io.Reader, index collection.Index, source collection.Source, name string) (*collection.Snapshot, error)

	// WriteCollection serializes the merged collection in its given order.
	// Writing the same collection twice must produce identical bytes.
	WriteCollection(ctx context.Context, w io.Writer, merged *MergedCollection) error
}
