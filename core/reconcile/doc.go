// Package reconcile merges the catalog, the prior spreadsheet state and an
// imported file into one MergedCollection.
//
// # Architecture
//
// The engine indexes each input by printing identity, builds the union of
// keys and decides one action per key:
//
//   - import: only the imported file lists the printing
//   - replace: the imported entry overwrites the prior one
//   - drop: a prior entry the import no longer lists (import only)
//   - keep: a prior entry carried over (update, export)
//   - seed: a zero-quantity catalog row (create, or when seeding)
//   - omit: an unrecorded entry left out of an export
//
// Duplicate identities inside one input and entries whose printing is not in
// the catalog are IntegrityErrors; the engine never picks a side.
//
// # Adapters
//
// File formats implement Adapter. Readers resolve rows against the catalog
// index and report every bad row at once; writers emit the merged collection
// in its canonical order.
//
// # Usage Example
//
//	plan, err := reconcile.Reconcile(reconcile.Inputs{
//	    Catalog: index,
//	    Prior:   prior,
//	    Import:  imported,
//	}, reconcile.ReconcileOptions{Operation: reconcile.OperationImport, SeedCatalog: true})
package reconcile
