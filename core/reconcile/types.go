package reconcile

import "collection-manager/core/collection"

// Operation is the workflow operation a reconciliation is performed for.
type Operation string

const (
	OperationCreate Operation = "create"
	OperationUpdate Operation = "update"
	OperationExport Operation = "export"
	OperationImport Operation = "import"
)

// Origin records which input a merged entry was taken from.
type Origin string

const (
	// OriginCatalog marks a zero-quantity baseline row seeded from the catalog.
	OriginCatalog Origin = "catalog"
	// OriginPrior marks an entry carried over from the existing spreadsheet.
	OriginPrior Origin = "prior"
	// OriginImport marks an entry taken from the imported file.
	OriginImport Origin = "import"
)

// ReconcileResult represents the reconciliation output for a single printing.
type ReconcileResult struct {
	// Key is the identity key, e.g. "M21|2|foil".
	Key string `json:"key"`

	// Identity is the printing identity the key was built from.
	Identity collection.Identity `json:"-"`

	// Name is the catalog name of the printing.
	Name string `json:"name"`

	// CatalogPresent indicates whether the printing exists in the catalog.
	CatalogPresent bool `json:"catalog_present"`

	// PriorPresent indicates whether the prior spreadsheet lists the printing.
	PriorPresent bool `json:"prior_present"`

	// ImportPresent indicates whether the imported file lists the printing.
	ImportPresent bool `json:"import_present"`

	// Action is what the merge does with the printing.
	Action ActionType `json:"action"`
}

// ActionType represents what the merge does with one printing.
type ActionType string

const (
	// ActionImport adds an entry found only in the imported file.
	ActionImport ActionType = "import"
	// ActionReplace overwrites a prior entry with the imported one.
	ActionReplace ActionType = "replace"
	// ActionDrop discards a prior entry missing from the imported file.
	ActionDrop ActionType = "drop"
	// ActionKeep carries a prior entry over unchanged.
	ActionKeep ActionType = "keep"
	// ActionOmit leaves an unrecorded prior entry out of the output.
	ActionOmit ActionType = "omit"
	// ActionSeed adds a zero-quantity catalog baseline row.
	ActionSeed ActionType = "seed"
)

// Action represents a planned change to the collection.
type Action struct {
	// Type specifies the action to perform.
	Type ActionType `json:"type"`

	// Key is the identity key.
	Key string `json:"key"`

	// Reason explains why this action is needed.
	Reason string `json:"reason"`
}

// MergedEntry is one row of the merged collection.
type MergedEntry struct {
	collection.Entry
	Origin Origin
}

// MergedCollection is the reconciled entry set handed to a writer.
// It holds at most one entry per identity, in canonical identity order.
type MergedCollection struct {
	Operation Operation
	Entries   []MergedEntry
}

// ReconcilePlan contains reconciliation results, planned actions and the
// merged collection they produce.
type ReconcilePlan struct {
	// Results contains per-printing reconciliation data.
	Results []ReconcileResult `json:"results"`

	// Actions contains the changes applied relative to the prior state.
	Actions []Action `json:"actions"`

	// Summary provides aggregate counts.
	Summary PlanSummary `json:"summary"`

	// Collection is the merged output.
	Collection *MergedCollection `json:"-"`
}

// PlanSummary provides aggregate statistics for a reconcile plan.
type PlanSummary struct {
	// TotalItems is the number of unique identities considered.
	TotalItems int `json:"total_items"`

	// CatalogItems counts printings in the catalog.
	CatalogItems int `json:"catalog_items"`

	// PriorItems counts entries in the prior snapshot.
	PriorItems int `json:"prior_items"`

	// ImportItems counts entries in the imported snapshot.
	ImportItems int `json:"import_items"`

	Imported int `json:"imported"`
	Replaced int `json:"replaced"`
	Dropped  int `json:"dropped"`
	Kept     int `json:"kept"`
	Omitted  int `json:"omitted"`
	Seeded   int `json:"seeded"`

	// OutputRows is the number of rows in the merged collection.
	OutputRows int `json:"output_rows"`

	// Quantity is the sum of quantities in the merged collection.
	Quantity int `json:"quantity"`
}

// ReconcileOptions controls how inputs are merged.
type ReconcileOptions struct {
	// Operation selects the precedence rules.
	Operation Operation

	// SeedCatalog adds a zero-quantity row for every catalog printing the
	// collection does not mention. Always on for create.
	SeedCatalog bool

	// RecordedOnly leaves out entries with zero quantity and no notes.
	RecordedOnly bool
}

// Inputs bundles the sources of one reconciliation.
type Inputs struct {
	// Catalog is the freshly loaded catalog index.
	Catalog collection.Index

	// Prior is the existing spreadsheet state, if any.
	Prior *collection.Snapshot

	// Import is the newly imported file, if any.
	Import *collection.Snapshot
}
