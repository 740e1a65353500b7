package reconcile

import (
	"errors"
	"testing"

	"collection-manager/core/collection"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCatalog() collection.Index {
	return collection.NewIndex([]collection.CardPrinting{
		{ID: 1, SetCode: "M21", Number: "10", Finish: collection.FinishNonfoil, Name: "Basri's Solidarity"},
		{ID: 2, SetCode: "M21", Number: "2", Finish: collection.FinishNonfoil, Name: "Alpine Watchdog"},
		{ID: 3, SetCode: "M21", Number: "2", Finish: collection.FinishFoil, Name: "Alpine Watchdog"},
		{ID: 4, SetCode: "LEA", Number: "161", Finish: collection.FinishNonfoil, Name: "Lightning Bolt"},
	})
}

func entry(idx collection.Index, key string, qty int, notes string) collection.Entry {
	return collection.Entry{Printing: idx[key], Quantity: qty, Notes: notes}
}

func snapshot(source collection.Source, entries ...collection.Entry) *collection.Snapshot {
	return &collection.Snapshot{Source: source, Name: string(source), Entries: entries}
}

func keysOf(m *MergedCollection) []string {
	keys := make([]string, 0, m.Len())
	for _, e := range m.Entries {
		keys = append(keys, e.Identity().Key())
	}
	return keys
}

func TestReconcile_CreateBaseline(t *testing.T) {
	cat := testCatalog()
	plan, err := Reconcile(Inputs{Catalog: cat}, ReconcileOptions{Operation: OperationCreate})
	require.NoError(t, err)

	assert.Equal(t, []string{"LEA|161|nonfoil", "M21|2|nonfoil", "M21|2|foil", "M21|10|nonfoil"}, keysOf(plan.Collection))
	for _, e := range plan.Collection.Entries {
		assert.Zero(t, e.Quantity)
		assert.Equal(t, OriginCatalog, e.Origin)
	}
	assert.Equal(t, 4, plan.Summary.Seeded)
	assert.Empty(t, plan.Actions)
}

func TestReconcile_UpdateKeepsPriorAndSeeds(t *testing.T) {
	cat := testCatalog()
	prior := snapshot(collection.SourcePrior,
		entry(cat, "M21|2|foil", 3, "binder"),
		entry(cat, "LEA|161|nonfoil", 1, ""),
	)
	prior.Entries[0].Printing.Name = "Old Name"

	plan, err := Reconcile(Inputs{Catalog: cat, Prior: prior}, ReconcileOptions{Operation: OperationUpdate, SeedCatalog: true})
	require.NoError(t, err)

	require.Equal(t, 4, plan.Collection.Len())
	foil := plan.Collection.Entries[2]
	assert.Equal(t, "M21|2|foil", foil.Identity().Key())
	assert.Equal(t, 3, foil.Quantity)
	assert.Equal(t, "binder", foil.Notes)
	assert.Equal(t, "Alpine Watchdog", foil.Printing.Name, "names are refreshed from the catalog")
	assert.Equal(t, OriginPrior, foil.Origin)

	assert.Equal(t, 2, plan.Summary.Kept)
	assert.Equal(t, 2, plan.Summary.Seeded)
	assert.Equal(t, 4, plan.Summary.Quantity)
}

func TestReconcile_UpdateFailsOnRemovedPrinting(t *testing.T) {
	cat := testCatalog()
	prior := snapshot(collection.SourcePrior,
		entry(cat, "M21|2|foil", 3, ""),
		collection.Entry{Printing: collection.CardPrinting{ID: 9, SetCode: "OLD", Number: "1", Finish: collection.FinishNonfoil}, Quantity: 1},
	)

	_, err := Reconcile(Inputs{Catalog: cat, Prior: prior}, ReconcileOptions{Operation: OperationUpdate, SeedCatalog: true})
	require.Error(t, err)
	assert.True(t, errors.Is(err, collection.ErrIntegrity))
	assert.Contains(t, err.Error(), "OLD|1|nonfoil")
}

func TestReconcile_ImportOverwrites(t *testing.T) {
	cat := testCatalog()
	prior := snapshot(collection.SourcePrior,
		entry(cat, "M21|2|foil", 3, "binder"),
		entry(cat, "LEA|161|nonfoil", 1, "signed"),
	)
	imported := snapshot(collection.SourceImport,
		entry(cat, "M21|2|foil", 1, ""),
		entry(cat, "M21|10|nonfoil", 2, "new"),
	)

	t.Run("WithoutSeed", func(t *testing.T) {
		plan, err := Reconcile(Inputs{Catalog: cat, Prior: prior, Import: imported}, ReconcileOptions{Operation: OperationImport})
		require.NoError(t, err)

		assert.Equal(t, []string{"M21|2|foil", "M21|10|nonfoil"}, keysOf(plan.Collection))
		assert.Equal(t, 1, plan.Collection.Entries[0].Quantity, "import replaces, never sums")
		assert.Equal(t, "", plan.Collection.Entries[0].Notes)
		assert.Equal(t, 1, plan.Summary.Replaced)
		assert.Equal(t, 1, plan.Summary.Imported)
		assert.Equal(t, 1, plan.Summary.Dropped)
		require.Len(t, plan.Actions, 3)
		assert.Equal(t, ActionDrop, plan.Actions[0].Type)
		assert.Equal(t, "LEA|161|nonfoil", plan.Actions[0].Key)
	})

	t.Run("WithSeed", func(t *testing.T) {
		plan, err := Reconcile(Inputs{Catalog: cat, Prior: prior, Import: imported}, ReconcileOptions{Operation: OperationImport, SeedCatalog: true})
		require.NoError(t, err)

		require.Equal(t, 4, plan.Collection.Len())
		dropped := plan.Collection.Entries[0]
		assert.Equal(t, "LEA|161|nonfoil", dropped.Identity().Key())
		assert.Zero(t, dropped.Quantity)
		assert.Empty(t, dropped.Notes)
		assert.Equal(t, OriginCatalog, dropped.Origin)
		assert.Equal(t, 3, plan.Collection.TotalQuantity())
	})

	t.Run("PriorOptional", func(t *testing.T) {
		plan, err := Reconcile(Inputs{Catalog: cat, Import: imported}, ReconcileOptions{Operation: OperationImport})
		require.NoError(t, err)
		assert.Equal(t, 2, plan.Summary.Imported)
	})
}

func TestReconcile_ExportRecordedOnly(t *testing.T) {
	cat := testCatalog()
	prior := snapshot(collection.SourcePrior,
		entry(cat, "M21|2|foil", 3, ""),
		entry(cat, "M21|2|nonfoil", 0, ""),
		entry(cat, "M21|10|nonfoil", 0, "want"),
	)

	plan, err := Reconcile(Inputs{Catalog: cat, Prior: prior}, ReconcileOptions{Operation: OperationExport, RecordedOnly: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"M21|2|foil", "M21|10|nonfoil"}, keysOf(plan.Collection))
	assert.Equal(t, 1, plan.Summary.Omitted)
}

func TestReconcile_DuplicateWithinSnapshot(t *testing.T) {
	cat := testCatalog()
	imported := snapshot(collection.SourceImport,
		entry(cat, "M21|2|foil", 1, ""),
		entry(cat, "M21|2|foil", 2, ""),
	)

	_, err := Reconcile(Inputs{Catalog: cat, Import: imported}, ReconcileOptions{Operation: OperationImport})
	require.Error(t, err)
	assert.True(t, errors.Is(err, collection.ErrIntegrity))
	assert.Contains(t, err.Error(), "M21|2|foil")
}

func TestReconcile_ValidatesInputs(t *testing.T) {
	cat := testCatalog()
	tests := []struct {
		name string
		in   Inputs
		op   Operation
	}{
		{"UpdateWithoutPrior", Inputs{Catalog: cat}, OperationUpdate},
		{"ExportWithoutPrior", Inputs{Catalog: cat}, OperationExport},
		{"ImportWithoutImport", Inputs{Catalog: cat, Prior: snapshot(collection.SourcePrior)}, OperationImport},
		{"UpdateWithImport", Inputs{Catalog: cat, Prior: snapshot(collection.SourcePrior), Import: snapshot(collection.SourceImport)}, OperationUpdate},
		{"UnknownOperation", Inputs{Catalog: cat}, Operation("merge")},
		{"NoCatalog", Inputs{}, OperationCreate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Reconcile(tt.in, ReconcileOptions{Operation: tt.op})
			assert.Error(t, err)
		})
	}
}

func TestReconcile_Deterministic(t *testing.T) {
	cat := testCatalog()
	prior := snapshot(collection.SourcePrior,
		entry(cat, "M21|10|nonfoil", 1, ""),
		entry(cat, "LEA|161|nonfoil", 2, ""),
		entry(cat, "M21|2|foil", 3, ""),
	)

	first, err := Reconcile(Inputs{Catalog: cat, Prior: prior}, ReconcileOptions{Operation: OperationUpdate, SeedCatalog: true})
	require.NoError(t, err)
	for i := 0; i < 20; i++ {
		again, err := Reconcile(Inputs{Catalog: cat, Prior: prior}, ReconcileOptions{Operation: OperationUpdate, SeedCatalog: true})
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}
