package reconcile

import (
	"testing"

	"collection-manager/core/collection"

	"github.com/stretchr/testify/assert"
)

func TestBuildPlanFromResults(t *testing.T) {
	results := []ReconcileResult{
		{Key: "A|1|nonfoil", Action: ActionImport, ImportPresent: true},
		{Key: "A|2|nonfoil", Action: ActionReplace, PriorPresent: true, ImportPresent: true},
		{Key: "A|3|nonfoil", Action: ActionDrop, PriorPresent: true},
		{Key: "A|4|nonfoil", Action: ActionKeep, PriorPresent: true},
		{Key: "A|5|nonfoil", Action: ActionSeed, CatalogPresent: true},
	}
	merged := &MergedCollection{Entries: []MergedEntry{
		{Entry: collection.Entry{Quantity: 2}},
		{Entry: collection.Entry{Quantity: 5}},
	}}

	summary, actions := buildPlanFromResults(results, merged, Inputs{})

	assert.Equal(t, 5, summary.TotalItems)
	assert.Equal(t, 1, summary.Imported)
	assert.Equal(t, 1, summary.Replaced)
	assert.Equal(t, 1, summary.Dropped)
	assert.Equal(t, 1, summary.Kept)
	assert.Equal(t, 1, summary.Seeded)
	assert.Equal(t, 2, summary.OutputRows)
	assert.Equal(t, 7, summary.Quantity)

	assert.Len(t, actions, 3)
	assert.Equal(t, "present in: import", actions[0].Reason)
	assert.Equal(t, "imported entry overwrites prior entry", actions[1].Reason)
	assert.Equal(t, "prior entry absent from import", actions[2].Reason)
	assert.Len(t, summary.Fields(), 12)
}

func TestMergedCollection_Recorded(t *testing.T) {
	merged := &MergedCollection{Entries: []MergedEntry{
		{Entry: collection.Entry{Quantity: 0}},
		{Entry: collection.Entry{Quantity: 1}},
		{Entry: collection.Entry{Notes: "want"}},
	}}
	assert.Len(t, merged.Recorded(), 2)

	var empty *MergedCollection
	assert.Equal(t, 0, empty.Len())
}
