package reconcile

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Len returns the number of merged entries.
func (m *MergedCollection) Len() int {
	if m == nil {
		return 0
	}
	return len(m.Entries)
}

// Recorded returns the entries with a quantity or notes, in order.
func (m *MergedCollection) Recorded() []MergedEntry {
	var out []MergedEntry
	for _, e := range m.Entries {
		if e.Recorded() {
			out = append(out, e)
		}
	}
	return out
}

// TotalQuantity sums the quantities of all entries.
func (m *MergedCollection) TotalQuantity() int {
	total := 0
	for _, e := range m.Entries {
		total += e.Quantity
	}
	return total
}

// Fields returns zap fields describing the plan summary.
func (s PlanSummary) Fields() []zap.Field {
	return []zap.Field{
		zap.Int("total_items", s.TotalItems),
		zap.Int("catalog_items", s.CatalogItems),
		zap.Int("prior_items", s.PriorItems),
		zap.Int("import_items", s.ImportItems),
		zap.Int("imported", s.Imported),
		zap.Int("replaced", s.Replaced),
		zap.Int("dropped", s.Dropped),
		zap.Int("kept", s.Kept),
		zap.Int("omitted", s.Omitted),
		zap.Int("seeded", s.Seeded),
		zap.Int("output_rows", s.OutputRows),
		zap.Int("quantity", s.Quantity),
	}
}

// buildPlanFromResults generates a summary and the list of changes relative
// to the prior state. Keep and seed results are counted but produce no action.
func buildPlanFromResults(results []ReconcileResult, merged *MergedCollection, in Inputs) (PlanSummary, []Action) {
	var summary PlanSummary
	var actions []Action

	summary.TotalItems = len(results)
	summary.CatalogItems = len(in.Catalog)
	summary.PriorItems = in.Prior.Len()
	summary.ImportItems = in.Import.Len()
	summary.OutputRows = merged.Len()
	summary.Quantity = merged.TotalQuantity()

	for _, result := range results {
		switch result.Action {
		case ActionImport:
			summary.Imported++
		case ActionReplace:
			summary.Replaced++
		case ActionDrop:
			summary.Dropped++
		case ActionKeep:
			summary.Kept++
			continue
		case ActionOmit:
			summary.Omitted++
		case ActionSeed:
			summary.Seeded++
			continue
		}

		actions = append(actions, Action{
			Type:   result.Action,
			Key:    result.Key,
			Reason: getReason(result),
		})
	}

	return summary, actions
}

// getReason builds a reason string for an action.
func getReason(result ReconcileResult) string {
	var present []string
	if result.PriorPresent {
		present = append(present, "prior")
	}
	if result.ImportPresent {
		present = append(present, "import")
	}

	switch result.Action {
	case ActionReplace:
		return "imported entry overwrites prior entry"
	case ActionDrop:
		return "prior entry absent from import"
	case ActionOmit:
		return "nothing recorded"
	}
	return fmt.Sprintf("present in: %s", strings.Join(present, ", "))
}
