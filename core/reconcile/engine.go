package reconcile

import (
	"fmt"
	"sort"

	"collection-manager/core/collection"
)

// Reconcile merges the catalog with the prior and imported snapshots under
// the precedence rules of the requested operation. Identical inputs always
// produce an identical plan.
func Reconcile(in Inputs, opts ReconcileOptions) (*ReconcilePlan, error) {
	if err := validateInputs(in, opts); err != nil {
		return nil, err
	}
	if opts.Operation == OperationCreate {
		// Create starts from the bare catalog.
		in.Prior, in.Import = nil, nil
		opts.SeedCatalog = true
	}

	priorIndex, err := indexSnapshot(in.Prior)
	if err != nil {
		return nil, err
	}
	importIndex, err := indexSnapshot(in.Import)
	if err != nil {
		return nil, err
	}
	if err := checkResolvable(in.Catalog, priorIndex, importIndex); err != nil {
		return nil, err
	}

	// Build union of all keys
	unionKeys := buildUnion(in.Catalog, priorIndex, importIndex, opts.SeedCatalog)

	// Build results for each key
	results := make([]ReconcileResult, 0, len(unionKeys))
	for key := range unionKeys {
		results = append(results, buildResult(key, in.Catalog, priorIndex, importIndex, opts))
	}

	// Sort results by identity for deterministic output
	sort.Slice(results, func(i, j int) bool {
		return collection.Compare(results[i].Identity, results[j].Identity) < 0
	})

	merged := buildCollection(results, in.Catalog, priorIndex, importIndex, opts)
	if err := assertUnique(merged); err != nil {
		return nil, err
	}

	summary, actions := buildPlanFromResults(results, merged, in)
	return &ReconcilePlan{
		Results:    results,
		Actions:    actions,
		Summary:    summary,
		Collection: merged,
	}, nil
}

func validateInputs(in Inputs, opts ReconcileOptions) error {
	switch opts.Operation {
	case OperationCreate:
	case OperationUpdate, OperationExport:
		if in.Prior == nil {
			return fmt.Errorf("%s requires a prior snapshot", opts.Operation)
		}
		if in.Import != nil {
			return fmt.Errorf("%s does not take an import snapshot", opts.Operation)
		}
	case OperationImport:
		if in.Import == nil {
			return fmt.Errorf("%s requires an import snapshot", opts.Operation)
		}
	default:
		return fmt.Errorf("unknown operation %q", opts.Operation)
	}
	if in.Catalog == nil {
		return fmt.Errorf("%s requires a catalog index", opts.Operation)
	}
	return nil
}

// indexSnapshot indexes entries by identity key. Two entries for one
// identity are never merged or picked between.
func indexSnapshot(snap *collection.Snapshot) (map[string]collection.Entry, error) {
	index := make(map[string]collection.Entry, snap.Len())
	if snap == nil {
		return index, nil
	}

	var dups []string
	for _, e := range snap.Entries {
		key := e.Identity().Key()
		if _, exists := index[key]; exists {
			dups = append(dups, key)
			continue
		}
		index[key] = e
	}
	if len(dups) > 0 {
		sort.Strings(dups)
		return nil, collection.NewIntegrityError(
			fmt.Sprintf("%s snapshot lists the same printing more than once", snap.Source), dups)
	}
	return index, nil
}

// checkResolvable fails when any entry references a printing the catalog
// no longer contains.
func checkResolvable(catalog collection.Index, indexes ...map[string]collection.Entry) error {
	missing := make(map[string]struct{})
	for _, index := range indexes {
		for key := range index {
			if _, ok := catalog[key]; !ok {
				missing[key] = struct{}{}
			}
		}
	}
	if len(missing) == 0 {
		return nil
	}

	keys := make([]string, 0, len(missing))
	for key := range missing {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return collection.NewIntegrityError("entries reference printings missing from the catalog", keys)
}

// buildUnion creates a union of keys from the snapshots and, when seeding,
// the catalog.
func buildUnion(catalog collection.Index, prior, imported map[string]collection.Entry, seed bool) map[string]struct{} {
	union := make(map[string]struct{}, len(prior)+len(imported))

	if seed {
		for key := range catalog {
			union[key] = struct{}{}
		}
	}
	for key := range prior {
		union[key] = struct{}{}
	}
	for key := range imported {
		union[key] = struct{}{}
	}

	return union
}

// buildResult creates a ReconcileResult for a single key.
func buildResult(key string, catalog collection.Index, prior, imported map[string]collection.Entry, opts ReconcileOptions) ReconcileResult {
	printing, catalogPresent := catalog[key]
	priorEntry, priorPresent := prior[key]
	_, importPresent := imported[key]

	result := ReconcileResult{
		Key:            key,
		Identity:       printing.Identity(),
		Name:           printing.Name,
		CatalogPresent: catalogPresent,
		PriorPresent:   priorPresent,
		ImportPresent:  importPresent,
	}

	switch {
	case importPresent && priorPresent:
		result.Action = ActionReplace
	case importPresent:
		result.Action = ActionImport
	case priorPresent && opts.Operation == OperationImport:
		result.Action = ActionDrop
	case priorPresent && opts.RecordedOnly && !priorEntry.Recorded():
		result.Action = ActionOmit
	case priorPresent:
		result.Action = ActionKeep
	default:
		result.Action = ActionSeed
	}

	return result
}

// buildCollection materialises the merged entries from sorted results.
func buildCollection(results []ReconcileResult, catalog collection.Index, prior, imported map[string]collection.Entry, opts ReconcileOptions) *MergedCollection {
	merged := &MergedCollection{
		Operation: opts.Operation,
		Entries:   make([]MergedEntry, 0, len(results)),
	}

	for _, result := range results {
		printing := catalog[result.Key]

		var entry MergedEntry
		switch result.Action {
		case ActionImport, ActionReplace:
			entry = MergedEntry{Entry: imported[result.Key], Origin: OriginImport}
		case ActionKeep:
			entry = MergedEntry{Entry: prior[result.Key], Origin: OriginPrior}
		case ActionDrop:
			if !opts.SeedCatalog {
				continue
			}
			// The prior quantity and notes are discarded; only the baseline row remains.
			entry = MergedEntry{Entry: collection.Entry{}, Origin: OriginCatalog}
		case ActionSeed:
			entry = MergedEntry{Entry: collection.Entry{}, Origin: OriginCatalog}
		default:
			continue
		}

		if opts.RecordedOnly && !entry.Recorded() {
			continue
		}

		// Catalog fields such as the card name are refreshed on every merge.
		entry.Printing = printing
		merged.Entries = append(merged.Entries, entry)
	}

	return merged
}

// assertUnique verifies the one-entry-per-identity invariant of the output.
func assertUnique(merged *MergedCollection) error {
	seen := make(map[string]struct{}, len(merged.Entries))
	var dups []string
	for _, e := range merged.Entries {
		key := e.Identity().Key()
		if _, exists := seen[key]; exists {
			dups = append(dups, key)
			continue
		}
		seen[key] = struct{}{}
	}
	if len(dups) > 0 {
		return collection.NewIntegrityError("merged collection lists the same printing more than once", dups)
	}
	return nil
}
