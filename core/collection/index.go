package collection

// Index maps identity keys to catalog printings.
type Index map[string]CardPrinting

// NewIndex indexes printings by identity key. Later duplicates overwrite
// earlier ones; the catalog loader rejects duplicates before this point.
func NewIndex(printings []CardPrinting) Index {
	idx := make(Index, len(printings))
	for _, p := range printings {
		idx[p.Identity().Key()] = p
	}
	return idx
}

// Lookup resolves an identity to its printing.
func (idx Index) Lookup(id Identity) (CardPrinting, bool) {
	p, ok := idx[id.Key()]
	return p, ok
}

// SortPrintings sorts printings in place into canonical identity order.
func SortPrintings(printings []CardPrinting) {
	sortBy(printings, func(p CardPrinting) Identity { return p.Identity() })
}
