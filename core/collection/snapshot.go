package collection

import (
	"fmt"
	"strings"

	"collection-manager/core/utils"
)

// Source identifies where a snapshot's entries were read from.
type Source string

const (
	// SourcePrior is the existing spreadsheet.
	SourcePrior Source = "prior"
	// SourceImport is the delimited file being imported.
	SourceImport Source = "import"
)

// Entry is one resolved collection row.
type Entry struct {
	Printing CardPrinting
	Quantity int
	Notes    string
	// Row is the 1-based row number in the source file, header included.
	Row int
}

// Identity returns the identity of the entry's printing.
func (e Entry) Identity() Identity {
	return e.Printing.Identity()
}

// Recorded reports whether the user has recorded anything for the entry.
func (e Entry) Recorded() bool {
	return e.Quantity > 0 || strings.TrimSpace(e.Notes) != ""
}

// Snapshot is the set of entries read from one source.
// It is not modified after it has been built.
type Snapshot struct {
	Source  Source
	Name    string
	Entries []Entry
}

// Len returns the number of entries; a nil snapshot is empty.
func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Entries)
}

// Record holds the raw cell values of one source row.
type Record struct {
	Row      int
	SetCode  string
	Number   string
	Finish   string
	Name     string
	Quantity string
	Notes    string
}

// Blank reports whether every cell of the record is empty.
func (r Record) Blank() bool {
	for _, v := range []string{r.SetCode, r.Number, r.Finish, r.Name, r.Quantity, r.Notes} {
		if utils.CleanCell(v) != "" {
			return false
		}
	}
	return true
}

// BuildSnapshot resolves records against the catalog index.
// Every problem is collected; if any row fails the whole source is rejected
// with a *ReportError listing all of them. Rows whose printing is not in the
// catalog are reported whatever their quantity.
func BuildSnapshot(source Source, name string, records []Record, index Index) (*Snapshot, error) {
	snap := &Snapshot{Source: source, Name: name}
	var errs []error
	seen := make(map[string]int, len(records))

	for _, rec := range records {
		if rec.Blank() {
			continue
		}

		setCode := utils.CleanCell(rec.SetCode)
		number := utils.CleanCell(rec.Number)
		if setCode == "" || number == "" {
			errs = append(errs, NewRowError(ErrInvalidRow, rec.Row, "", "set and number are required"))
			continue
		}

		finish, err := ParseFinish(rec.Finish)
		if err != nil {
			errs = append(errs, NewRowError(ErrInvalidRow, rec.Row, "", err.Error()))
			continue
		}
		id := NewIdentity(setCode, number, finish)
		key := id.Key()

		qty, qtyErr := utils.ParseQuantity(rec.Quantity)
		if qtyErr != nil {
			errs = append(errs, NewRowError(ErrInvalidRow, rec.Row, key, qtyErr.Error()))
		}

		printing, ok := index.Lookup(id)
		if !ok {
			errs = append(errs, NewRowError(ErrUnresolved, rec.Row, key, "printing not found in catalog"))
			continue
		}

		if first, dup := seen[key]; dup {
			errs = append(errs, NewRowError(ErrDuplicate, rec.Row, key, fmt.Sprintf("already listed on row %d", first)))
			continue
		}
		seen[key] = rec.Row

		if qtyErr != nil {
			continue
		}

		snap.Entries = append(snap.Entries, Entry{
			Printing: printing,
			Quantity: qty,
			Notes:    strings.TrimSpace(rec.Notes),
			Row:      rec.Row,
		})
	}

	if len(errs) > 0 {
		return nil, &ReportError{Source: source, Name: name, Errs: errs}
	}
	return snap, nil
}
