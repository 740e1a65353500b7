package collection

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"collection-manager/core/utils"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Finish is the surface treatment of a printing.
type Finish string

const (
	FinishNonfoil Finish = "nonfoil"
	FinishFoil    Finish = "foil"
	FinishEtched  Finish = "etched"
)

// Finishes lists every finish in sort order.
var Finishes = []Finish{FinishNonfoil, FinishFoil, FinishEtched}

// rank orders finishes nonfoil < foil < etched; unknown values sort last.
func (f Finish) rank() int {
	switch f {
	case FinishNonfoil:
		return 0
	case FinishFoil:
		return 1
	case FinishEtched:
		return 2
	default:
		return 3
	}
}

// Valid reports whether f is a known finish.
func (f Finish) Valid() bool {
	return f.rank() < 3
}

// ParseFinish normalises a finish cell. Besides the canonical names it
// accepts boolean foil flags, so "true"/"1" mean foil and ""/"false" nonfoil.
func ParseFinish(val string) (Finish, error) {
	s := strings.ToLower(utils.CleanCell(val))
	switch s {
	case "nonfoil", "non-foil", "normal", "regular":
		return FinishNonfoil, nil
	case "foil":
		return FinishFoil, nil
	case "etched":
		return FinishEtched, nil
	}
	if b, ok := utils.ToBool(s); ok {
		if b {
			return FinishFoil, nil
		}
		return FinishNonfoil, nil
	}
	return "", fmt.Errorf("unknown finish %q", val)
}

// Identity is the natural key of a printing: set code, collector number, finish.
type Identity struct {
	SetCode string
	Number  string
	Finish  Finish
}

// NewIdentity builds a normalised identity.
func NewIdentity(setCode, number string, finish Finish) Identity {
	return Identity{
		SetCode: strings.ToUpper(utils.CleanCell(setCode)),
		Number:  utils.CleanCell(number),
		Finish:  finish,
	}
}

// Key returns the string form used to index identities, e.g. "LEA|161|nonfoil".
func (id Identity) Key() string {
	return id.SetCode + "|" + id.Number + "|" + string(id.Finish)
}

func (id Identity) String() string {
	return id.Key()
}

var (
	numberMu       sync.Mutex
	numberCollator = collate.New(language.Und, collate.Numeric)
)

// compareNumbers orders collector numbers numerically ("2" < "10" < "10a"),
// falling back to byte order so distinct numbers never compare equal.
func compareNumbers(a, b string) int {
	if a == b {
		return 0
	}
	numberMu.Lock()
	c := numberCollator.CompareString(a, b)
	numberMu.Unlock()
	if c != 0 {
		return c
	}
	return strings.Compare(a, b)
}

// Compare orders identities by set code, collector number and finish.
func Compare(a, b Identity) int {
	if c := strings.Compare(a.SetCode, b.SetCode); c != 0 {
		return c
	}
	if c := compareNumbers(a.Number, b.Number); c != 0 {
		return c
	}
	ra, rb := a.Finish.rank(), b.Finish.rank()
	switch {
	case ra < rb:
		return -1
	case ra > rb:
		return 1
	}
	return strings.Compare(string(a.Finish), string(b.Finish))
}

func sortBy[T any](items []T, identity func(T) Identity) {
	sort.SliceStable(items, func(i, j int) bool {
		return Compare(identity(items[i]), identity(items[j])) < 0
	})
}
