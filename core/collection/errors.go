package collection

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/multierr"
)

// Sentinel errors used to classify failures with errors.Is.
var (
	// ErrCatalog indicates the catalog source is missing, unreadable or invalid.
	ErrCatalog = errors.New("catalog error")

	// ErrResolution indicates one or more rows of a source could not be resolved.
	ErrResolution = errors.New("resolution error")

	// ErrUnresolved indicates a row references a printing absent from the catalog.
	ErrUnresolved = errors.New("unknown printing")

	// ErrDuplicate indicates a printing appears more than once in one source.
	ErrDuplicate = errors.New("duplicate printing")

	// ErrInvalidRow indicates a row value could not be parsed.
	ErrInvalidRow = errors.New("invalid row")

	// ErrHeader indicates the header row is missing or lacks required columns.
	ErrHeader = errors.New("invalid header")

	// ErrIntegrity indicates a merge would violate the one-entry-per-printing rule
	// or reference a printing the catalog does not contain.
	ErrIntegrity = errors.New("integrity violation")
)

// CatalogError is a fatal setup error raised by the catalog loader.
type CatalogError struct {
	Path    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *CatalogError) Error() string {
	msg := fmt.Sprintf("catalog %s: %s", e.Path, e.Message)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap implements errors.Unwrap
func (e *CatalogError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *CatalogError) Is(target error) bool {
	return target == ErrCatalog
}

// NewCatalogError creates a new CatalogError
func NewCatalogError(path, message string, err error) *CatalogError {
	return &CatalogError{Path: path, Message: message, Err: err}
}

// RowError describes a problem with a single row of a snapshot source.
type RowError struct {
	Row     int
	Key     string
	Message string
	Kind    error
}

// Error implements the error interface
func (e *RowError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "row %d", e.Row)
	if e.Key != "" {
		fmt.Fprintf(&b, " (%s)", e.Key)
	}
	b.WriteString(": ")
	b.WriteString(e.Message)
	return b.String()
}

// Is implements errors.Is support
func (e *RowError) Is(target error) bool {
	return target == e.Kind
}

// NewRowError creates a new RowError of the given kind.
func NewRowError(kind error, row int, key, message string) *RowError {
	return &RowError{Row: row, Key: key, Message: message, Kind: kind}
}

// ReportError aggregates every row error found while reading one source.
type ReportError struct {
	Source Source
	Name   string
	Errs   []error
}

// Error implements the error interface
func (e *ReportError) Error() string {
	return fmt.Sprintf("%s %s: %d problem(s): %v", e.Source, e.Name, len(e.Errs), multierr.Combine(e.Errs...))
}

// Unwrap exposes the individual row errors to errors.Is and errors.As.
func (e *ReportError) Unwrap() []error {
	return e.Errs
}

// Is implements errors.Is support
func (e *ReportError) Is(target error) bool {
	return target == ErrResolution
}

// Rows returns the row errors contained in the report.
func (e *ReportError) Rows() []*RowError {
	rows := make([]*RowError, 0, len(e.Errs))
	for _, err := range e.Errs {
		var rowErr *RowError
		if errors.As(err, &rowErr) {
			rows = append(rows, rowErr)
		}
	}
	return rows
}

// IntegrityError reports identities that break the merged collection invariants.
type IntegrityError struct {
	Reason string
	Keys   []string
}

// Error implements the error interface
func (e *IntegrityError) Error() string {
	return fmt.Sprintf("integrity violation: %s: %s", e.Reason, strings.Join(e.Keys, ", "))
}

// Is implements errors.Is support
func (e *IntegrityError) Is(target error) bool {
	return target == ErrIntegrity
}

// NewIntegrityError creates a new IntegrityError
func NewIntegrityError(reason string, keys []string) *IntegrityError {
	return &IntegrityError{Reason: reason, Keys: keys}
}
