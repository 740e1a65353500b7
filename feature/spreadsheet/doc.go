// Package spreadsheet implements the xlsx format adapter.
//
// Reading accepts any column order and resolves every row against the
// catalog, reporting all unresolvable rows at once. Writing produces a single
// "Collection" sheet in canonical identity order with fixed document
// properties, so an unchanged collection is written byte for byte the same.
package spreadsheet
