// Package delimited implements the delimited-text format adapters (csv, tsv).
// It shares the column contract and error policy of the spreadsheet adapter.
package delimited
