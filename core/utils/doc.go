// Package utils provides small conversion helpers shared by the format
// adapters. It turns raw spreadsheet cells and delimited fields into the
// typed values the collection model expects.
package utils
