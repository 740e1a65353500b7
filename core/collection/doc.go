// Package collection holds the collection data model and its relational store.
//
// A CardPrinting is one catalog printing, keyed by (set code, collector
// number, finish). A CollectionEntry records how many copies of a printing
// the user owns, plus free-text notes, and always references a stored
// printing. Entries read from one file form a Snapshot.
//
// The Store runs every phase of a workflow in its own transaction, so a
// failure while importing cannot undo an already committed catalog load.
//
// Identities have a single canonical order used by every writer: set code,
// then collector number compared numerically, then finish
// (nonfoil, foil, etched).
package collection
