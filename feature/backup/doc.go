// Package backup protects spreadsheets from partial or unwanted overwrites.
//
// Targets are written with WriteAtomic, so a failed write never leaves a
// half-written file behind. Before an overwrite the Manager copies the
// existing file aside: imports keep the copy as a timestamped backup
// (optionally mirrored to object storage), while create and update only hold
// it until the write has succeeded.
package backup
