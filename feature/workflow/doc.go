// Package workflow runs the create, update, export and import operations.
//
// Each run moves through the states idle, catalog_loaded, prior_loaded,
// merged and written, or ends in failed. Every read phase is committed to the
// store on its own, and the target file is written atomically only after the
// merge succeeded, under a backup that is restored if the write fails.
package workflow
