package workflow

import (
	"context"
	"time"

	"collection-manager/core/collection"
	"collection-manager/core/reconcile"
)

// State is a step of the workflow state machine.
type State string

const (
	StateIdle          State = "idle"
	StateCatalogLoaded State = "catalog_loaded"
	StatePriorLoaded   State = "prior_loaded"
	StateMerged        State = "merged"
	StateWritten       State = "written"
	StateFailed        State = "failed"
)

// CatalogLoader supplies the catalog printings for a run.
type CatalogLoader interface {
	Load(ctx context.Context) ([]collection.CardPrinting, error)
}

// Request describes one workflow invocation.
type Request struct {
	// RunID identifies the run in logs and reports.
	RunID string

	// Operation is create, update, export or import.
	Operation reconcile.Operation

	// Spreadsheet is the user's collection workbook.
	Spreadsheet string

	// File is the delimited file exported to or imported from.
	File string

	// Format names the delimited format adapter; defaults to "csv".
	Format string
}

// PhaseDuration records how long one phase took.
type PhaseDuration struct {
	Phase    string        `json:"phase"`
	Duration time.Duration `json:"duration"`
}

// Report summarises a run.
type Report struct {
	RunID     string                   `json:"run_id"`
	Operation reconcile.Operation      `json:"operation"`
	State     State                    `json:"state"`
	History   []State                  `json:"history"`
	Target    string                   `json:"target"`
	Backup    string                   `json:"backup,omitempty"`
	Summary   reconcile.PlanSummary    `json:"summary"`
	Plan      *reconcile.ReconcilePlan `json:"-"`
	Durations []PhaseDuration          `json:"durations"`
}
