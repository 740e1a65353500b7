package workflow

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"collection-manager/core/collection"
	"collection-manager/core/reconcile"
	"collection-manager/feature/backup"
	"collection-manager/feature/delimited"
	"collection-manager/feature/spreadsheet"

	"go.uber.org/zap"
)

// DefaultFormat is the delimited format used when a request names none.
const DefaultFormat = "csv"

// Orchestrator sequences the phases of one operation over a single store
// session. An Orchestrator runs once; create a new one per invocation.
type Orchestrator struct {
	store      *collection.Store
	loader     CatalogLoader
	backups    *backup.Manager
	logger     *zap.Logger
	debugStats bool

	sheet   reconcile.Adapter
	formats map[string]reconcile.Adapter

	state     State
	history   []State
	durations []PhaseDuration
}

// NewOrchestrator creates a new orchestrator with the xlsx spreadsheet adapter
// and the csv and tsv formats registered.
func NewOrchestrator(store *collection.Store, loader CatalogLoader, backups *backup.Manager, logger *zap.Logger, debugStats bool) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	o := &Orchestrator{
		store:      store,
		loader:     loader,
		backups:    backups,
		logger:     logger,
		debugStats: debugStats,
		sheet:      spreadsheet.NewAdapter(),
		formats:    make(map[string]reconcile.Adapter),
		state:      StateIdle,
		history:    []State{StateIdle},
	}
	o.RegisterFormat(delimited.NewAdapter())
	o.RegisterFormat(delimited.NewTabAdapter())
	return o
}

// RegisterFormat makes a delimited format available to export and import.
func (o *Orchestrator) RegisterFormat(a reconcile.Adapter) {
	o.formats[a.Name()] = a
}

// State returns the current state.
func (o *Orchestrator) State() State {
	return o.state
}

// Run executes the request. The returned report is never nil, even on error.
// The target file is only written once the merge has succeeded.
func (o *Orchestrator) Run(ctx context.Context, req Request) (report *Report, err error) {
	report = &Report{RunID: req.RunID, Operation: req.Operation}
	defer func() {
		if err != nil {
			o.transition(StateFailed)
			o.logger.Error("Workflow failed", zap.String("state", string(o.state)), zap.Error(err))
		}
		report.State = o.state
		report.History = append([]State(nil), o.history...)
		report.Durations = append([]PhaseDuration(nil), o.durations...)
		if o.debugStats {
			o.logDurations()
		}
	}()

	if o.state != StateIdle {
		return report, fmt.Errorf("orchestrator already ran (state %s)", o.state)
	}

	format, err := o.validate(req)
	if err != nil {
		return report, err
	}

	index, err := o.loadCatalog(ctx)
	if err != nil {
		return report, err
	}
	o.transition(StateCatalogLoaded)

	inputs := reconcile.Inputs{Catalog: index}
	switch req.Operation {
	case reconcile.OperationUpdate, reconcile.OperationExport:
		inputs.Prior, err = o.readSnapshot(ctx, o.sheet, req.Spreadsheet, collection.SourcePrior, index)
		if err != nil {
			return report, err
		}
		o.transition(StatePriorLoaded)

	case reconcile.OperationImport:
		if _, statErr := os.Stat(req.Spreadsheet); statErr == nil {
			inputs.Prior, err = o.readSnapshot(ctx, o.sheet, req.Spreadsheet, collection.SourcePrior, index)
			if err != nil {
				return report, err
			}
		} else if !errors.Is(statErr, os.ErrNotExist) {
			return report, fmt.Errorf("failed to stat %s: %w", req.Spreadsheet, statErr)
		}
		inputs.Import, err = o.readSnapshot(ctx, format, req.File, collection.SourceImport, index)
		if err != nil {
			return report, err
		}
		o.transition(StatePriorLoaded)
	}

	var plan *reconcile.ReconcilePlan
	err = o.timed("merge", func() error {
		var mergeErr error
		plan, mergeErr = reconcile.Reconcile(inputs, reconcile.ReconcileOptions{
			Operation:    req.Operation,
			SeedCatalog:  req.Operation != reconcile.OperationExport,
			RecordedOnly: req.Operation == reconcile.OperationExport,
		})
		return mergeErr
	})
	if err != nil {
		return report, err
	}
	report.Plan = plan
	report.Summary = plan.Summary
	o.transition(StateMerged)
	o.logger.Info("Reconcile plan", plan.Summary.Fields()...)

	target, writer := req.Spreadsheet, o.sheet
	if req.Operation == reconcile.OperationExport {
		target, writer = req.File, format
	}
	report.Target = target

	backupPath, err := o.write(ctx, req.Operation, target, writer, plan.Collection)
	report.Backup = backupPath
	if err != nil {
		return report, err
	}
	o.transition(StateWritten)

	o.logger.Info("Workflow complete",
		zap.String("target", target),
		zap.Int("rows", plan.Collection.Len()),
		zap.Int("recorded", len(plan.Collection.Recorded())),
		zap.String("backup", backupPath),
	)
	return report, nil
}

func (o *Orchestrator) validate(req Request) (reconcile.Adapter, error) {
	if req.Spreadsheet == "" {
		return nil, errors.New("spreadsheet path is required")
	}
	if !hasExtension(req.Spreadsheet, o.sheet.Extension()) {
		return nil, fmt.Errorf("spreadsheet %s must have the %s extension", req.Spreadsheet, o.sheet.Extension())
	}

	switch req.Operation {
	case reconcile.OperationCreate, reconcile.OperationUpdate:
		return nil, nil
	case reconcile.OperationExport, reconcile.OperationImport:
		if req.File == "" {
			return nil, fmt.Errorf("%s requires a file path", req.Operation)
		}
		name := req.Format
		if name == "" {
			name = DefaultFormat
		}
		format, ok := o.formats[name]
		if !ok {
			return nil, fmt.Errorf("unsupported format %q", name)
		}
		if !hasExtension(req.File, format.Extension()) {
			o.logger.Warn("File extension does not match format",
				zap.String("file", req.File),
				zap.String("format", name),
				zap.String("extension", format.Extension()),
			)
		}
		return format, nil
	default:
		return nil, fmt.Errorf("unknown operation %q", req.Operation)
	}
}

// loadCatalog resets the session and commits a fresh catalog.
func (o *Orchestrator) loadCatalog(ctx context.Context) (collection.Index, error) {
	err := o.timed("prepare", func() error {
		if err := o.store.Migrate(ctx); err != nil {
			return err
		}
		return o.store.Reset(ctx)
	})
	if err != nil {
		return nil, err
	}

	var printings []collection.CardPrinting
	if err := o.timed("catalog read", func() error {
		var loadErr error
		printings, loadErr = o.loader.Load(ctx)
		return loadErr
	}); err != nil {
		return nil, err
	}

	if err := o.timed("catalog commit", func() error {
		return o.store.ReplaceCatalog(ctx, printings)
	}); err != nil {
		return nil, err
	}

	return o.store.PrintingIndex(ctx)
}

// readSnapshot reads one file, commits its entries and returns them as
// re-read from the store.
func (o *Orchestrator) readSnapshot(ctx context.Context, adapter reconcile.Adapter, path string, source collection.Source, index collection.Index) (*collection.Snapshot, error) {
	var snap *collection.Snapshot
	err := o.timed("read "+string(source), func() error {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", path, err)
		}
		defer f.Close()

		read, err := adapter.ReadSnapshot(ctx, f, index, source, path)
		if err != nil {
			return err
		}
		if err := o.store.SaveSnapshot(ctx, read); err != nil {
			return err
		}
		snap, err = o.store.LoadSnapshot(ctx, source, path)
		return err
	})
	if err != nil {
		return nil, err
	}

	o.logger.Info("Snapshot loaded",
		zap.String("source", string(source)),
		zap.String("path", path),
		zap.Int("entries", snap.Len()),
	)
	return snap, nil
}

// write replaces target under a backup guard. Imports keep the backup.
func (o *Orchestrator) write(ctx context.Context, op reconcile.Operation, target string, adapter reconcile.Adapter, merged *reconcile.MergedCollection) (string, error) {
	var backupPath string
	err := o.timed("write", func() error {
		guard, err := o.backups.Acquire(ctx, target, op == reconcile.OperationImport)
		if err != nil {
			return err
		}

		writeErr := backup.WriteAtomic(target, func(w io.Writer) error {
			return adapter.WriteCollection(ctx, w, merged)
		})
		if releaseErr := guard.Release(writeErr == nil); releaseErr != nil {
			if writeErr != nil {
				return errors.Join(writeErr, releaseErr)
			}
			o.logger.Warn("Backup cleanup failed", zap.String("backup", guard.Path()), zap.Error(releaseErr))
		}
		if guard.Retained() {
			backupPath = guard.Path()
		}
		return writeErr
	})
	return backupPath, err
}

func hasExtension(path, ext string) bool {
	return strings.EqualFold(filepath.Ext(path), ext)
}

func (o *Orchestrator) transition(next State) {
	if o.state == next {
		return
	}
	o.logger.Debug("State transition", zap.String("from", string(o.state)), zap.String("to", string(next)))
	o.state = next
	o.history = append(o.history, next)
}

// timed runs fn and records its duration under phase.
func (o *Orchestrator) timed(phase string, fn func() error) error {
	start := time.Now()
	err := fn()
	o.durations = append(o.durations, PhaseDuration{Phase: phase, Duration: time.Since(start)})
	return err
}

func (o *Orchestrator) logDurations() {
	var total time.Duration
	for _, d := range o.durations {
		total += d.Duration
		o.logger.Info("Phase timing", zap.String("phase", d.Phase), zap.Duration("duration", d.Duration))
	}
	o.logger.Info("Run timing", zap.Duration("total", total))
}
