package cmd

import (
	"context"
	"fmt"

	"collection-manager/core/collection"
	"collection-manager/core/config"
	"collection-manager/core/database"
	"collection-manager/core/logger"
	"collection-manager/core/reconcile"
	"collection-manager/core/storage"
	"collection-manager/feature/backup"
	"collection-manager/feature/catalog"
	"collection-manager/feature/workflow"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

// applyFlags overrides configuration values with the global flags the user set.
func applyFlags(flags *pflag.FlagSet, cfg *config.Config) {
	if flags.Changed("data_path") {
		cfg.Catalog.DataPath = dataPath
	}
	if flags.Changed("include_online_only") {
		cfg.Catalog.IncludeOnlineOnly = includeOnlineOnly
	}
}

// runWorkflow wires the application and executes one operation.
func runWorkflow(cmd *cobra.Command, req workflow.Request) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.LoadConfig(".")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyFlags(cmd.Flags(), cfg)

	path, err := catalog.PrepareDataPath(cfg.Catalog.DataPath)
	if err != nil {
		return err
	}
	cfg.Catalog.DataPath = path

	base, err := logger.New(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer base.Sync()

	req.RunID = uuid.NewString()
	l := logger.WithRun(base, req.RunID, string(req.Operation))

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		if err := database.Close(db); err != nil {
			l.Warn("Failed to close database", zap.Error(err))
		}
	}()

	var client storage.Client
	if cfg.Storage.Enabled {
		client, err = storage.NewClient(cfg.Storage)
		if err != nil {
			return fmt.Errorf("failed to connect to storage: %w", err)
		}
	}

	store := collection.NewStore(db, l)
	loader := catalog.NewLoader(cfg.Catalog, l)
	backups := backup.NewManager(cfg.Backup, client, cfg.Storage, l)
	orch := workflow.NewOrchestrator(store, loader, backups, l, debugStats)

	l.Info("Starting workflow", zap.String("spreadsheet", req.Spreadsheet), zap.String("catalog", path))
	report, err := orch.Run(ctx, req)
	if err != nil {
		return err
	}

	printReport(l, report)
	return nil
}

// printReport logs the outcome of a successful run.
func printReport(l *zap.Logger, report *workflow.Report) {
	fields := []zap.Field{
		zap.String("target", report.Target),
		zap.Int("rows", report.Summary.OutputRows),
		zap.Int("quantity", report.Summary.Quantity),
	}
	if report.Backup != "" {
		fields = append(fields, zap.String("backup", report.Backup))
	}
	l.Info("Run summary", fields...)

	if report.Plan == nil || len(report.Plan.Actions) == 0 {
		return
	}
	maxShow := min(5, len(report.Plan.Actions))
	for _, action := range report.Plan.Actions[:maxShow] {
		l.Info("Sample action",
			zap.String("type", string(action.Type)),
			zap.String("key", action.Key),
			zap.String("reason", action.Reason),
		)
	}
	if len(report.Plan.Actions) > maxShow {
		l.Info("Additional actions not shown", zap.Int("count", len(report.Plan.Actions)-maxShow))
	}
}

// operationRunner returns a cobra RunE for a spreadsheet-only operation.
func operationRunner(op reconcile.Operation) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		return runWorkflow(cmd, workflow.Request{Operation: op, Spreadsheet: args[0]})
	}
}
