package cmd

import (
	"collection-manager/core/reconcile"

	"github.com/spf13/cobra"
)

// createCmd writes a baseline spreadsheet listing every catalog printing.
var createCmd = &cobra.Command{
	Use:   "create <spreadsheet>",
	Short: "Create a spreadsheet with every catalog printing at quantity 0",
	Long: `Create writes a new collection spreadsheet containing one row per
printing in the catalog. An existing file is replaced.`,
	Args: cobra.ExactArgs(1),
	RunE: operationRunner(reconcile.OperationCreate),
}

// updateCmd refreshes an existing spreadsheet against the current catalog.
var updateCmd = &cobra.Command{
	Use:   "update <spreadsheet>",
	Short: "Add new catalog printings to an existing spreadsheet",
	Long: `Update reads the spreadsheet, keeps every recorded quantity and note,
and adds a zero row for each printing that appeared in the catalog since.`,
	Args: cobra.ExactArgs(1),
	RunE: operationRunner(reconcile.OperationUpdate),
}

func init() {
	RootCmd.AddCommand(createCmd)
	RootCmd.AddCommand(updateCmd)
}
