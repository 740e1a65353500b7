package cmd

import (
	"collection-manager/core/reconcile"
	"collection-manager/feature/workflow"

	"github.com/spf13/cobra"
)

var (
	exportFormat string
	importFormat string
)

// exportCmd writes the recorded entries of a spreadsheet to a delimited file.
var exportCmd = &cobra.Command{
	Use:   "export <spreadsheet> <file>",
	Short: "Export recorded entries to a delimited file",
	Long: `Export writes every entry with a quantity or a note to the given file.
Rows with nothing recorded are omitted.

Examples:
  export collection.xlsx owned.csv
  export collection.xlsx owned.csv --format csv`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWorkflow(cmd, workflow.Request{
			Operation:   reconcile.OperationExport,
			Spreadsheet: args[0],
			File:        args[1],
			Format:      exportFormat,
		})
	},
}

// importCmd replaces the spreadsheet's entries with those of a delimited file.
var importCmd = &cobra.Command{
	Use:   "import <spreadsheet> <file>",
	Short: "Import a delimited file, overwriting the spreadsheet's entries",
	Long: `Import replaces the spreadsheet's entries with the rows of the given file.
Entries missing from the file are reset to quantity 0. A timestamped backup of
the previous spreadsheet is kept next to it.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWorkflow(cmd, workflow.Request{
			Operation:   reconcile.OperationImport,
			Spreadsheet: args[0],
			File:        args[1],
			Format:      importFormat,
		})
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", workflow.DefaultFormat, "Delimited file format (csv, tsv)")
	importCmd.Flags().StringVar(&importFormat, "format", workflow.DefaultFormat, "Delimited file format (csv, tsv)")

	RootCmd.AddCommand(exportCmd)
	RootCmd.AddCommand(importCmd)
}
