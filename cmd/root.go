package cmd

import (
	"fmt"
	"os"

	"collection-manager/core/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Global flags, applied over the loaded configuration when set.
	dataPath          string
	includeOnlineOnly bool
	debugStats        bool
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "collection-manager",
	Short: "Trading card collection spreadsheet manager",
	Long: `Collection Manager keeps a spreadsheet of owned card printings in step
with a local card catalog. It creates and updates the spreadsheet, and
exports or imports the recorded entries as a delimited file.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		cfg := &logger.Config{
			Level:  "debug",
			Format: "console",
		}

		l, logErr := logger.New(cfg)
		if logErr == nil {
			l.Error("command failed", zap.Error(err))
			_ = l.Sync()
		} else {
			fmt.Println(err)
		}
		os.Exit(1)
	}
}

func init() {
	flags := RootCmd.PersistentFlags()
	flags.StringVar(&dataPath, "data_path", "", "Catalog data directory (default ~/.mtgcdb)")
	flags.BoolVar(&includeOnlineOnly, "include_online_only", false, "Include printings from online-only sets")
	flags.BoolVar(&debugStats, "debug_stats", false, "Log per-phase durations")
}
