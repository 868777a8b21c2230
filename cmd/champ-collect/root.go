package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Striender/Research-data/internal/cli"
	"github.com/Striender/Research-data/internal/cli/config"
	"github.com/Striender/Research-data/internal/cli/hooks"
	"github.com/Striender/Research-data/pkg/collector"
	"github.com/Striender/Research-data/pkg/collector/metrics"
)

// Populated by the linker via -ldflags at release time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	cfgFile     string
	verboseFlag bool
)

var rootCmd = &cobra.Command{
	Use:   "champ-collect -i <results-dir> -o <output-dir>",
	Short: "Collect ChampSim simulation metrics into an aggregated report",
	Long: `champ-collect scans a ChampSim results directory, extracts performance
metrics (IPC, cache access/hit/miss counts, MPKI, prefetch statistics) from
new or modified simulation logs, and regenerates an Excel report grouped by
prefetcher configuration and experiment.

Unchanged files are skipped using a modification-time cache kept next to the
report, so repeated runs over a large results tree are cheap. Sheets in the
report that were added by hand are preserved across regenerations; only the
tool-owned "raw_" sheets are rewritten.`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		opts, logger, err := config.LoadAndValidate(cfgFile, verboseFlag, cmd.Flags())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return err
		}

		opts.EventHooks = hooks.NewAnnouncer(os.Stdout)
		return cli.Run(ctx, opts, logger)
	},
}

// Execute runs the root command and exits non-zero on any failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "Path to configuration file (default: ./champ-collect.yaml)")
	pf.BoolVarP(&verboseFlag, "verbose", "v", collector.DefaultVerbose, "Enable verbose (debug) logging")

	f := rootCmd.Flags()
	// input/output may also come from the config file or environment, so
	// requiredness is enforced by config validation, not by cobra.
	f.StringP("input", "i", "", "Path to the ChampSim results directory to scan")
	f.StringP("output", "o", "", "Directory for the report and cache files")
	f.String("report-file", collector.DefaultReportFileName, "File name of the Excel report inside the output directory")
	f.String("baseline", collector.DefaultBaselineName, "Directory name of the no-prefetcher baseline runs")
	f.String("schema", collector.DefaultSchemaName,
		fmt.Sprintf("Metric extraction schema (%q or %q)", metrics.SchemaFull, metrics.SchemaLegacy))
	f.String("output-format", string(collector.DefaultOutputFormat), "Summary output format (text or json)")
	f.Bool("no-cache", false, "Re-extract every file, ignoring cached results")
	f.Bool("clear-cache", false, "Delete the cache files before running")
}
