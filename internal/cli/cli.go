// Package cli orchestrates a collection run on behalf of the command line
// entry point and prints the user-facing summary.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/Striender/Research-data/pkg/collector"
)

// Run executes one collection pass and prints the summary in the configured
// format. Fatal errors are logged and returned so the command exits non-zero.
func Run(ctx context.Context, opts collector.Options, logger *slog.Logger) error {
	sum, err := collector.Collect(ctx, opts)
	if err != nil {
		logger.Error("Collection run failed", slog.Any("error", err))
		return err
	}
	return printSummary(os.Stdout, opts.OutputFormat, sum)
}

func printSummary(w io.Writer, format collector.OutputFormat, sum collector.Summary) error {
	if format == collector.OutputFormatJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(sum)
	}

	fmt.Fprintf(w, "\nScan complete. Found %d new/modified files. Skipped %d unchanged files.\n",
		sum.FreshCount, sum.ReusedCount)
	if sum.FailedCount > 0 {
		fmt.Fprintf(w, "Warning: %d file(s) could not be read and were excluded from this run.\n",
			sum.FailedCount)
	}
	if sum.UpToDate {
		fmt.Fprintln(w, "\nOutput is already up-to-date.")
		return nil
	}
	fmt.Fprintf(w, "\nSuccessfully created/updated report: %s\n", sum.ReportPath)
	return nil
}
