package collector

import "github.com/Striender/Research-data/pkg/collector/metrics"

// Defaults used when setting up Viper in the configuration loading process.
const (
	// DefaultBaselineName is the reserved first path segment marking the
	// no-prefetcher baseline group.
	DefaultBaselineName = "no_pref"
	// DefaultReportFileName is the workbook created inside the output
	// directory.
	DefaultReportFileName = "data_dump.xlsx"
	// DefaultSchemaName selects the metric rule table.
	DefaultSchemaName = metrics.SchemaFull
	// DefaultOutputFormat is the format of the final run summary.
	DefaultOutputFormat = OutputFormatText
	// DefaultVerbose is the default state for verbose logging.
	DefaultVerbose = false
)
