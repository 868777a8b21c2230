package collector

import (
	"log/slog"

	"github.com/Striender/Research-data/pkg/collector/cache"
)

// Hooks receives status callbacks during a run. The pipeline is
// single-threaded, so implementations are called sequentially from one
// goroutine.
type Hooks interface {
	// OnFileStatusUpdate is called once per scanned file with its outcome.
	OnFileStatusUpdate(relPath string, status Status, message string) error
	// OnRunComplete is called once with the final summary, including no-op runs.
	OnRunComplete(sum Summary) error
}

// NoOpHooks is the default, do-nothing Hooks implementation.
type NoOpHooks struct{}

func (NoOpHooks) OnFileStatusUpdate(relPath string, status Status, message string) error { return nil }
func (NoOpHooks) OnRunComplete(sum Summary) error                                        { return nil }

// Options holds all configuration for one Collect run. The run owns every
// injected dependency exclusively for its duration; concurrent runs against
// the same cache and report files are not supported.
type Options struct {
	// InputPath is the absolute path of the results tree to scan. Required.
	InputPath string `mapstructure:"inputPath"`
	// OutputPath is the absolute directory holding the report and the cache
	// documents. Required; created if missing.
	OutputPath string `mapstructure:"outputPath"`

	// ReportFileName is the workbook name inside OutputPath.
	ReportFileName string `mapstructure:"reportFile"`
	// BaselineName is the reserved group for runs without a prefetcher.
	BaselineName string `mapstructure:"baseline"`
	// SchemaName selects the metric rule table ("full" or "legacy").
	SchemaName string `mapstructure:"schema"`

	OutputFormat OutputFormat `mapstructure:"outputFormat"`
	Verbose      bool         `mapstructure:"verbose"`

	// IgnoreCacheRead forces every file to be re-extracted while still
	// committing fresh entries (set by --no-cache).
	IgnoreCacheRead bool `mapstructure:"-"`
	// ClearCache deletes the cache documents before the run (set by
	// --clear-cache).
	ClearCache bool `mapstructure:"-"`

	// ConfigFilePath records the loaded config file, for the summary.
	ConfigFilePath string `mapstructure:"-"`
	// ReportFilePath is the derived absolute workbook path.
	ReportFilePath string `mapstructure:"-"`

	// EventHooks receives progress callbacks; defaults to NoOpHooks.
	EventHooks Hooks `mapstructure:"-"`
	// Logger is the logging backend. Required.
	Logger slog.Handler `mapstructure:"-"`
	// CacheStore overrides the file-backed store (testing).
	CacheStore cache.Store `mapstructure:"-"`
}
