// Package collector implements the incremental extraction-and-aggregation
// pipeline: scan the results tree, reuse cached records for unchanged files,
// extract metrics from new or modified ones, and regenerate the persisted
// report while preserving externally authored sections.
package collector

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"time"

	"github.com/maruel/natural"

	"github.com/Striender/Research-data/pkg/collector/cache"
	"github.com/Striender/Research-data/pkg/collector/metrics"
	"github.com/Striender/Research-data/pkg/collector/report"
)

// Collect runs the pipeline once. The run is single-threaded and batch-style:
// scan, compare, extract, aggregate, synthesize, in that order. When nothing
// changed since the previous run, it returns an up-to-date summary without
// touching the report or the cache documents. The report is replaced before
// the cache is persisted, so an interruption between the two only causes
// rework on the next run, never a report that is newer than its inputs.
func Collect(ctx context.Context, opts Options) (Summary, error) {
	if opts.Logger == nil {
		return Summary{}, fmt.Errorf("%w: Logger implementation cannot be nil", ErrConfigValidation)
	}
	logger := slog.New(opts.Logger).With(slog.String("component", "collector"))
	if opts.InputPath == "" {
		return Summary{}, fmt.Errorf("%w: input path cannot be empty", ErrConfigValidation)
	}
	if opts.OutputPath == "" {
		return Summary{}, fmt.Errorf("%w: output path cannot be empty", ErrConfigValidation)
	}
	hooks := opts.EventHooks
	if hooks == nil {
		hooks = NoOpHooks{}
	}
	baseline := opts.BaselineName
	if baseline == "" {
		baseline = DefaultBaselineName
	}
	schemaName := opts.SchemaName
	if schemaName == "" {
		schemaName = DefaultSchemaName
	}
	schema, err := metrics.ByName(schemaName)
	if err != nil {
		return Summary{}, fmt.Errorf("%w: %w", ErrConfigValidation, err)
	}
	reportPath := opts.ReportFilePath
	if reportPath == "" {
		name := opts.ReportFileName
		if name == "" {
			name = DefaultReportFileName
		}
		reportPath = filepath.Join(opts.OutputPath, name)
	}

	start := time.Now()
	sum := Summary{
		InputPath:      opts.InputPath,
		ReportPath:     reportPath,
		ConfigFilePath: opts.ConfigFilePath,
		Schema:         schema.Name(),
		Timestamp:      start,
	}

	if opts.ClearCache {
		if err := cache.Clear(opts.OutputPath); err != nil {
			return sum, err
		}
		logger.Info("Cache cleared before run", slog.String("dir", opts.OutputPath))
	}

	store := opts.CacheStore
	if store == nil {
		store = cache.NewFileStore(opts.OutputPath, opts.Logger)
	}
	if err := store.Load(); err != nil {
		return sum, err
	}

	logger.Info("Starting scan", slog.String("root", opts.InputPath))
	scanner := NewScanner(opts.InputPath, baseline, opts.Logger)
	agg := NewAggregator(store, schema, hooks, opts.Logger, opts.IgnoreCacheRead)
	res, err := agg.Run(ctx, scanner)
	if err != nil {
		return sum, err
	}

	sum.ScannedCount = res.ScannedCount
	sum.FreshCount = res.FreshCount
	sum.ReusedCount = res.ReusedCount
	sum.FailedCount = res.FailedCount
	sum.GroupCount = len(res.Dataset)

	if res.FreshCount == 0 {
		sum.UpToDate = true
		sum.DurationSeconds = time.Since(start).Seconds()
		logger.Info("Output is already up-to-date, nothing written",
			slog.Int("skipped", res.ReusedCount))
		if hookErr := hooks.OnRunComplete(sum); hookErr != nil {
			logger.Warn("OnRunComplete hook failed", slog.String("error", hookErr.Error()))
		}
		return sum, nil
	}

	groups := orderDataset(res.Dataset)
	synth := report.NewSynthesizer(opts.Logger, schema.FieldNames(), baseline)
	if err := synth.Write(reportPath, groups); err != nil {
		return sum, err
	}
	if err := store.Persist(); err != nil {
		return sum, err
	}

	sum.DurationSeconds = time.Since(start).Seconds()
	logger.Info("Run complete",
		slog.Int("fresh", sum.FreshCount),
		slog.Int("reused", sum.ReusedCount),
		slog.String("report", reportPath))
	if hookErr := hooks.OnRunComplete(sum); hookErr != nil {
		logger.Warn("OnRunComplete hook failed", slog.String("error", hookErr.Error()))
	}
	return sum, nil
}

// orderDataset flattens the dataset deterministically: groups in lexicographic
// key order, experiments in natural order (exp2 before exp10), records left in
// scan order.
func orderDataset(ds Dataset) []report.Group {
	keys := make([]string, 0, len(ds))
	for k := range ds {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	groups := make([]report.Group, 0, len(keys))
	for _, key := range keys {
		byExp := ds[key]
		exps := make([]string, 0, len(byExp))
		for e := range byExp {
			exps = append(exps, e)
		}
		sort.Slice(exps, func(i, j int) bool { return natural.Less(exps[i], exps[j]) })

		g := report.Group{Key: key}
		for _, e := range exps {
			g.Experiments = append(g.Experiments, report.Experiment{Name: e, Records: byExp[e]})
		}
		groups = append(groups, g)
	}
	return groups
}
