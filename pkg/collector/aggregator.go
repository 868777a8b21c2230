package collector

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/Striender/Research-data/pkg/collector/cache"
	"github.com/Striender/Research-data/pkg/collector/metrics"
)

// Dataset is the complete current-run view: group key to experiment to
// records, with records in scan order within each bucket.
type Dataset map[string]map[string][]metrics.Record

func (d Dataset) add(group, experiment string, rec metrics.Record) {
	byExp, ok := d[group]
	if !ok {
		byExp = make(map[string][]metrics.Record)
		d[group] = byExp
	}
	byExp[experiment] = append(byExp[experiment], rec)
}

// AggregateResult carries the assembled dataset and the per-run counters.
// FreshCount == 0 is the no-op signal: nothing changed, so neither the report
// nor the cache documents should be touched.
type AggregateResult struct {
	Dataset      Dataset
	ScannedCount int
	FreshCount   int
	ReusedCount  int
	FailedCount  int
}

// Aggregator consumes scanner output, consults the cache store, and decides
// per file whether to reuse the cached record or re-extract.
type Aggregator struct {
	store           cache.Store
	schema          *metrics.Schema
	hooks           Hooks
	logger          *slog.Logger
	ignoreCacheRead bool
}

// NewAggregator wires an Aggregator. hooks may be nil.
func NewAggregator(store cache.Store, schema *metrics.Schema, hooks Hooks, loggerHandler slog.Handler, ignoreCacheRead bool) *Aggregator {
	if loggerHandler == nil {
		loggerHandler = slog.NewTextHandler(io.Discard, nil)
	}
	if hooks == nil {
		hooks = NoOpHooks{}
	}
	return &Aggregator{
		store:           store,
		schema:          schema,
		hooks:           hooks,
		logger:          slog.New(loggerHandler).With(slog.String("component", "aggregator")),
		ignoreCacheRead: ignoreCacheRead,
	}
}

// Run drives one pass over the scanner's output. A cache hit (stored mtime
// equals live mtime) reuses the cached record without touching the file
// contents; anything else reads and extracts. Unreadable files are excluded
// from this run with no cache commit, so the next run retries them. After a
// pass with at least one fresh file, entries for paths no longer present are
// pruned so deleted inputs drop out of the cache and the rebuilt report.
func (a *Aggregator) Run(ctx context.Context, scanner *Scanner) (AggregateResult, error) {
	res := AggregateResult{Dataset: make(Dataset)}
	seen := make(map[string]struct{})

	err := scanner.Scan(ctx, func(e ScanEntry) error {
		res.ScannedCount++
		seen[e.Path] = struct{}{}

		if !a.ignoreCacheRead {
			if ent, ok := a.store.Lookup(e.GroupKey, e.Path); ok && ent.ModTime == e.ModTime.UnixNano() {
				res.Dataset.add(e.GroupKey, e.Experiment, ent.Record)
				res.ReusedCount++
				if hookErr := a.hooks.OnFileStatusUpdate(e.RelPath, StatusReused, "unchanged"); hookErr != nil {
					a.logger.Warn("Event hook failed", slog.String("path", e.RelPath), slog.String("error", hookErr.Error()))
				}
				return nil
			}
		}

		data, err := os.ReadFile(e.Path)
		if err != nil {
			a.logger.Warn("File unreadable, excluded from this run; will be retried next run",
				slog.String("path", e.RelPath), slog.String("error", err.Error()))
			res.FailedCount++
			if hookErr := a.hooks.OnFileStatusUpdate(e.RelPath, StatusFailed, err.Error()); hookErr != nil {
				a.logger.Warn("Event hook failed", slog.String("path", e.RelPath), slog.String("error", hookErr.Error()))
			}
			return nil
		}

		rec := a.schema.Extract(string(data))
		rec.TraceFile = filepath.Base(e.Path)
		rec.Experiment = e.Experiment
		a.store.Commit(e.GroupKey, e.Path, e.ModTime, rec)
		res.Dataset.add(e.GroupKey, e.Experiment, rec)
		res.FreshCount++
		if hookErr := a.hooks.OnFileStatusUpdate(e.RelPath, StatusFresh, "new or modified"); hookErr != nil {
			a.logger.Warn("Event hook failed", slog.String("path", e.RelPath), slog.String("error", hookErr.Error()))
		}
		return nil
	})
	if err != nil {
		return res, err
	}

	if res.FreshCount > 0 {
		before := a.store.Len()
		a.store.Prune(seen)
		if dropped := before - a.store.Len(); dropped > 0 {
			a.logger.Info("Pruned cache entries for deleted inputs", slog.Int("dropped", dropped))
		}
	}

	a.logger.Debug("Aggregation complete",
		slog.Int("scanned", res.ScannedCount),
		slog.Int("fresh", res.FreshCount),
		slog.Int("reused", res.ReusedCount),
		slog.Int("failed", res.FailedCount))
	return res, nil
}
