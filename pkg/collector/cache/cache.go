// Package cache persists the incremental state of a collection run: which
// files have been seen (path to modification time) and the records extracted
// from them (group to path to record). Both mappings live in human-inspectable
// JSON documents that may be hand-deleted to force a full reprocess.
package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/Striender/Research-data/pkg/collector/metrics"
)

// File names for the two persisted mappings, created inside the output
// directory alongside the report.
const (
	MtimeFileName   = ".processed_files.json"
	RecordsFileName = ".data_cache.json"
)

// ErrPersist indicates a failure while writing a cache document. The run's
// report has already been replaced by the time the cache is persisted, so the
// caller treats this as fatal only for the exit status; the on-disk state is
// still safe (the next run simply reprocesses).
var ErrPersist = errors.New("failed to persist cache")

// Entry pairs a file's last-seen modification time with the record extracted
// at that time. If the live file's mtime differs, the entry is stale and must
// not be reused.
type Entry struct {
	ModTime int64          `json:"mtime"` // UnixNano
	Record  metrics.Record `json:"record"`
}

// Store is the cache seen by the aggregator. Lookup never mutates; Commit is
// the only mutator and is called once per freshly processed file, after
// extraction succeeds. Persist writes both documents atomically.
type Store interface {
	Load() error
	Lookup(group, path string) (Entry, bool)
	Commit(group, path string, modTime time.Time, rec metrics.Record)
	Prune(seen map[string]struct{})
	Persist() error
	Len() int
}

type fileStore struct {
	dir     string
	logger  *slog.Logger
	mtimes  map[string]int64
	records map[string]map[string]metrics.Record
}

// NewFileStore returns a Store backed by JSON documents in dir.
func NewFileStore(dir string, loggerHandler slog.Handler) Store {
	if loggerHandler == nil {
		loggerHandler = slog.NewTextHandler(io.Discard, nil)
	}
	return &fileStore{
		dir:     dir,
		logger:  slog.New(loggerHandler).With(slog.String("component", "cacheStore")),
		mtimes:  make(map[string]int64),
		records: make(map[string]map[string]metrics.Record),
	}
}

// Clear removes both cache documents from dir. Missing files are not errors.
func Clear(dir string) error {
	for _, name := range []string{MtimeFileName, RecordsFileName} {
		if err := os.Remove(filepath.Join(dir, name)); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to clear cache file %s: %w", name, err)
		}
	}
	return nil
}

// Load reads both documents. A missing or corrupt document yields an empty
// mapping rather than an error; the next run reprocesses everything it would
// have covered. Load never fails.
func (s *fileStore) Load() error {
	s.mtimes = make(map[string]int64)
	s.records = make(map[string]map[string]metrics.Record)

	loadJSON(filepath.Join(s.dir, MtimeFileName), &s.mtimes, s.logger)
	loadJSON(filepath.Join(s.dir, RecordsFileName), &s.records, s.logger)

	s.logger.Debug("Cache loaded",
		slog.Int("tracked_files", len(s.mtimes)),
		slog.Int("groups", len(s.records)))
	return nil
}

func loadJSON(path string, dst interface{}, logger *slog.Logger) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Info("Cache file not found, starting empty", slog.String("path", path))
		} else {
			logger.Warn("Cache file unreadable, starting empty", slog.String("path", path), slog.String("error", err.Error()))
		}
		return
	}
	if err := json.Unmarshal(data, dst); err != nil {
		logger.Warn("Cache file corrupt, starting empty; affected files will be reprocessed",
			slog.String("path", path), slog.String("error", err.Error()))
	}
}

func (s *fileStore) Lookup(group, path string) (Entry, bool) {
	mt, ok := s.mtimes[path]
	if !ok {
		return Entry{}, false
	}
	rec, ok := s.records[group][path]
	if !ok {
		return Entry{}, false
	}
	return Entry{ModTime: mt, Record: rec}, true
}

func (s *fileStore) Commit(group, path string, modTime time.Time, rec metrics.Record) {
	s.mtimes[path] = modTime.UnixNano()
	byPath, ok := s.records[group]
	if !ok {
		byPath = make(map[string]metrics.Record)
		s.records[group] = byPath
	}
	byPath[path] = rec
}

// Prune drops every entry whose path was not seen by the current scan, so
// records for deleted inputs do not linger in the cache or the next report.
func (s *fileStore) Prune(seen map[string]struct{}) {
	for path := range s.mtimes {
		if _, ok := seen[path]; !ok {
			delete(s.mtimes, path)
		}
	}
	for group, byPath := range s.records {
		for path := range byPath {
			if _, ok := seen[path]; !ok {
				delete(byPath, path)
			}
		}
		if len(byPath) == 0 {
			delete(s.records, group)
		}
	}
}

func (s *fileStore) Len() int { return len(s.mtimes) }

// Persist writes both documents via a temporary file and rename, so an
// interrupted run leaves the previous cache intact.
func (s *fileStore) Persist() error {
	if err := writeJSON(filepath.Join(s.dir, MtimeFileName), s.mtimes); err != nil {
		s.logger.Error("Cache persist failed", slog.String("file", MtimeFileName), slog.String("error", err.Error()))
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}
	if err := writeJSON(filepath.Join(s.dir, RecordsFileName), s.records); err != nil {
		s.logger.Error("Cache persist failed", slog.String("file", RecordsFileName), slog.String("error", err.Error()))
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}
	s.logger.Debug("Cache persisted", slog.Int("tracked_files", len(s.mtimes)))
	return nil
}

func writeJSON(path string, v interface{}) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("ensure cache directory %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temporary cache file in %s: %w", dir, err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	enc := json.NewEncoder(tmp)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		tmp.Close()
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temporary cache file %s: %w", tmpPath, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename %s into place: %w", tmpPath, err)
	}
	return nil
}
