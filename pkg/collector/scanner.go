package collector

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
	"time"
)

// ScanEntry is one discovered log file with its derived identity.
type ScanEntry struct {
	GroupKey   string
	Experiment string
	Path       string // as joined from the scan root
	RelPath    string // slash-separated, relative to the root, for display
	ModTime    time.Time
}

// Scanner walks the results tree and derives a group key and an experiment
// identifier from each file's path. Expected layouts below the root are
// <level>/<prefetcher>/<experiment>/<file> and <baseline>/<experiment>/<file>;
// files at any other depth are silently excluded as an unrecognized layout.
type Scanner struct {
	root     string
	baseline string
	logger   *slog.Logger
}

// NewScanner returns a Scanner over root with the given baseline group name.
func NewScanner(root, baseline string, loggerHandler slog.Handler) *Scanner {
	if loggerHandler == nil {
		loggerHandler = slog.NewTextHandler(io.Discard, nil)
	}
	return &Scanner{
		root:     root,
		baseline: baseline,
		logger:   slog.New(loggerHandler).With(slog.String("component", "scanner")),
	}
}

// Scan visits every recognized regular file in deterministic (lexicographic)
// order, calling fn once per file. An inaccessible root is fatal; errors on
// individual entries are logged and skipped. An error returned by fn aborts
// the walk.
func (s *Scanner) Scan(ctx context.Context, fn func(ScanEntry) error) error {
	walkErr := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == s.root {
				return fmt.Errorf("cannot access results root %q: %w", path, err)
			}
			s.logger.Warn("Error accessing path during walk, skipping",
				slog.String("path", path), slog.String("error", err.Error()))
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if d.IsDir() {
			return nil
		}
		if !d.Type().IsRegular() {
			s.logger.Debug("Skipping non-regular file", slog.String("path", path))
			return nil
		}

		rel, err := filepath.Rel(s.root, path)
		if err != nil {
			s.logger.Warn("Could not derive relative path, skipping",
				slog.String("path", path), slog.String("error", err.Error()))
			return nil
		}
		rel = filepath.ToSlash(rel)

		group, experiment, ok := s.classify(filepath.ToSlash(filepath.Dir(rel)))
		if !ok {
			s.logger.Debug("Unrecognized layout, excluded from dataset", slog.String("path", rel))
			return nil
		}

		info, err := d.Info()
		if err != nil {
			s.logger.Warn("Could not stat file, skipping",
				slog.String("path", rel), slog.String("error", err.Error()))
			return nil
		}

		return fn(ScanEntry{
			GroupKey:   group,
			Experiment: experiment,
			Path:       path,
			RelPath:    rel,
			ModTime:    info.ModTime(),
		})
	})
	if walkErr != nil {
		if ctx.Err() != nil {
			return walkErr
		}
		return fmt.Errorf("%w: %w", ErrScan, walkErr)
	}
	return nil
}

// classify maps a directory path relative to the root onto (group,
// experiment). Three segments name <level>/<prefetcher>/<experiment>; two
// segments are accepted only for the baseline group.
func (s *Scanner) classify(relDir string) (group, experiment string, ok bool) {
	if relDir == "." || relDir == "" {
		return "", "", false
	}
	parts := strings.Split(relDir, "/")
	switch {
	case len(parts) == 3:
		return parts[0] + "_" + parts[1], parts[2], true
	case len(parts) == 2 && parts[0] == s.baseline:
		return parts[0], parts[1], true
	}
	return "", "", false
}
