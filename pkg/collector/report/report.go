// Package report turns an aggregated dataset into the persisted Excel
// workbook. One sheet per group carries the OwnedSheetPrefix and is fully
// regenerated on every run; every other sheet is treated as externally
// authored and copied through value for value.
package report

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/Striender/Research-data/pkg/collector/metrics"
)

// OwnedSheetPrefix marks the sheets this pipeline regenerates. Sheets without
// the prefix survive rebuilds untouched.
const OwnedSheetPrefix = "raw_"

// MissingMarker is written in place of an absent field so every row carries
// the full canonical column count.
const MissingMarker = "NaN"

// defaultSheetName is the implicit sheet excelize creates in a new workbook.
// A previous report may legitimately carry a user sheet with this name, since
// Excel itself picks it for the first hand-added sheet.
const defaultSheetName = "Sheet1"

// ErrWrite indicates the new report could not be constructed or moved into
// place. The previous report, if any, is untouched when this is returned.
var ErrWrite = errors.New("failed to write report")

// Experiment is one run configuration's records, already in natural order.
type Experiment struct {
	Name    string
	Records []metrics.Record
}

// Group is one report section, keyed by cache level and prefetcher (or the
// baseline sentinel).
type Group struct {
	Key         string
	Experiments []Experiment
}

// Synthesizer writes report workbooks for a fixed canonical field list.
type Synthesizer struct {
	logger   *slog.Logger
	fields   []string
	baseline string
}

// NewSynthesizer returns a Synthesizer rendering the given canonical columns.
func NewSynthesizer(loggerHandler slog.Handler, fieldNames []string, baseline string) *Synthesizer {
	if loggerHandler == nil {
		loggerHandler = slog.NewTextHandler(io.Discard, nil)
	}
	return &Synthesizer{
		logger:   slog.New(loggerHandler).With(slog.String("component", "reportSynthesizer")),
		fields:   fieldNames,
		baseline: baseline,
	}
}

// Write builds a fresh workbook from groups, copies non-owned sheets over
// from any previous report at path, and atomically replaces path. Groups must
// already be ordered; experiments and records render in the order given.
func (s *Synthesizer) Write(path string, groups []Group) error {
	book := excelize.NewFile()
	defer book.Close()

	preserved, defaultClaimed := s.copyForeignSheets(book, path)

	for _, g := range groups {
		if err := s.writeGroup(book, g); err != nil {
			return fmt.Errorf("%w: group %q: %w", ErrWrite, g.Key, err)
		}
	}

	// Drop the implicit default sheet once real content exists, unless a
	// preserved sheet from the previous report carries that name.
	if (preserved > 0 || len(groups) > 0) && !defaultClaimed {
		if err := book.DeleteSheet(defaultSheetName); err != nil {
			return fmt.Errorf("%w: %w", ErrWrite, err)
		}
	}

	if err := replaceAtomically(book, path); err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	s.logger.Info("Report written", slog.String("path", path),
		slog.Int("groups", len(groups)), slog.Int("preserved_sheets", preserved))
	return nil
}

// copyForeignSheets carries non-owned sheets from the previous report into
// book, reporting how many were preserved and whether one of them claims the
// workbook's default sheet name. A missing previous report is normal; an
// unreadable one degrades to starting from empty, since content that cannot be
// read cannot be preserved.
func (s *Synthesizer) copyForeignSheets(book *excelize.File, path string) (preserved int, defaultClaimed bool) {
	old, err := excelize.OpenFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.logger.Debug("No previous report, starting from empty", slog.String("path", path))
		} else {
			s.logger.Warn("Previous report unreadable, non-owned sections will be lost",
				slog.String("path", path), slog.String("error", err.Error()))
		}
		return 0, false
	}
	defer old.Close()

	for _, name := range old.GetSheetList() {
		if strings.HasPrefix(name, OwnedSheetPrefix) {
			continue
		}
		rows, err := old.GetRows(name)
		if err != nil {
			s.logger.Warn("Could not read sheet from previous report, skipping",
				slog.String("sheet", name), slog.String("error", err.Error()))
			continue
		}
		if _, err := book.NewSheet(name); err != nil {
			s.logger.Warn("Could not recreate preserved sheet",
				slog.String("sheet", name), slog.String("error", err.Error()))
			continue
		}
		for i, row := range rows {
			if len(row) == 0 {
				continue
			}
			cells := make([]interface{}, len(row))
			for j, v := range row {
				cells[j] = v
			}
			start, _ := excelize.CoordinatesToCellName(1, i+1)
			if err := book.SetSheetRow(name, start, &cells); err != nil {
				s.logger.Warn("Could not copy row of preserved sheet",
					slog.String("sheet", name), slog.Int("row", i+1), slog.String("error", err.Error()))
				break
			}
		}
		s.logger.Info("Preserving externally authored sheet", slog.String("sheet", name))
		preserved++
		if name == defaultSheetName {
			defaultClaimed = true
		}
	}
	return preserved, defaultClaimed
}

func (s *Synthesizer) writeGroup(book *excelize.File, g Group) error {
	sheet := OwnedSheetPrefix + g.Key
	if _, err := book.NewSheet(sheet); err != nil {
		return err
	}

	ncols := len(s.fields) + 1 // trailing Experiment column

	end, err := excelize.CoordinatesToCellName(ncols, 2)
	if err != nil {
		return err
	}
	if err := book.MergeCell(sheet, "A1", end); err != nil {
		return err
	}
	if err := book.SetCellValue(sheet, "A1", GroupLabel(g.Key, s.baseline)); err != nil {
		return err
	}

	header := make([]interface{}, 0, ncols)
	for _, name := range s.fields {
		header = append(header, name)
	}
	header = append(header, metrics.ExperimentField)
	if err := book.SetSheetRow(sheet, "A3", &header); err != nil {
		return err
	}

	row := 3
	for i, exp := range g.Experiments {
		if i > 0 {
			row++ // blank spacer between experiments
		}
		row++
		start, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return err
		}
		end, err := excelize.CoordinatesToCellName(ncols, row)
		if err != nil {
			return err
		}
		if err := book.MergeCell(sheet, start, end); err != nil {
			return err
		}
		if err := book.SetCellValue(sheet, start, ExperimentLabel(exp.Name)); err != nil {
			return err
		}
		for _, rec := range exp.Records {
			row++
			cells := s.renderRow(rec)
			anchor, err := excelize.CoordinatesToCellName(1, row)
			if err != nil {
				return err
			}
			if err := book.SetSheetRow(sheet, anchor, &cells); err != nil {
				return err
			}
		}
	}
	return nil
}

// renderRow produces one data row with the full canonical column count,
// substituting MissingMarker for absent fields.
func (s *Synthesizer) renderRow(rec metrics.Record) []interface{} {
	cells := make([]interface{}, 0, len(s.fields)+1)
	for _, name := range s.fields {
		if name == metrics.TraceFileField {
			cells = append(cells, rec.TraceFile)
			continue
		}
		if n, ok := rec.Value(name); ok {
			cells = append(cells, n.CellValue())
		} else {
			cells = append(cells, MissingMarker)
		}
	}
	cells = append(cells, rec.Experiment)
	return cells
}

// replaceAtomically saves the workbook to a temporary file in the target
// directory and renames it into place, so a crash mid-write cannot leave a
// half-written report behind.
func replaceAtomically(book *excelize.File, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("ensure report directory %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temporary report file in %s: %w", dir, err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if err := book.Write(tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("write workbook to %s: %w", tmpPath, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temporary report file %s: %w", tmpPath, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename %s into place: %w", tmpPath, err)
	}
	return nil
}
