package report_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/Striender/Research-data/pkg/collector/metrics"
	"github.com/Striender/Research-data/pkg/collector/report"
)

var testFields = []string{metrics.TraceFileField, "IPC", "LLC Total Access"}

func record(trace, experiment string, ipc float64, access int64) metrics.Record {
	return metrics.Record{
		TraceFile:  trace,
		Experiment: experiment,
		Values: map[string]metrics.Number{
			"IPC":              metrics.FromFloat(ipc),
			"LLC Total Access": metrics.FromInt(access),
		},
	}
}

func TestWriteNewReport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data_dump.xlsx")
	synth := report.NewSynthesizer(nil, testFields, "no_pref")

	groups := []report.Group{
		{
			Key: "l1_berti",
			Experiments: []report.Experiment{
				{Name: "exp1_lru_lru", Records: []metrics.Record{
					record("gcc.txt", "exp1_lru_lru", 1.2, 100),
					record("mcf.txt", "exp1_lru_lru", 0.8, 200),
				}},
				{Name: "exp2_lru_ship", Records: []metrics.Record{
					record("gcc.txt", "exp2_lru_ship", 1.3, 110),
				}},
			},
		},
		{
			Key: "no_pref",
			Experiments: []report.Experiment{
				{Name: "exp1_lru_lru", Records: []metrics.Record{
					record("gcc.txt", "exp1_lru_lru", 1.0, 90),
				}},
			},
		},
	}
	require.NoError(t, synth.Write(path, groups))

	book, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer book.Close()

	assert.ElementsMatch(t, []string{"raw_l1_berti", "raw_no_pref"}, book.GetSheetList())

	sheet := "raw_l1_berti"
	a1, err := book.GetCellValue(sheet, "A1")
	require.NoError(t, err)
	assert.Equal(t, "Data Prefetcher: Berti at L1", a1)

	// Row 3 carries the canonical columns plus the trailing Experiment column.
	rows, err := book.GetRows(sheet)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(rows), 8)
	assert.Equal(t, []string{metrics.TraceFileField, "IPC", "LLC Total Access", metrics.ExperimentField}, rows[2])

	// Row 4 is the first experiment's merged sub-header, rows 5-6 its records.
	assert.Equal(t, "Experiment 1: Replacement Policy LRU at L2 and LRU at LLC", rows[3][0])
	assert.Equal(t, []string{"gcc.txt", "1.2", "100", "exp1_lru_lru"}, rows[4])
	assert.Equal(t, []string{"mcf.txt", "0.8", "200", "exp1_lru_lru"}, rows[5])

	// Row 7 is the blank spacer, row 8 the second experiment's sub-header.
	assert.Empty(t, rows[6])
	assert.Equal(t, "Experiment 2: Replacement Policy LRU at L2 and SHIP at LLC", rows[7][0])

	baseline, err := book.GetCellValue("raw_no_pref", "A1")
	require.NoError(t, err)
	assert.Equal(t, "Baseline (No Prefetcher)", baseline)
}

func TestWriteAbsentFieldsGetMarker(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data_dump.xlsx")
	synth := report.NewSynthesizer(nil, testFields, "no_pref")

	rec := metrics.Record{
		TraceFile:  "gcc.txt",
		Experiment: "exp1",
		Values:     map[string]metrics.Number{"IPC": metrics.FromFloat(1.5)},
	}
	groups := []report.Group{{
		Key:         "l1_berti",
		Experiments: []report.Experiment{{Name: "exp1", Records: []metrics.Record{rec}}},
	}}
	require.NoError(t, synth.Write(path, groups))

	book, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer book.Close()

	rows, err := book.GetRows("raw_l1_berti")
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(rows), 5)
	assert.Equal(t, []string{"gcc.txt", "1.5", report.MissingMarker, "exp1"}, rows[4])
}

func TestWritePreservesForeignSheets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data_dump.xlsx")
	synth := report.NewSynthesizer(nil, testFields, "no_pref")

	groups := []report.Group{{
		Key: "l1_berti",
		Experiments: []report.Experiment{
			{Name: "exp1", Records: []metrics.Record{record("gcc.txt", "exp1", 1.2, 100)}},
		},
	}}
	require.NoError(t, synth.Write(path, groups))

	// Simulate a user adding an analysis sheet by hand.
	book, err := excelize.OpenFile(path)
	require.NoError(t, err)
	_, err = book.NewSheet("analysis")
	require.NoError(t, err)
	require.NoError(t, book.SetCellValue("analysis", "A1", "geomean speedup"))
	require.NoError(t, book.SetCellValue("analysis", "B2", "1.07"))
	require.NoError(t, book.Save())
	require.NoError(t, book.Close())

	// Regenerate with different data: owned sheets rebuilt, analysis kept.
	groups[0].Experiments[0].Records = []metrics.Record{record("mcf.txt", "exp1", 0.9, 300)}
	require.NoError(t, synth.Write(path, groups))

	book, err = excelize.OpenFile(path)
	require.NoError(t, err)
	defer book.Close()

	assert.ElementsMatch(t, []string{"analysis", "raw_l1_berti"}, book.GetSheetList())

	kept, err := book.GetCellValue("analysis", "A1")
	require.NoError(t, err)
	assert.Equal(t, "geomean speedup", kept)
	kept, err = book.GetCellValue("analysis", "B2")
	require.NoError(t, err)
	assert.Equal(t, "1.07", kept)

	rebuilt, err := book.GetCellValue("raw_l1_berti", "A5")
	require.NoError(t, err)
	assert.Equal(t, "mcf.txt", rebuilt, "owned sheet reflects the new dataset only")
}

func TestWritePreservesForeignSheetNamedLikeDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data_dump.xlsx")
	synth := report.NewSynthesizer(nil, testFields, "no_pref")

	groups := []report.Group{{
		Key: "l1_berti",
		Experiments: []report.Experiment{
			{Name: "exp1", Records: []metrics.Record{record("gcc.txt", "exp1", 1.2, 100)}},
		},
	}}
	require.NoError(t, synth.Write(path, groups))

	// Excel names the first hand-added sheet "Sheet1" when no sheet has that
	// name yet, which is exactly the state this tool's own output leaves.
	book, err := excelize.OpenFile(path)
	require.NoError(t, err)
	_, err = book.NewSheet("Sheet1")
	require.NoError(t, err)
	require.NoError(t, book.SetCellValue("Sheet1", "A1", "hand-authored notes"))
	require.NoError(t, book.Save())
	require.NoError(t, book.Close())

	require.NoError(t, synth.Write(path, groups))

	book, err = excelize.OpenFile(path)
	require.NoError(t, err)
	defer book.Close()

	assert.ElementsMatch(t, []string{"Sheet1", "raw_l1_berti"}, book.GetSheetList())
	kept, err := book.GetCellValue("Sheet1", "A1")
	require.NoError(t, err)
	assert.Equal(t, "hand-authored notes", kept)
}

func TestWriteUnreadablePreviousReport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data_dump.xlsx")
	require.NoError(t, os.WriteFile(path, []byte("this is not a workbook"), 0o644))

	synth := report.NewSynthesizer(nil, testFields, "no_pref")
	groups := []report.Group{{
		Key: "l1_berti",
		Experiments: []report.Experiment{
			{Name: "exp1", Records: []metrics.Record{record("gcc.txt", "exp1", 1.2, 100)}},
		},
	}}
	require.NoError(t, synth.Write(path, groups), "an unreadable previous report degrades to start-from-empty")

	book, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer book.Close()
	assert.Equal(t, []string{"raw_l1_berti"}, book.GetSheetList())

	got, err := book.GetCellValue("raw_l1_berti", "A5")
	require.NoError(t, err)
	assert.Equal(t, "gcc.txt", got)
}

func TestWriteDropsStaleOwnedSheets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data_dump.xlsx")
	synth := report.NewSynthesizer(nil, testFields, "no_pref")

	groups := []report.Group{
		{Key: "l1_berti", Experiments: []report.Experiment{
			{Name: "exp1", Records: []metrics.Record{record("gcc.txt", "exp1", 1.2, 100)}},
		}},
		{Key: "l2_ipcp", Experiments: []report.Experiment{
			{Name: "exp1", Records: []metrics.Record{record("gcc.txt", "exp1", 1.1, 100)}},
		}},
	}
	require.NoError(t, synth.Write(path, groups))

	// The l2_ipcp group disappears from the dataset; its owned sheet must too.
	require.NoError(t, synth.Write(path, groups[:1]))

	book, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer book.Close()
	assert.Equal(t, []string{"raw_l1_berti"}, book.GetSheetList())
}

func TestWriteEmptyDataset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data_dump.xlsx")
	synth := report.NewSynthesizer(nil, testFields, "no_pref")
	require.NoError(t, synth.Write(path, nil))

	book, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer book.Close()
	assert.Equal(t, []string{"Sheet1"}, book.GetSheetList(), "an empty workbook keeps the default sheet")
}
