package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Striender/Research-data/pkg/collector"
)

func TestPrintSummaryText(t *testing.T) {
	var buf bytes.Buffer
	sum := collector.Summary{
		FreshCount:  3,
		ReusedCount: 7,
		ReportPath:  "/out/data_dump.xlsx",
	}
	require.NoError(t, printSummary(&buf, collector.OutputFormatText, sum))

	out := buf.String()
	assert.Contains(t, out, "Found 3 new/modified files")
	assert.Contains(t, out, "Skipped 7 unchanged files")
	assert.Contains(t, out, "Successfully created/updated report: /out/data_dump.xlsx")
	assert.NotContains(t, out, "Warning")
}

func TestPrintSummaryTextUpToDate(t *testing.T) {
	var buf bytes.Buffer
	sum := collector.Summary{ReusedCount: 10, UpToDate: true}
	require.NoError(t, printSummary(&buf, collector.OutputFormatText, sum))

	out := buf.String()
	assert.Contains(t, out, "Output is already up-to-date.")
	assert.NotContains(t, out, "Successfully created/updated report")
}

func TestPrintSummaryTextWarnsOnFailures(t *testing.T) {
	var buf bytes.Buffer
	sum := collector.Summary{FreshCount: 1, FailedCount: 2, ReportPath: "/out/r.xlsx"}
	require.NoError(t, printSummary(&buf, collector.OutputFormatText, sum))
	assert.Contains(t, buf.String(), "Warning: 2 file(s) could not be read")
}

func TestPrintSummaryJSON(t *testing.T) {
	var buf bytes.Buffer
	sum := collector.Summary{
		InputPath:   "/res",
		ReportPath:  "/out/data_dump.xlsx",
		Schema:      "full",
		FreshCount:  3,
		ReusedCount: 7,
		GroupCount:  2,
	}
	require.NoError(t, printSummary(&buf, collector.OutputFormatJSON, sum))

	var decoded collector.Summary
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, sum, decoded)
}
