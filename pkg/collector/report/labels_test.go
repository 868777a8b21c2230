package report_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Striender/Research-data/pkg/collector/report"
)

func TestGroupLabel(t *testing.T) {
	assert.Equal(t, "Baseline (No Prefetcher)", report.GroupLabel("no_pref", "no_pref"))
	assert.Equal(t, "Data Prefetcher: Berti at L1", report.GroupLabel("l1_berti", "no_pref"))
	assert.Equal(t, "Data Prefetcher: Ip stride at L2", report.GroupLabel("l2_ip_stride", "no_pref"))
	assert.Equal(t, "Misc", report.GroupLabel("misc", "no_pref"))
}

func TestExperimentLabel(t *testing.T) {
	assert.Equal(t,
		"Experiment 3: Replacement Policy LRU at L2 and SHIP at LLC",
		report.ExperimentLabel("exp3_lru_ship"))
	assert.Equal(t,
		"Experiment 12: Replacement Policy DRRIP at L2 and LRU at LLC",
		report.ExperimentLabel("exp12_drrip_lru"))
	assert.Equal(t, "Warmup Run", report.ExperimentLabel("warmup_run"))
	assert.Equal(t, "Exp1", report.ExperimentLabel("exp1"))
}
