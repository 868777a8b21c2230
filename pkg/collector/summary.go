package collector

import "time"

// Summary is the user-visible outcome of one Collect run.
type Summary struct {
	InputPath       string    `json:"inputPath"`
	ReportPath      string    `json:"reportPath"`
	ConfigFilePath  string    `json:"configFilePath,omitempty"`
	Schema          string    `json:"schema"`
	ScannedCount    int       `json:"scannedCount"`
	FreshCount      int       `json:"freshCount"`
	ReusedCount     int       `json:"reusedCount"`
	FailedCount     int       `json:"failedCount"`
	GroupCount      int       `json:"groupCount"`
	UpToDate        bool      `json:"upToDate"`
	DurationSeconds float64   `json:"durationSeconds"`
	Timestamp       time.Time `json:"timestamp"`
}
