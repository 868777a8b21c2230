package collector

// Status classifies what happened to one scanned file during a run.
type Status string

const (
	// StatusFresh marks a new or modified file that was read and extracted.
	StatusFresh Status = "fresh"
	// StatusReused marks an unchanged file whose cached record was reused.
	StatusReused Status = "reused"
	// StatusFailed marks an unreadable file, excluded from this run and
	// retried on the next one.
	StatusFailed Status = "failed"
)

// OutputFormat selects how the run summary is printed when the run finishes.
type OutputFormat string

const (
	OutputFormatText OutputFormat = "text"
	OutputFormatJSON OutputFormat = "json"
)
