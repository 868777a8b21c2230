package collector

import "errors"

var (
	// ErrConfigValidation indicates the provided Options failed the checks at
	// the start of Collect. Returned directly as a fatal error.
	ErrConfigValidation = errors.New("invalid configuration options provided")

	// ErrScan indicates the results tree could not be traversed at all, e.g.
	// the root is missing or unreadable. Individual unreadable files are not
	// scan errors; they are logged and retried on the next run.
	ErrScan = errors.New("failed to scan results directory")
)
