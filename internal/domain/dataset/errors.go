package dataset

import (
	"errors"
)

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	// ErrNoData means the configured dataset file and every fallback
	// candidate are missing. Fatal at construction time.
	ErrNoData = errors.New("dataset file not found")

	// ErrLoad wraps parquet decoding failures.
	ErrLoad = errors.New("dataset load failed")
)
