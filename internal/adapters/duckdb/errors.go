package duckdb

import (
	"errors"
)

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	// ErrQuery marks failures inside the embedded SQL engine: malformed
	// queries, missing columns, type mismatches, connection failures.
	// Distinct from input-validation errors, which are model sentinels
	// raised before query construction.
	ErrQuery = errors.New("sql query failed")

	// ErrOpen marks engine construction failures.
	ErrOpen = errors.New("sql engine open failed")
)
