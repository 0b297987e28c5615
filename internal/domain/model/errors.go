package model

import (
	"errors"
	"fmt"
)

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	// ErrUnknownLift marks an unrecognized lift-type token. This is an
	// input-validation failure raised before any engine work starts.
	ErrUnknownLift = errors.New("unknown lift type")

	// ErrInvalidRequest marks a filter request that cannot be compiled.
	ErrInvalidRequest = errors.New("invalid request")
)

// NewKind tags a sentinel kind with the operation that raised it.
func NewKind(op string, kind error) error {
	return fmt.Errorf("%s: %w", op, kind)
}

// Wrap annotates an upstream error with the operation that observed it.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", op, err)
}
