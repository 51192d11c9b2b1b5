package exploration

import (
	"errors"
	"fmt"
)

var (
	// ErrSchema is returned when an expected column is absent from a CSV header.
	ErrSchema = errors.New("schema error")
	// ErrParse is returned when a field that must be numeric is not.
	ErrParse = errors.New("parse error")
	// ErrInvalidInput is returned for empty runs and malformed directory trees.
	ErrInvalidInput = errors.New("invalid input")
	// ErrEmptyValidSet is returned when a minimum or maximum is requested over
	// samples that are all invalid.
	ErrEmptyValidSet = errors.New("no valid samples")
)

// parseError locates a malformed field inside a CSV file.
func parseError(path string, line int, column, value string) error {
	return fmt.Errorf("%w: %s:%d: column %q: %q is not a number", ErrParse, path, line, column, value)
}
