package models

import (
	"errors"
	"fmt"
)

// The error taxonomy maps one-to-one onto the CLI exit code ladder.
// Every operation surfaces exactly one of these kinds, so the front-end can
// translate failures into machine-readable error objects without string
// matching.

// ErrStoreCorrupt marks an on-disk signature or history store that fails
// schema parsing. There is no silent fallback to an empty store.
var ErrStoreCorrupt = errors.New("store corrupt")

// ValidationError rejects a malformed signature-update document.
// The existing store is guaranteed untouched when this is returned.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s", e.Reason)
}

// ArgumentError rejects missing or invalid required input before any work
// begins.
type ArgumentError struct {
	Reason string
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("invalid argument: %s", e.Reason)
}

// IsValidation reports whether err (or anything it wraps) is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsArgument reports whether err (or anything it wraps) is an ArgumentError.
func IsArgument(err error) bool {
	var ae *ArgumentError
	return errors.As(err, &ae)
}
