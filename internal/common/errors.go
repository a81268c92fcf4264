// Package common provides shared utilities and types used across the application.
package common

import (
	"errors"
	"fmt"
)

// Common application errors.
var (
	// Benchmark errors.
	ErrNoBenchmark = errors.New("no benchmark for sector")

	// Registry errors.
	ErrRegistryRateLimit = errors.New("registry rate limit exceeded")
	ErrDocumentNotFound  = errors.New("document not found")

	// Database errors.
	ErrNotFound = errors.New("not found")

	// Configuration errors.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// UnparseableError indicates a filing byte stream that could not be
// tokenized at all. A meaningful fraction of filings are scanned images or
// free-form PDFs, so this is expected and scoped to the single filing:
// callers skip the item in bulk or report "no financial data" interactively.
type UnparseableError struct {
	Reason string
}

func (e *UnparseableError) Error() string {
	return fmt.Sprintf("document unparseable: %s", e.Reason)
}

// NewUnparseableError creates an UnparseableError with the given reason.
func NewUnparseableError(reason string) error {
	return &UnparseableError{Reason: reason}
}

// IsUnparseable reports whether err wraps an UnparseableError.
func IsUnparseable(err error) bool {
	var ue *UnparseableError
	return errors.As(err, &ue)
}
