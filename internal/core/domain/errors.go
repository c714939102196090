package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidConfig indicates the configuration failed validation.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrRunInProgress indicates a pipeline run is already in flight.
	ErrRunInProgress = errors.New("pipeline run in progress")

	// ErrSourceFailed indicates a feed or quote source exhausted its retries.
	ErrSourceFailed = errors.New("source failed")

	// ErrEvaluatorUnavailable indicates the trust evaluator could not be reached.
	// Verification falls back to the tier-1 allow-list.
	ErrEvaluatorUnavailable = errors.New("evaluator unavailable")

	// ErrUnsupportedProvider indicates an unknown evaluator provider.
	ErrUnsupportedProvider = errors.New("unsupported provider")
)

// SourceError labels a failure with the name of the source that produced it.
type SourceError struct {
	// Source is the human-readable source name.
	Source string

	// Attempts is how many fetch attempts were made.
	Attempts int

	// Err is the last underlying error.
	Err error
}

// Error implements the error interface.
func (e *SourceError) Error() string {
	if e.Attempts > 1 {
		return fmt.Sprintf("%s: failed after %d attempts: %v", e.Source, e.Attempts, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Source, e.Err)
}

// Unwrap exposes both the sentinel and the cause to errors.Is and errors.As.
func (e *SourceError) Unwrap() []error {
	return []error{ErrSourceFailed, e.Err}
}
