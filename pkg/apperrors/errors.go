package apperrors

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyQuestion          = errors.New("no query provided")
	ErrEmptySQL               = errors.New("no SQL provided")
	ErrMalformedModelOutput   = errors.New("malformed model output")
	ErrNoTablesExtracted      = errors.New("no tables extracted")
	ErrResourceUnavailable    = errors.New("resource unavailable")
	ErrExampleRetrievalFailed = errors.New("example retrieval failed")
	ErrOnlySelectAllowed      = errors.New("only SELECT allowed")
)

// MalformedOutputError is returned when a structured model response cannot be
// decoded. Raw holds the response text exactly as received.
type MalformedOutputError struct {
	Raw   string
	Cause error
}

func (e *MalformedOutputError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v: %q", ErrMalformedModelOutput, e.Cause, e.Raw)
	}
	return fmt.Sprintf("%s: %q", ErrMalformedModelOutput, e.Raw)
}

func (e *MalformedOutputError) Unwrap() error { return e.Cause }

// Is makes errors.Is(err, ErrMalformedModelOutput) match.
func (e *MalformedOutputError) Is(target error) bool {
	return target == ErrMalformedModelOutput
}

// RetrievalError wraps a failure of the example index (embedding or lookup).
type RetrievalError struct {
	Cause error
}

func (e *RetrievalError) Error() string {
	return fmt.Sprintf("%s: %v", ErrExampleRetrievalFailed, e.Cause)
}

func (e *RetrievalError) Unwrap() error { return e.Cause }

func (e *RetrievalError) Is(target error) bool {
	return target == ErrExampleRetrievalFailed
}

// NoTablesError reports an extraction that produced no tables for a question.
func NoTablesError(question string) error {
	return fmt.Errorf("%w for: '%s'", ErrNoTablesExtracted, question)
}
