package availability

import (
	"context"
	"errors"
	"fmt"
)

// The three error kinds callers branch on. InvalidInput is fixable by the
// caller and never retried; StoreUnavailable and Timeout are transient and
// get different backoff treatment, so they stay distinct.
var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrStoreUnavailable = errors.New("store unavailable")
	ErrTimeout          = errors.New("deadline exceeded")
)

// FieldError carries the offending request field for 4xx responses.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return e.Field + ": " + e.Reason
}

func (e *FieldError) Unwrap() error {
	return ErrInvalidInput
}

func invalidf(field, format string, args ...any) error {
	return &FieldError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// storeErr classifies a failed store read, keeping the pipeline stage and
// the underlying cause in the chain. Context expiry maps to Timeout so
// callers never mistake a slow pipeline for a store outage.
func storeErr(stage string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s: %w: %w", stage, ErrTimeout, err)
	}
	return fmt.Errorf("%s: %w: %w", stage, ErrStoreUnavailable, err)
}
