package domain

import (
	"errors"
	"fmt"
)

var (
	ErrAccessDenied  = errors.New("access denied")
	ErrNoSession     = errors.New("no active payout session")
	ErrNoInvoice     = errors.New("no invoice to check")
	ErrInvalidAmount = errors.New("settlement amount must be positive")
)

// ProcessorError is a failed call to the payment processor: either a
// transport-level fault (Err set) or a non-2xx response (StatusCode and
// raw Body set).
type ProcessorError struct {
	Op         string
	StatusCode int
	Body       string
	Err        error
}

func (e *ProcessorError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s: processor returned %d: %s", e.Op, e.StatusCode, e.Body)
}

func (e *ProcessorError) Unwrap() error {
	return e.Err
}
