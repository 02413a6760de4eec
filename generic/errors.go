/*
errors.go - Centralized error types for the cashflow engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  Callers wrap these with context and test them with errors.Is / errors.As.

ERROR CATEGORIES:
  1. Range errors - projection windows that end at or before they start
  2. Definition errors - event definitions that cannot be simulated
  3. Limit errors - projections with too many buckets
  4. Registry errors - unknown or duplicate budgets

WHAT IS NOT AN ERROR:
  - An unsupported interval string (normalized to "1 day")
  - Registering an event twice (no-op)
  - Popping an empty heap (reported via ok=false)
*/
package generic

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidRange is returned when a projection end date is not strictly
	// after its start date.
	ErrInvalidRange = errors.New("invalid date range")

	// ErrTooManyBuckets is returned when a projection would exceed the
	// configured bucket limit.
	ErrTooManyBuckets = errors.New("too many buckets")

	// ErrInvalidEvent is returned when an event definition cannot be built.
	ErrInvalidEvent = errors.New("invalid event definition")

	// ErrBudgetNotFound is returned when a named budget doesn't exist.
	ErrBudgetNotFound = errors.New("budget not found")

	// ErrDuplicateBudget is returned when creating a budget whose name is taken.
	ErrDuplicateBudget = errors.New("budget already exists")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// InvalidRangeError carries the offending window.
type InvalidRangeError struct {
	Start TimePoint
	End   TimePoint
}

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("invalid date range s: %s e: %s", e.Start, e.End)
}

func (e *InvalidRangeError) Unwrap() error {
	return ErrInvalidRange
}

// BucketLimitError reports a window that splits into more than Max buckets
// at the requested step.
type BucketLimitError struct {
	Window Period
	Step   Interval
	Max    int
}

func (e *BucketLimitError) Error() string {
	return fmt.Sprintf("%s in steps of %s exceeds %d buckets", e.Window, e.Step, e.Max)
}

func (e *BucketLimitError) Unwrap() error {
	return ErrTooManyBuckets
}

// EventDefinitionError names the field that made a definition unusable.
type EventDefinitionError struct {
	Field  string
	Reason string
}

func (e *EventDefinitionError) Error() string {
	return fmt.Sprintf("invalid event %s: %s", e.Field, e.Reason)
}

func (e *EventDefinitionError) Unwrap() error {
	return ErrInvalidEvent
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidRange) ||
		errors.Is(err, ErrTooManyBuckets) ||
		errors.Is(err, ErrInvalidEvent)
}

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrBudgetNotFound)
}

// IsConflict returns true if the error indicates a naming collision.
func IsConflict(err error) bool {
	return errors.Is(err, ErrDuplicateBudget)
}
