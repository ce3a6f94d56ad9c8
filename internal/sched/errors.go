package sched

import (
	"errors"
	"fmt"
)

// SchedulingErrorCode categorizes scheduling failures.
type SchedulingErrorCode string

const (
	// ErrCodeInPast indicates a Task was scheduled before the current time.
	ErrCodeInPast SchedulingErrorCode = "SCHEDULE_IN_PAST"

	// ErrCodeInvalidTime indicates a NaN or infinite execution time.
	ErrCodeInvalidTime SchedulingErrorCode = "INVALID_TIME"

	// ErrCodeNilTask indicates a Task without a callable.
	ErrCodeNilTask SchedulingErrorCode = "NIL_TASK"
)

// SchedulingError is returned when a Task cannot be scheduled.
// Nothing is enqueued when it is returned.
type SchedulingError struct {
	Code   SchedulingErrorCode
	Time   float64 // requested execution time
	Now    float64 // clock time at the call
	Target string
	Op     string
}

// Error implements the error interface.
func (e *SchedulingError) Error() string {
	switch e.Code {
	case ErrCodeInPast:
		return fmt.Sprintf("%s: cannot schedule %s on %s at t=%.4f, clock is at t=%.4f",
			e.Code, e.Op, e.Target, e.Time, e.Now)
	case ErrCodeInvalidTime:
		return fmt.Sprintf("%s: cannot schedule %s on %s at t=%v", e.Code, e.Op, e.Target, e.Time)
	default:
		return fmt.Sprintf("%s: %s on %s (t=%.4f)", e.Code, e.Op, e.Target, e.Now)
	}
}

// ActionError wraps a failure raised while executing a Task.
// It aborts the run.
type ActionError struct {
	Time   float64
	Target string
	Op     string
	Err    error
}

// Error implements the error interface.
func (e *ActionError) Error() string {
	return fmt.Sprintf("action %s on %s failed at t=%.4f: %v", e.Op, e.Target, e.Time, e.Err)
}

// Unwrap returns the underlying error.
func (e *ActionError) Unwrap() error {
	return e.Err
}

// IsSchedulingError returns true if err is (or wraps) a SchedulingError.
func IsSchedulingError(err error) bool {
	var se *SchedulingError
	return errors.As(err, &se)
}

// IsActionError returns true if err is (or wraps) an ActionError.
func IsActionError(err error) bool {
	var ae *ActionError
	return errors.As(err, &ae)
}
