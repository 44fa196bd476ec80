package ticksched

import (
	"errors"
	"fmt"
)

// ErrTaskFailed is the fault recorded when a Task returns Fail(nil).
var ErrTaskFailed = errors.New("ticksched: coroutine failed")

// PanicError wraps a value recovered from a panicking Task. It is delivered
// to the [FaultReporter] as the report's Err.
type PanicError struct {
	Value any
}

// Error implements the error interface.
func (e PanicError) Error() string {
	return fmt.Sprintf("ticksched: coroutine panicked: %v", e.Value)
}

// Unwrap returns the underlying error if the panic value is an error type,
// enabling use with [errors.Is] and [errors.As]. If the value is not an
// error (e.g. a string), returns nil.
func (e PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// FaultReport describes a single faulted coroutine: which handle it was,
// the group and segment it ran in, and the fault itself.
type FaultReport struct {
	Err     error
	Group   string
	Handle  Handle
	Segment Segment
}

// FaultReporter receives a report for every faulted coroutine. The
// scheduler's own behavior (free the slot, continue processing the remaining
// slots) does not depend on what the reporter does.
//
// The default reporter logs the fault via the configured logger, bounding
// repeated reports per group (see [WithFaultReporter], [WithLogger]).
type FaultReporter func(FaultReport)
