// Package errs defines the typed error taxonomy shared by the concurrency
// core and the CSV import collaborator. Each kind is a distinct struct
// type with an Error() method and, where it wraps a cause, an Unwrap
// method — the same shape Toolkit/Commons/errors uses for provider errors,
// rather than sentinel values created with errors.New.
package errs

import (
	"fmt"
	"strings"
)

// InvalidArgumentError reports a constructor or builder rejecting its input.
type InvalidArgumentError struct {
	Field   string
	Message string
}

func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("invalid argument %q: %s", e.Field, e.Message)
}

// ShutdownError reports a submission against an already shut-down pool, or
// a pending task rejected because the pool shut down while it was queued.
type ShutdownError struct {
	PoolName string
}

func (e *ShutdownError) Error() string {
	if e.PoolName == "" {
		return "pool is shut down"
	}
	return fmt.Sprintf("pool %q is shut down", e.PoolName)
}

// CancelledError reports an observation of a cancelled future or task.
type CancelledError struct {
	TaskID string
}

func (e *CancelledError) Error() string {
	if e.TaskID == "" {
		return "task was cancelled"
	}
	return fmt.Sprintf("task %q was cancelled", e.TaskID)
}

// TerminatedError is raised by a TerminationFlag's AssertRunning when the
// flag observes that Running() is false. It optionally wraps a
// caller-supplied cause.
type TerminatedError struct {
	Cause error
}

func (e *TerminatedError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("execution terminated: %v", e.Cause)
	}
	return "execution terminated"
}

func (e *TerminatedError) Unwrap() error {
	return e.Cause
}

// TimeoutError is raised when the bounded-concurrency driver exhausts its
// submit-retry budget. Its message must contain both the attempt count and
// the wait delay per the driver's observable contract.
type TimeoutError struct {
	Attempts   int
	WaitMillis int64
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("Attempted to submit tasks %d times with a %dms delay", e.Attempts, e.WaitMillis)
}

// TaskError wraps a single task's failure with its identifying task ID.
type TaskError struct {
	TaskID string
	Cause  error
}

func (e *TaskError) Error() string {
	return fmt.Sprintf("task %q failed: %v", e.TaskID, e.Cause)
}

func (e *TaskError) Unwrap() error {
	return e.Cause
}

// WorkerCrashError reports a worker abending while executing a task.
type WorkerCrashError struct {
	WorkerName string
	Cause      error
}

func (e *WorkerCrashError) Error() string {
	return fmt.Sprintf("worker %q crashed: %v", e.WorkerName, e.Cause)
}

func (e *WorkerCrashError) Unwrap() error {
	return e.Cause
}

// CompositeError chains multiple task failures observed across a single
// bounded-concurrency driver run into one surfaced error, preserving the
// order in which the failures were observed. When a run is cut short by
// termination or a retry timeout, the driver returns that error instead
// and the failures chained so far are not returned.
type CompositeError struct {
	Causes []error
}

// Add appends cause to the receiver if cause is non-nil. Callers should use
// AppendError, which allocates lazily; Add is for an already-allocated
// composite.
func (e *CompositeError) Add(cause error) {
	if cause == nil {
		return
	}
	e.Causes = append(e.Causes, cause)
}

func (e *CompositeError) Error() string {
	if len(e.Causes) == 0 {
		return "composite error with no causes"
	}
	parts := make([]string, len(e.Causes))
	for i, c := range e.Causes {
		parts[i] = c.Error()
	}
	return fmt.Sprintf("%d task(s) failed: [%s]", len(e.Causes), strings.Join(parts, "; "))
}

// Unwrap exposes every chained cause so errors.Is/errors.As can see through
// the composite (multi-error unwrap, Go 1.20+).
func (e *CompositeError) Unwrap() []error {
	return e.Causes
}

// Empty reports whether no causes have been chained.
func (e *CompositeError) Empty() bool {
	return len(e.Causes) == 0
}

// AppendError chains cause onto composite, allocating a new CompositeError
// if composite is nil and cause is non-nil. It returns the (possibly new)
// composite, or nil if both composite and cause are nil — the accumulator
// pattern used by the bounded-concurrency driver's drain loop.
func AppendError(composite *CompositeError, cause error) *CompositeError {
	if cause == nil {
		return composite
	}
	if composite == nil {
		composite = &CompositeError{}
	}
	composite.Add(cause)
	return composite
}
