// Package api
// Author: momentics <momentics@gmail.com>
//
// Structured errors for the thread lifecycle core. Every operation reports
// its outcome as an *Error whose Status belongs to the shared taxonomy, so
// callers never need platform-specific knowledge.

package api

import (
	"errors"
	"fmt"
)

// Sentinels for errors.Is matching. Comparison is by Status only.
var (
	ErrNullArgument                  = NewError(StatusNullArgument, "null argument")
	ErrInvalidArgument               = NewError(StatusInvalidArgument, "invalid argument")
	ErrUnsupportedParameterVersion   = NewError(StatusUnsupportedParameterVersion, "unsupported thread parameters version")
	ErrResourceExhausted             = NewError(StatusResourceExhausted, "not enough resources to create thread")
	ErrPermissionDenied              = NewError(StatusPermissionDenied, "permission denied")
	ErrAttributeInitializationFailed = NewError(StatusAttributeInitializationFailed, "thread attribute initialization failed")
	ErrStackSizeConfigurationFailed  = NewError(StatusStackSizeConfigurationFailed, "thread stack size configuration failed")
	ErrCreationFailed                = NewError(StatusCreationFailed, "thread creation failed")
	ErrJoinFailed                    = NewError(StatusJoinFailed, "thread join failed")
	ErrDeadlockDetected              = NewError(StatusDeadlockDetected, "deadlock detected")
	ErrThreadDoesNotExist            = NewError(StatusThreadDoesNotExist, "thread does not exist")
	ErrThreadNotJoinable             = NewError(StatusThreadNotJoinable, "thread is not joinable")
	ErrCancellationFailed            = NewError(StatusCancellationFailed, "thread cancellation failed")
	ErrDetachFailed                  = NewError(StatusDetachFailed, "thread detach failed")
	ErrInvalidOperation              = NewError(StatusInvalidOperation, "invalid operation")
)

// Error represents a structured error with status and context.
type Error struct {
	Status  Status
	Op      string // operation that failed, e.g. "join"
	Native  int64  // backend native code, 0 when none applies
	Message string
	Context map[string]any
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Status.String()
	}
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Native != 0 {
		msg = fmt.Sprintf("%s (native code %d)", msg, e.Native)
	}
	if len(e.Context) == 0 {
		return msg
	}
	return fmt.Sprintf("%s (context: %+v)", msg, e.Context)
}

// Is reports whether target is an *Error with the same Status.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Status == e.Status
}

// NewError creates a new structured error.
func NewError(status Status, message string) *Error {
	return &Error{
		Status:  status,
		Message: message,
	}
}

// OpError builds the error an operation returns for status. It returns nil
// for StatusSuccess.
func OpError(op string, status Status, native int64) error {
	if status == StatusSuccess {
		return nil
	}
	return &Error{Status: status, Op: op, Native: native}
}

// WithContext adds context information to the error.
func (e *Error) WithContext(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// StatusOf extracts the outcome from err. A nil error is StatusSuccess and
// an error outside the taxonomy is StatusInvalidOperation.
func StatusOf(err error) Status {
	if err == nil {
		return StatusSuccess
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Status
	}
	return StatusInvalidOperation
}
