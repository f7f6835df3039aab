// File: api/status.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Shared outcome taxonomy contributed by the thread core.

package api

// Status is the outcome of a thread operation.
type Status int

const (
	StatusSuccess Status = iota
	StatusNullArgument
	StatusInvalidArgument
	StatusUnsupportedParameterVersion
	StatusResourceExhausted
	StatusPermissionDenied
	StatusAttributeInitializationFailed
	StatusStackSizeConfigurationFailed
	StatusCreationFailed
	StatusJoinFailed
	StatusDeadlockDetected
	StatusThreadDoesNotExist
	StatusThreadNotJoinable
	StatusCancellationFailed
	StatusDetachFailed
	StatusInvalidOperation
)

var statusNames = [...]string{
	StatusSuccess:                       "success",
	StatusNullArgument:                  "null argument",
	StatusInvalidArgument:               "invalid argument",
	StatusUnsupportedParameterVersion:   "unsupported parameter version",
	StatusResourceExhausted:             "resource exhausted",
	StatusPermissionDenied:              "permission denied",
	StatusAttributeInitializationFailed: "attribute initialization failed",
	StatusStackSizeConfigurationFailed:  "stack size configuration failed",
	StatusCreationFailed:                "creation failed",
	StatusJoinFailed:                    "join failed",
	StatusDeadlockDetected:              "deadlock detected",
	StatusThreadDoesNotExist:            "thread does not exist",
	StatusThreadNotJoinable:             "thread not joinable",
	StatusCancellationFailed:            "cancellation failed",
	StatusDetachFailed:                  "detach failed",
	StatusInvalidOperation:              "invalid operation",
}

func (s Status) String() string {
	if s >= 0 && int(s) < len(statusNames) {
		return statusNames[s]
	}
	return "unknown status"
}

// Failed reports whether s is anything but StatusSuccess.
func (s Status) Failed() bool { return s != StatusSuccess }
