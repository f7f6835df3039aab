//go:build unix
// +build unix

// File: adapters/status_posix.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package adapters

import (
	"golang.org/x/sys/unix"

	"github.com/momentics/hioload-thread/api"
)

// posixStatus maps pthread-style errno results. EINVAL means different
// things per call, hence the op.
func posixStatus(o op, errno unix.Errno) api.Status {
	if errno == 0 {
		return api.StatusSuccess
	}
	switch o {
	case opCreate:
		switch errno {
		case unix.EAGAIN:
			return api.StatusResourceExhausted
		case unix.EINVAL:
			return api.StatusInvalidArgument
		case unix.EPERM:
			return api.StatusPermissionDenied
		}
		return api.StatusCreationFailed
	case opAttrInit:
		return api.StatusAttributeInitializationFailed
	case opAttrStack:
		return api.StatusStackSizeConfigurationFailed
	case opJoin:
		switch errno {
		case unix.EDEADLK:
			return api.StatusDeadlockDetected
		case unix.EINVAL:
			return api.StatusThreadNotJoinable
		case unix.ESRCH:
			return api.StatusThreadDoesNotExist
		}
		return api.StatusJoinFailed
	case opCancel:
		if errno == unix.ESRCH {
			return api.StatusThreadDoesNotExist
		}
		return api.StatusCancellationFailed
	case opDetach:
		switch errno {
		case unix.ESRCH:
			return api.StatusThreadDoesNotExist
		case unix.EINVAL:
			return api.StatusThreadNotJoinable
		}
		return api.StatusDetachFailed
	}
	return api.StatusInvalidOperation
}

func posixErr(o op, errno unix.Errno) error {
	return api.OpError(o.String(), posixStatus(o, errno), int64(errno))
}
