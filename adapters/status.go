// File: adapters/status.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Status mapper: native outcome codes to the shared api.Status taxonomy.
// Codes not listed map to the generic failure of the operation.

package adapters

import (
	"strconv"

	"github.com/momentics/hioload-thread/api"
)

type op int

const (
	opCreate op = iota
	opAttrInit
	opAttrStack
	opJoin
	opCancel
	opDetach
	opName
)

func (o op) String() string {
	switch o {
	case opCreate, opAttrInit, opAttrStack:
		return "create"
	case opJoin:
		return "join"
	case opCancel:
		return "cancel"
	case opDetach:
		return "detach"
	case opName:
		return "name"
	}
	return "op(" + strconv.Itoa(int(o)) + ")"
}

// win32Error is a Win32 system error code.
type win32Error uint32

const (
	errorSuccess          win32Error = 0
	errorAccessDenied     win32Error = 5
	errorInvalidHandle    win32Error = 6
	errorNotEnoughMemory  win32Error = 8
	errorGenFailure       win32Error = 31
	errorInvalidParameter win32Error = 87
	errorPossibleDeadlock win32Error = 1131
)

func (e win32Error) Error() string { return "win32 error " + strconv.FormatUint(uint64(e), 10) }

func win32Status(o op, code win32Error) api.Status {
	if code == errorSuccess {
		return api.StatusSuccess
	}
	switch o {
	case opCreate:
		switch code {
		case errorNotEnoughMemory:
			return api.StatusResourceExhausted
		case errorInvalidParameter:
			return api.StatusInvalidArgument
		case errorAccessDenied:
			return api.StatusPermissionDenied
		}
		return api.StatusCreationFailed
	case opJoin:
		switch code {
		case errorInvalidHandle:
			return api.StatusThreadDoesNotExist
		case errorPossibleDeadlock:
			return api.StatusDeadlockDetected
		}
		return api.StatusJoinFailed
	case opCancel:
		if code == errorInvalidHandle {
			return api.StatusThreadDoesNotExist
		}
		return api.StatusCancellationFailed
	case opDetach:
		if code == errorInvalidHandle {
			return api.StatusThreadDoesNotExist
		}
		return api.StatusDetachFailed
	}
	return api.StatusInvalidOperation
}

func win32Err(o op, code win32Error) error {
	return api.OpError(o.String(), win32Status(o, code), int64(code))
}

// invalidHandle is the error for NoThread, which no backend ever issues.
func invalidHandle(o op) error {
	return api.OpError(o.String(), api.StatusInvalidArgument, 0)
}
