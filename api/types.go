// File: api/types.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Core value types shared by every backend of the thread core.

package api

import (
	"strconv"
	"time"
)

// ThreadID is an opaque handle to a created thread. Handles are never
// reused within a backend, so a stale handle is reported as a missing
// thread rather than aliasing a newer one.
type ThreadID uint64

// NoThread is the zero handle. It never identifies a created thread.
const NoThread ThreadID = 0

func (id ThreadID) String() string {
	if id == NoThread {
		return "thread(none)"
	}
	return "thread(" + strconv.FormatUint(uint64(id), 10) + ")"
}

// StartRoutine is the entry point of a thread. Its result is what Join
// reports on backends that preserve pointer-sized results.
type StartRoutine func(arg any) any

// Ticks counts 100-nanosecond intervals. All durations and absolute times
// in this module use it.
type Ticks uint64

const (
	HundredsOfNanosInAMicrosecond Ticks = 10
	HundredsOfNanosInAMillisecond Ticks = 10 * 1000
	HundredsOfNanosInASecond      Ticks = 10 * 1000 * 1000
)

// FromDuration converts d to ticks. Negative durations become zero.
func FromDuration(d time.Duration) Ticks {
	if d <= 0 {
		return 0
	}
	return Ticks(d / 100)
}

// Duration converts t to a time.Duration, saturating at the maximum.
func (t Ticks) Duration() time.Duration {
	const maxTicks = Ticks(1<<63-1) / 100
	if t > maxTicks {
		return time.Duration(1<<63 - 1)
	}
	return time.Duration(t) * 100
}

// MaxThreadNameLen is the smallest buffer Name accepts, terminator included.
const MaxThreadNameLen = 16

type canceledResult struct{}

func (canceledResult) String() string { return "canceled" }

// Canceled is the result Join reports for a thread that ended through
// cooperative cancellation instead of returning from its entry.
var Canceled any = canceledResult{}

// CancelMode describes what Cancel actually does on a backend.
type CancelMode int

const (
	// CancelForceful terminates the target at once without its cleanup.
	CancelForceful CancelMode = iota
	// CancelCooperative only takes effect when the target reaches a
	// cancellation point (TestCancel or Sleep).
	CancelCooperative
	// CancelLivenessOnly does not terminate anything: Cancel just checks that
	// the target still exists.
	CancelLivenessOnly
)

func (m CancelMode) String() string {
	switch m {
	case CancelForceful:
		return "forceful"
	case CancelCooperative:
		return "cooperative"
	case CancelLivenessOnly:
		return "liveness-only"
	}
	return "unknown"
}

// Capabilities describes the semantics a backend really provides.
type Capabilities struct {
	Backend         string     // "posix", "win32", "unsupported", "fake"
	Cancel          CancelMode // meaning of a successful Cancel
	NativeSleepUnit Ticks      // unit of a single native sleep call
	NativeSleepMax  uint64     // largest native sleep, in NativeSleepUnit
	ThreadNames     bool       // Name reads names from the OS
	ExitCodeOnly    bool       // Join returns a uint32 exit code, not the entry result
}
