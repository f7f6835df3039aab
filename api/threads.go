// File: api/threads.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Threads is the single operation set every backend implements and every
// caller uses, normally through the dispatch table in package facade.

package api

// Threads is the thread lifecycle contract.
type Threads interface {
	// Create starts a thread with DefaultThreadParams.
	Create(entry StartRoutine, arg any) (ThreadID, error)

	// CreateWithParams starts a thread. params and entry must be non-nil.
	CreateWithParams(params *ThreadParams, entry StartRoutine, arg any) (ThreadID, error)

	// Join blocks until the thread terminates and releases its handle.
	Join(id ThreadID) (any, error)

	// Cancel requests termination; see Capabilities().Cancel for what a
	// nil error actually means on the backend.
	Cancel(id ThreadID) error

	// Detach makes the thread non-joinable; its resources are reclaimed
	// when it terminates.
	Detach(id ThreadID) error

	// Sleep blocks the calling thread for at least d.
	Sleep(d Ticks)

	// SleepUntil sleeps until the clock reaches t. Past times return at once.
	SleepUntil(t Ticks)

	// CurrentID returns the handle of the calling thread, or NoThread when
	// the caller was not created by this backend.
	CurrentID() ThreadID

	// Name copies the thread name into buf and returns its length. NoThread
	// names the calling OS thread.
	Name(id ThreadID, buf []byte) (int, error)

	// TestCancel is a cancellation point for the calling thread.
	TestCancel()

	// Capabilities describes the backend semantics.
	Capabilities() Capabilities
}

// Clock supplies the current time in ticks. Only differences between two
// readings are meaningful.
type Clock interface {
	Now() Ticks
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() Ticks

func (f ClockFunc) Now() Ticks { return f() }
