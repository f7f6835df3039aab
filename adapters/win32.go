// File: adapters/win32.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Win32-family adapter. It is the default backend on Windows and builds on
// every target so it can be selected explicitly. Threads start through the
// closure trampoline, Join reports the 32-bit exit code, and Cancel has
// TerminateThread semantics: the handle is signalled at once with exit
// code 0 and nothing waits for the target's cleanup. Go cannot stop a
// goroutine from outside, so the terminated thread is cut off at its next
// call into the adapter (Sleep, TestCancel) and its result is discarded.

package adapters

import (
	"errors"
	"math"
	"os"
	"runtime"
	"sync"
	"sync/atomic"
	"time"
	"unsafe"

	"github.com/dolthub/swiss"
	"golang.org/x/exp/slices"

	"github.com/momentics/hioload-thread/api"
	"github.com/momentics/hioload-thread/control"
	"github.com/momentics/hioload-thread/internal/concurrency"
	"github.com/momentics/hioload-thread/pool"
)

// win32Thread is the kernel object behind a thread handle.
type win32Thread struct {
	id      api.ThreadID
	adapter *Win32
	native  *concurrency.Thread
	name    string

	resumed    chan struct{}
	signalOnce sync.Once
	signaled   chan struct{}
	exitCode   uint32 // written once, before signaled closes
	terminated atomic.Bool
}

// resume is ResumeThread for a thread created suspended.
func (t *win32Thread) resume() { close(t.resumed) }

func (t *win32Thread) signal(code uint32) {
	t.signalOnce.Do(func() {
		t.exitCode = code
		close(t.signaled)
	})
}

// Win32 implements api.Threads with Win32 semantics.
type Win32 struct {
	opts     Options
	life     lifecycle
	spawner  concurrency.Spawner
	closures pool.ObjectPool[*closureHandle]

	mu      sync.Mutex
	nextID  uint64
	handles *swiss.Map[api.ThreadID, *win32Thread]

	// nativeSleep replaces Sleep in tests; the argument is milliseconds.
	nativeSleep func(ms uint32)
}

var _ api.Threads = (*Win32)(nil)

// NewWin32 creates a Win32 adapter.
func NewWin32(opts Options) *Win32 {
	opts = opts.withDefaults()
	w := &Win32{
		opts:     opts,
		life:     lifecycle{backend: "win32", metrics: opts.Metrics, events: opts.Events},
		closures: newClosurePool(),
		handles:  swiss.NewMap[api.ThreadID, *win32Thread](64),
	}
	w.spawner.Limit = func() int { return opts.Config.Get().MaxThreads }
	return w
}

func (w *Win32) self() *win32Thread {
	if t := concurrency.Self(); t != nil {
		if rec, ok := t.Owner().(*win32Thread); ok && rec.adapter == w {
			return rec
		}
	}
	return nil
}

// lookup resolves a handle, ERROR_INVALID_HANDLE when closed or unknown.
func (w *Win32) lookup(id api.ThreadID) (*win32Thread, win32Error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	rec, ok := w.handles.Get(id)
	if !ok {
		return nil, errorInvalidHandle
	}
	return rec, errorSuccess
}

// closeHandle is CloseHandle: the handle stops being valid, the thread
// keeps running if it still is.
func (w *Win32) closeHandle(id api.ThreadID) win32Error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.handles.Delete(id) {
		return errorInvalidHandle
	}
	return errorSuccess
}

// Create starts entry with the build-time default parameters.
func (w *Win32) Create(entry api.StartRoutine, arg any) (api.ThreadID, error) {
	params := defaultParams()
	return w.CreateWithParams(&params, entry, arg)
}

// CreateWithParams starts entry on a new thread. The entry and argument
// travel to the thread in a closure handle owned by the trampoline once
// the thread runs.
func (w *Win32) CreateWithParams(params *api.ThreadParams, entry api.StartRoutine, arg any) (api.ThreadID, error) {
	if params == nil || entry == nil {
		return api.NoThread, api.OpError("create", api.StatusNullArgument, 0)
	}
	if params.Version > api.ThreadParamsCurrentVersion {
		return api.NoThread, api.OpError("create", api.StatusUnsupportedParameterVersion, 0)
	}
	name, cpus := params.Effective()

	h := allocClosure(w.closures, entry, arg)
	rec, code := w.createThread(params.StackSize, name, cpus, win32Trampoline, unsafe.Pointer(h))
	if code != errorSuccess {
		// The trampoline never ran, ownership stayed here.
		h.release()
		w.life.note(api.NoThread, "", control.MetricCreateFailed)
		return api.NoThread, win32Err(opCreate, code)
	}
	w.life.note(rec.id, control.EventCreated, control.MetricCreated)
	rec.resume()
	return rec.id, nil
}

// createThread is the CreateThread analogue with CREATE_SUSPENDED: start
// runs on the new thread with param as its only argument once the caller
// resumes it, and its return value becomes the exit code. The handle is
// valid before start runs, so a thread can always act on itself.
func (w *Win32) createThread(stackSize uintptr, name string, cpus []int, start win32StartRoutine, param unsafe.Pointer) (*win32Thread, win32Error) {
	// CreateThread rounds the reservation up rather than rejecting it.
	if stackSize != 0 && stackSize < concurrency.MinStackSize {
		stackSize = concurrency.MinStackSize
	}
	rec := &win32Thread{adapter: w, name: name, signaled: make(chan struct{}), resumed: make(chan struct{})}
	w.mu.Lock()
	w.nextID++
	rec.id = api.ThreadID(w.nextID)
	w.mu.Unlock()

	attr := concurrency.Attr{StackSize: stackSize, Name: name, CPUs: slices.Clone(cpus)}
	native, err := w.spawner.Spawn(attr, rec, func(*concurrency.Thread) {
		<-rec.resumed
		var code uint32
		defer func() {
			// Also reached by runtime.Goexit, the ExitThread analogue.
			w.life.note(rec.id, control.EventExited, control.MetricExited)
			rec.signal(code)
		}()
		code = start(param)
	})
	if err != nil {
		return nil, createThreadError(err)
	}
	w.mu.Lock()
	rec.native = native
	w.handles.Put(rec.id, rec)
	w.mu.Unlock()
	return rec, errorSuccess
}

func createThreadError(err error) win32Error {
	var bringUp *concurrency.BringUpError
	switch {
	case errors.Is(err, concurrency.ErrThreadLimit):
		return errorNotEnoughMemory
	case errors.Is(err, concurrency.ErrStackSize):
		return errorInvalidParameter
	case errors.Is(err, os.ErrPermission):
		return errorAccessDenied
	case errors.As(err, &bringUp):
		return errorInvalidParameter
	}
	return errorGenFailure
}

// Join waits for the thread to signal, closes its handle and returns the
// exit code as a uint32.
func (w *Win32) Join(id api.ThreadID) (any, error) {
	if id == api.NoThread {
		return nil, invalidHandle(opJoin)
	}
	rec, code := w.lookup(id)
	if code != errorSuccess {
		return nil, win32Err(opJoin, code)
	}
	if self := w.self(); self == rec {
		// Waiting on one's own handle never returns.
		return nil, win32Err(opJoin, errorPossibleDeadlock)
	}
	<-rec.signaled
	// Concurrent joiners all see the signal; only one close succeeds and
	// the result is ignored, as with CloseHandle after a wait.
	_ = w.closeHandle(id)
	w.life.note(id, control.EventJoined, control.MetricJoined)
	return rec.exitCode, nil
}

// Cancel terminates the thread: the handle signals immediately with exit
// code 0. Terminating the calling thread does not return.
func (w *Win32) Cancel(id api.ThreadID) error {
	if id == api.NoThread {
		return invalidHandle(opCancel)
	}
	rec, code := w.lookup(id)
	if code != errorSuccess {
		return win32Err(opCancel, code)
	}
	rec.terminated.Store(true)
	rec.signal(0)
	w.life.note(id, control.EventCanceled, control.MetricCanceled)
	if w.self() == rec {
		runtime.Goexit()
	}
	return nil
}

// Detach closes the handle. The thread runs on and is reclaimed when it
// ends.
func (w *Win32) Detach(id api.ThreadID) error {
	if id == api.NoThread {
		return invalidHandle(opDetach)
	}
	if code := w.closeHandle(id); code != errorSuccess {
		return win32Err(opDetach, code)
	}
	w.life.note(id, control.EventDetached, control.MetricDetached)
	return nil
}

// Sleep blocks for d, truncated to whole milliseconds, in calls of at most
// MaxUint32 milliseconds.
func (w *Win32) Sleep(d api.Ticks) {
	sleepChunks(uint64(d/api.HundredsOfNanosInAMillisecond), uint32(math.MaxUint32), w.msleep)
	w.TestCancel()
}

func (w *Win32) msleep(ms uint32) {
	if w.nativeSleep != nil {
		w.nativeSleep(ms)
		return
	}
	d := time.Duration(ms) * time.Millisecond
	self := w.self()
	if self == nil {
		time.Sleep(d)
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-self.signaled:
		// Only a termination can signal a thread that is still sleeping.
		runtime.Goexit()
	}
}

// SleepUntil sleeps until the adapter clock reaches t.
func (w *Win32) SleepUntil(t api.Ticks) {
	sleepUntil(w.opts.Clock, t, w.Sleep)
}

// CurrentID returns the caller's handle value, NoThread for threads this
// adapter did not create.
func (w *Win32) CurrentID() api.ThreadID {
	if rec := w.self(); rec != nil {
		return rec.id
	}
	return api.NoThread
}

// Name copies the thread description recorded at creation into buf.
// Windows offers no portable way to read another thread's name, so an
// unnamed thread yields an empty string rather than an error.
func (w *Win32) Name(id api.ThreadID, buf []byte) (int, error) {
	if buf == nil {
		return 0, api.OpError("name", api.StatusNullArgument, 0)
	}
	if len(buf) == 0 {
		return 0, api.OpError("name", api.StatusInvalidArgument, 0)
	}
	var name string
	if id == api.NoThread {
		name, _ = concurrency.CurrentName()
	} else {
		rec, code := w.lookup(id)
		if code != errorSuccess {
			return 0, win32Err(opName, code)
		}
		name = rec.name
	}
	n := copy(buf[:len(buf)-1], name)
	buf[n] = 0
	return n, nil
}

// TestCancel stops a thread whose handle was terminated.
func (w *Win32) TestCancel() {
	if rec := w.self(); rec != nil && rec.terminated.Load() {
		runtime.Goexit()
	}
}

// Capabilities reports Win32 semantics.
func (w *Win32) Capabilities() api.Capabilities {
	return api.Capabilities{
		Backend:         "win32",
		Cancel:          api.CancelForceful,
		NativeSleepUnit: api.HundredsOfNanosInAMillisecond,
		NativeSleepMax:  math.MaxUint32,
		ExitCodeOnly:    true,
	}
}

// Live returns the number of running threads created by w.
func (w *Win32) Live() int { return w.spawner.Live() }

// Handles returns the open handles, sorted.
func (w *Win32) Handles() []api.ThreadID {
	w.mu.Lock()
	ids := make([]api.ThreadID, 0, w.handles.Count())
	w.handles.Iter(func(id api.ThreadID, _ *win32Thread) bool {
		ids = append(ids, id)
		return false
	})
	w.mu.Unlock()
	slices.Sort(ids)
	return ids
}
