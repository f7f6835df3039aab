//go:build unix
// +build unix

// File: adapters/posix.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// POSIX-family adapter. Entry routines already match the native calling
// convention and are handed to the thread as is. Cancellation is
// cooperative: Cancel only records the request, and the target unwinds at
// its next cancellation point (TestCancel or Sleep), running its deferred
// calls on the way out. A nil error from Cancel therefore means the request
// was accepted, not that the target has stopped. A thread keeps the
// cancellation mode in force when it was created; a configuration reload
// only affects threads created afterwards.

package adapters

import (
	"errors"
	"math"
	"runtime"
	"sync"
	"time"

	"github.com/dolthub/swiss"
	"golang.org/x/exp/slices"
	"golang.org/x/sys/unix"

	"github.com/momentics/hioload-thread/affinity"
	"github.com/momentics/hioload-thread/api"
	"github.com/momentics/hioload-thread/control"
	"github.com/momentics/hioload-thread/internal/concurrency"
)

// posixThread is one entry of the POSIX thread table.
type posixThread struct {
	id      api.ThreadID
	adapter *Posix
	native  *concurrency.Thread
	mode    api.CancelMode

	// guarded by adapter.mu
	detached  bool
	joining   bool
	waitingOn api.ThreadID
	exited    bool
	result    any

	cancelOnce sync.Once
	cancelCh   chan struct{}
}

func (t *posixThread) requestCancel() {
	t.cancelOnce.Do(func() { close(t.cancelCh) })
}

func (t *posixThread) cancelPending() bool {
	select {
	case <-t.cancelCh:
		return true
	default:
		return false
	}
}

// Posix implements api.Threads with pthread semantics.
type Posix struct {
	opts    Options
	life    lifecycle
	spawner concurrency.Spawner

	mu      sync.Mutex
	nextID  uint64
	threads *swiss.Map[api.ThreadID, *posixThread]

	// nativeSleep replaces usleep in tests; the argument is microseconds.
	nativeSleep func(us uint32)
}

var _ api.Threads = (*Posix)(nil)

// NewPosix creates a POSIX adapter.
func NewPosix(opts Options) *Posix {
	opts = opts.withDefaults()
	p := &Posix{
		opts:    opts,
		life:    lifecycle{backend: "posix", metrics: opts.Metrics, events: opts.Events},
		threads: swiss.NewMap[api.ThreadID, *posixThread](64),
	}
	p.spawner.Limit = func() int { return opts.Config.Get().MaxThreads }
	return p
}

func (p *Posix) cancelMode() api.CancelMode {
	switch p.opts.Config.Get().Cancellation {
	case control.CancellationCooperative:
		return api.CancelCooperative
	case control.CancellationLiveness:
		return api.CancelLivenessOnly
	}
	return defaultCancelMode
}

// self returns the calling thread's entry in this adapter's table.
func (p *Posix) self() *posixThread {
	if t := concurrency.Self(); t != nil {
		if rec, ok := t.Owner().(*posixThread); ok && rec.adapter == p {
			return rec
		}
	}
	return nil
}

// Create starts entry with the build-time default parameters.
func (p *Posix) Create(entry api.StartRoutine, arg any) (api.ThreadID, error) {
	params := defaultParams()
	return p.CreateWithParams(&params, entry, arg)
}

// CreateWithParams starts entry on a new thread configured by params.
func (p *Posix) CreateWithParams(params *api.ThreadParams, entry api.StartRoutine, arg any) (api.ThreadID, error) {
	if params == nil || entry == nil {
		return api.NoThread, api.OpError("create", api.StatusNullArgument, 0)
	}
	if params.Version > api.ThreadParamsCurrentVersion {
		return api.NoThread, api.OpError("create", api.StatusUnsupportedParameterVersion, 0)
	}
	attr, err := p.attr(params)
	if err != nil {
		p.life.note(api.NoThread, "", control.MetricCreateFailed)
		return api.NoThread, err
	}

	rec := &posixThread{adapter: p, mode: p.cancelMode(), cancelCh: make(chan struct{})}
	p.mu.Lock()
	p.nextID++
	rec.id = api.ThreadID(p.nextID)
	p.mu.Unlock()

	// The entry waits until its handle is in the table, so it can detach,
	// join or cancel itself from its first instruction.
	published := make(chan struct{})
	native, err := p.spawner.Spawn(attr, rec, func(*concurrency.Thread) {
		<-published
		p.run(rec, entry, arg)
	})
	if err != nil {
		p.life.note(api.NoThread, "", control.MetricCreateFailed)
		return api.NoThread, posixErr(opCreate, createErrno(err))
	}
	p.mu.Lock()
	rec.native = native
	p.threads.Put(rec.id, rec)
	p.mu.Unlock()
	p.life.note(rec.id, control.EventCreated, control.MetricCreated)
	close(published)
	return rec.id, nil
}

// attr plays pthread_attr_t: it only exists when something beyond the
// defaults was requested.
func (p *Posix) attr(params *api.ThreadParams) (concurrency.Attr, error) {
	name, cpus := params.Effective()
	attr := concurrency.Attr{Name: name}
	if params.StackSize == 0 && len(cpus) == 0 {
		return attr, nil
	}
	if err := affinity.Validate(cpus); err != nil {
		return attr, posixErr(opAttrInit, unix.EINVAL)
	}
	if params.StackSize != 0 {
		if params.StackSize < concurrency.MinStackSize || params.StackSize > concurrency.MaxStackSize {
			return attr, posixErr(opAttrStack, unix.EINVAL)
		}
	}
	attr.StackSize = params.StackSize
	attr.CPUs = slices.Clone(cpus)
	return attr, nil
}

// createErrno converts a spawn failure into the errno pthread_create would
// have returned.
func createErrno(err error) unix.Errno {
	var errno unix.Errno
	switch {
	case errors.Is(err, concurrency.ErrThreadLimit):
		return unix.EAGAIN
	case errors.Is(err, concurrency.ErrStackSize):
		return unix.EINVAL
	case errors.As(err, &errno):
		return errno
	}
	return unix.EIO
}

// run executes entry on the new thread. If the thread unwinds through a
// cancellation point the result stays api.Canceled.
func (p *Posix) run(rec *posixThread, entry api.StartRoutine, arg any) {
	result := api.Canceled
	defer func() { p.exit(rec, result) }()
	result = entry(arg)
}

func (p *Posix) exit(rec *posixThread, result any) {
	p.mu.Lock()
	rec.result = result
	rec.exited = true
	if rec.detached {
		p.threads.Delete(rec.id)
	}
	p.mu.Unlock()
	p.life.note(rec.id, control.EventExited, control.MetricExited)
}

// Join waits for id to terminate and returns its result.
func (p *Posix) Join(id api.ThreadID) (any, error) {
	if id == api.NoThread {
		return nil, invalidHandle(opJoin)
	}
	self := p.self()

	p.mu.Lock()
	rec, ok := p.threads.Get(id)
	var errno unix.Errno
	switch {
	case !ok:
		errno = unix.ESRCH
	case self != nil && (self == rec || p.joinCycle(self, rec)):
		errno = unix.EDEADLK
	case rec.detached || rec.joining:
		errno = unix.EINVAL
	}
	if errno != 0 {
		p.mu.Unlock()
		return nil, posixErr(opJoin, errno)
	}
	rec.joining = true
	if self != nil {
		self.waitingOn = id
	}
	p.mu.Unlock()

	// pthread_join is itself a cancellation point; the target stays joinable.
	var canceled <-chan struct{}
	if self != nil && self.mode == api.CancelCooperative {
		canceled = self.cancelCh
	}
	select {
	case <-rec.native.Done():
	case <-canceled:
		p.mu.Lock()
		rec.joining = false
		self.waitingOn = api.NoThread
		p.mu.Unlock()
		runtime.Goexit()
	}

	p.mu.Lock()
	if self != nil {
		self.waitingOn = api.NoThread
	}
	p.threads.Delete(id)
	result := rec.result
	p.mu.Unlock()
	p.life.note(id, control.EventJoined, control.MetricJoined)
	return result, nil
}

// joinCycle reports whether target is, directly or through a chain of
// joiners, waiting on self. Called with mu held.
func (p *Posix) joinCycle(self, target *posixThread) bool {
	cur := target
	for i := 0; i <= p.threads.Count() && cur.waitingOn != api.NoThread; i++ {
		next, ok := p.threads.Get(cur.waitingOn)
		if !ok {
			return false
		}
		if next == self {
			return true
		}
		cur = next
	}
	return false
}

// Cancel requests cooperative cancellation of id. For a thread created in
// liveness-only mode it just checks that id still exists and leaves it
// running.
func (p *Posix) Cancel(id api.ThreadID) error {
	if id == api.NoThread {
		return invalidHandle(opCancel)
	}
	p.mu.Lock()
	rec, ok := p.threads.Get(id)
	p.mu.Unlock()
	if !ok {
		return posixErr(opCancel, unix.ESRCH)
	}
	if rec.mode == api.CancelLivenessOnly {
		return posixErr(opCancel, probeErrno(concurrency.Probe(rec.native)))
	}
	rec.requestCancel()
	p.life.note(id, control.EventCanceled, control.MetricCanceled)
	return nil
}

func probeErrno(err error) unix.Errno {
	var errno unix.Errno
	switch {
	case err == nil:
		return 0
	case errors.Is(err, concurrency.ErrNoSuchThread):
		return unix.ESRCH
	case errors.As(err, &errno):
		return errno
	}
	return unix.EIO
}

// Detach marks id non-joinable. It leaves the table when it terminates.
func (p *Posix) Detach(id api.ThreadID) error {
	if id == api.NoThread {
		return invalidHandle(opDetach)
	}
	p.mu.Lock()
	rec, ok := p.threads.Get(id)
	var errno unix.Errno
	switch {
	case !ok:
		errno = unix.ESRCH
	case rec.detached || rec.joining:
		errno = unix.EINVAL
	default:
		rec.detached = true
		if rec.exited {
			p.threads.Delete(id)
		}
	}
	p.mu.Unlock()
	if errno != 0 {
		return posixErr(opDetach, errno)
	}
	p.life.note(id, control.EventDetached, control.MetricDetached)
	return nil
}

// Sleep blocks for d, truncated to whole microseconds, in calls of at most
// MaxUint32 microseconds.
// On a cooperatively cancellable thread the sleep is a cancellation point.
func (p *Posix) Sleep(d api.Ticks) {
	sleepChunks(uint64(d/api.HundredsOfNanosInAMicrosecond), uint32(math.MaxUint32), p.usleep)
}

func (p *Posix) usleep(us uint32) {
	if p.nativeSleep != nil {
		p.nativeSleep(us)
		return
	}
	d := time.Duration(us) * time.Microsecond
	self := p.self()
	if self == nil || self.mode != api.CancelCooperative {
		time.Sleep(d)
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-self.cancelCh:
		runtime.Goexit()
	}
}

// SleepUntil sleeps until the adapter clock reaches t.
func (p *Posix) SleepUntil(t api.Ticks) {
	sleepUntil(p.opts.Clock, t, p.Sleep)
}

// CurrentID returns the caller's handle, NoThread for threads this adapter
// did not create.
func (p *Posix) CurrentID() api.ThreadID {
	if rec := p.self(); rec != nil {
		return rec.id
	}
	return api.NoThread
}

// Name copies the OS name of id into buf, NUL terminated.
func (p *Posix) Name(id api.ThreadID, buf []byte) (int, error) {
	if buf == nil {
		return 0, api.OpError("name", api.StatusNullArgument, 0)
	}
	if len(buf) < api.MaxThreadNameLen {
		return 0, api.OpError("name", api.StatusInvalidArgument, 0)
	}
	var (
		name string
		err  error
	)
	if id == api.NoThread {
		name, err = concurrency.CurrentName()
	} else {
		p.mu.Lock()
		rec, ok := p.threads.Get(id)
		p.mu.Unlock()
		if !ok {
			return 0, api.OpError("name", api.StatusInvalidOperation, int64(unix.ESRCH))
		}
		name, err = rec.native.Name()
	}
	if err != nil {
		return 0, api.OpError("name", api.StatusInvalidOperation, 0)
	}
	n := copy(buf[:len(buf)-1], name)
	buf[n] = 0
	return n, nil
}

// TestCancel unwinds the calling thread if cancellation was requested.
func (p *Posix) TestCancel() {
	if rec := p.self(); rec != nil && rec.mode == api.CancelCooperative && rec.cancelPending() {
		runtime.Goexit()
	}
}

// Capabilities reports pthread semantics. Cancel is the mode threads
// created now would get.
func (p *Posix) Capabilities() api.Capabilities {
	return api.Capabilities{
		Backend:         "posix",
		Cancel:          p.cancelMode(),
		NativeSleepUnit: api.HundredsOfNanosInAMicrosecond,
		NativeSleepMax:  math.MaxUint32,
		ThreadNames:     runtime.GOOS == "linux",
	}
}

// Live returns the number of running threads created by p.
func (p *Posix) Live() int { return p.spawner.Live() }

// Handles returns the handles currently in the table, sorted.
func (p *Posix) Handles() []api.ThreadID {
	p.mu.Lock()
	ids := make([]api.ThreadID, 0, p.threads.Count())
	p.threads.Iter(func(id api.ThreadID, _ *posixThread) bool {
		ids = append(ids, id)
		return false
	})
	p.mu.Unlock()
	slices.Sort(ids)
	return ids
}
