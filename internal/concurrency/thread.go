// File: internal/concurrency/thread.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Spawner and per-thread control block.

package concurrency

import (
	"errors"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dolthub/swiss"
	"github.com/momentics/hioload-thread/affinity"
)

const (
	// MinStackSize matches PTHREAD_STACK_MIN on common Linux targets.
	MinStackSize uintptr = 16 * 1024
	// MaxStackSize is the Go runtime's default goroutine stack ceiling.
	MaxStackSize uintptr = 1 << 30
	// DefaultMaxThreads keeps created threads below the runtime's fatal
	// 10000 OS thread limit, leaving room for its own threads.
	DefaultMaxThreads = 9000
)

var (
	ErrThreadLimit   = errors.New("concurrency: live thread limit reached")
	ErrStackSize     = errors.New("concurrency: stack size out of range")
	ErrNoSuchThread  = errors.New("concurrency: no such thread")
	ErrNameUnsupport = errors.New("concurrency: thread names not available")
)

// Bring-up steps reported by BringUpError.
const (
	StepName     = "name"
	StepAffinity = "affinity"
)

// BringUpError reports a failure on the new thread before its body ran.
// Err is the native error, typically a syscall.Errno.
type BringUpError struct {
	Step string
	Err  error
}

func (e *BringUpError) Error() string {
	return fmt.Sprintf("concurrency: thread bring-up failed at %s: %v", e.Step, e.Err)
}

func (e *BringUpError) Unwrap() error { return e.Err }

// Attr describes how a native thread is brought up. StackSize is validated
// and recorded; goroutine stacks are grown by the runtime so the value is
// not a hard reservation.
type Attr struct {
	StackSize uintptr
	Name      string
	CPUs      []int
}

// Thread is the control block of one native thread.
type Thread struct {
	key       uint64
	owner     any
	name      string
	stackSize uintptr
	started   time.Time
	done      chan struct{}
	alive     atomic.Bool
}

// Done is closed once the thread has terminated.
func (t *Thread) Done() <-chan struct{} { return t.done }

// Alive reports whether the body is still running.
func (t *Thread) Alive() bool { return t.alive.Load() }

// OSID is the OS thread id on Linux and Windows, and a goroutine id
// elsewhere.
func (t *Thread) OSID() uint64 { return t.key }

// Owner returns the value passed to Spawn.
func (t *Thread) Owner() any { return t.owner }

// StackSize returns the requested stack size, 0 for the default.
func (t *Thread) StackSize() uintptr { return t.stackSize }

// Started returns the bring-up completion time.
func (t *Thread) Started() time.Time { return t.started }

// Name returns the current OS name of a live thread, falling back to the
// name requested at creation.
func (t *Thread) Name() (string, error) {
	if t.Alive() {
		if n, err := osThreadName(t.key); err == nil {
			return n, nil
		}
	}
	if t.name == "" {
		return "", ErrNameUnsupport
	}
	return t.name, nil
}

// Probe checks that t still exists without affecting it.
func Probe(t *Thread) error {
	if t == nil || !t.Alive() {
		return ErrNoSuchThread
	}
	return probeOSThread(t.key)
}

// Spawner launches native threads under a live-thread ceiling.
type Spawner struct {
	// Limit returns the ceiling; nil or <= 0 means DefaultMaxThreads.
	Limit func() int

	live atomic.Int64
}

// Live returns the number of threads whose OS thread has not exited.
func (s *Spawner) Live() int { return int(s.live.Load()) }

func (s *Spawner) limit() int64 {
	if s.Limit != nil {
		if n := s.Limit(); n > 0 {
			return int64(n)
		}
	}
	return DefaultMaxThreads
}

// Spawn starts body on a new OS thread. It returns once bring-up has either
// succeeded, in which case body is guaranteed to run, or failed, in which
// case body never runs.
func (s *Spawner) Spawn(attr Attr, owner any, body func(*Thread)) (*Thread, error) {
	if attr.StackSize != 0 && (attr.StackSize < MinStackSize || attr.StackSize > MaxStackSize) {
		return nil, ErrStackSize
	}
	if s.live.Add(1) > s.limit() {
		s.live.Add(-1)
		return nil, ErrThreadLimit
	}
	t := &Thread{
		owner:     owner,
		name:      attr.Name,
		stackSize: attr.StackSize,
		done:      make(chan struct{}),
	}
	ready := make(chan error, 1)
	go s.run(t, attr, body, ready)
	if err := <-ready; err != nil {
		return nil, err
	}
	return t, nil
}

func (s *Spawner) run(t *Thread, attr Attr, body func(*Thread), ready chan<- error) {
	// Never unlocked: the OS thread goes away with this goroutine, including
	// on a failed bring-up where it may carry a half-applied configuration.
	runtime.LockOSThread()

	t.key = osThreadKey()
	if attr.Name != "" {
		// Best effort, the requested name stays recorded on t.
		_ = setOSThreadName(attr.Name)
	}
	if len(attr.CPUs) > 0 {
		if err := affinity.Set(attr.CPUs); err != nil {
			s.live.Add(-1)
			ready <- &BringUpError{Step: StepAffinity, Err: err}
			return
		}
	}
	t.started = time.Now()
	t.alive.Store(true)
	registry.add(t)
	ready <- nil

	defer s.finish(t)
	body(t)
}

// finish releases the slot before Done fires, so a joiner can create a
// replacement under the same ceiling.
func (s *Spawner) finish(t *Thread) {
	t.alive.Store(false)
	registry.remove(t)
	s.live.Add(-1)
	close(t.done)
}

// Self returns the control block of the calling thread, or nil when the
// caller is not running on a spawned thread.
func Self() *Thread {
	return registry.get(osThreadKey())
}

// CurrentName returns the OS name of the calling thread.
func CurrentName() (string, error) {
	if n, err := currentOSThreadName(); err == nil {
		return n, nil
	}
	if t := Self(); t != nil && t.name != "" {
		return t.name, nil
	}
	return "", ErrNameUnsupport
}

// registry indexes live threads by OS key so a thread can find itself.
var registry = threadIndex{m: swiss.NewMap[uint64, *Thread](64)}

type threadIndex struct {
	mu sync.RWMutex
	m  *swiss.Map[uint64, *Thread]
}

func (x *threadIndex) add(t *Thread) {
	x.mu.Lock()
	x.m.Put(t.key, t)
	x.mu.Unlock()
}

func (x *threadIndex) remove(t *Thread) {
	x.mu.Lock()
	if cur, ok := x.m.Get(t.key); ok && cur == t {
		x.m.Delete(t.key)
	}
	x.mu.Unlock()
}

func (x *threadIndex) get(key uint64) *Thread {
	x.mu.RLock()
	defer x.mu.RUnlock()
	t, _ := x.m.Get(key)
	return t
}
