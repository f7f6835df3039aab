// Package fake
// Author: momentics <momentics@gmail.com>
//
// Fake thread backend for testing code that sits on top of the dispatch
// table. Nothing runs concurrently: an entry routine executes on the
// joining goroutine the first time its handle is joined.

package fake

import (
	"sync"

	"github.com/momentics/hioload-thread/api"
)

// Call is one recorded operation.
type Call struct {
	Op   string
	ID   api.ThreadID
	Arg  any
	Tick api.Ticks
}

type thread struct {
	entry    api.StartRoutine
	arg      any
	name     string
	detached bool
	canceled bool
}

// Threads is a fake implementation of api.Threads.
type Threads struct {
	mu      sync.Mutex
	calls   []Call
	nextID  api.ThreadID
	threads map[api.ThreadID]*thread
	current api.ThreadID
	errs    map[string]error

	// Clock, when set, is advanced by every Sleep.
	Clock *api.ManualClock
}

var _ api.Threads = (*Threads)(nil)

// NewThreads creates an empty fake backend.
func NewThreads() *Threads {
	return &Threads{threads: make(map[api.ThreadID]*thread)}
}

// FailNext makes the next call of op return err.
func (f *Threads) FailNext(op string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.errs == nil {
		f.errs = make(map[string]error)
	}
	f.errs[op] = err
}

// SetCurrent sets the value CurrentID reports.
func (f *Threads) SetCurrent(id api.ThreadID) {
	f.mu.Lock()
	f.current = id
	f.mu.Unlock()
}

// Calls returns the recorded calls in order.
func (f *Threads) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Call, len(f.calls))
	copy(out, f.calls)
	return out
}

// Ops returns the names of the recorded calls in order.
func (f *Threads) Ops() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.calls))
	for i, c := range f.calls {
		out[i] = c.Op
	}
	return out
}

// record appends c and pops a queued failure. Called with mu held.
func (f *Threads) record(c Call) error {
	f.calls = append(f.calls, c)
	if err, ok := f.errs[c.Op]; ok {
		delete(f.errs, c.Op)
		return err
	}
	return nil
}

func (f *Threads) Create(entry api.StartRoutine, arg any) (api.ThreadID, error) {
	p := api.DefaultThreadParams()
	return f.create("create", &p, entry, arg)
}

func (f *Threads) CreateWithParams(params *api.ThreadParams, entry api.StartRoutine, arg any) (api.ThreadID, error) {
	return f.create("create_with_params", params, entry, arg)
}

func (f *Threads) create(op string, params *api.ThreadParams, entry api.StartRoutine, arg any) (api.ThreadID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record(Call{Op: op, Arg: arg}); err != nil {
		return api.NoThread, err
	}
	if params == nil || entry == nil {
		return api.NoThread, api.OpError("create", api.StatusNullArgument, 0)
	}
	if params.Version > api.ThreadParamsCurrentVersion {
		return api.NoThread, api.OpError("create", api.StatusUnsupportedParameterVersion, 0)
	}
	name, _ := params.Effective()
	f.nextID++
	f.threads[f.nextID] = &thread{entry: entry, arg: arg, name: name}
	return f.nextID, nil
}

// Join runs the entry routine, or reports api.Canceled for a canceled one.
func (f *Threads) Join(id api.ThreadID) (any, error) {
	f.mu.Lock()
	if err := f.record(Call{Op: "join", ID: id}); err != nil {
		f.mu.Unlock()
		return nil, err
	}
	t, ok := f.threads[id]
	switch {
	case id == api.NoThread:
		f.mu.Unlock()
		return nil, api.OpError("join", api.StatusInvalidArgument, 0)
	case !ok:
		f.mu.Unlock()
		return nil, api.OpError("join", api.StatusThreadDoesNotExist, 0)
	case t.detached:
		f.mu.Unlock()
		return nil, api.OpError("join", api.StatusThreadNotJoinable, 0)
	}
	delete(f.threads, id)
	f.mu.Unlock()
	if t.canceled {
		return api.Canceled, nil
	}
	return t.entry(t.arg), nil
}

func (f *Threads) Cancel(id api.ThreadID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record(Call{Op: "cancel", ID: id}); err != nil {
		return err
	}
	t, ok := f.threads[id]
	if !ok {
		return api.OpError("cancel", api.StatusThreadDoesNotExist, 0)
	}
	t.canceled = true
	return nil
}

func (f *Threads) Detach(id api.ThreadID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record(Call{Op: "detach", ID: id}); err != nil {
		return err
	}
	t, ok := f.threads[id]
	switch {
	case !ok:
		return api.OpError("detach", api.StatusThreadDoesNotExist, 0)
	case t.detached:
		return api.OpError("detach", api.StatusThreadNotJoinable, 0)
	}
	t.detached = true
	return nil
}

func (f *Threads) Sleep(d api.Ticks) {
	f.mu.Lock()
	f.record(Call{Op: "sleep", Tick: d})
	clock := f.Clock
	f.mu.Unlock()
	if clock != nil {
		clock.Advance(d)
	}
}

func (f *Threads) SleepUntil(t api.Ticks) {
	f.mu.Lock()
	f.record(Call{Op: "sleep_until", Tick: t})
	clock := f.Clock
	f.mu.Unlock()
	if clock != nil && clock.Now() < t {
		clock.Set(t)
	}
}

func (f *Threads) CurrentID() api.ThreadID {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(Call{Op: "current_id"})
	return f.current
}

func (f *Threads) Name(id api.ThreadID, buf []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record(Call{Op: "name", ID: id}); err != nil {
		return 0, err
	}
	if buf == nil {
		return 0, api.OpError("name", api.StatusNullArgument, 0)
	}
	if len(buf) < api.MaxThreadNameLen {
		return 0, api.OpError("name", api.StatusInvalidArgument, 0)
	}
	t, ok := f.threads[id]
	if !ok {
		return 0, api.OpError("name", api.StatusInvalidOperation, 0)
	}
	n := copy(buf[:len(buf)-1], t.name)
	buf[n] = 0
	return n, nil
}

func (f *Threads) TestCancel() {
	f.mu.Lock()
	f.record(Call{Op: "test_cancel"})
	f.mu.Unlock()
}

func (f *Threads) Capabilities() api.Capabilities {
	f.mu.Lock()
	f.record(Call{Op: "capabilities"})
	f.mu.Unlock()
	return api.Capabilities{
		Backend:         "fake",
		Cancel:          api.CancelCooperative,
		NativeSleepUnit: 1,
		NativeSleepMax:  1<<64 - 1,
		ThreadNames:     true,
	}
}
