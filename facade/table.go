// File: facade/table.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Dispatch table: one rebindable slot per thread operation. Callers go
// through a Table, never through a backend directly, so any slot can be
// replaced with a test double or an instrumented wrapper. Slots are plain
// fields with no synchronisation; rebind them during start-up only.

package facade

import (
	"github.com/momentics/hioload-thread/adapters"
	"github.com/momentics/hioload-thread/api"
)

// Table is the operation set with every entry replaceable.
type Table struct {
	CreateFn           func(entry api.StartRoutine, arg any) (api.ThreadID, error)
	CreateWithParamsFn func(params *api.ThreadParams, entry api.StartRoutine, arg any) (api.ThreadID, error)
	JoinFn             func(id api.ThreadID) (any, error)
	CancelFn           func(id api.ThreadID) error
	DetachFn           func(id api.ThreadID) error
	SleepFn            func(d api.Ticks)
	SleepUntilFn       func(t api.Ticks)
	CurrentIDFn        func() api.ThreadID
	NameFn             func(id api.ThreadID, buf []byte) (int, error)
	TestCancelFn       func()
	CapabilitiesFn     func() api.Capabilities
}

var _ api.Threads = (*Table)(nil)

// NewTable binds every slot to backend. SleepUntil is resolved against
// clock and sleeps through the table's own Sleep slot, so rebinding
// SleepFn also changes SleepUntil.
func NewTable(backend api.Threads, clock api.Clock) *Table {
	t := &Table{}
	t.Bind(backend)
	t.SleepUntilFn = func(until api.Ticks) {
		adapters.SleepUntil(clock, until, t.Sleep)
	}
	return t
}

// Bind points every slot except SleepUntilFn at backend.
func (t *Table) Bind(backend api.Threads) {
	t.CreateFn = backend.Create
	t.CreateWithParamsFn = backend.CreateWithParams
	t.JoinFn = backend.Join
	t.CancelFn = backend.Cancel
	t.DetachFn = backend.Detach
	t.SleepFn = backend.Sleep
	t.CurrentIDFn = backend.CurrentID
	t.NameFn = backend.Name
	t.TestCancelFn = backend.TestCancel
	t.CapabilitiesFn = backend.Capabilities
	if t.SleepUntilFn == nil {
		t.SleepUntilFn = backend.SleepUntil
	}
}

func (t *Table) Create(entry api.StartRoutine, arg any) (api.ThreadID, error) {
	return t.CreateFn(entry, arg)
}

func (t *Table) CreateWithParams(params *api.ThreadParams, entry api.StartRoutine, arg any) (api.ThreadID, error) {
	return t.CreateWithParamsFn(params, entry, arg)
}

func (t *Table) Join(id api.ThreadID) (any, error) { return t.JoinFn(id) }
func (t *Table) Cancel(id api.ThreadID) error      { return t.CancelFn(id) }
func (t *Table) Detach(id api.ThreadID) error      { return t.DetachFn(id) }
func (t *Table) Sleep(d api.Ticks)                 { t.SleepFn(d) }
func (t *Table) SleepUntil(until api.Ticks)        { t.SleepUntilFn(until) }
func (t *Table) CurrentID() api.ThreadID           { return t.CurrentIDFn() }

func (t *Table) Name(id api.ThreadID, buf []byte) (int, error) {
	return t.NameFn(id, buf)
}

func (t *Table) TestCancel()                    { t.TestCancelFn() }
func (t *Table) Capabilities() api.Capabilities { return t.CapabilitiesFn() }
