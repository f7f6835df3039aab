// File: adapters/unsupported.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Unsupported is the backend for targets with no thread adapter. Creation
// fails, every handle is unknown, and sleeping still works because it needs
// no thread support.

package adapters

import (
	"time"

	"github.com/momentics/hioload-thread/api"
)

// Unsupported implements api.Threads without creating anything.
type Unsupported struct {
	clock api.Clock
}

var _ api.Threads = (*Unsupported)(nil)

// NewUnsupported creates the stub backend.
func NewUnsupported(opts Options) *Unsupported {
	opts = opts.withDefaults()
	return &Unsupported{clock: opts.Clock}
}

func (u *Unsupported) Create(entry api.StartRoutine, arg any) (api.ThreadID, error) {
	params := defaultParams()
	return u.CreateWithParams(&params, entry, arg)
}

func (u *Unsupported) CreateWithParams(params *api.ThreadParams, entry api.StartRoutine, _ any) (api.ThreadID, error) {
	if params == nil || entry == nil {
		return api.NoThread, api.OpError("create", api.StatusNullArgument, 0)
	}
	if params.Version > api.ThreadParamsCurrentVersion {
		return api.NoThread, api.OpError("create", api.StatusUnsupportedParameterVersion, 0)
	}
	return api.NoThread, api.OpError("create", api.StatusCreationFailed, 0)
}

func (u *Unsupported) Join(api.ThreadID) (any, error) {
	return nil, api.OpError("join", api.StatusThreadDoesNotExist, 0)
}

func (u *Unsupported) Cancel(api.ThreadID) error {
	return api.OpError("cancel", api.StatusThreadDoesNotExist, 0)
}

func (u *Unsupported) Detach(api.ThreadID) error {
	return api.OpError("detach", api.StatusThreadDoesNotExist, 0)
}

func (u *Unsupported) Sleep(d api.Ticks) {
	time.Sleep(d.Duration())
}

func (u *Unsupported) SleepUntil(t api.Ticks) {
	sleepUntil(u.clock, t, u.Sleep)
}

func (u *Unsupported) CurrentID() api.ThreadID { return api.NoThread }

func (u *Unsupported) Name(api.ThreadID, []byte) (int, error) {
	return 0, api.OpError("name", api.StatusInvalidOperation, 0)
}

func (u *Unsupported) TestCancel() {}

func (u *Unsupported) Capabilities() api.Capabilities {
	return api.Capabilities{
		Backend:         "unsupported",
		Cancel:          api.CancelLivenessOnly,
		NativeSleepUnit: 1,
		NativeSleepMax:  1<<63 - 1,
	}
}
