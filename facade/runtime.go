// File: facade/runtime.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Runtime couples a dispatch table with the control plane of its backend:
// configuration store, lifecycle counters, event history and debug probes.
// Default returns the process-wide instance.

package facade

import (
	"log"
	"os"
	"sync"

	"github.com/momentics/hioload-thread/adapters"
	"github.com/momentics/hioload-thread/api"
	"github.com/momentics/hioload-thread/control"
)

// ConfigEnv names the YAML file Default loads.
const ConfigEnv = "HIOLOAD_THREAD_CONFIG"

// introspector is implemented by the OS-backed adapters.
type introspector interface {
	Live() int
	Handles() []api.ThreadID
}

// Runtime is a dispatch table plus control plane.
type Runtime struct {
	*Table
	control *adapters.ControlAdapter
	backend api.Threads
}

var _ api.Control = (*Runtime)(nil)

// New builds a runtime on the default backend for this platform. A nil cfg
// means control.DefaultConfig.
func New(cfg *control.Config) (*Runtime, error) {
	if cfg == nil {
		cfg = control.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	opts := adapters.Options{
		Config: control.NewConfigStore(cfg),
		Clock:  adapters.MonotonicClock{},
	}.WithDefaults()
	return newRuntime(adapters.Default(opts), opts), nil
}

// NewWithBackend builds a runtime around an explicit backend. opts must be
// the collaborators the backend was built with for Stats and Events to
// reflect its activity.
func NewWithBackend(backend api.Threads, opts adapters.Options) *Runtime {
	return newRuntime(backend, opts.WithDefaults())
}

func newRuntime(backend api.Threads, opts adapters.Options) *Runtime {
	r := &Runtime{
		Table:   NewTable(backend, opts.Clock),
		control: adapters.NewControlAdapter(opts),
		backend: backend,
	}
	r.control.RegisterDebugProbe("threads.backend", func() any {
		return backend.Capabilities().Backend
	})
	if in, ok := backend.(introspector); ok {
		r.control.RegisterDebugProbe("threads.live", func() any { return in.Live() })
		r.control.RegisterDebugProbe("threads.handles", func() any { return len(in.Handles()) })
	}
	return r
}

// Backend returns the adapter the table was originally bound to.
func (r *Runtime) Backend() api.Threads { return r.backend }

// Control returns the control plane.
func (r *Runtime) Control() *adapters.ControlAdapter { return r.control }

func (r *Runtime) Stats() map[string]int64 { return r.control.Stats() }
func (r *Runtime) Events() []string        { return r.control.Events() }
func (r *Runtime) OnReload(fn func())      { r.control.OnReload(fn) }

func (r *Runtime) RegisterDebugProbe(name string, fn func() any) {
	r.control.RegisterDebugProbe(name, fn)
}

// DumpState evaluates every debug probe.
func (r *Runtime) DumpState() map[string]any { return r.control.DumpState() }

// Watch reloads the configuration whenever path changes on disk.
func (r *Runtime) Watch(path string) (*control.Watcher, error) {
	return control.WatchConfig(path, r.control.Config())
}

var (
	defaultOnce    sync.Once
	defaultRuntime *Runtime
)

// Default returns the process-wide runtime, built on first use from the
// file named by HIOLOAD_THREAD_CONFIG and HIOLOAD_THREAD_* overrides. An
// unusable configuration falls back to defaults.
func Default() *Runtime {
	defaultOnce.Do(func() {
		cfg, err := control.LoadConfig(os.Getenv(ConfigEnv))
		if err != nil {
			log.Printf("[facade] configuration rejected, using defaults: %v", err)
			cfg = control.DefaultConfig()
		}
		// Validated above, New cannot fail.
		defaultRuntime, _ = New(cfg)
	})
	return defaultRuntime
}
