// File: adapters/control_adapter.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Control adapter implementing api.Control over the control package
// primitives shared with a backend through Options.

package adapters

import (
	"github.com/momentics/hioload-thread/api"
	"github.com/momentics/hioload-thread/control"
)

type ControlAdapter struct {
	config  *control.ConfigStore
	metrics *control.MetricsRegistry
	events  *control.EventLog
	debug   *control.DebugProbes
}

var _ api.Control = (*ControlAdapter)(nil)

// NewControlAdapter exposes the collaborators of opts. Nil fields get the
// same defaults an adapter built from opts would get, so pass the Options
// returned by WithDefaults when the two must share state.
func NewControlAdapter(opts Options) *ControlAdapter {
	opts = opts.withDefaults()
	adapter := &ControlAdapter{
		config:  opts.Config,
		metrics: opts.Metrics,
		events:  opts.Events,
		debug:   control.NewDebugProbes(),
	}
	control.RegisterPlatformProbes(adapter.debug)
	adapter.config.OnReload(func(cfg *control.Config) {
		adapter.events.Resize(cfg.EventLogSize)
	})
	return adapter
}

// WithDefaults fills nil collaborators of o.
func (o Options) WithDefaults() Options { return o.withDefaults() }

// Stats returns the lifecycle counters.
func (c *ControlAdapter) Stats() map[string]int64 {
	return c.metrics.GetSnapshot()
}

// Events renders the retained lifecycle history, oldest first.
func (c *ControlAdapter) Events() []string {
	evs := c.events.Snapshot()
	out := make([]string, len(evs))
	for i, ev := range evs {
		out[i] = ev.String()
	}
	return out
}

func (c *ControlAdapter) OnReload(fn func()) {
	c.config.OnReload(func(*control.Config) { fn() })
}

func (c *ControlAdapter) RegisterDebugProbe(name string, fn func() any) {
	c.debug.RegisterProbe(name, fn)
}

// DumpState evaluates every registered probe.
func (c *ControlAdapter) DumpState() map[string]any {
	return c.debug.DumpState()
}

// Config returns the live configuration store.
func (c *ControlAdapter) Config() *control.ConfigStore { return c.config }
