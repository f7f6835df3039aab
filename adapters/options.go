// File: adapters/options.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Collaborators shared by every adapter.

package adapters

import (
	"log"
	"sync"
	"time"

	"github.com/momentics/hioload-thread/api"
	"github.com/momentics/hioload-thread/control"
)

// Options wires an adapter to its collaborators. Nil fields get private
// defaults.
type Options struct {
	Config  *control.ConfigStore
	Metrics *control.MetricsRegistry
	Events  *control.EventLog
	Clock   api.Clock
}

func (o Options) withDefaults() Options {
	if o.Config == nil {
		o.Config = control.NewConfigStore(nil)
	}
	if o.Metrics == nil {
		o.Metrics = control.NewMetricsRegistry()
	}
	if o.Events == nil {
		o.Events = control.NewEventLog(o.Config.Get().EventLogSize)
	}
	if o.Clock == nil {
		o.Clock = MonotonicClock{}
	}
	return o
}

var clockBase = time.Now()

// MonotonicClock reads the process monotonic clock in ticks since start-up.
type MonotonicClock struct{}

func (MonotonicClock) Now() api.Ticks {
	return api.FromDuration(time.Since(clockBase))
}

var stackWarnOnce sync.Once

// stackWarnings lists what is wrong with the build-time stack defaults.
func stackWarnings() []string {
	var warns []string
	_, conflict, err := api.DefaultStackSize()
	if err != nil {
		warns = append(warns, err.Error()+"; using the build default")
	}
	if conflict {
		warns = append(warns, "DefaultStackSizeBytes and the constrained build tag are both set; DefaultStackSizeBytes takes priority")
	}
	return warns
}

// defaultParams synthesizes the parameters of Create.
func defaultParams() api.ThreadParams {
	stackWarnOnce.Do(func() {
		for _, w := range stackWarnings() {
			log.Printf("[adapters] %s", w)
		}
	})
	return api.DefaultThreadParams()
}

// lifecycle reports transitions to metrics and the event log.
type lifecycle struct {
	backend string
	metrics *control.MetricsRegistry
	events  *control.EventLog
}

func (l lifecycle) note(id api.ThreadID, kind, metric string) {
	l.metrics.Inc(metric)
	if kind != "" {
		l.events.Record(control.Event{Backend: l.backend, Thread: uint64(id), Kind: kind})
	}
}
