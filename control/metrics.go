// control/metrics.go
// Author: momentics <momentics@gmail.com>
//
// Lifecycle counters for thread tables.

package control

import (
	"sync"
	"time"
)

// Counter keys maintained by the thread backends.
const (
	MetricCreated      = "threads.created"
	MetricCreateFailed = "threads.create_failed"
	MetricJoined       = "threads.joined"
	MetricDetached     = "threads.detached"
	MetricCanceled     = "threads.canceled"
	MetricExited       = "threads.exited"
)

// MetricsRegistry holds named int64 counters.
type MetricsRegistry struct {
	mu      sync.RWMutex
	metrics map[string]int64
	updated time.Time
}

// NewMetricsRegistry creates an empty registry.
func NewMetricsRegistry() *MetricsRegistry {
	return &MetricsRegistry{
		metrics: make(map[string]int64),
	}
}

// Add adds delta to key.
func (mr *MetricsRegistry) Add(key string, delta int64) {
	mr.mu.Lock()
	mr.metrics[key] += delta
	mr.updated = time.Now()
	mr.mu.Unlock()
}

// Inc adds one to key.
func (mr *MetricsRegistry) Inc(key string) { mr.Add(key, 1) }

// Get returns the value of key, 0 when unset.
func (mr *MetricsRegistry) Get(key string) int64 {
	mr.mu.RLock()
	defer mr.mu.RUnlock()
	return mr.metrics[key]
}

// GetSnapshot returns a copy of all counters.
func (mr *MetricsRegistry) GetSnapshot() map[string]int64 {
	mr.mu.RLock()
	defer mr.mu.RUnlock()
	out := make(map[string]int64, len(mr.metrics))
	for k, v := range mr.metrics {
		out[k] = v
	}
	return out
}

// Updated returns the time of the last change.
func (mr *MetricsRegistry) Updated() time.Time {
	mr.mu.RLock()
	defer mr.mu.RUnlock()
	return mr.updated
}
