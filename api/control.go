// File: api/control.go
// Package api defines Control interface.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package api

// Control exposes the runtime side of a thread table: counters, recent
// lifecycle events and probes.
type Control interface {
	Stats() map[string]int64
	Events() []string
	OnReload(fn func())
	RegisterDebugProbe(name string, fn func() any)
}
