// File: adapters/sleep.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Sleep chunker: native sleep primitives take a bounded, fixed-width
// duration, so long sleeps are issued as a series of calls no longer than
// the native maximum.

package adapters

import (
	"golang.org/x/exp/constraints"

	"github.com/momentics/hioload-thread/api"
)

// sleepChunks calls native until remaining native units are consumed, never
// passing more than max to a single call.
func sleepChunks[N constraints.Unsigned](remaining uint64, max N, native func(N)) {
	for remaining != 0 {
		if remaining <= uint64(max) {
			native(N(remaining))
			return
		}
		native(max)
		remaining -= uint64(max)
	}
}

// sleepUntil sleeps for the time left until t. A t that is not in the
// future returns without calling sleep.
func sleepUntil(clock api.Clock, t api.Ticks, sleep func(api.Ticks)) {
	if now := clock.Now(); t > now {
		sleep(t - now)
	}
}

// SleepUntil is the shared sleep-until logic for callers that bind their
// own sleep primitive, such as the dispatch table.
func SleepUntil(clock api.Clock, t api.Ticks, sleep func(api.Ticks)) {
	sleepUntil(clock, t, sleep)
}
