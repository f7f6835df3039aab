// Package api
// Author: momentics
//
// Test doubles for the collaborator contracts.

package api

import "sync/atomic"

// ManualClock is a Clock that only moves when told to.
type ManualClock struct {
	now atomic.Uint64
}

// NewManualClock returns a clock reading start.
func NewManualClock(start Ticks) *ManualClock {
	c := &ManualClock{}
	c.now.Store(uint64(start))
	return c
}

func (c *ManualClock) Now() Ticks { return Ticks(c.now.Load()) }

// Advance moves the clock forward by d.
func (c *ManualClock) Advance(d Ticks) { c.now.Add(uint64(d)) }

// Set moves the clock to t.
func (c *ManualClock) Set(t Ticks) { c.now.Store(uint64(t)) }
