// Author: momentics <momentics@gmail.com>
// SPDX-License-Identifier: MIT

package pool

import (
	"sync"
	"sync/atomic"

	"github.com/momentics/hioload-thread/api"
)

// ObjectPool is a generic object pool. It is the allocator collaborator of
// the thread core: Get allocates, Put frees.
type ObjectPool[T any] interface {
	api.ObjectPool[T]
}

var (
	_ api.ObjectPool[int] = (*SyncPool[int])(nil)
	_ api.ObjectPool[int] = (*CountingPool[int])(nil)
)

// SyncPool wraps sync.Pool for generic usage.
type SyncPool[T any] struct {
	pool *sync.Pool
}

// NewSyncPool creates a new SyncPool with a creator function.
func NewSyncPool[T any](creator func() T) *SyncPool[T] {
	return &SyncPool[T]{
		pool: &sync.Pool{New: func() any { return creator() }},
	}
}

func (sp *SyncPool[T]) Get() T {
	return sp.pool.Get().(T)
}

func (sp *SyncPool[T]) Put(obj T) {
	sp.pool.Put(obj)
}

// CountingPool tracks allocations against an underlying pool so leaks and
// double frees show up as a non-zero Outstanding count.
type CountingPool[T any] struct {
	inner ObjectPool[T]
	gets  atomic.Int64
	puts  atomic.Int64
}

// NewCountingPool wraps inner.
func NewCountingPool[T any](inner ObjectPool[T]) *CountingPool[T] {
	return &CountingPool[T]{inner: inner}
}

func (cp *CountingPool[T]) Get() T {
	cp.gets.Add(1)
	return cp.inner.Get()
}

func (cp *CountingPool[T]) Put(obj T) {
	cp.puts.Add(1)
	cp.inner.Put(obj)
}

// Gets returns the number of allocations so far.
func (cp *CountingPool[T]) Gets() int64 { return cp.gets.Load() }

// Puts returns the number of frees so far.
func (cp *CountingPool[T]) Puts() int64 { return cp.puts.Load() }

// Outstanding returns allocations not yet freed.
func (cp *CountingPool[T]) Outstanding() int64 { return cp.gets.Load() - cp.puts.Load() }
