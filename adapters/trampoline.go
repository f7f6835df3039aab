// File: adapters/trampoline.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Closure trampoline for the Win32 adapter. The native entry point takes a
// single pointer and returns a 32-bit exit code, so the entry routine and
// its argument travel in a closureHandle taken from the allocator. The
// handle is released exactly once: by the trampoline after it has copied
// the contents, or by the creator when native creation failed and the
// trampoline never ran.

package adapters

import (
	"sync/atomic"
	"unsafe"

	"github.com/momentics/hioload-thread/api"
	"github.com/momentics/hioload-thread/pool"
)

// win32StartRoutine is the native thread entry signature.
type win32StartRoutine func(param unsafe.Pointer) uint32

type closureHandle struct {
	entry api.StartRoutine
	arg   any
	home  pool.ObjectPool[*closureHandle]
	live  atomic.Bool
}

type closure struct {
	entry api.StartRoutine
	arg   any
}

func newClosurePool() pool.ObjectPool[*closureHandle] {
	return pool.NewSyncPool(func() *closureHandle { return &closureHandle{} })
}

// allocClosure takes a handle from home and fills it.
func allocClosure(home pool.ObjectPool[*closureHandle], entry api.StartRoutine, arg any) *closureHandle {
	h := home.Get()
	h.entry, h.arg, h.home = entry, arg, home
	h.live.Store(true)
	return h
}

// release returns h to its allocator. A second release is a bug in the
// ownership hand-off and panics.
func (h *closureHandle) release() {
	if !h.live.CompareAndSwap(true, false) {
		panic("adapters: closure handle released twice")
	}
	home := h.home
	h.entry, h.arg, h.home = nil, nil, nil
	home.Put(h)
}

// take copies the contents out of h and releases it.
func (h *closureHandle) take() closure {
	c := closure{entry: h.entry, arg: h.arg}
	h.release()
	return c
}

// win32Trampoline is registered as the native entry. The copy is taken
// first so that a forcefully terminated thread cannot leak the handle.
func win32Trampoline(param unsafe.Pointer) uint32 {
	c := (*closureHandle)(param).take()
	return narrowExitCode(c.entry(c.arg))
}

// narrowExitCode truncates integer results to the 32-bit exit code word.
// Anything else exits with 0.
func narrowExitCode(v any) uint32 {
	switch n := v.(type) {
	case int:
		return uint32(n)
	case int8:
		return uint32(n)
	case int16:
		return uint32(n)
	case int32:
		return uint32(n)
	case int64:
		return uint32(n)
	case uint:
		return uint32(n)
	case uint8:
		return uint32(n)
	case uint16:
		return uint32(n)
	case uint32:
		return n
	case uint64:
		return uint32(n)
	case uintptr:
		return uint32(n)
	}
	return 0
}
