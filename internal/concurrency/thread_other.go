//go:build !linux && !windows
// +build !linux,!windows

// File: internal/concurrency/thread_other.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Fallback for platforms without a cgo-free thread id: a spawned thread is
// identified by its goroutine id, which is stable because the goroutine
// never leaves its OS thread.

package concurrency

import "runtime"

func osThreadKey() uint64 { return goroutineID() }

func goroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	// "goroutine NNN [running]:"
	var id uint64
	for i := len("goroutine "); i < n; i++ {
		if buf[i] < '0' || buf[i] > '9' {
			break
		}
		id = id*10 + uint64(buf[i]-'0')
	}
	return id
}

func setOSThreadName(string) error { return ErrNameUnsupport }

func currentOSThreadName() (string, error) { return "", ErrNameUnsupport }

func osThreadName(uint64) (string, error) { return "", ErrNameUnsupport }

func probeOSThread(uint64) error { return nil }
