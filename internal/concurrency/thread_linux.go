//go:build linux
// +build linux

// File: internal/concurrency/thread_linux.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Linux thread identity, naming and liveness via golang.org/x/sys/unix.

package concurrency

import (
	"bytes"
	"os"
	"strconv"
	"unsafe"

	"golang.org/x/sys/unix"
)

// kernel comm length, terminator included
const commLen = 16

func osThreadKey() uint64 { return uint64(unix.Gettid()) }

func setOSThreadName(name string) error {
	var buf [commLen]byte
	copy(buf[:commLen-1], name)
	return unix.Prctl(unix.PR_SET_NAME, uintptr(unsafe.Pointer(&buf[0])), 0, 0, 0)
}

func currentOSThreadName() (string, error) {
	var buf [commLen]byte
	if err := unix.Prctl(unix.PR_GET_NAME, uintptr(unsafe.Pointer(&buf[0])), 0, 0, 0); err != nil {
		return "", err
	}
	return string(bytes.TrimRight(buf[:], "\x00")), nil
}

func osThreadName(key uint64) (string, error) {
	b, err := os.ReadFile("/proc/self/task/" + strconv.FormatUint(key, 10) + "/comm")
	if err != nil {
		return "", err
	}
	return string(bytes.TrimRight(b, "\n")), nil
}

// probeOSThread is pthread_kill(t, 0): signal 0 only checks existence.
func probeOSThread(key uint64) error {
	return unix.Tgkill(unix.Getpid(), int(key), 0)
}
