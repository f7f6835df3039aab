//go:build windows
// +build windows

// File: internal/concurrency/thread_windows.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Windows thread identity and descriptions. SetThreadDescription exists
// from Windows 10 1607; older systems keep only the recorded name.

package concurrency

import (
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	modkernel32              = windows.NewLazySystemDLL("kernel32.dll")
	procSetThreadDescription = modkernel32.NewProc("SetThreadDescription")
)

func osThreadKey() uint64 { return uint64(windows.GetCurrentThreadId()) }

func setOSThreadName(name string) error {
	if err := procSetThreadDescription.Find(); err != nil {
		return err
	}
	p, err := windows.UTF16PtrFromString(name)
	if err != nil {
		return err
	}
	hr, _, _ := procSetThreadDescription.Call(uintptr(windows.CurrentThread()), uintptr(unsafe.Pointer(p)))
	if int32(hr) < 0 {
		return windows.Errno(hr)
	}
	return nil
}

func currentOSThreadName() (string, error) { return "", ErrNameUnsupport }

func osThreadName(uint64) (string, error) { return "", ErrNameUnsupport }

func probeOSThread(uint64) error { return nil }
