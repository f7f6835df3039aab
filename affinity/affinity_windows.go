//go:build windows
// +build windows

// File: affinity/affinity_windows.go
// Author: momentics <momentics@gmail.com>
//
// Windows-specific implementation for setting thread CPU affinity.
// Only the calling thread's processor group is addressed.

package affinity

import (
	"golang.org/x/sys/windows"
)

// MaxCPUs is the width of a single-group affinity mask.
const MaxCPUs = 64

var (
	modkernel32               = windows.NewLazySystemDLL("kernel32.dll")
	procSetThreadAffinityMask = modkernel32.NewProc("SetThreadAffinityMask")
)

// setAffinityPlatform sets thread affinity for the current thread.
func setAffinityPlatform(cpus []int) error {
	var mask uintptr
	for _, cpu := range cpus {
		mask |= uintptr(1) << uint(cpu)
	}
	old, _, err := procSetThreadAffinityMask.Call(uintptr(windows.CurrentThread()), mask)
	if old == 0 {
		return err
	}
	return nil
}
