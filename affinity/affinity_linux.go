//go:build linux
// +build linux

// File: affinity/affinity_linux.go
// Author: momentics <momentics@gmail.com>
//
// Linux-specific implementation for setting thread CPU affinity.

package affinity

import "golang.org/x/sys/unix"

// MaxCPUs is CPU_SETSIZE, the width of cpu_set_t.
const MaxCPUs = 1024

// setAffinityPlatform applies the mask to the calling thread (pid 0).
func setAffinityPlatform(cpus []int) error {
	var set unix.CPUSet
	set.Zero()
	for _, cpu := range cpus {
		set.Set(cpu)
	}
	return unix.SchedSetaffinity(0, &set)
}
