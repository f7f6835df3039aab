// File: affinity/affinity.go
// Author: momentics <momentics@gmail.com>
//
// Platform-neutral API for CPU affinity of the calling OS thread.
// Platform-specific implementations are located in separate files
// (affinity_linux.go, affinity_windows.go, affinity_stub.go) guarded by
// build tags.

package affinity

import (
	"errors"
	"fmt"
)

var (
	// ErrNotSupported is returned where the platform offers no pinning.
	ErrNotSupported = errors.New("affinity: not supported on this platform")
	// ErrEmptySet is returned by Set for an empty CPU list.
	ErrEmptySet = errors.New("affinity: empty cpu set")
)

// Validate checks that every CPU index fits the platform's affinity mask.
func Validate(cpus []int) error {
	for _, cpu := range cpus {
		if cpu < 0 || cpu >= MaxCPUs {
			return fmt.Errorf("affinity: cpu %d out of range [0,%d)", cpu, MaxCPUs)
		}
	}
	return nil
}

// Set pins the calling OS thread to cpus. The goroutine must already be
// locked to its thread or the binding applies to whatever thread happens
// to run it. Native failures are returned unwrapped so callers can inspect
// the errno.
func Set(cpus []int) error {
	if len(cpus) == 0 {
		return ErrEmptySet
	}
	if err := Validate(cpus); err != nil {
		return err
	}
	return setAffinityPlatform(cpus)
}
