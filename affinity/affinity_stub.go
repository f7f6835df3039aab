//go:build !linux && !windows
// +build !linux,!windows

// File: affinity/affinity_stub.go
// Author: momentics <momentics@gmail.com>
//
// Stub implementation for unsupported platforms.

package affinity

// MaxCPUs mirrors the Linux mask width so validation behaves the same.
const MaxCPUs = 1024

func setAffinityPlatform(cpus []int) error {
	return ErrNotSupported
}
