// File: api/params.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Versioned thread creation parameters and build-time defaults.

package api

import (
	"fmt"
	"strconv"
)

const (
	// ThreadParamsVersion0 carries StackSize only.
	ThreadParamsVersion0 uint32 = 0
	// ThreadParamsVersion1 adds Name and CPUAffinity.
	ThreadParamsVersion1 uint32 = 1
	// ThreadParamsCurrentVersion is the highest version this module
	// understands. Higher versions are rejected, never guessed at.
	ThreadParamsCurrentVersion = ThreadParamsVersion1
)

// ThreadStackSizeOnConstrainedDevice is the default stack size when built
// with the constrained tag.
const ThreadStackSizeOnConstrainedDevice uintptr = 512 * 1024

// ThreadParams configures thread creation.
type ThreadParams struct {
	Version uint32
	// StackSize in bytes; 0 selects the platform default.
	StackSize uintptr

	// Version 1 fields. Ignored when Version is 0.
	Name        string
	CPUAffinity []int
}

// DefaultStackSizeBytes overrides the default stack size at link time:
//
//	go build -ldflags "-X github.com/momentics/hioload-thread/api.DefaultStackSizeBytes=262144"
//
// It takes priority over the constrained build tag.
var DefaultStackSizeBytes string

// DefaultStackSize resolves the stack size used by Create. conflict is true
// when both the link-time override and the constrained tag are present, in
// which case the override wins. An unparsable override is reported in err
// and size falls back to what the build would use without it.
func DefaultStackSize() (size uintptr, conflict bool, err error) {
	if DefaultStackSizeBytes != "" {
		v, perr := strconv.ParseUint(DefaultStackSizeBytes, 10, 64)
		if perr == nil {
			return uintptr(v), constrainedDevice, nil
		}
		err = fmt.Errorf("invalid DefaultStackSizeBytes %q: %w", DefaultStackSizeBytes, perr)
	}
	if constrainedDevice {
		return ThreadStackSizeOnConstrainedDevice, false, err
	}
	return 0, false, err
}

// DefaultThreadParams returns the parameters Create synthesizes.
func DefaultThreadParams() ThreadParams {
	size, _, _ := DefaultStackSize()
	return ThreadParams{Version: ThreadParamsVersion0, StackSize: size}
}

// Effective returns the version 1 fields honoured for p.
func (p *ThreadParams) Effective() (name string, cpus []int) {
	if p.Version < ThreadParamsVersion1 {
		return "", nil
	}
	return p.Name, p.CPUAffinity
}
