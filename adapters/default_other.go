//go:build !unix && !windows
// +build !unix,!windows

// File: adapters/default_other.go
// Author: momentics <momentics@gmail.com>

package adapters

import "github.com/momentics/hioload-thread/api"

// Default returns the Unsupported stub on targets without a backend.
func Default(opts Options) api.Threads {
	return NewUnsupported(opts)
}
