//go:build unix
// +build unix

// File: adapters/default_unix.go
// Author: momentics <momentics@gmail.com>

package adapters

import "github.com/momentics/hioload-thread/api"

// Default returns the adapter for this build target: Posix.
func Default(opts Options) api.Threads {
	return NewPosix(opts)
}
