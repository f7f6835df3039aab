//go:build windows
// +build windows

// File: adapters/default_windows.go
// Author: momentics <momentics@gmail.com>

package adapters

import "github.com/momentics/hioload-thread/api"

// Default returns the adapter for this build target: Win32.
func Default(opts Options) api.Threads {
	return NewWin32(opts)
}
