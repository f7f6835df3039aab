//go:build unix && !android
// +build unix,!android

// File: adapters/cancel_default.go
// Author: momentics <momentics@gmail.com>

package adapters

import "github.com/momentics/hioload-thread/api"

const defaultCancelMode = api.CancelCooperative
