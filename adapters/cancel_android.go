//go:build android
// +build android

// File: adapters/cancel_android.go
// Author: momentics <momentics@gmail.com>
//
// Bionic has no pthread_cancel. Cancel degrades to a liveness probe and
// Capabilities says so.

package adapters

import "github.com/momentics/hioload-thread/api"

const defaultCancelMode = api.CancelLivenessOnly
