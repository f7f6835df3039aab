//go:build !constrained
// +build !constrained

// File: api/buildcfg_default.go
// Author: momentics <momentics@gmail.com>

package api

const constrainedDevice = false
