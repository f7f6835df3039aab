//go:build constrained
// +build constrained

// File: api/buildcfg_constrained.go
// Author: momentics <momentics@gmail.com>
//
// Reduced default stack size for constrained-memory targets.

package api

const constrainedDevice = true
