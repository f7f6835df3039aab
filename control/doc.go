// Package control
// Author: momentics <momentics@gmail.com>
//
// Runtime configuration, metrics, lifecycle history and debug introspection
// for hioload-thread thread tables.
//
// Provides concurrent-safe state handling primitives including:
//   - Immutable config snapshots loaded from YAML with environment overrides
//   - Hot reload of the config file through fsnotify
//   - Lifecycle counters and a bounded event history
//   - Debug probe registration and dumps
//
// This package is cross-platform and build-tag-partitioned as needed.
package control
