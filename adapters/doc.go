// Package adapters
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Platform adapters implementing api.Threads on top of the native thread
// substrate in internal/concurrency:
//
//   - Posix: errno-style outcomes, pass-through entry routines, cooperative
//     cancellation (or liveness-only on Android), microsecond sleeps.
//   - Win32: closure trampoline, exit-code joins, forceful termination,
//     millisecond sleeps.
//
// Default selects the adapter for the build target. Callers normally reach
// adapters through the dispatch table in package facade.
package adapters
