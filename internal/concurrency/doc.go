// File: internal/concurrency/doc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Native thread substrate for hioload-thread. A native thread here is a
// goroutine locked to its own OS thread for its entire life: the Go runtime
// dedicates the OS thread to it and destroys that thread when the goroutine
// exits. Bring-up (OS thread id capture, naming, CPU affinity) happens on
// the new thread and is reported back to the creator before Spawn returns.
//
// Platform specifics live in thread_linux.go, thread_windows.go and
// thread_other.go, selected by build tags.
package concurrency
