// File: api/pool.go
// Author: momentics <momentics@gmail.com>
//
// Allocator contract used by backends that hand memory to a new thread.

package api

// ObjectPool provides generic pooling of Go objects allocated transiently.
// Get allocates and Put frees; an object must be Put at most once per Get.
type ObjectPool[T any] interface {
	// Get returns an available instance from pool
	Get() T

	// Put returns an instance for reuse
	Put(obj T)
}
