// Package pool
// Author: momentics <momentics@gmail.com>
//
// Generic object pools used as the heap allocator collaborator of the
// thread core, with allocation accounting for leak checks.
package pool
