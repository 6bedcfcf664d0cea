// Package shim adapts statalloc's primitive operations to the shape the
// rest of the Go ecosystem actually uses for pluggable allocators: there
// is no single standard "allocator trait" the way Rust has
// core::alloc::Allocator, so this follows the pattern seen across the
// retrieved pack's own pooled-allocator code (e.g. a Mallocer/Mpooler
// pair of Alloc/Free methods) rather than inventing a new one.
package shim

import "fmt"

// Allocator is the capability a container needs from a backing
// allocator: reserve, release, and resize a byte slice. *statalloc.
// Allocator, *statalloc.Safe, and *statalloc.Chain all already expose
// compatible methods; this interface just pins the shape so container
// code can depend on it without importing statalloc directly.
type Allocator interface {
	Allocate(size, align uint32) ([]byte, error)
	Deallocate(p []byte, size, align uint32)
	Grow(p []byte, oldSize, newSize, align uint32) ([]byte, error)
	Shrink(p []byte, oldSize, newSize, align uint32) []byte
}

// Arena is a minimal growable byte buffer, the kind of container the
// base spec's §4.F has in mind: many Arena values can share one
// Allocator reference without any of them taking ownership of it
// (share-by-reference attachment), exactly as the spec requires.
type Arena struct {
	alloc Allocator
	align uint32
	buf   []byte
}

// NewArena creates an empty arena backed by alloc. alloc is not owned by
// the Arena: the caller may attach further Arenas to the same allocator,
// and must not close/drop alloc while any Arena built from it is in use.
func NewArena(alloc Allocator, align uint32) *Arena {
	return &Arena{alloc: alloc, align: align}
}

// Len returns the number of bytes currently reserved.
func (a *Arena) Len() int { return len(a.buf) }

// Bytes returns the arena's current contents.
func (a *Arena) Bytes() []byte { return a.buf }

// Reserve grows the arena to hold at least n bytes, preserving existing
// content, and returns the (possibly reallocated) backing slice.
func (a *Arena) Reserve(n int) ([]byte, error) {
	if n <= len(a.buf) {
		return a.buf, nil
	}
	if a.buf == nil {
		p, err := a.alloc.Allocate(uint32(n), a.align)
		if err != nil {
			return nil, fmt.Errorf("shim: reserve %d bytes: %w", n, err)
		}
		a.buf = p
		return a.buf, nil
	}
	grown, err := a.alloc.Grow(a.buf, uint32(len(a.buf)), uint32(n), a.align)
	if err != nil {
		return nil, fmt.Errorf("shim: grow to %d bytes: %w", n, err)
	}
	a.buf = grown
	return a.buf, nil
}

// Truncate shrinks the arena down to n bytes, releasing the tail back to
// the allocator. n must be <= the arena's current length.
func (a *Arena) Truncate(n int) {
	if n >= len(a.buf) {
		return
	}
	a.buf = a.alloc.Shrink(a.buf, uint32(len(a.buf)), uint32(n), a.align)
}

// Release frees the arena's backing slice and leaves it empty. The
// shared Allocator itself is untouched — attachment is by reference.
func (a *Arena) Release() {
	if a.buf == nil {
		return
	}
	a.alloc.Deallocate(a.buf, uint32(len(a.buf)), a.align)
	a.buf = nil
}
