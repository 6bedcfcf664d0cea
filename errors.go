package statalloc

import "errors"

// Sentinel errors, returned (never panicked) from the public operations.
// Mirrors the teacher's internal/errs package: a small var block of
// errors.New values that callers can match with errors.Is.
var (
	// ErrOOM is returned when no free run can satisfy a request after a
	// full free-list traversal, or when Allocate is asked for an alignment
	// that the backing buffer's start address does not have.
	ErrOOM = errors.New("statalloc: out of memory")

	// ErrBadArgument is returned by New when (L, B) fail pre-validation.
	ErrBadArgument = errors.New("statalloc: bad argument")

	// ErrClosed names the state of an allocator whose backing store has
	// been closed. No operation in this package returns it: operations are
	// not checked against a closed store.
	ErrClosed = errors.New("statalloc: closed")
)
