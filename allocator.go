// Package statalloc is a fixed-capacity, general-purpose memory allocator
// whose entire backing store lives inside a single buffer allocated once,
// up front. It never grows the buffer and never asks the operating system
// for more memory on the hot path, making it suitable as a scoped
// allocator attached to one container or as a process-wide fallback layer
// ahead of the Go heap.
//
// The allocator works in fixed-size blocks: L blocks of B bytes each, with
// a 4-byte header living inside the first block of every free run. Used
// blocks carry no metadata at all, so overhead is exactly one header per
// free run, not per allocation.
package statalloc

import (
	"fmt"
	"math/bits"
	"strings"
	"unsafe"

	"statalloc/internal/backing"
	"statalloc/internal/blockhdr"
	"statalloc/internal/freelist"
)

// Allocator is the single-owner allocator core (component C): it owns the
// backing buffer and the free-list threaded through it, and exposes
// byte-sized operations over the block-quantized core in internal/freelist.
//
// An Allocator is not safe for concurrent use; see Safe for a
// spinlock-guarded wrapper.
type Allocator struct {
	store      backing.Store
	buf        []byte
	blockSize  uint32
	blockCount uint32
	list       *freelist.List
}

// New creates an allocator with l blocks of b bytes each, backed by a
// plain Go slice. b must be a power of two of at least 4 bytes (room for
// one header); l must be in [1, 65535].
func New(l, b uint32) (*Allocator, error) {
	return NewWithStore(l, b, backing.NewSlice(l*b))
}

// NewWithStore creates an allocator over an externally supplied backing
// store, e.g. one returned by backing.MapAnonymous. The store's buffer
// must be exactly l*b bytes.
func NewWithStore(l, b uint32, store backing.Store) (*Allocator, error) {
	if !isPow2(b) || b < blockhdr.Size {
		return nil, fmt.Errorf("%w: block size %d must be a power of two >= %d", ErrBadArgument, b, blockhdr.Size)
	}
	if l < 1 || l > blockhdr.MaxBlocks {
		return nil, fmt.Errorf("%w: block count %d must be in [1, %d]", ErrBadArgument, l, blockhdr.MaxBlocks)
	}
	buf := store.Bytes()
	if uint32(len(buf)) != l*b {
		return nil, fmt.Errorf("%w: backing store is %d bytes, want %d", ErrBadArgument, len(buf), l*b)
	}
	return &Allocator{
		store:      store,
		buf:        buf,
		blockSize:  b,
		blockCount: l,
		list:       freelist.New(buf, b, l),
	}, nil
}

// Close releases the backing store's OS resources, if any. Pointers
// returned by this allocator become dangling; the contract permits this
// only if the caller guarantees they are unused.
func (a *Allocator) Close() error {
	return a.store.Close()
}

func isPow2(x uint32) bool { return x > 0 && x&(x-1) == 0 }

// log2Exact returns log2(x) for a power-of-two x.
func log2Exact(x uint32) uint32 { return uint32(bits.Len32(x) - 1) }

func blocksFor(size, blockSize uint32) uint32 {
	if size == 0 {
		return 1
	}
	return (size + blockSize - 1) / blockSize
}

func alignLog2For(align, blockSize uint32) uint32 {
	a := log2Exact(align)
	b := log2Exact(blockSize)
	if a <= b {
		return 0
	}
	return a - b
}

func (a *Allocator) sliceAt(blockIndex, size, blocks uint32) []byte {
	start := blockIndex * a.blockSize
	capEnd := start + blocks*a.blockSize
	return a.buf[start : start+size : capEnd]
}

// blockIndexOf recovers the block index a previously returned slice lives
// at. This is the allocator's one load-bearing use of unsafe: used blocks
// carry no header, so the façade has nothing else to go on, exactly the
// boundary the teacher's internal/fixed package already crosses for
// SetFixed/GetFixed.
func (a *Allocator) blockIndexOf(p []byte) uint32 {
	base := uintptr(unsafe.Pointer(unsafe.SliceData(a.buf)))
	ptr := uintptr(unsafe.Pointer(unsafe.SliceData(p)))
	return uint32((ptr - base) / uintptr(a.blockSize))
}

// Allocate reserves size bytes aligned to align bytes and returns a slice
// of exactly size bytes. align must be a power of two; a size of zero is
// defined to consume one block (see SPEC_FULL.md §4.C boundary
// behavior). Returns ErrOOM if no run satisfies the request, or if the
// backing buffer's own start address is not aligned to align.
func (a *Allocator) Allocate(size, align uint32) ([]byte, error) {
	assertf(align == 0 || isPow2(align), "statalloc: align %d is not a power of two", align)
	if align == 0 {
		align = 1
	}
	blocks := blocksFor(size, a.blockSize)
	if blocks > a.blockCount {
		return nil, ErrOOM
	}
	alignLog2 := alignLog2For(align, a.blockSize)
	if uintptr(unsafe.Pointer(unsafe.SliceData(a.buf)))&uintptr(align-1) != 0 {
		return nil, fmt.Errorf("%w: backing buffer is not %d-byte aligned", ErrOOM, align)
	}

	idx, ok := a.list.AllocateBlocks(blocks, alignLog2)
	if !ok {
		return nil, ErrOOM
	}
	return a.sliceAt(idx, size, blocks), nil
}

// AllocateZeroed is Allocate followed by zeroing.
func (a *Allocator) AllocateZeroed(size, align uint32) ([]byte, error) {
	p, err := a.Allocate(size, align)
	if err != nil {
		return nil, err
	}
	for i := range p {
		p[i] = 0
	}
	return p, nil
}

// Deallocate returns p to the free-list. size and align must match the
// values passed to the Allocate call that produced p; passing mismatched
// values is a precondition violation (§7.2) with undefined behavior.
func (a *Allocator) Deallocate(p []byte, size, align uint32) {
	_ = align
	blocks := blocksFor(size, a.blockSize)
	idx := a.blockIndexOf(p)
	a.list.DeallocateBlocks(idx, blocks)
}

// Grow attempts to extend p from oldSize to newSize bytes in place,
// falling back to allocate-copy-free when the following run can't cover
// the extra blocks. newSize must be >= oldSize.
func (a *Allocator) Grow(p []byte, oldSize, newSize, align uint32) ([]byte, error) {
	assertf(newSize >= oldSize, "statalloc: Grow newSize %d < oldSize %d", newSize, oldSize)

	oldBlocks := blocksFor(oldSize, a.blockSize)
	newBlocks := blocksFor(newSize, a.blockSize)
	idx := a.blockIndexOf(p)

	if newBlocks <= oldBlocks {
		return a.sliceAt(idx, newSize, oldBlocks), nil
	}
	if a.list.GrowInPlace(idx, oldBlocks, newBlocks) {
		return a.sliceAt(idx, newSize, newBlocks), nil
	}

	newP, err := a.Allocate(newSize, align)
	if err != nil {
		return nil, err
	}
	copy(newP, p[:oldSize])
	a.list.DeallocateBlocks(idx, oldBlocks)
	return newP, nil
}

// Shrink releases the unused tail of p, shrinking it from oldSize to
// newSize bytes in place. newSize must be <= oldSize.
func (a *Allocator) Shrink(p []byte, oldSize, newSize, align uint32) []byte {
	_ = align
	assertf(newSize <= oldSize, "statalloc: Shrink newSize %d > oldSize %d", newSize, oldSize)

	oldBlocks := blocksFor(oldSize, a.blockSize)
	newBlocks := blocksFor(newSize, a.blockSize)
	idx := a.blockIndexOf(p)

	if newBlocks >= oldBlocks {
		return a.sliceAt(idx, newSize, oldBlocks)
	}
	a.list.ShrinkInPlace(idx, oldBlocks, newBlocks)
	return a.sliceAt(idx, newSize, newBlocks)
}

// IsEmpty reports whether every block is free. O(1).
func (a *Allocator) IsEmpty() bool { return a.list.IsEmpty() }

// IsOOM reports whether the free-list is exhausted. O(1).
func (a *Allocator) IsOOM() bool { return a.list.IsOOM() }

// addrInBounds reports whether addr falls within this allocator's
// backing buffer. Used by Chain's pointer-range test.
func (a *Allocator) addrInBounds(addr uintptr) bool {
	base := uintptr(unsafe.Pointer(unsafe.SliceData(a.buf)))
	return addr >= base && addr < base+uintptr(len(a.buf))
}

// String renders the run sequence as e.g.
// "[ free×3 | used×8 | free×1 | used×2 | free×6 ]".
func (a *Allocator) String() string {
	runs := a.list.DebugState()
	parts := make([]string, 0, len(runs))
	for _, r := range runs {
		kind := "used"
		if r.Free {
			kind = "free"
		}
		parts = append(parts, fmt.Sprintf("%s×%d", kind, r.Length))
	}
	return "[ " + strings.Join(parts, " | ") + " ]"
}
