// Package freelist implements the singly-linked, address-ordered free-list
// core: first-fit search with alignment padding, split on allocate, and
// up-to-two-sided coalesce on deallocate. All operations work in block
// units; byte-to-block quantization is the caller's job.
package freelist

import "statalloc/internal/blockhdr"

// baseLoc is the sentinel "location" identifying the out-of-band anchor
// header, distinct from any real block index (block indices fit in 17 bits
// at most, baseLoc does not).
const baseLoc uint32 = 1 << 31

// Run describes one maximal contiguous range of blocks in the same state,
// as produced by DebugState.
type Run struct {
	Start  uint32
	Length uint32
	Free   bool
}

// List is the free-list core bound to a caller-owned buffer. It holds no
// buffer of its own; create it with New.
type List struct {
	buf        []byte
	blockSize  uint32
	blockCount uint32
	baseNext   uint16
}

// New creates a free-list core over buf, which must be exactly
// blockCount*blockSize bytes, and initializes it to a single free run
// covering the whole buffer.
func New(buf []byte, blockSize, blockCount uint32) *List {
	l := &List{buf: buf, blockSize: blockSize, blockCount: blockCount}
	l.Reset()
	return l
}

// Reset reinitializes the free-list to a single free run covering the
// whole buffer, discarding all outstanding allocations.
func (l *List) Reset() {
	l.baseNext = 0
	blockhdr.Write(l.headerAt(0), uint16(l.blockCount), blockhdr.None)
}

func (l *List) headerAt(idx uint32) []byte {
	off := idx * l.blockSize
	return l.buf[off : off+blockhdr.Size]
}

func (l *List) lengthAt(idx uint32) uint32 {
	length, _ := blockhdr.Read(l.headerAt(idx))
	return uint32(length)
}

func (l *List) nextOf(loc uint32) uint16 {
	if loc == baseLoc {
		return l.baseNext
	}
	_, next := blockhdr.Read(l.headerAt(loc))
	return next
}

func (l *List) setNextOf(loc uint32, next uint16) {
	if loc == baseLoc {
		l.baseNext = next
		return
	}
	length, _ := blockhdr.Read(l.headerAt(loc))
	blockhdr.Write(l.headerAt(loc), length, next)
}

func alignUp(x, pow2 uint32) uint32 {
	return (x + pow2 - 1) &^ (pow2 - 1)
}

// IsEmpty reports whether the entire buffer is one free run. O(1).
func (l *List) IsEmpty() bool {
	return l.baseNext == 0 && l.lengthAt(0) == l.blockCount
}

// IsOOM reports whether the free-list is exhausted. O(1).
func (l *List) IsOOM() bool {
	return l.baseNext == blockhdr.None
}

// AllocateBlocks finds the first free run, in address order, that can
// satisfy count blocks aligned to 2^alignLog2 blocks, carves it out, and
// returns the block index of the carved allocation. ok is false on OOM.
func (l *List) AllocateBlocks(count, alignLog2 uint32) (blockIndex uint32, ok bool) {
	alignBlocks := uint32(1) << alignLog2

	prev := baseLoc
	curr := uint32(l.nextOf(baseLoc))

	for curr != uint32(blockhdr.None) {
		length := l.lengthAt(curr)
		next := l.nextOf(curr)

		skip := alignUp(curr, alignBlocks) - curr
		if skip+count <= length {
			tail := length - skip - count
			switch {
			case skip == 0 && tail == 0:
				l.setNextOf(prev, next)
			case skip == 0 && tail > 0:
				newIdx := curr + count
				blockhdr.Write(l.headerAt(newIdx), uint16(tail), next)
				l.setNextOf(prev, uint16(newIdx))
			case skip > 0 && tail == 0:
				blockhdr.Write(l.headerAt(curr), uint16(skip), next)
			default: // skip > 0 && tail > 0
				blockhdr.Write(l.headerAt(curr), uint16(skip), uint16(curr+skip+count))
				blockhdr.Write(l.headerAt(curr+skip+count), uint16(tail), next)
			}
			return curr + skip, true
		}

		prev = curr
		curr = uint32(next)
	}
	return 0, false
}

// DeallocateBlocks returns count blocks starting at blockIndex to the
// free-list, coalescing with an address-adjacent free run on either side.
func (l *List) DeallocateBlocks(blockIndex, count uint32) {
	prev := baseLoc
	curr := uint32(l.nextOf(baseLoc))
	for curr != uint32(blockhdr.None) && curr < blockIndex {
		prev = curr
		curr = uint32(l.nextOf(curr))
	}
	nextIdx := curr

	mergeRight := nextIdx != uint32(blockhdr.None) && blockIndex+count == nextIdx

	var prevLength uint32
	mergeLeft := false
	if prev != baseLoc {
		prevLength = l.lengthAt(prev)
		mergeLeft = prev+prevLength == blockIndex
	}

	switch {
	case mergeLeft && mergeRight:
		nextLength := l.lengthAt(nextIdx)
		nextNext := l.nextOf(nextIdx)
		blockhdr.Write(l.headerAt(prev), uint16(prevLength+count+nextLength), nextNext)
	case mergeLeft:
		blockhdr.Write(l.headerAt(prev), uint16(prevLength+count), uint16(nextIdx))
	case mergeRight:
		nextLength := l.lengthAt(nextIdx)
		nextNext := l.nextOf(nextIdx)
		blockhdr.Write(l.headerAt(blockIndex), uint16(count+nextLength), nextNext)
		l.setNextOf(prev, uint16(blockIndex))
	default:
		blockhdr.Write(l.headerAt(blockIndex), uint16(count), uint16(nextIdx))
		l.setNextOf(prev, uint16(blockIndex))
	}
}

// ShrinkInPlace frees the tail [blockIndex+newCount, blockIndex+oldCount)
// of an allocation, coalescing it with whatever free run immediately
// follows. newCount must be strictly less than oldCount.
func (l *List) ShrinkInPlace(blockIndex, oldCount, newCount uint32) {
	l.DeallocateBlocks(blockIndex+newCount, oldCount-newCount)
}

// GrowInPlace attempts to extend an allocation from oldCount to newCount
// blocks without moving it, by consuming a free run that starts exactly
// where the allocation currently ends. It mutates nothing and returns
// false if that isn't possible.
func (l *List) GrowInPlace(blockIndex, oldCount, newCount uint32) bool {
	needed := newCount - oldCount
	tailStart := blockIndex + oldCount

	prev := baseLoc
	curr := uint32(l.nextOf(baseLoc))
	for curr != uint32(blockhdr.None) && curr < tailStart {
		prev = curr
		curr = uint32(l.nextOf(curr))
	}
	if curr == uint32(blockhdr.None) || curr != tailStart {
		return false
	}

	length := l.lengthAt(curr)
	if length < needed {
		return false
	}
	next := l.nextOf(curr)
	tail := length - needed
	if tail > 0 {
		newFreeIdx := curr + needed
		blockhdr.Write(l.headerAt(newFreeIdx), uint16(tail), next)
		l.setNextOf(prev, uint16(newFreeIdx))
	} else {
		l.setNextOf(prev, next)
	}
	return true
}

// DebugState walks the free-list and fills the gaps between free runs with
// synthesized used runs, in address order, covering the whole buffer.
func (l *List) DebugState() []Run {
	runs := make([]Run, 0, 8)
	pos := uint32(0)
	curr := uint32(l.nextOf(baseLoc))

	for pos < l.blockCount {
		if curr != uint32(blockhdr.None) && curr == pos {
			length := l.lengthAt(curr)
			runs = append(runs, Run{Start: pos, Length: length, Free: true})
			next := l.nextOf(curr)
			pos += length
			curr = uint32(next)
			continue
		}
		end := l.blockCount
		if curr != uint32(blockhdr.None) {
			end = curr
		}
		runs = append(runs, Run{Start: pos, Length: end - pos, Free: false})
		pos = end
	}
	return runs
}
