// Package blockhdr codecs the 4-byte run header that lives in the first
// block of every free run: a block count and the index of the next free
// run. Used blocks carry no header at all.
package blockhdr

import "encoding/binary"

// Size is the on-disk (in-buffer) size of a header, in bytes.
const Size = 4

// None is the end-of-list / out-of-memory sentinel for the next field.
// It never denotes a real block index, since callers must keep L <= MaxBlocks.
const None uint16 = 0xFFFF

// MaxBlocks is the largest block count an allocator may be constructed with.
// One past this would make block index L-1 collide with None.
const MaxBlocks = 0xFFFF

// Read unpacks a header from the first 4 bytes of buf.
func Read(buf []byte) (length, next uint16) {
	length = binary.LittleEndian.Uint16(buf[0:2])
	next = binary.LittleEndian.Uint16(buf[2:4])
	return length, next
}

// Write packs (length, next) into the first 4 bytes of buf.
func Write(buf []byte, length, next uint16) {
	binary.LittleEndian.PutUint16(buf[0:2], length)
	binary.LittleEndian.PutUint16(buf[2:4], next)
}
