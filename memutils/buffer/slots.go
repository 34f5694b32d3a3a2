package buffer

import "github.com/vkngwrapper/plinth/memutils"

// The pointer-slot methods treat the buffer as an array of memutils.PtrSize words and address it by
// slot index rather than byte position. They assume the used region is a whole number of slots.

// UsedPtr returns the number of slots in use
func (b *Buffer) UsedPtr() int { return b.used / memutils.PtrSize }

// SizePtr returns the number of slots the buffer can hold without growing
func (b *Buffer) SizePtr() int { return len(b.data) / memutils.PtrSize }

// GetPosPtr claims one slot and returns its index, or -1 on failure
func (b *Buffer) GetPosPtr() int {
	pos := b.GetPos(memutils.PtrSize)
	if pos < 0 {
		return -1
	}
	return pos / memutils.PtrSize
}

// StorePtr appends value as a new slot and returns its index, or -1 on failure
func (b *Buffer) StorePtr(value uintptr) int {
	slot := b.GetPosPtr()
	if slot < 0 {
		return -1
	}

	memutils.PutPtr(b.data[slot*memutils.PtrSize:], value)
	return slot
}

// StoreNull zeroes the slot just past the used region, growing if needed, without counting it as used
func (b *Buffer) StoreNull() bool {
	if !b.Resize(b.used + memutils.PtrSize) {
		return false
	}

	clear(b.data[b.used : b.used+memutils.PtrSize])
	return true
}

// TerminatePtr zeroes the slot just past the used region if it fits in the current capacity
func (b *Buffer) TerminatePtr() bool {
	return b.Terminate(memutils.PtrSize)
}

// SetPtr overwrites the slot at index. It returns false if the slot is outside the buffer's capacity.
func (b *Buffer) SetPtr(slot int, value uintptr) bool {
	if slot < 0 || slot >= b.SizePtr() {
		return false
	}

	memutils.PutPtr(b.data[slot*memutils.PtrSize:], value)
	return true
}

// RefPtr reads the slot at index, or returns 0 if it is outside the buffer's capacity
func (b *Buffer) RefPtr(slot int) uintptr {
	if slot < 0 || slot >= b.SizePtr() {
		return 0
	}

	return memutils.Ptr(b.data[slot*memutils.PtrSize:])
}

// InsertPtr inserts value as a new slot at index, shifting later slots back
func (b *Buffer) InsertPtr(slot int, value uintptr) bool {
	var word [memutils.PtrSize]byte
	memutils.PutPtr(word[:], value)
	return b.Insert(slot*memutils.PtrSize, word[:])
}

// RemovePtr deletes the slot at index, shifting later slots forward
func (b *Buffer) RemovePtr(slot int) {
	b.Remove(slot*memutils.PtrSize, memutils.PtrSize)
}

// FindPtr returns the index of the first used slot holding value, or -1
func (b *Buffer) FindPtr(value uintptr) int {
	return b.FindWith(memutils.PtrSize, func(record []byte) bool {
		return memutils.Ptr(record) == value
	})
}
