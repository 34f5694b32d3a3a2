package buffer

import (
	"context"

	"github.com/pkg/errors"
	"github.com/vkngwrapper/plinth/memutils"
	"github.com/vkngwrapper/plinth/memutils/alloc"
	"golang.org/x/exp/slog"
)

// firstGrowthAlignment is the granularity of the first allocation made by an unmaterialized buffer
const firstGrowthAlignment int = 64

// Buffer is a contiguous region of memory with a used prefix. It grows on demand, relocating its
// contents when it does, so positions into a Buffer stay valid across growth but slices returned
// from it do not.
//
// A Buffer wrapping caller memory never writes past that memory: the first growth moves the
// contents to a fresh heap allocation and the buffer owns memory from then on. If growth fails,
// the buffer drops its contents and returns to the unmaterialized state.
//
// A Buffer is not safe for concurrent use.
type Buffer struct {
	logger *slog.Logger
	heap   memutils.Heap

	data     []byte
	used     int
	hint     int
	affinity memutils.Affinity
}

// New creates a buffer with size bytes of heap memory. If the memory cannot be acquired, the buffer
// is left unmaterialized.
func New(size int, options alloc.CreateOptions) *Buffer {
	b := Empty(0, options)
	if size <= 0 {
		return b
	}

	mem := b.heap.Allocate(size)
	if mem == nil {
		b.logger.LogAttrs(context.Background(), slog.LevelDebug, "Buffer::New failed to allocate",
			slog.Int("size", size))
		return b
	}

	b.data = mem
	b.affinity = memutils.AffinityHeap
	return b
}

// NewPtr creates a buffer with room for count pointer slots
func NewPtr(count int, options alloc.CreateOptions) *Buffer {
	return New(count*memutils.PtrSize, options)
}

// Use creates a buffer over mem, which the caller continues to own
func Use(mem []byte, options alloc.CreateOptions) *Buffer {
	b := Empty(0, options)
	if len(mem) > 0 {
		b.data = mem[:len(mem):len(mem)]
		b.affinity = memutils.AffinitySelf
	}
	return b
}

// UseArena creates a buffer over size bytes taken from host. The buffer owes nothing for that memory:
// the caller returns it to the arena with Put once the buffer is no longer using it.
func UseArena(host *alloc.Arena, size int) *Buffer {
	return Use(host.Get(size), alloc.CreateOptions{Heap: host.Heap(), Logger: host.Logger()})
}

// UseBlock creates a buffer over one block taken from host. The buffer owes nothing for that block.
func UseBlock(host *alloc.Block) *Buffer {
	return Use(host.Get(), alloc.CreateOptions{Heap: host.Heap(), Logger: host.Logger()})
}

// Empty creates an unmaterialized buffer. The first growth allocates at least hint bytes.
func Empty(hint int, options alloc.CreateOptions) *Buffer {
	return &Buffer{
		logger:   memutils.LoggerOrDiscard(options.Logger),
		heap:     memutils.HeapOrDefault(options.Heap),
		hint:     max(hint, 0),
		affinity: memutils.AffinityNone,
	}
}

// EmptyPtr creates an unmaterialized buffer whose first growth allocates at least count pointer slots
func EmptyPtr(count int, options alloc.CreateOptions) *Buffer {
	return Empty(count*memutils.PtrSize, options)
}

func growSize(capacity, target int) int {
	if target > capacity*2 {
		return memutils.AlignTo(target, capacity)
	}
	return capacity * 2
}

func (b *Buffer) fail(target int) bool {
	b.logger.LogAttrs(context.Background(), slog.LevelDebug, "Buffer::Resize failed, dropping contents",
		slog.Int("target", target),
		slog.Int("size", len(b.data)),
		slog.String("affinity", b.affinity.String()))

	if b.affinity == memutils.AffinityHeap {
		b.heap.Free(b.data)
	}

	b.data = nil
	b.used = 0
	b.affinity = memutils.AffinityNone
	return false
}

// Resize makes sure the buffer can hold at least target bytes. It returns false if growth failed,
// in which case the buffer is now unmaterialized.
func (b *Buffer) Resize(target int) bool {
	if target <= len(b.data) {
		return true
	}

	switch {
	case b.data == nil:
		size := b.hint
		if b.hint == 0 || target > b.hint {
			size = memutils.AlignUp(target, firstGrowthAlignment)
		}

		mem := b.heap.Allocate(size)
		if mem == nil {
			return b.fail(target)
		}
		b.data = mem
	case b.affinity != memutils.AffinityHeap:
		mem := b.heap.Allocate(growSize(len(b.data), target))
		if mem == nil {
			return b.fail(target)
		}

		copy(mem, b.data)
		b.data = mem
	default:
		oldSize := len(b.data)
		mem := b.heap.Reallocate(b.data, growSize(oldSize, target))
		if mem == nil {
			return b.fail(target)
		}

		clear(mem[oldSize:])
		b.data = mem
	}

	b.affinity = memutils.AffinityHeap
	memutils.DebugValidate(b)
	return true
}

// Shrink reduces heap-owned capacity to size bytes, or to the used size if that is larger. Buffers
// over borrowed memory are left alone.
func (b *Buffer) Shrink(size int) {
	size = max(size, b.used)
	if b.affinity != memutils.AffinityHeap || size >= len(b.data) {
		return
	}

	if size == 0 {
		b.heap.Free(b.data)
		b.data = nil
		b.affinity = memutils.AffinityNone
		return
	}

	mem := b.heap.Reallocate(b.data, size)
	if mem != nil {
		b.data = mem
	}
}

// Compact reduces heap-owned capacity to the used size
func (b *Buffer) Compact() {
	b.Shrink(b.used)
}

// Shadow returns a buffer that views the same memory without owning it. The shadow is invalidated
// by anything that relocates or releases the original's memory.
func (b *Buffer) Shadow() *Buffer {
	shadow := *b
	if shadow.data != nil {
		shadow.affinity = memutils.AffinitySelf
	}
	return &shadow
}

// Copy returns a buffer that owns a heap copy of this buffer's memory, at the same capacity
func (b *Buffer) Copy() *Buffer {
	out := Empty(b.hint, alloc.CreateOptions{Heap: b.heap, Logger: b.logger})
	if b.data == nil {
		return out
	}

	mem := b.heap.Allocate(len(b.data))
	if mem == nil {
		return out
	}

	copy(mem, b.data)
	out.data = mem
	out.used = b.used
	out.affinity = memutils.AffinityHeap
	return out
}

// Del releases heap-owned memory and returns the buffer to the unmaterialized state
func (b *Buffer) Del() {
	if b.affinity == memutils.AffinityHeap {
		b.heap.Free(b.data)
	}

	b.data = nil
	b.used = 0
	b.affinity = memutils.AffinityNone
}

// Reset forgets the buffer's contents without clearing them
func (b *Buffer) Reset() {
	b.used = 0
}

// Clear zeroes the buffer's contents and forgets them
func (b *Buffer) Clear() {
	clear(b.data[:b.used])
	b.used = 0
}

// Used returns the number of bytes in use
func (b *Buffer) Used() int { return b.used }

// Size returns the buffer's capacity in bytes
func (b *Buffer) Size() int { return len(b.data) }

// Data returns the buffer's whole capacity
func (b *Buffer) Data() []byte { return b.data }

// Bytes returns the used part of the buffer
func (b *Buffer) Bytes() []byte { return b.data[:b.used] }

// End returns the unused part of the buffer
func (b *Buffer) End() []byte { return b.data[b.used:] }

// IsEmpty returns true if the buffer holds no memory
func (b *Buffer) IsEmpty() bool { return b.data == nil }

// OwnsMemory returns true if the buffer has to release its memory when deleted
func (b *Buffer) OwnsMemory() bool { return b.affinity == memutils.AffinityHeap }

// Affinity reports whether the buffer's memory is borrowed, heap-owned, or absent
func (b *Buffer) Affinity() memutils.Affinity { return b.affinity }

// Heap returns the heap the buffer grows from
func (b *Buffer) Heap() memutils.Heap { return b.heap }

// Logger returns the logger the buffer writes to
func (b *Buffer) Logger() *slog.Logger { return b.logger }

// Validate performs internal consistency checks on the buffer
func (b *Buffer) Validate() error {
	if b.used < 0 || b.used > len(b.data) {
		return errors.Errorf("buffer uses %d bytes of a %d byte capacity", b.used, len(b.data))
	}

	if b.data == nil && b.affinity != memutils.AffinityNone {
		return errors.Errorf("unmaterialized buffer reports %s affinity", b.affinity)
	}

	if b.data != nil && b.affinity != memutils.AffinityHeap && b.affinity != memutils.AffinitySelf {
		return errors.Errorf("materialized buffer reports %s affinity", b.affinity)
	}

	return nil
}
