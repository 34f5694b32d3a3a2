package unified

import (
	"context"

	"github.com/vkngwrapper/plinth/memutils"
	"github.com/vkngwrapper/plinth/memutils/alloc"
	"github.com/vkngwrapper/plinth/memutils/buffer"
	"golang.org/x/exp/slog"
)

// Callbacks let a caller plug their own allocation strategy into an Allocator. Get is required. When
// Update is nil, updates are done with Get, a copy, and Put. When Put is nil, memory is never reclaimed.
type Callbacks struct {
	Get    func(size int) []byte
	Put    func(mem []byte, size int) []byte
	Update func(mem []byte, oldSize, newSize int) []byte
}

// Allocator gives allocator-agnostic code one get/put/update surface over a heap, an arena, a block
// allocator, a buffer, or caller-provided callbacks. It owns no memory of its own: deleting the
// backing allocator is still the caller's job.
//
// Arena and buffer backends only reclaim their most recent allocation. Putting anything else is
// refused, the call returns nil, and the backend is unchanged.
type Allocator struct {
	kind   memutils.Affinity
	logger *slog.Logger

	heap      memutils.Heap
	arena     *alloc.Arena
	block     *alloc.Block
	buffer    *buffer.Buffer
	callbacks Callbacks
}

// UseHeap creates an Allocator over heap, or over memutils.SystemHeap if heap is nil
func UseHeap(logger *slog.Logger, heap memutils.Heap) *Allocator {
	return &Allocator{
		kind:   memutils.AffinityHeap,
		logger: memutils.LoggerOrDiscard(logger),
		heap:   memutils.HeapOrDefault(heap),
	}
}

// UseArena creates an Allocator over arena
func UseArena(arena *alloc.Arena) *Allocator {
	return &Allocator{
		kind:   memutils.AffinityArena,
		logger: arena.Logger(),
		heap:   arena.Heap(),
		arena:  arena,
	}
}

// UseBlock creates an Allocator over block. Requests larger than the block size fail.
func UseBlock(block *alloc.Block) *Allocator {
	return &Allocator{
		kind:   memutils.AffinityBlock,
		logger: block.Logger(),
		heap:   block.Heap(),
		block:  block,
	}
}

// UseBuffer creates an Allocator over buf. Regions it returns are invalidated whenever the buffer grows.
func UseBuffer(buf *buffer.Buffer) *Allocator {
	return &Allocator{
		kind:   memutils.AffinityBuffer,
		logger: buf.Logger(),
		heap:   buf.Heap(),
		buffer: buf,
	}
}

// Describe creates an Allocator over caller-provided callbacks
func Describe(logger *slog.Logger, callbacks Callbacks) *Allocator {
	if callbacks.Get == nil {
		panic("described allocators require a Get callback")
	}

	return &Allocator{
		kind:      memutils.AffinityDescribed,
		logger:    memutils.LoggerOrDiscard(logger),
		callbacks: callbacks,
	}
}

// Type reports which kind of backend the Allocator dispatches to
func (a *Allocator) Type() memutils.Affinity { return a.kind }

// Host returns the backend: a memutils.Heap, *alloc.Arena, *alloc.Block, *buffer.Buffer, or nil for
// callbacks
func (a *Allocator) Host() any {
	switch a.kind {
	case memutils.AffinityHeap:
		return a.heap
	case memutils.AffinityArena:
		return a.arena
	case memutils.AffinityBlock:
		return a.block
	case memutils.AffinityBuffer:
		return a.buffer
	default:
		return nil
	}
}

// Get returns size bytes from the backend, or nil
func (a *Allocator) Get(size int) []byte {
	switch a.kind {
	case memutils.AffinityHeap:
		return a.heap.Allocate(size)
	case memutils.AffinityArena:
		return a.arena.Get(size)
	case memutils.AffinityBlock:
		if size < 0 || size > a.block.BlockSize() {
			return nil
		}

		mem := a.block.Get()
		if mem == nil {
			return nil
		}
		return mem[:size]
	case memutils.AffinityBuffer:
		return a.buffer.GetRef(size)
	case memutils.AffinityDescribed:
		return a.callbacks.Get(size)
	}

	panic("unknown allocator type: " + a.kind.String())
}

func (a *Allocator) refuse(operation string, size int) []byte {
	a.logger.LogAttrs(context.Background(), slog.LevelDebug, "Allocator refused to reclaim memory",
		slog.String("operation", operation),
		slog.String("type", a.kind.String()),
		slog.Int("size", size))
	return nil
}

func region(mem []byte, size int) ([]byte, bool) {
	if size < 0 || size > cap(mem) {
		return nil, false
	}
	return mem[:size], true
}

// Put hands size bytes at mem back to the backend. It returns mem if the backend reclaimed it and nil
// if it refused. Block backends reclaim the whole block whatever the size, including zero. For every
// other backend, zero-sized puts reclaim nothing and return mem.
func (a *Allocator) Put(mem []byte, size int) []byte {
	if a.kind == memutils.AffinityBlock {
		if !a.block.Put(mem) {
			return a.refuse("Put", size)
		}
		return mem
	}

	if size == 0 {
		return mem
	}

	switch a.kind {
	case memutils.AffinityHeap:
		a.heap.Free(mem)
		return mem
	case memutils.AffinityArena:
		last, ok := region(mem, size)
		if !ok || !a.arena.IsLast(last) {
			return a.refuse("Put", size)
		}

		a.arena.Put(size)
		return mem
	case memutils.AffinityBuffer:
		last, ok := region(mem, size)
		if !ok || !a.buffer.IsLast(last) {
			return a.refuse("Put", size)
		}

		a.buffer.Put(size)
		return mem
	case memutils.AffinityDescribed:
		if a.callbacks.Put == nil {
			return nil
		}
		return a.callbacks.Put(mem, size)
	}

	panic("unknown allocator type: " + a.kind.String())
}

// Update resizes the oldSize bytes at mem to newSize bytes and returns the new region, which holds
// the old contents up to the smaller of the two sizes. A nil mem behaves like Get. On failure it
// returns nil and mem is still valid, except for buffer backends that failed to grow, which drop
// their contents.
func (a *Allocator) Update(mem []byte, oldSize, newSize int) []byte {
	if mem == nil {
		return a.Get(newSize)
	}

	old, ok := region(mem, oldSize)
	if !ok || newSize < 0 {
		return nil
	}

	switch a.kind {
	case memutils.AffinityHeap:
		return a.heap.Reallocate(old, newSize)
	case memutils.AffinityArena:
		return a.updateArena(old, newSize)
	case memutils.AffinityBlock:
		// Blocks never move: growth within the block is free and anything more is impossible
		if newSize > a.block.BlockSize() {
			return nil
		}
		return mem[:newSize]
	case memutils.AffinityBuffer:
		return a.updateBuffer(old, newSize)
	case memutils.AffinityDescribed:
		if a.callbacks.Update != nil {
			return a.callbacks.Update(mem, oldSize, newSize)
		}
		return a.move(old, newSize)
	}

	panic("unknown allocator type: " + a.kind.String())
}

// move gets a new region, copies old into it, and puts old back
func (a *Allocator) move(old []byte, newSize int) []byte {
	out := a.Get(newSize)
	if out == nil {
		return nil
	}

	copy(out, old)
	a.Put(old, len(old))
	return out
}

func (a *Allocator) updateArena(old []byte, newSize int) []byte {
	if !a.arena.IsLast(old) {
		out := a.arena.Get(newSize)
		if out == nil {
			return nil
		}

		copy(out, old)
		return out
	}

	a.arena.Put(len(old))
	out := a.arena.Get(newSize)
	if out == nil {
		// Taking the old size back lands on exactly the same bytes
		a.arena.Get(len(old))
		return nil
	}

	if len(out) > 0 && len(old) > 0 && &out[0] != &old[0] {
		copy(out, old)
	}
	return out
}

func (a *Allocator) updateBuffer(old []byte, newSize int) []byte {
	if !a.buffer.IsLast(old) {
		out := a.buffer.GetRef(newSize)
		if out == nil {
			return nil
		}

		copy(out, old)
		return out
	}

	// Growth relocates the whole buffer, so the contents at pos survive it
	pos := a.buffer.Used() - len(old)
	a.buffer.Put(len(old))
	if a.buffer.GetPos(newSize) < 0 {
		return nil
	}
	return a.buffer.Ref(pos, newSize)
}

// Validate runs the backend's internal consistency checks, if it has any
func (a *Allocator) Validate() error {
	host, ok := a.Host().(memutils.Validatable)
	if !ok {
		return nil
	}
	return host.Validate()
}
