package alloc

import "github.com/vkngwrapper/plinth/memutils"

// nodeSource is where an allocator gets nodes beyond any caller-supplied first node, and where those
// nodes go when the allocator is deleted. The set of implementations is closed: one per affinity.
type nodeSource interface {
	acquire(size int) []byte
	release(mem []byte)
	affinity() memutils.Affinity
	host() any
}

// heapSource draws nodes from a Heap. It reports Self affinity for allocators whose first node was
// supplied by the caller, since nothing is owed for that node.
type heapSource struct {
	heap memutils.Heap
	self bool
}

var _ nodeSource = heapSource{}

func (s heapSource) acquire(size int) []byte { return s.heap.Allocate(size) }
func (s heapSource) release(mem []byte)      { s.heap.Free(mem) }
func (s heapSource) host() any               { return nil }

func (s heapSource) affinity() memutils.Affinity {
	if s.self {
		return memutils.AffinitySelf
	}
	return memutils.AffinityHeap
}

// arenaSource carves nodes from a host arena and returns them size-for-size
type arenaSource struct {
	arena *Arena
}

var _ nodeSource = arenaSource{}

func (s arenaSource) acquire(size int) []byte     { return s.arena.Get(size) }
func (s arenaSource) release(mem []byte)          { s.arena.Put(len(mem)) }
func (s arenaSource) affinity() memutils.Affinity { return memutils.AffinityArena }
func (s arenaSource) host() any                   { return s.arena }

// blockSource carves nodes from a host block allocator, one block per node
type blockSource struct {
	block *Block
}

var _ nodeSource = blockSource{}

func (s blockSource) acquire(size int) []byte {
	if size > s.block.BlockSize() {
		return nil
	}
	return s.block.Get()
}
func (s blockSource) release(mem []byte)          { s.block.Put(mem) }
func (s blockSource) affinity() memutils.Affinity { return memutils.AffinityBlock }
func (s blockSource) host() any                   { return s.block }
