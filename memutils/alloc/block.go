package alloc

import (
	"context"
	"unsafe"

	cerrors "github.com/cockroachdb/errors"
	"github.com/dolthub/swiss"
	"github.com/pkg/errors"
	"github.com/vkngwrapper/plinth/memutils"
	"github.com/vkngwrapper/plinth/memutils/chain"
	"golang.org/x/exp/slog"
)

// Block is a slab allocator that hands out fixed-size blocks. Each node is split into as many
// blocks as fit after the node header. Returned blocks go onto a free list, threaded through the
// first bytes of the free blocks themselves, and are reused newest first before any fresh block is
// carved.
//
// Blocks are identified by index: block i lives in node i / BlockCapacity(). A Block is not safe for
// concurrent use.
type Block struct {
	logger *slog.Logger
	heap   memutils.Heap
	source nodeSource

	nodes     chain.Chain
	current   int
	nodeSize  int
	blockSize int
	perNode   int
	tail      int

	freeHead  int
	freeCount int
	addresses *swiss.Map[uintptr, int]
	released  []bool
}

// ValidateConfig returns an error describing why nodeSize and blockSize cannot produce a working
// block allocator, or nil if they can
func ValidateConfig(nodeSize, blockSize int) error {
	if blockSize < memutils.PtrSize {
		return cerrors.Wrapf(memutils.InvalidConfigurationError, "block size %d is smaller than a pointer slot (%d bytes)", blockSize, memutils.PtrSize)
	}
	if nodeSize <= chain.HeaderSize+blockSize {
		return cerrors.Wrapf(memutils.InvalidConfigurationError, "node size %d cannot hold a %d byte header and a %d byte block", nodeSize, chain.HeaderSize, blockSize)
	}
	return nil
}

func newBlock(logger *slog.Logger, heap memutils.Heap, source nodeSource, nodeSize, blockSize int) *Block {
	block := &Block{
		logger:   logger,
		heap:     heap,
		source:   source,
		current:  chain.None,
		freeHead: chain.None,
	}

	err := ValidateConfig(nodeSize, blockSize)
	if err != nil {
		logger.LogAttrs(context.Background(), slog.LevelDebug, "Block allocator is permanently empty",
			slog.Any("error", err))
		return block
	}

	block.nodeSize = nodeSize
	block.blockSize = blockSize
	block.perNode = (nodeSize - chain.HeaderSize) / blockSize
	block.addresses = swiss.NewMap[uintptr, int](uint32(block.perNode))
	return block
}

// NewBlock creates a block allocator of blockSize blocks in nodeSize nodes drawn from the heap. The
// first node is acquired immediately. An invalid configuration (see ValidateConfig) produces a
// permanently empty allocator.
func NewBlock(nodeSize, blockSize int, options CreateOptions) *Block {
	block := newBlock(options.logger(), options.heap(), heapSource{heap: options.heap()}, nodeSize, blockSize)
	block.materialize()
	return block
}

// UseBlock creates a block allocator whose first node is mem, which the caller continues to own.
// Further nodes are the same size as mem and come from the heap.
func UseBlock(mem []byte, blockSize int, options CreateOptions) *Block {
	block := newBlock(options.logger(), options.heap(), heapSource{heap: options.heap(), self: true}, len(mem), blockSize)
	block.adopt(mem, true)
	return block
}

// EmptyBlock creates a block allocator that acquires its first node on the first Get
func EmptyBlock(nodeSize, blockSize int, options CreateOptions) *Block {
	return newBlock(options.logger(), options.heap(), heapSource{heap: options.heap()}, nodeSize, blockSize)
}

func (b *Block) valid() bool { return b.blockSize > 0 }

func (b *Block) adopt(mem []byte, borrowed bool) {
	if !b.valid() || mem == nil {
		return
	}

	b.current = b.nodes.Push(mem, borrowed, b.current)
	b.tail = b.perNode
}

func (b *Block) materialize() bool {
	if !b.valid() {
		return false
	}

	mem := b.source.acquire(b.nodeSize)
	if mem == nil {
		b.logger.LogAttrs(context.Background(), slog.LevelDebug, "Block::materialize failed to acquire node",
			slog.Int("nodeSize", b.nodeSize),
			slog.Int("nodeCount", b.nodes.Len()),
			slog.String("affinity", b.Affinity().String()))
		return false
	}

	b.adopt(mem, false)
	memutils.DebugValidate(b)
	return true
}

func (b *Block) blockAt(id int) []byte {
	offset := (id % b.perNode) * b.blockSize
	data := b.nodes.Data(id / b.perNode)
	return data[offset : offset+b.blockSize : offset+b.blockSize]
}

// blockAddress identifies a block by its first byte. Blocks are issued with their full block
// capacity, so reslicing one down to zero length still identifies it.
func blockAddress(mem []byte) uintptr {
	return uintptr(unsafe.Pointer(&mem[:cap(mem)][0]))
}

func readLink(mem []byte) int {
	return int(memutils.Ptr(mem)) - 1
}

func writeLink(mem []byte, id int) {
	memutils.PutPtr(mem, uintptr(id+1))
}

// Get returns one block, or nil if the allocator is permanently empty or a needed node could not
// be acquired. Recycled blocks are not cleared.
func (b *Block) Get() []byte {
	if !b.valid() {
		return nil
	}

	if b.freeHead != chain.None {
		id := b.freeHead
		mem := b.blockAt(id)
		b.freeHead = readLink(mem)
		b.freeCount--
		b.released[id] = false
		return mem
	}

	if b.current == chain.None || b.tail == 0 {
		if !b.materialize() {
			return nil
		}
	}

	slot := b.perNode - b.tail
	b.tail--
	b.nodes.SetUsed(b.current, (slot+1)*b.blockSize)

	id := b.current*b.perNode + slot
	mem := b.blockAt(id)
	b.addresses.Put(blockAddress(mem), id)
	b.released = append(b.released, false)
	return mem
}

// StorePtr takes a block and writes value into its first pointer slot
func (b *Block) StorePtr(value uintptr) []byte {
	mem := b.Get()
	if mem == nil {
		return nil
	}

	memutils.PutPtr(mem, value)
	return mem
}

// RefPtr reads the pointer slot written by StorePtr
func (b *Block) RefPtr(mem []byte) uintptr {
	return memutils.Ptr(mem)
}

// Put returns a block to the free list and reports whether it was reclaimed. mem may be any
// reslice of an issued block, including a zero-length one. Blocks that this allocator did not
// issue, and blocks that are already free, are ignored.
func (b *Block) Put(mem []byte) bool {
	if !b.valid() || cap(mem) == 0 {
		return false
	}

	id, ok := b.addresses.Get(blockAddress(mem))
	if !ok {
		memutils.DebugAssert(false, "attempted to put a block that was not issued by this allocator")
		b.logger.LogAttrs(context.Background(), slog.LevelDebug, "Block::Put ignored unknown block",
			slog.Int("size", cap(mem)))
		return false
	}

	if b.released[id] {
		memutils.DebugAssert(false, "attempted to put block %d, which is already free", id)
		b.logger.LogAttrs(context.Background(), slog.LevelDebug, "Block::Put ignored block that is already free",
			slog.Int("block", id))
		return false
	}

	writeLink(b.blockAt(id), b.freeHead)
	b.freeHead = id
	b.freeCount++
	b.released[id] = true
	memutils.DebugValidate(b)
	return true
}

// Del releases every node the allocator owes to its source and returns it to a permanently empty
// state
func (b *Block) Del() {
	released := 0
	b.nodes.Backward(func(_ int, node *chain.Node) bool {
		if !node.Borrowed {
			b.source.release(node.Mem)
			released++
		}
		return true
	})

	if b.nodes.Len() > 0 {
		b.logger.LogAttrs(context.Background(), slog.LevelDebug, "Block::Del released nodes",
			slog.Int("released", released),
			slog.Int("nodeCount", b.nodes.Len()),
			slog.String("affinity", b.Affinity().String()))
	}

	b.nodes.Reset()
	b.current = chain.None
	b.freeHead = chain.None
	b.freeCount = 0
	b.tail = 0
	b.nodeSize = 0
	b.blockSize = 0
	b.perNode = 0
	b.addresses = nil
	b.released = nil
}

// NodeSize returns the size of each node, header included
func (b *Block) NodeSize() int { return b.nodeSize }

// NodeCapacity returns the number of usable bytes in each node
func (b *Block) NodeCapacity() int {
	if !b.valid() {
		return 0
	}
	return b.nodeSize - chain.HeaderSize
}

// BlockSize returns the size of each block
func (b *Block) BlockSize() int { return b.blockSize }

// BlockCapacity returns the number of blocks carved from each node
func (b *Block) BlockCapacity() int { return b.perNode }

// NodeCount returns the number of nodes in the allocator's chain
func (b *Block) NodeCount() int { return b.nodes.Len() }

// FreeCount returns the number of blocks waiting on the free list
func (b *Block) FreeCount() int { return b.freeCount }

// IsContinuous returns true when every block so far has come from a single node
func (b *Block) IsContinuous() bool {
	if b.current == chain.None {
		return true
	}

	node := b.nodes.Node(b.current)
	return node.Prev == chain.None && node.Next == chain.None
}

// IsEmpty returns true if the allocator has not yet acquired a node
func (b *Block) IsEmpty() bool { return b.current == chain.None }

// Affinity reports where the allocator's nodes come from
func (b *Block) Affinity() memutils.Affinity { return b.source.affinity() }

// Host returns the allocator the nodes are carved from, or nil if they come from the heap
func (b *Block) Host() any { return b.source.host() }

// Heap returns the heap that the allocator and anything nested inside it draw from
func (b *Block) Heap() memutils.Heap { return b.heap }

// Logger returns the logger that the allocator and anything nested inside it write to
func (b *Block) Logger() *slog.Logger { return b.logger }

func (b *Block) issued() int {
	if b.current == chain.None {
		return 0
	}
	return b.current*b.perNode + b.perNode - b.tail
}

// Validate performs internal consistency checks on the allocator
func (b *Block) Validate() error {
	err := b.nodes.Validate()
	if err != nil {
		return err
	}

	if !b.valid() {
		if b.nodes.Len() > 0 {
			return errors.Errorf("an invalid block allocator holds %d nodes", b.nodes.Len())
		}
		return nil
	}

	if b.current != chain.None && b.current != b.nodes.Len()-1 {
		return errors.Errorf("the current node %d is not the newest node %d", b.current, b.nodes.Len()-1)
	}

	issued := b.issued()
	if b.addresses.Count() != issued {
		return errors.Errorf("%d blocks have been carved but %d are indexed", issued, b.addresses.Count())
	}

	if len(b.released) != issued {
		return errors.Errorf("%d blocks have been carved but %d have a release flag", issued, len(b.released))
	}

	count := 0
	for free := b.freeHead; free != chain.None; free = readLink(b.blockAt(free)) {
		if free < 0 || free >= issued {
			return errors.Errorf("the free list holds block %d, but only %d blocks have been carved", free, issued)
		}
		if !b.released[free] {
			return errors.Errorf("the free list holds block %d, which is not flagged as released", free)
		}

		count++
		if count > issued {
			return errors.New("the free list contains a cycle")
		}
	}

	if count != b.freeCount {
		return errors.Errorf("the free list holds %d blocks but the allocator counts %d", count, b.freeCount)
	}

	return nil
}

// AddStatistics sums the allocator's nodes and live blocks into stats
func (b *Block) AddStatistics(stats *memutils.Statistics) {
	b.nodes.Forward(func(_ int, node *chain.Node) bool {
		stats.AddNode(len(node.Mem))
		return true
	})

	live := b.issued() - b.freeCount
	stats.AllocationCount += live
	stats.AllocationBytes += live * b.blockSize
}

// AddDetailedStatistics sums the allocator's nodes, live blocks, and free ranges into stats. Every
// free block counts as its own unused range, and the uncarved remainder of the current node as one
// more.
func (b *Block) AddDetailedStatistics(stats *memutils.DetailedStatistics) {
	b.nodes.Forward(func(_ int, node *chain.Node) bool {
		stats.AddNode(len(node.Mem))
		return true
	})

	live := b.issued() - b.freeCount
	for i := 0; i < live; i++ {
		stats.AddAllocation(b.blockSize)
	}
	for i := 0; i < b.freeCount; i++ {
		stats.AddUnusedRange(b.blockSize)
	}
	if b.current != chain.None && b.tail > 0 {
		stats.AddUnusedRange(b.tail * b.blockSize)
	}
}
