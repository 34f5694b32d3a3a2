package alloc

import (
	"context"

	"github.com/pkg/errors"
	"github.com/vkngwrapper/plinth/memutils"
	"github.com/vkngwrapper/plinth/memutils/chain"
	"golang.org/x/exp/slog"
)

// Arena is a bump allocator. It hands out regions from the current node in order and only takes
// memory back in reverse order (Put), or all at once (Del). When the current node cannot fit a
// request, the arena moves on to the next node in its chain, acquiring a new one if needed. A
// single request never spans nodes, so nothing larger than NodeCapacity can be allocated.
//
// An Arena is not safe for concurrent use.
type Arena struct {
	logger *slog.Logger
	heap   memutils.Heap
	source nodeSource

	nodes    chain.Chain
	current  int
	nodeSize int
}

func newArena(logger *slog.Logger, heap memutils.Heap, source nodeSource, nodeSize int) *Arena {
	arena := &Arena{
		logger:  logger,
		heap:    heap,
		source:  source,
		current: chain.None,
	}

	// Nodes that can't hold their own header leave the arena permanently empty
	if nodeSize > chain.HeaderSize {
		arena.nodeSize = nodeSize
	}

	return arena
}

// NewArena creates an arena whose nodes are nodeSize bytes drawn from the heap. The first node is
// acquired immediately. If nodeSize is too small to hold a node header, the arena is permanently
// empty.
func NewArena(nodeSize int, options CreateOptions) *Arena {
	arena := newArena(options.logger(), options.heap(), heapSource{heap: options.heap()}, nodeSize)
	arena.materialize()
	return arena
}

// UseArena creates an arena whose first node is mem, which the caller continues to own. Further
// nodes are the same size as mem and come from the heap.
func UseArena(mem []byte, options CreateOptions) *Arena {
	arena := newArena(options.logger(), options.heap(), heapSource{heap: options.heap(), self: true}, len(mem))
	arena.adopt(mem, true)
	return arena
}

// EmptyArena creates an arena that acquires its first node on the first Get
func EmptyArena(nodeSize int, options CreateOptions) *Arena {
	return newArena(options.logger(), options.heap(), heapSource{heap: options.heap()}, nodeSize)
}

func (a *Arena) adopt(mem []byte, borrowed bool) {
	if a.nodeSize == 0 || mem == nil {
		return
	}

	a.current = a.nodes.Push(mem, borrowed, chain.None)
}

func (a *Arena) materialize() bool {
	if a.nodeSize == 0 {
		return false
	}

	mem := a.source.acquire(a.nodeSize)
	if mem == nil {
		a.logger.LogAttrs(context.Background(), slog.LevelDebug, "Arena::materialize failed to acquire first node",
			slog.Int("nodeSize", a.nodeSize),
			slog.String("affinity", a.Affinity().String()))
		return false
	}

	a.adopt(mem, false)
	return true
}

// advance makes the node after the current node current, acquiring it if the chain ends here
func (a *Arena) advance() bool {
	next := a.nodes.Node(a.current).Next

	if next == chain.None {
		mem := a.source.acquire(a.nodeSize)
		if mem == nil {
			a.logger.LogAttrs(context.Background(), slog.LevelDebug, "Arena::advance failed to acquire node",
				slog.Int("nodeSize", a.nodeSize),
				slog.Int("nodeCount", a.nodes.Len()),
				slog.String("affinity", a.Affinity().String()))
			return false
		}

		next = a.nodes.Push(mem, false, a.current)
		a.logger.LogAttrs(context.Background(), slog.LevelDebug, "Arena::advance chained node",
			slog.Int("node", next),
			slog.Int("nodeSize", a.nodeSize))
	}

	a.current = next
	a.nodes.SetUsed(next, 0)
	memutils.DebugValidate(a)
	return true
}

// Get returns size bytes from the arena, or nil if the request is larger than a node's capacity or
// a needed node could not be acquired. The returned slice has no spare capacity, so appending to it
// never writes into a neighboring allocation. Memory is not cleared on reuse.
func (a *Arena) Get(size int) []byte {
	if a.nodeSize == 0 || size < 0 || size > a.NodeCapacity() {
		return nil
	}

	if a.current == chain.None && !a.materialize() {
		return nil
	}

	used := a.nodes.Used(a.current)
	if a.nodes.Capacity(a.current)-used < size {
		if !a.advance() {
			return nil
		}
		used = 0
	}

	a.nodes.SetUsed(a.current, used+size)
	data := a.nodes.Data(a.current)
	return data[used : used+size : used+size]
}

// Store copies data into a fresh region of the arena and returns that region
func (a *Arena) Store(data []byte) []byte {
	mem := a.Get(len(data))
	if mem == nil {
		return nil
	}

	copy(mem, data)
	return mem
}

// Put returns the most recently allocated size bytes to the arena. It may be called with the sum
// of several allocations, and rewinds across node boundaries when needed. Rewound nodes stay in the
// chain and are reused by later calls to Get. The arena trusts the caller: returning bytes that were
// not the most recent allocations corrupts it.
func (a *Arena) Put(size int) {
	if memutils.DebugEnabled {
		allocated := a.Allocated()
		memutils.DebugAssert(size <= allocated, "attempted to put %d bytes into an arena with only %d bytes allocated", size, allocated)
	}

	for size > 0 && a.current != chain.None {
		used := a.nodes.Used(a.current)
		taken := min(size, used)
		a.nodes.SetUsed(a.current, used-taken)
		size -= taken

		if size == 0 {
			return
		}

		prev := a.nodes.Node(a.current).Prev
		if prev == chain.None {
			return
		}
		a.current = prev
	}
}

// Reset rewinds every node in the arena without releasing any of them
func (a *Arena) Reset() {
	if a.current == chain.None {
		return
	}

	a.nodes.Forward(func(index int, _ *chain.Node) bool {
		a.nodes.SetUsed(index, 0)
		return true
	})
	a.current = a.nodes.Head(a.current)
}

// IsLast returns true if mem is the most recent allocation made from the arena
func (a *Arena) IsLast(mem []byte) bool {
	if a.current == chain.None || len(mem) == 0 {
		return false
	}

	used := a.nodes.Used(a.current)
	if len(mem) > used {
		return false
	}

	data := a.nodes.Data(a.current)
	return &data[used-len(mem)] == &mem[0]
}

// Del releases every node the arena owes to its source and returns the arena to a permanently
// empty state. Nodes carved from a host arena are returned newest first so the host can rewind.
func (a *Arena) Del() {
	released := 0
	a.nodes.Backward(func(_ int, node *chain.Node) bool {
		if !node.Borrowed {
			a.source.release(node.Mem)
			released++
		}
		return true
	})

	if a.nodes.Len() > 0 {
		a.logger.LogAttrs(context.Background(), slog.LevelDebug, "Arena::Del released nodes",
			slog.Int("released", released),
			slog.Int("nodeCount", a.nodes.Len()),
			slog.String("affinity", a.Affinity().String()))
	}

	a.nodes.Reset()
	a.current = chain.None
	a.nodeSize = 0
}

// Used returns the number of bytes allocated from the current node
func (a *Arena) Used() int {
	if a.current == chain.None {
		return 0
	}
	return a.nodes.Used(a.current)
}

// Free returns the number of bytes left in the current node
func (a *Arena) Free() int {
	if a.current == chain.None {
		return 0
	}
	return a.nodes.Capacity(a.current) - a.nodes.Used(a.current)
}

// Allocated returns the number of bytes allocated across the current node and every node before it
func (a *Arena) Allocated() int {
	total := 0
	for index := a.current; index != chain.None; index = a.nodes.Node(index).Prev {
		total += a.nodes.Used(index)
	}
	return total
}

// Size returns the size of each node, header included. It is zero for an arena that can never
// allocate.
func (a *Arena) Size() int { return a.nodeSize }

// NodeCapacity returns the largest request the arena can satisfy
func (a *Arena) NodeCapacity() int {
	if a.nodeSize == 0 {
		return 0
	}
	return a.nodeSize - chain.HeaderSize
}

// NodeCount returns the number of nodes in the arena's chain
func (a *Arena) NodeCount() int { return a.nodes.Len() }

// IsEmpty returns true if the arena has not yet acquired a node
func (a *Arena) IsEmpty() bool { return a.current == chain.None }

// Affinity reports where the arena's nodes come from
func (a *Arena) Affinity() memutils.Affinity { return a.source.affinity() }

// Host returns the allocator the arena's nodes are carved from, or nil if they come from the heap
func (a *Arena) Host() any { return a.source.host() }

// Heap returns the heap that the arena and anything nested inside it draw from
func (a *Arena) Heap() memutils.Heap { return a.heap }

// Logger returns the logger that the arena and anything nested inside it write to
func (a *Arena) Logger() *slog.Logger { return a.logger }

// Validate performs internal consistency checks on the arena
func (a *Arena) Validate() error {
	err := a.nodes.Validate()
	if err != nil {
		return err
	}

	if a.current == chain.None {
		if a.nodes.Len() > 0 {
			return errors.Errorf("the arena has %d nodes but no current node", a.nodes.Len())
		}
		return nil
	}

	if a.current >= a.nodes.Len() {
		return errors.Errorf("the current node %d is outside the node table of length %d", a.current, a.nodes.Len())
	}

	var sizeErr error
	a.nodes.Forward(func(index int, node *chain.Node) bool {
		if len(node.Mem) != a.nodeSize {
			sizeErr = errors.Errorf("node %d is %d bytes but the arena's node size is %d", index, len(node.Mem), a.nodeSize)
			return false
		}
		return true
	})

	return sizeErr
}

// AddStatistics sums the arena's nodes and allocated bytes into stats
func (a *Arena) AddStatistics(stats *memutils.Statistics) {
	a.nodes.Forward(func(index int, node *chain.Node) bool {
		stats.AddNode(len(node.Mem))
		stats.AllocationBytes += a.nodes.Used(index)
		return true
	})
}
