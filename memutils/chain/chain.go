package chain

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

const (
	// HeaderSize is the number of bytes at the front of every node segment that hold the node's
	// link header: previous node, next node, and bytes used, each as a little-endian 64-bit word.
	// A node's capacity is its segment size minus HeaderSize.
	HeaderSize int = 24

	// None is the index used for a missing neighbor
	None int = -1
)

// Node is one raw memory segment participating in a chain. Prev and Next are indices into the
// owning Chain's node table.
type Node struct {
	Prev int
	Next int
	// Mem is the whole segment, header included
	Mem []byte
	// Borrowed is true when Mem was supplied by the caller and must not be released by the chain's owner
	Borrowed bool

	used int
}

// Chain is a doubly-linked list of nodes stored as a table. Nodes are never removed individually:
// they are released all at once when the owning allocator is deleted, so indices stay stable for
// the life of the chain.
type Chain struct {
	nodes []Node
}

// Len returns the number of nodes in the chain
func (c *Chain) Len() int { return len(c.nodes) }

// Node returns the node at the given index
func (c *Chain) Node(index int) *Node { return &c.nodes[index] }

// Push adds a segment to the table and links it directly after the node at index after, or as a
// lone node if after is None. It returns the new node's index.
func (c *Chain) Push(mem []byte, borrowed bool, after int) int {
	if len(mem) < HeaderSize {
		panic("attempting to chain a segment that cannot hold a node header")
	}

	index := len(c.nodes)
	c.nodes = append(c.nodes, Node{
		Prev:     after,
		Next:     None,
		Mem:      mem,
		Borrowed: borrowed,
	})

	if after != None {
		next := c.nodes[after].Next
		c.nodes[index].Next = next
		c.nodes[after].Next = index
		c.writeHeader(after)

		if next != None {
			c.nodes[next].Prev = index
			c.writeHeader(next)
		}
	}

	c.writeHeader(index)
	return index
}

// Data returns the usable region of the node at index, after the header
func (c *Chain) Data(index int) []byte {
	return c.nodes[index].Mem[HeaderSize:]
}

// Capacity returns the number of usable bytes in the node at index
func (c *Chain) Capacity(index int) int {
	return len(c.nodes[index].Mem) - HeaderSize
}

// Used returns the number of bytes handed out from the node at index
func (c *Chain) Used(index int) int {
	return c.nodes[index].used
}

// SetUsed records the number of bytes handed out from the node at index
func (c *Chain) SetUsed(index int, used int) {
	c.nodes[index].used = used
	binary.LittleEndian.PutUint64(c.nodes[index].Mem[16:24], uint64(used))
}

// Head walks back from index to the first node of the chain
func (c *Chain) Head(index int) int {
	if index == None {
		return None
	}
	for c.nodes[index].Prev != None {
		index = c.nodes[index].Prev
	}
	return index
}

// Tail walks forward from index to the last node of the chain
func (c *Chain) Tail(index int) int {
	if index == None {
		return None
	}
	for c.nodes[index].Next != None {
		index = c.nodes[index].Next
	}
	return index
}

// Forward calls visit for every node from the head of the chain to its tail, stopping early if
// visit returns false
func (c *Chain) Forward(visit func(index int, node *Node) bool) {
	if len(c.nodes) == 0 {
		return
	}

	for index := c.Head(0); index != None; index = c.nodes[index].Next {
		if !visit(index, &c.nodes[index]) {
			return
		}
	}
}

// Backward calls visit for every node from the tail of the chain to its head, stopping early if
// visit returns false
func (c *Chain) Backward(visit func(index int, node *Node) bool) {
	if len(c.nodes) == 0 {
		return
	}

	for index := c.Tail(0); index != None; index = c.nodes[index].Prev {
		if !visit(index, &c.nodes[index]) {
			return
		}
	}
}

// Reset forgets every node. It does not release any memory.
func (c *Chain) Reset() {
	c.nodes = nil
}

func encodeLink(index int) uint64 {
	return uint64(index + 1)
}

func decodeLink(word uint64) int {
	return int(word) - 1
}

func (c *Chain) writeHeader(index int) {
	node := &c.nodes[index]
	binary.LittleEndian.PutUint64(node.Mem[0:8], encodeLink(node.Prev))
	binary.LittleEndian.PutUint64(node.Mem[8:16], encodeLink(node.Next))
	binary.LittleEndian.PutUint64(node.Mem[16:24], uint64(node.used))
}

// ReadHeader decodes the link header stored at the front of a node segment
func ReadHeader(mem []byte) (prev, next, used int) {
	prev = decodeLink(binary.LittleEndian.Uint64(mem[0:8]))
	next = decodeLink(binary.LittleEndian.Uint64(mem[8:16]))
	used = int(binary.LittleEndian.Uint64(mem[16:24]))
	return prev, next, used
}

// Validate verifies that the links are symmetric, the chain is a single list covering every node,
// and each segment's stored header agrees with the node table
func (c *Chain) Validate() error {
	count := 0
	for index := range c.nodes {
		node := &c.nodes[index]

		if node.Prev != None && c.nodes[node.Prev].Next != index {
			return errors.Errorf("node %d points back to node %d, which does not point forward to it", index, node.Prev)
		}
		if node.Next != None && c.nodes[node.Next].Prev != index {
			return errors.Errorf("node %d points forward to node %d, which does not point back to it", index, node.Next)
		}
		if node.used < 0 || node.used > c.Capacity(index) {
			return errors.Errorf("node %d has used %d bytes of a %d byte capacity", index, node.used, c.Capacity(index))
		}

		prev, next, used := ReadHeader(node.Mem)
		if prev != node.Prev || next != node.Next || used != node.used {
			return errors.Errorf("node %d header (prev %d, next %d, used %d) does not match its table entry (prev %d, next %d, used %d)",
				index, prev, next, used, node.Prev, node.Next, node.used)
		}
	}

	c.Forward(func(int, *Node) bool {
		count++
		return true
	})
	if count != len(c.nodes) {
		return errors.Errorf("the chain links %d nodes but the table holds %d", count, len(c.nodes))
	}

	return nil
}
