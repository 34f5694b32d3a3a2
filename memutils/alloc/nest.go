package alloc

// Allocators can be nested inside one another in three ways:
//
//   - Use: the child's first node is taken from the host and the child owes nothing for it. The
//     caller is responsible for returning that memory to the host (for an arena host, with Put).
//     Further nodes come from the heap.
//   - Into: every node the child ever holds is taken from the host, starting with the first one
//     immediately, and all of them are handed back to the host when the child is deleted.
//   - EmptyInto: like Into, but the first node is not taken until the child first needs it.
//
// Children nested in a block allocator use the host's block size as their node size.

// UseArena creates an arena whose first node of nodeSize bytes is taken from this arena
func (a *Arena) UseArena(nodeSize int) *Arena {
	child := newArena(a.logger, a.heap, heapSource{heap: a.heap, self: true}, nodeSize)
	if child.nodeSize > 0 {
		child.adopt(a.Get(nodeSize), true)
	}
	return child
}

// IntoArena creates an arena whose nodes of nodeSize bytes are all taken from this arena
func (a *Arena) IntoArena(nodeSize int) *Arena {
	child := newArena(a.logger, a.heap, arenaSource{arena: a}, nodeSize)
	child.materialize()
	return child
}

// EmptyIntoArena creates an arena whose nodes will be taken from this arena as they are needed
func (a *Arena) EmptyIntoArena(nodeSize int) *Arena {
	return newArena(a.logger, a.heap, arenaSource{arena: a}, nodeSize)
}

// UseBlock creates a block allocator whose first node of nodeSize bytes is taken from this arena
func (a *Arena) UseBlock(nodeSize, blockSize int) *Block {
	child := newBlock(a.logger, a.heap, heapSource{heap: a.heap, self: true}, nodeSize, blockSize)
	if child.valid() {
		child.adopt(a.Get(nodeSize), true)
	}
	return child
}

// IntoBlock creates a block allocator whose nodes of nodeSize bytes are all taken from this arena
func (a *Arena) IntoBlock(nodeSize, blockSize int) *Block {
	child := newBlock(a.logger, a.heap, arenaSource{arena: a}, nodeSize, blockSize)
	child.materialize()
	return child
}

// EmptyIntoBlock creates a block allocator whose nodes will be taken from this arena as they are needed
func (a *Arena) EmptyIntoBlock(nodeSize, blockSize int) *Block {
	return newBlock(a.logger, a.heap, arenaSource{arena: a}, nodeSize, blockSize)
}

// UseArena creates an arena whose first node is one block taken from this allocator
func (b *Block) UseArena() *Arena {
	child := newArena(b.logger, b.heap, heapSource{heap: b.heap, self: true}, b.blockSize)
	if child.nodeSize > 0 {
		child.adopt(b.Get(), true)
	}
	return child
}

// IntoArena creates an arena whose nodes are all blocks taken from this allocator
func (b *Block) IntoArena() *Arena {
	child := newArena(b.logger, b.heap, blockSource{block: b}, b.blockSize)
	child.materialize()
	return child
}

// EmptyIntoArena creates an arena whose nodes will be taken from this allocator as they are needed
func (b *Block) EmptyIntoArena() *Arena {
	return newArena(b.logger, b.heap, blockSource{block: b}, b.blockSize)
}

// UseBlock creates a block allocator whose first node is one block taken from this allocator
func (b *Block) UseBlock(blockSize int) *Block {
	child := newBlock(b.logger, b.heap, heapSource{heap: b.heap, self: true}, b.blockSize, blockSize)
	if child.valid() {
		child.adopt(b.Get(), true)
	}
	return child
}

// IntoBlock creates a block allocator whose nodes are all blocks taken from this allocator
func (b *Block) IntoBlock(blockSize int) *Block {
	child := newBlock(b.logger, b.heap, blockSource{block: b}, b.blockSize, blockSize)
	child.materialize()
	return child
}

// EmptyIntoBlock creates a block allocator whose nodes will be taken from this allocator as they are needed
func (b *Block) EmptyIntoBlock(blockSize int) *Block {
	return newBlock(b.logger, b.heap, blockSource{block: b}, b.blockSize, blockSize)
}
