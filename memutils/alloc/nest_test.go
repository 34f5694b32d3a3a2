package alloc_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/plinth/memutils"
	"github.com/vkngwrapper/plinth/memutils/alloc"
)

func TestArenaIntoArena(t *testing.T) {
	parent := alloc.NewArena(1024, alloc.CreateOptions{})

	child := parent.IntoArena(256)
	require.Equal(t, memutils.AffinityArena, child.Affinity())
	require.Same(t, parent, child.Host())
	require.Equal(t, 256, parent.Used())

	require.NotNil(t, child.Get(200))
	require.NotNil(t, child.Get(200))
	require.Equal(t, 2, child.NodeCount())
	require.Equal(t, 512, parent.Used())

	child.Del()
	require.Equal(t, 0, parent.Used())
	require.NoError(t, parent.Validate())
}

func TestArenaEmptyIntoArenaIsLazy(t *testing.T) {
	parent := alloc.NewArena(1024, alloc.CreateOptions{})

	child := parent.EmptyIntoArena(256)
	require.True(t, child.IsEmpty())
	require.Equal(t, 0, parent.Used())

	require.NotNil(t, child.Get(10))
	require.Equal(t, 256, parent.Used())

	child.Del()
	require.Equal(t, 0, parent.Used())
}

func TestArenaUseArenaCarriesNoDebt(t *testing.T) {
	heap := memutils.NewTrackingHeap(nil, nil)
	parent := alloc.NewArena(1024, alloc.CreateOptions{Heap: heap})
	require.Equal(t, 1, heap.LiveAllocations())

	child := parent.UseArena(256)
	require.Equal(t, memutils.AffinitySelf, child.Affinity())
	require.Equal(t, 256, parent.Used())

	require.NotNil(t, child.Get(200))
	require.NotNil(t, child.Get(200))
	require.Equal(t, 2, heap.LiveAllocations())

	child.Del()
	require.Equal(t, 1, heap.LiveAllocations())
	require.Equal(t, 256, parent.Used())

	parent.Put(256)
	require.Equal(t, 0, parent.Used())
}

func TestArenaIntoArenaOversizedNode(t *testing.T) {
	parent := alloc.NewArena(256, alloc.CreateOptions{})

	child := parent.IntoArena(512)
	require.True(t, child.IsEmpty())
	require.Nil(t, child.Get(1))
	require.Equal(t, 0, parent.Used())
}

func TestBlockIntoArena(t *testing.T) {
	block := alloc.UseBlock(make([]byte, 1024), 384, alloc.CreateOptions{})

	arena := block.IntoArena()
	require.Equal(t, memutils.AffinityBlock, arena.Affinity())
	require.Same(t, block, arena.Host())
	require.Equal(t, 384, arena.Size())

	for i := 0; i < 4; i++ {
		require.NotNil(t, arena.Get(256))
	}
	require.Equal(t, 4, arena.NodeCount())
	require.Equal(t, 2, block.NodeCount())

	arena.Del()
	require.Equal(t, 4, block.FreeCount())
	require.NoError(t, block.Validate())

	// The freed blocks are reused before anything new is carved
	again := block.EmptyIntoArena()
	require.NotNil(t, again.Get(256))
	require.Equal(t, 3, block.FreeCount())
	require.Equal(t, 2, block.NodeCount())
}

func TestBlockUseArena(t *testing.T) {
	block := alloc.NewBlock(1024, 256, alloc.CreateOptions{})

	arena := block.UseArena()
	require.Equal(t, memutils.AffinitySelf, arena.Affinity())
	require.NotNil(t, arena.Get(200))
	require.NotNil(t, arena.Get(200))
	require.Equal(t, 2, arena.NodeCount())

	arena.Del()
	require.Equal(t, 0, block.FreeCount())
}

func TestArenaUseBlock(t *testing.T) {
	parent := alloc.UseArena(make([]byte, 1024), alloc.CreateOptions{})

	block := parent.UseBlock(256, 64)
	require.Equal(t, memutils.AffinitySelf, block.Affinity())
	require.Equal(t, 3, block.BlockCapacity())
	require.Equal(t, 256, parent.Used())

	for i := 0; i < 6; i++ {
		require.NotNil(t, block.Get())
	}
	require.Equal(t, 2, block.NodeCount())
	require.Equal(t, 256, parent.Used())

	block.Del()
	parent.Put(256)
	require.Equal(t, 0, parent.Used())
}

func TestArenaIntoBlock(t *testing.T) {
	parent := alloc.NewArena(1024, alloc.CreateOptions{})

	block := parent.IntoBlock(256, 64)
	require.Equal(t, memutils.AffinityArena, block.Affinity())
	require.Same(t, parent, block.Host())

	for i := 0; i < 6; i++ {
		require.NotNil(t, block.Get())
	}
	require.Equal(t, 512, parent.Used())

	block.Del()
	require.Equal(t, 0, parent.Used())

	lazy := parent.EmptyIntoBlock(256, 64)
	require.Equal(t, 0, parent.Used())
	require.NotNil(t, lazy.Get())
	require.Equal(t, 256, parent.Used())
}

func TestBlockIntoBlock(t *testing.T) {
	host := alloc.NewBlock(1024, 256, alloc.CreateOptions{})
	require.Equal(t, 3, host.BlockCapacity())

	child := host.IntoBlock(64)
	require.Equal(t, memutils.AffinityBlock, child.Affinity())
	require.Equal(t, 256, child.NodeSize())
	require.Equal(t, 3, child.BlockCapacity())

	for i := 0; i < 7; i++ {
		require.NotNil(t, child.Get())
	}
	require.Equal(t, 3, child.NodeCount())

	child.Del()
	require.Equal(t, 3, host.FreeCount())
	require.NoError(t, host.Validate())

	lazy := host.EmptyIntoBlock(64)
	require.True(t, lazy.IsEmpty())
	require.Equal(t, 3, host.FreeCount())
	require.NotNil(t, lazy.Get())
	require.Equal(t, 2, host.FreeCount())
}

func TestBlockUseBlock(t *testing.T) {
	host := alloc.NewBlock(1024, 256, alloc.CreateOptions{})

	child := host.UseBlock(64)
	require.Equal(t, memutils.AffinitySelf, child.Affinity())
	for i := 0; i < 6; i++ {
		require.NotNil(t, child.Get())
	}
	require.Equal(t, 2, child.NodeCount())

	child.Del()
	require.Equal(t, 0, host.FreeCount())

	invalid := host.UseBlock(4)
	require.True(t, invalid.IsEmpty())
	require.Nil(t, invalid.Get())
}
