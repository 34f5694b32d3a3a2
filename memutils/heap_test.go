package memutils_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/plinth/memutils"
)

func TestSystemHeapReallocateZeroesTail(t *testing.T) {
	heap := memutils.SystemHeap{}

	mem := heap.Allocate(4)
	copy(mem, "abcd")

	grown := heap.Reallocate(mem, 8)
	require.Equal(t, []byte{'a', 'b', 'c', 'd', 0, 0, 0, 0}, grown)

	require.Nil(t, heap.Allocate(-1))
}

func TestTrackingHeapBudget(t *testing.T) {
	heap := memutils.NewTrackingHeap(nil, nil)
	heap.SetBudget(100)

	first := heap.Allocate(60)
	require.Len(t, first, 60)
	require.Equal(t, 60, heap.LiveBytes())

	require.Nil(t, heap.Allocate(60))
	require.Equal(t, 1, heap.LiveAllocations())

	grown := heap.Reallocate(first, 90)
	require.Len(t, grown, 90)
	require.Equal(t, 90, heap.LiveBytes())
	require.Equal(t, 1, heap.LiveAllocations())

	require.Nil(t, heap.Reallocate(grown, 101))
	require.Equal(t, 90, heap.LiveBytes())

	heap.Free(grown)
	require.Equal(t, 0, heap.LiveBytes())
	require.Equal(t, 0, heap.LiveAllocations())
	require.NoError(t, heap.Validate())
}

func TestTrackingHeapBadFree(t *testing.T) {
	heap := memutils.NewTrackingHeap(nil, nil)

	mem := heap.Allocate(16)
	heap.Free(mem)
	heap.Free(mem)
	heap.Free(make([]byte, 8))

	require.Equal(t, 2, heap.BadFrees())
	require.Equal(t, 0, heap.LiveBytes())
	require.NoError(t, heap.Validate())
}

func TestMmapHeap(t *testing.T) {
	heap := memutils.NewMmapHeap(nil)

	mem := heap.Allocate(4096)
	require.Len(t, mem, 4096)
	require.Equal(t, byte(0), mem[4095])
	copy(mem, "mapped")

	grown := heap.Reallocate(mem, 8192)
	require.Len(t, grown, 8192)
	require.Equal(t, "mapped", string(grown[:6]))

	heap.Free(grown)
}
