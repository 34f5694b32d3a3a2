package buffer_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/plinth/memutils"
	"github.com/vkngwrapper/plinth/memutils/alloc"
	"github.com/vkngwrapper/plinth/memutils/buffer"
	mock_memutils "github.com/vkngwrapper/plinth/memutils/mocks"
	"go.uber.org/mock/gomock"
)

func pattern(size int) []byte {
	out := make([]byte, size)
	for i := range out {
		out[i] = byte(i*7 + 1)
	}
	return out
}

func TestBufferStoreRefRoundTrip(t *testing.T) {
	for _, size := range []int{0, 1, 64, 65} {
		buf := buffer.New(64, alloc.CreateOptions{})
		data := pattern(size)

		pos := buf.Store(data)
		require.Equal(t, 0, pos)
		require.Equal(t, size, buf.Used())
		require.True(t, bytes.Equal(data, buf.Ref(pos, size)), "size %d", size)
		require.NoError(t, buf.Validate())
	}
}

func TestBufferGrowthPolicy(t *testing.T) {
	buf := buffer.Empty(0, alloc.CreateOptions{})
	require.True(t, buf.IsEmpty())
	require.Equal(t, memutils.AffinityNone, buf.Affinity())
	require.Equal(t, 0, buf.GetPos(11))
	require.Equal(t, 64, buf.Size())
	require.Equal(t, memutils.AffinityHeap, buf.Affinity())

	buf = buffer.Empty(16, alloc.CreateOptions{})
	buf.GetPos(11)
	require.Equal(t, 16, buf.Size())

	buf = buffer.Empty(16, alloc.CreateOptions{})
	buf.GetPos(100)
	require.Equal(t, 128, buf.Size())

	buf = buffer.Use(make([]byte, 4), alloc.CreateOptions{})
	require.False(t, buf.OwnsMemory())
	buf.GetPos(11)
	require.Equal(t, 12, buf.Size())
	require.True(t, buf.OwnsMemory())

	buf = buffer.Use(make([]byte, 16), alloc.CreateOptions{})
	buf.GetPos(20)
	require.Equal(t, 32, buf.Size())

	buf = buffer.New(64, alloc.CreateOptions{})
	buf.GetPos(200)
	require.Equal(t, 256, buf.Size())
	buf.GetPos(100)
	require.Equal(t, 512, buf.Size())
}

func TestBufferGrowthLeavesBorrowedMemoryAlone(t *testing.T) {
	mem := bytes.Repeat([]byte{0xEE}, 16)
	buf := buffer.Use(mem, alloc.CreateOptions{})
	require.Equal(t, memutils.AffinitySelf, buf.Affinity())

	first := pattern(10)
	buf.Store(first)
	require.Equal(t, first, mem[:10])

	buf.Store(pattern(10))
	require.Equal(t, 32, buf.Size())
	require.Equal(t, bytes.Repeat([]byte{0xEE}, 6), mem[10:])

	buf.Bytes()[0] = 0
	require.Equal(t, first[0], mem[0])
	require.Equal(t, append(pattern(10), pattern(10)...), append([]byte{first[0]}, buf.Bytes()[1:]...))
}

func TestBufferHeapGrowthZeroesTail(t *testing.T) {
	buf := buffer.New(64, alloc.CreateOptions{})
	buf.Store(bytes.Repeat([]byte{0xFF}, 64))

	require.Equal(t, 64, buf.GetPos(1))
	require.Equal(t, 128, buf.Size())
	require.Equal(t, make([]byte, 63), buf.Data()[65:])
	require.Equal(t, bytes.Repeat([]byte{0xFF}, 64), buf.Data()[:64])
}

func TestBufferGrowthFailureResets(t *testing.T) {
	ctrl := gomock.NewController(t)
	heap := mock_memutils.NewMockHeap(ctrl)

	heap.EXPECT().Allocate(64).Return(make([]byte, 64))
	buf := buffer.New(64, alloc.CreateOptions{Heap: heap})
	buf.Store([]byte("contents"))

	heap.EXPECT().Reallocate(gomock.Any(), 128).Return(nil)
	heap.EXPECT().Free(gomock.Any())
	require.Equal(t, -1, buf.GetPos(100))

	require.True(t, buf.IsEmpty())
	require.Equal(t, 0, buf.Used())
	require.Equal(t, memutils.AffinityNone, buf.Affinity())
	require.NoError(t, buf.Validate())
}

func TestBufferBorrowedGrowthFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	heap := mock_memutils.NewMockHeap(ctrl)

	buf := buffer.Use(make([]byte, 8), alloc.CreateOptions{Heap: heap})
	heap.EXPECT().Allocate(16).Return(nil)

	require.Nil(t, buf.GetRef(9))
	require.True(t, buf.IsEmpty())
}

func TestBufferUseArena(t *testing.T) {
	arena := alloc.UseArena(make([]byte, 1024), alloc.CreateOptions{})

	buf := buffer.UseArena(arena, 4)
	require.Equal(t, 4, arena.Used())
	require.Equal(t, memutils.AffinitySelf, buf.Affinity())
	require.False(t, buf.OwnsMemory())

	buf.Store([]byte("testing..."))
	buf.Terminate(1)
	require.True(t, buf.OwnsMemory())
	require.Equal(t, 12, buf.Size())
	require.Equal(t, 4, arena.Used())

	buf.Del()
	arena.Put(4)
	require.Equal(t, 0, arena.Used())
}

func TestBufferUseBlock(t *testing.T) {
	block := alloc.NewBlock(1024, 256, alloc.CreateOptions{})

	buf := buffer.UseBlock(block)
	require.Equal(t, 256/memutils.PtrSize, buf.SizePtr())
	require.Equal(t, 0, buf.UsedPtr())
	require.False(t, buf.OwnsMemory())

	buf.Del()
	require.True(t, buf.IsEmpty())
}

func TestBufferEditing(t *testing.T) {
	buf := buffer.New(8, alloc.CreateOptions{})
	buf.Store([]byte("world"))

	require.True(t, buf.Insert(0, []byte("hello ")))
	require.Equal(t, "hello world", string(buf.Bytes()))
	require.False(t, buf.Insert(100, []byte("x")))

	buf.Remove(5, 6)
	require.Equal(t, "hello", string(buf.Bytes()))
	buf.Remove(3, 100)
	require.Equal(t, "hel", string(buf.Bytes()))

	require.True(t, buf.Set(0, []byte("H")))
	require.False(t, buf.Set(buf.Size(), []byte("x")))
	require.Equal(t, "Hel", string(buf.Bytes()))

	buf.Put(1)
	require.Equal(t, "He", string(buf.Bytes()))
	buf.Put(100)
	require.Equal(t, 0, buf.Used())

	buf.Store([]byte("abc"))
	require.True(t, buf.Terminate(1))
	require.Equal(t, byte(0), buf.Data()[3])
	require.False(t, buf.Terminate(buf.Size()))
	require.Len(t, buf.End(), buf.Size()-3)

	buf.Clear()
	require.Equal(t, 0, buf.Used())
	require.Equal(t, byte(0), buf.Data()[0])

	buf.Store([]byte("abc"))
	buf.Reset()
	require.Equal(t, 0, buf.Used())
	require.Equal(t, byte('a'), buf.Data()[0])
	require.Nil(t, buf.Ref(buf.Size(), 1))
}

func TestBufferPointerSlots(t *testing.T) {
	buf := buffer.EmptyPtr(4, alloc.CreateOptions{})

	for i := 1; i <= 4; i++ {
		require.Equal(t, i-1, buf.StorePtr(uintptr(i)))
	}
	require.Equal(t, 4, buf.UsedPtr())
	require.Equal(t, 4, buf.SizePtr())
	require.False(t, buf.TerminatePtr())

	require.True(t, buf.InsertPtr(0, 9))
	require.Equal(t, 8, buf.SizePtr())
	require.Equal(t, uintptr(9), buf.RefPtr(0))
	require.Equal(t, 3, buf.FindPtr(3))
	require.Equal(t, -1, buf.FindPtr(42))

	buf.RemovePtr(0)
	require.Equal(t, 4, buf.UsedPtr())
	require.Equal(t, 0, buf.FindPtr(1))

	buf.SetPtr(5, 77)
	require.True(t, buf.StoreNull())
	require.Equal(t, 4, buf.UsedPtr())
	require.Equal(t, uintptr(0), buf.RefPtr(4))
	require.Equal(t, uintptr(77), buf.RefPtr(5))
	require.True(t, buf.TerminatePtr())

	require.True(t, buf.SetPtr(1, 7))
	require.Equal(t, uintptr(7), buf.RefPtr(1))
	require.False(t, buf.SetPtr(buf.SizePtr(), 1))
	require.Equal(t, uintptr(0), buf.RefPtr(-1))
}

func TestBufferFindWith(t *testing.T) {
	buf := buffer.New(64, alloc.CreateOptions{})
	buf.Store([]byte("aaaabbbbccccdd"))

	require.Equal(t, 2, buf.FindWith(4, func(record []byte) bool {
		return record[0] == 'c'
	}))
	require.Equal(t, -1, buf.FindWith(4, func(record []byte) bool {
		return record[0] == 'd'
	}))
	require.Equal(t, -1, buf.FindWith(0, func([]byte) bool { return true }))
}

func TestBufferCompactShadowCopy(t *testing.T) {
	heap := memutils.NewTrackingHeap(nil, nil)
	buf := buffer.New(256, alloc.CreateOptions{Heap: heap})
	buf.Store([]byte("compact me"))

	buf.Compact()
	require.Equal(t, 10, buf.Size())
	require.Equal(t, 10, heap.LiveBytes())
	require.Equal(t, "compact me", string(buf.Bytes()))

	shadow := buf.Shadow()
	require.False(t, shadow.OwnsMemory())
	require.Same(t, &buf.Data()[0], &shadow.Data()[0])
	shadow.Del()
	require.Equal(t, 10, heap.LiveBytes())

	dup := buf.Copy()
	require.True(t, dup.OwnsMemory())
	require.Equal(t, buf.Bytes(), dup.Bytes())
	require.NotSame(t, &buf.Data()[0], &dup.Data()[0])
	require.Equal(t, 20, heap.LiveBytes())

	dup.Del()
	buf.Del()
	require.Equal(t, 0, heap.LiveBytes())
	require.True(t, buf.IsEmpty())

	borrowed := buffer.Use(make([]byte, 32), alloc.CreateOptions{})
	borrowed.Store([]byte("x"))
	borrowed.Compact()
	require.Equal(t, 32, borrowed.Size())
}

func TestBufferStatistics(t *testing.T) {
	buf := buffer.New(128, alloc.CreateOptions{})
	buf.Store(make([]byte, 40))

	var stats memutils.Statistics
	buf.AddStatistics(&stats)
	require.Equal(t, memutils.Statistics{
		NodeCount:       1,
		NodeBytes:       128,
		AllocationCount: 1,
		AllocationBytes: 40,
	}, stats)

	json := buf.BuildStatsString()
	require.Contains(t, json, `"Size":128`)
	require.Contains(t, json, `"Used":40`)
}
