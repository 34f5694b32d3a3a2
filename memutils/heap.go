package memutils

//go:generate mockgen -destination mocks/heap.go -package mock_memutils github.com/vkngwrapper/plinth/memutils Heap

// Heap is the system allocator boundary. Every allocator in this module acquires raw memory through a
// Heap and never assumes that it succeeds: a nil return from Allocate or Reallocate signals failure.
type Heap interface {
	// Allocate returns size bytes of zeroed memory, or nil
	Allocate(size int) []byte
	// Reallocate returns a region of size bytes whose prefix holds the contents of mem and whose new
	// tail is zeroed. On failure it returns nil and mem is untouched.
	Reallocate(mem []byte, size int) []byte
	// Free returns memory previously issued by Allocate or Reallocate
	Free(mem []byte)
}

// SystemHeap is a Heap backed by the Go runtime. Free does nothing; the garbage collector reclaims
// memory once the last reference is dropped.
type SystemHeap struct{}

var _ Heap = SystemHeap{}

func (SystemHeap) Allocate(size int) []byte {
	if size < 0 {
		return nil
	}
	return make([]byte, size)
}

func (SystemHeap) Reallocate(mem []byte, size int) []byte {
	if size < 0 {
		return nil
	}

	out := make([]byte, size)
	copy(out, mem)
	return out
}

func (SystemHeap) Free(mem []byte) {}

// HeapOrDefault returns heap, or a SystemHeap if heap is nil
func HeapOrDefault(heap Heap) Heap {
	if heap == nil {
		return SystemHeap{}
	}
	return heap
}
