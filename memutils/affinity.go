package memutils

// Affinity identifies where an allocator's backing memory comes from, and therefore what must happen
// to that memory when the allocator is deleted.
type Affinity uint32

const (
	// AffinityNone indicates an allocator with no memory, such as an unmaterialized buffer
	AffinityNone Affinity = iota
	// AffinitySelf indicates memory supplied by the caller. The allocator owes nothing for it.
	AffinitySelf
	// AffinityHeap indicates memory acquired from a Heap, which must be freed back to that Heap
	AffinityHeap
	// AffinityArena indicates nodes carved from a host arena, returned to it size-for-size
	AffinityArena
	// AffinityBlock indicates nodes carved from a host block allocator, returned to it block-for-block
	AffinityBlock
	// AffinityBuffer indicates a facade backed by a continuous buffer
	AffinityBuffer
	// AffinityDescribed indicates a facade backed by caller-provided callbacks
	AffinityDescribed
)

var affinityMapping = map[Affinity]string{
	AffinityNone:      "None",
	AffinitySelf:      "Self",
	AffinityHeap:      "Heap",
	AffinityArena:     "Arena",
	AffinityBlock:     "Block",
	AffinityBuffer:    "Buffer",
	AffinityDescribed: "Described",
}

func (a Affinity) String() string {
	return affinityMapping[a]
}

// OwesMemory returns true when memory with this affinity has to be handed back to somebody when the
// allocator holding it is deleted
func (a Affinity) OwesMemory() bool {
	return a == AffinityHeap || a == AffinityArena || a == AffinityBlock
}
