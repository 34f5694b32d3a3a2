package memutils

import "github.com/launchdarkly/go-jsonstream/v3/jwriter"

// Statistics summarizes how much memory an allocator holds and how much of it is handed out.
// Nodes are the raw segments an allocator acquired; allocations are the regions it issued from them.
// The zero value is ready to accumulate into.
type Statistics struct {
	NodeCount       int
	AllocationCount int
	NodeBytes       int
	AllocationBytes int
}

// AddNode counts one node of the given size in bytes
func (s *Statistics) AddNode(size int) {
	s.NodeCount++
	s.NodeBytes += size
}

// WriteJson populates a json object with these statistics
func (s *Statistics) WriteJson(json *jwriter.ObjectState) {
	json.Name("NodeCount").Int(s.NodeCount)
	json.Name("NodeBytes").Int(s.NodeBytes)
	json.Name("AllocationCount").Int(s.AllocationCount)
	json.Name("AllocationBytes").Int(s.AllocationBytes)
}

// SizeRange is the smallest and largest of a series of sizes. It is only meaningful once the
// series has at least one entry.
type SizeRange struct {
	Min int
	Max int
}

func (r *SizeRange) add(size int, first bool) {
	if first || size < r.Min {
		r.Min = size
	}
	if first || size > r.Max {
		r.Max = size
	}
}

func (r *SizeRange) writeJson(json *jwriter.ObjectState, name string) {
	obj := json.Name(name).Object()
	defer obj.End()

	obj.Name("Min").Int(r.Min)
	obj.Name("Max").Int(r.Max)
}

// DetailedStatistics extends Statistics with the spread of allocation sizes and the gaps left
// between them. The zero value is ready to accumulate into.
type DetailedStatistics struct {
	Statistics
	UnusedRangeCount int
	AllocationSizes  SizeRange
	UnusedRangeSizes SizeRange
}

// AddAllocation counts one issued region of the given size in bytes
func (s *DetailedStatistics) AddAllocation(size int) {
	s.AllocationCount++
	s.AllocationBytes += size
	s.AllocationSizes.add(size, s.AllocationCount == 1)
}

// AddUnusedRange counts one gap of the given size in bytes inside a node
func (s *DetailedStatistics) AddUnusedRange(size int) {
	s.UnusedRangeCount++
	s.UnusedRangeSizes.add(size, s.UnusedRangeCount == 1)
}

// WriteJson populates a json object with these statistics. Size ranges are omitted while empty.
func (s *DetailedStatistics) WriteJson(json *jwriter.ObjectState) {
	s.Statistics.WriteJson(json)
	json.Name("UnusedRangeCount").Int(s.UnusedRangeCount)
	if s.AllocationCount > 0 {
		s.AllocationSizes.writeJson(json, "AllocationSizes")
	}
	if s.UnusedRangeCount > 0 {
		s.UnusedRangeSizes.writeJson(json, "UnusedRangeSizes")
	}
}
