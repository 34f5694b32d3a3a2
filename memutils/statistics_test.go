package memutils_test

import (
	"testing"

	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/plinth/memutils"
)

func TestStatisticsAddNode(t *testing.T) {
	var stats memutils.Statistics
	stats.AddNode(1024)
	stats.AddNode(512)

	require.Equal(t, memutils.Statistics{
		NodeCount: 2,
		NodeBytes: 1536,
	}, stats)
}

func TestDetailedStatisticsRanges(t *testing.T) {
	var stats memutils.DetailedStatistics
	stats.AddAllocation(64)
	stats.AddAllocation(16)
	stats.AddAllocation(32)
	stats.AddUnusedRange(128)
	stats.AddUnusedRange(8)

	require.Equal(t, 3, stats.AllocationCount)
	require.Equal(t, 112, stats.AllocationBytes)
	require.Equal(t, memutils.SizeRange{Min: 16, Max: 64}, stats.AllocationSizes)
	require.Equal(t, 2, stats.UnusedRangeCount)
	require.Equal(t, memutils.SizeRange{Min: 8, Max: 128}, stats.UnusedRangeSizes)
}

func TestDetailedStatisticsJson(t *testing.T) {
	var stats memutils.DetailedStatistics
	stats.AddNode(256)
	stats.AddAllocation(16)

	writer := jwriter.NewWriter()
	obj := writer.Object()
	stats.WriteJson(&obj)
	obj.End()

	out := string(writer.Bytes())
	require.Contains(t, out, `"NodeBytes":256`)
	require.Contains(t, out, `"AllocationSizes":{"Min":16,"Max":16}`)
	require.NotContains(t, out, "UnusedRangeSizes")
}
