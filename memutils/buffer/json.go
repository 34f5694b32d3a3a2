package buffer

import (
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/vkngwrapper/plinth/memutils"
)

// AddStatistics counts the buffer's memory as a single node with its used region as one allocation
func (b *Buffer) AddStatistics(stats *memutils.Statistics) {
	if b.data == nil {
		return
	}

	stats.AddNode(len(b.data))
	stats.AllocationCount++
	stats.AllocationBytes += b.used
}

// WriteJson populates a json object with a description of the buffer
func (b *Buffer) WriteJson(json *jwriter.ObjectState) {
	json.Name("Type").String("Buffer")
	json.Name("Affinity").String(b.affinity.String())
	json.Name("Size").Int(len(b.data))
	json.Name("Used").Int(b.used)
	json.Maybe("Hint", b.data == nil && b.hint > 0).Int(b.hint)
}

// BuildStatsString returns a json document describing the buffer
func (b *Buffer) BuildStatsString() string {
	writer := jwriter.NewWriter()
	obj := writer.Object()
	b.WriteJson(&obj)
	obj.End()

	return string(writer.Bytes())
}
