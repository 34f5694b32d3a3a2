package unified

import (
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/vkngwrapper/plinth/memutils"
)

type jsonWriter interface {
	WriteJson(json *jwriter.ObjectState)
}

// WriteJson populates a json object with the Allocator's type and, when the backend can describe
// itself, a nested description of the backend
func (a *Allocator) WriteJson(json *jwriter.ObjectState) {
	json.Name("Type").String(a.kind.String())

	if tracking, ok := a.heap.(*memutils.TrackingHeap); ok && a.kind == memutils.AffinityHeap {
		json.Name("LiveBytes").Int(tracking.LiveBytes())
		json.Name("LiveAllocations").Int(tracking.LiveAllocations())
	}

	backend, ok := a.Host().(jsonWriter)
	if !ok {
		return
	}

	obj := json.Name("Backend").Object()
	backend.WriteJson(&obj)
	obj.End()
}

// BuildStatsString returns a json document describing the Allocator and its backend
func (a *Allocator) BuildStatsString() string {
	writer := jwriter.NewWriter()
	obj := writer.Object()
	a.WriteJson(&obj)
	obj.End()

	return string(writer.Bytes())
}
