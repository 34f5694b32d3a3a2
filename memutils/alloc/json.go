package alloc

import (
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/vkngwrapper/plinth/memutils/chain"
)

func writeNodes(json *jwriter.ObjectState, nodes *chain.Chain, current int) {
	array := json.Name("Nodes").Array()
	defer array.End()

	nodes.Forward(func(index int, node *chain.Node) bool {
		obj := array.Object()
		defer obj.End()

		obj.Name("Size").Int(len(node.Mem))
		obj.Name("Used").Int(nodes.Used(index))
		obj.Maybe("Borrowed", node.Borrowed).Bool(true)
		obj.Maybe("Current", index == current).Bool(true)
		return true
	})
}

// WriteJson populates a json object with a description of the arena and each of its nodes
func (a *Arena) WriteJson(json *jwriter.ObjectState) {
	json.Name("Type").String("Arena")
	json.Name("Affinity").String(a.Affinity().String())
	json.Name("NodeSize").Int(a.nodeSize)
	json.Name("Used").Int(a.Used())
	json.Name("Allocated").Int(a.Allocated())
	writeNodes(json, &a.nodes, a.current)
}

// BuildStatsString returns a json document describing the arena
func (a *Arena) BuildStatsString() string {
	writer := jwriter.NewWriter()
	obj := writer.Object()
	a.WriteJson(&obj)
	obj.End()

	return string(writer.Bytes())
}

// WriteJson populates a json object with a description of the block allocator and each of its nodes
func (b *Block) WriteJson(json *jwriter.ObjectState) {
	json.Name("Type").String("Block")
	json.Name("Affinity").String(b.Affinity().String())
	json.Name("NodeSize").Int(b.nodeSize)
	json.Name("BlockSize").Int(b.blockSize)
	json.Name("BlocksPerNode").Int(b.perNode)
	json.Name("FreeBlocks").Int(b.freeCount)
	writeNodes(json, &b.nodes, b.current)
}

// BuildStatsString returns a json document describing the block allocator
func (b *Block) BuildStatsString() string {
	writer := jwriter.NewWriter()
	obj := writer.Object()
	b.WriteJson(&obj)
	obj.End()

	return string(writer.Bytes())
}
