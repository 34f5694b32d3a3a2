package alloc

import (
	"github.com/vkngwrapper/plinth/memutils"
	"golang.org/x/exp/slog"
)

// CreateOptions contains optional settings for root allocators. Allocators nested inside another
// allocator inherit these settings from their host.
type CreateOptions struct {
	// Heap is the system allocator that nodes are drawn from. When nil, memutils.SystemHeap is used.
	Heap memutils.Heap
	// Logger receives debug output about node acquisition and release. When nil, output is discarded.
	Logger *slog.Logger
}

func (o CreateOptions) heap() memutils.Heap {
	return memutils.HeapOrDefault(o.Heap)
}

func (o CreateOptions) logger() *slog.Logger {
	return memutils.LoggerOrDiscard(o.Logger)
}
