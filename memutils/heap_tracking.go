package memutils

import (
	"context"
	"unsafe"

	"github.com/dolthub/swiss"
	"github.com/pkg/errors"
	"golang.org/x/exp/slog"
)

// TrackingHeap wraps another Heap and keeps a table of every live allocation it issued. It can be
// given a byte budget, past which allocations fail, which makes it useful for exercising the
// out-of-memory paths of the allocators built on top of it.
//
// Zero-length allocations are passed through without being tracked.
type TrackingHeap struct {
	parent Heap
	logger *slog.Logger

	live      *swiss.Map[uintptr, int]
	liveBytes int
	budget    int
	badFrees  int
}

var _ Heap = &TrackingHeap{}

// NewTrackingHeap creates a TrackingHeap that draws from parent. A nil parent means SystemHeap and
// a nil logger discards output.
func NewTrackingHeap(parent Heap, logger *slog.Logger) *TrackingHeap {
	return &TrackingHeap{
		parent: HeapOrDefault(parent),
		logger: LoggerOrDiscard(logger),
		live:   swiss.NewMap[uintptr, int](42),
	}
}

// SetBudget sets the maximum number of live bytes. Zero removes the limit.
func (h *TrackingHeap) SetBudget(bytes int) {
	h.budget = bytes
}

// LiveBytes returns the number of bytes currently allocated and not yet freed
func (h *TrackingHeap) LiveBytes() int { return h.liveBytes }

// LiveAllocations returns the number of allocations currently outstanding
func (h *TrackingHeap) LiveAllocations() int { return h.live.Count() }

// BadFrees returns the number of Free calls made with memory this heap did not issue
func (h *TrackingHeap) BadFrees() int { return h.badFrees }

func (h *TrackingHeap) fits(extra int) bool {
	return h.budget <= 0 || h.liveBytes+extra <= h.budget
}

func addressOf(mem []byte) uintptr {
	return uintptr(unsafe.Pointer(unsafe.SliceData(mem)))
}

func (h *TrackingHeap) Allocate(size int) []byte {
	if !h.fits(size) {
		h.logger.LogAttrs(context.Background(), slog.LevelDebug, "TrackingHeap::Allocate over budget",
			slog.Int("size", size),
			slog.Int("liveBytes", h.liveBytes),
			slog.Int("budget", h.budget))
		return nil
	}

	mem := h.parent.Allocate(size)
	if mem == nil || cap(mem) == 0 {
		return mem
	}

	h.live.Put(addressOf(mem), size)
	h.liveBytes += size
	return mem
}

func (h *TrackingHeap) Reallocate(mem []byte, size int) []byte {
	var oldSize int
	var tracked bool
	if cap(mem) > 0 {
		oldSize, tracked = h.live.Get(addressOf(mem))
		if !tracked {
			h.logger.LogAttrs(context.Background(), slog.LevelError, "[BAD FREE] reallocating memory this heap did not issue",
				slog.Int("size", len(mem)))
			h.badFrees++
			return nil
		}
	}

	if !h.fits(size - oldSize) {
		h.logger.LogAttrs(context.Background(), slog.LevelDebug, "TrackingHeap::Reallocate over budget",
			slog.Int("size", size),
			slog.Int("liveBytes", h.liveBytes),
			slog.Int("budget", h.budget))
		return nil
	}

	out := h.parent.Reallocate(mem, size)
	if out == nil {
		return nil
	}

	if tracked {
		h.live.Delete(addressOf(mem))
		h.liveBytes -= oldSize
	}
	if cap(out) > 0 {
		h.live.Put(addressOf(out), size)
		h.liveBytes += size
	}
	return out
}

func (h *TrackingHeap) Free(mem []byte) {
	if cap(mem) == 0 {
		return
	}

	address := addressOf(mem)
	size, ok := h.live.Get(address)
	if !ok {
		h.logger.LogAttrs(context.Background(), slog.LevelError, "[BAD FREE] freeing memory this heap did not issue",
			slog.Int("size", len(mem)))
		h.badFrees++
		return
	}

	h.live.Delete(address)
	h.liveBytes -= size
	h.parent.Free(mem)
}

// Validate verifies that the live byte count agrees with the allocation table
func (h *TrackingHeap) Validate() error {
	sum := 0
	h.live.Iter(func(_ uintptr, size int) bool {
		sum += size
		return false
	})

	if sum != h.liveBytes {
		return errors.Errorf("live allocation table holds %d bytes but the heap reports %d", sum, h.liveBytes)
	}
	if h.budget > 0 && h.liveBytes > h.budget {
		return errors.Errorf("heap holds %d live bytes, over its budget of %d", h.liveBytes, h.budget)
	}

	return nil
}
