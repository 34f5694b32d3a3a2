//go:build linux || darwin || freebsd || netbsd || openbsd || dragonfly

package memutils

import (
	"context"

	"golang.org/x/exp/slog"
	"golang.org/x/sys/unix"
)

// MmapHeap is a Heap that hands out anonymous private page mappings. Memory lives outside the Go
// heap and is returned to the operating system by Free, so every allocation must be freed exactly
// once with the slice it was issued as.
type MmapHeap struct {
	logger *slog.Logger
}

var _ Heap = &MmapHeap{}

func NewMmapHeap(logger *slog.Logger) *MmapHeap {
	return &MmapHeap{logger: LoggerOrDiscard(logger)}
}

func (h *MmapHeap) Allocate(size int) []byte {
	if size < 0 {
		return nil
	}
	if size == 0 {
		return []byte{}
	}

	mem, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		h.logger.LogAttrs(context.Background(), slog.LevelDebug, "MmapHeap::Allocate failed",
			slog.Int("size", size),
			slog.Any("error", err))
		return nil
	}

	return mem
}

func (h *MmapHeap) Reallocate(mem []byte, size int) []byte {
	out := h.Allocate(size)
	if out == nil {
		return nil
	}

	copy(out, mem)
	h.Free(mem)
	return out
}

func (h *MmapHeap) Free(mem []byte) {
	if cap(mem) == 0 {
		return
	}

	err := unix.Munmap(mem[:cap(mem)])
	if err != nil {
		h.logger.LogAttrs(context.Background(), slog.LevelError, "[BAD FREE] failed to unmap memory",
			slog.Int("size", cap(mem)),
			slog.Any("error", err))
	}
}
