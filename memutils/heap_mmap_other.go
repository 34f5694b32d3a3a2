//go:build !(linux || darwin || freebsd || netbsd || openbsd || dragonfly)

package memutils

import "golang.org/x/exp/slog"

// MmapHeap falls back to the Go heap on platforms without anonymous mappings
type MmapHeap struct {
	SystemHeap
}

var _ Heap = &MmapHeap{}

func NewMmapHeap(logger *slog.Logger) *MmapHeap {
	return &MmapHeap{}
}
