package memutils

import (
	"io"

	"golang.org/x/exp/slog"
)

// DiscardLogger returns a logger that drops everything. Allocators created without a logger use it.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// LoggerOrDiscard returns logger, or a discarding logger if logger is nil
func LoggerOrDiscard(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return DiscardLogger()
	}
	return logger
}
