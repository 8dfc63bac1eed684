package logger

import (
	"io"
	"log/slog"
	"os"
)

// New returns the process logger. format "text" selects a human-readable
// handler for local runs; anything else logs JSON.
func New(format string) *slog.Logger {
	return NewWithWriter(os.Stdout, format)
}

func NewWithWriter(w io.Writer, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if format == "text" {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}
