package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Init sets the default slog logger on stderr. When records go to stdout
// the handler is JSON so stderr stays machine-readable next to NDJSON;
// otherwise it is text.
func Init(outputIsStdout bool, level slog.Level) {
	InitWriter(os.Stderr, outputIsStdout, level)
}

// InitWriter is Init with an explicit destination.
func InitWriter(w io.Writer, json bool, level slog.Level) {
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if json {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	slog.SetDefault(slog.New(handler))
}

// ParseLevel converts "debug", "info", "warn" or "error" to a slog.Level.
// Unknown strings default to LevelInfo.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
