package cli

import (
	"io"
	"log/slog"
	"strings"
)

// ParseLogLevel converts a string to slog.Level. Unknown values map to INFO.
func ParseLogLevel(level string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// newLogger returns a text logger on w. Quiet mode only lets errors through.
func newLogger(w io.Writer, level string, quiet bool) *slog.Logger {
	lvl := ParseLogLevel(level)
	if quiet && lvl < slog.LevelError {
		lvl = slog.LevelError
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
}
