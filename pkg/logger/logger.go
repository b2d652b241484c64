package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

var Log = slog.New(slog.NewJSONHandler(os.Stdout, nil))

// Init replaces the global logger with a JSON handler at the given level
// ("debug", "info", "warn", "error"; anything else means debug).
func Init(level string) {
	InitWithWriter(os.Stdout, level)
}

// InitWithWriter is Init with an explicit destination, used by tests and the CLI
func InitWithWriter(w io.Writer, level string) {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: ParseLevel(level),
	})
	Log = slog.New(handler)
	slog.SetDefault(Log)
}

// ParseLevel maps a level name to a slog.Level
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelDebug
	}
}
