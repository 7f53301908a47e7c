package logger

import (
	"log/slog"
	"strings"
)

// HandlerFunc builds the slog.Handler used by New for a given level.
type HandlerFunc func(level slog.Level) slog.Handler

func New(level string, handler HandlerFunc) *slog.Logger {
	h := handler(ParseLevel(level))
	return slog.New(h)
}

// ForFormat picks the handler constructor for the LOGFORMAT setting.
func ForFormat(format string) HandlerFunc {
	switch strings.ToLower(format) {
	case "text", "tint":
		return NewTintHandler
	default:
		return NewCloudRunHandler
	}
}

// ---- Helpers ----
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
