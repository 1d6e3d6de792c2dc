// Package logger holds the process-wide slog logger.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

const service = "atlas-api"

var Log *slog.Logger

// tests and tools get a usable logger without calling Initialize
func init() {
	Initialize("info", false)
}

func Initialize(level string, useJSON bool) {
	InitializeWithWriter(os.Stdout, level, useJSON)
}

func InitializeWithWriter(w io.Writer, level string, useJSON bool) {
	Log = New(w, level, useJSON)
	slog.SetDefault(Log)
}

// New builds a logger tagged with the service name. Source locations are always on.
func New(w io.Writer, level string, useJSON bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(level), AddSource: true}

	var h slog.Handler = slog.NewTextHandler(w, opts)
	if useJSON {
		h = slog.NewJSONHandler(w, opts)
	}
	return slog.New(h).With("service", service)
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
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
