package main

import (
	"io"
	"log/slog"
	"os"

	"github.com/lmittmann/tint"
)

// createCLILogger builds the stderr logger for a command, with the handler
// chosen by the configured output format.
func createCLILogger(logLevel, format string) *slog.Logger {
	return newLogger(os.Stderr, logLevel, format)
}

// newLogger selects tinted output for "text" and structured JSON for "json".
func newLogger(w io.Writer, logLevel, format string) *slog.Logger {
	level := parseLogLevel(logLevel)
	if format == "json" {
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
	}
	return slog.New(tint.NewHandler(w, &tint.Options{Level: level}))
}

func parseLogLevel(levelStr string) slog.Level {
	switch levelStr {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}
