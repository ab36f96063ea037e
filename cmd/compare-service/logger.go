package main

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

var logger = initLogger(os.Stdout, os.Getenv("LOG_LEVEL"))

func parseLogLevel(raw string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
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

func initLogger(w io.Writer, rawLevel string) *slog.Logger {
	level := new(slog.LevelVar)
	level.Set(parseLogLevel(rawLevel))
	l := slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	})).With("service", "compare-service")
	slog.SetDefault(l)
	return l
}
