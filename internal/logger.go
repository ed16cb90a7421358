package internal

import (
	"io"
	"log/slog"
)

// NewLogger returns the process logger. Development gets readable text
// output with source locations; every other environment logs JSON tagged
// with the service name.
func NewLogger(w io.Writer, env string, level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}

	if env == "development" {
		return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
			Level:     lvl,
			AddSource: lvl == slog.LevelDebug,
		}))
	}

	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl})).
		With("service", "careerlift", "env", env)
}
