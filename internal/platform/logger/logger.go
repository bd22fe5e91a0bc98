package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// LoggerConfig selects the level and destination of the application logger.
type LoggerConfig struct {
	// Level is one of debug, info, warn or error. Anything else falls back
	// to info.
	Level string

	// Output defaults to os.Stdout.
	Output io.Writer

	// AddSource includes file and line in every record.
	AddSource bool
}

// ParseLevel converts a level name to a slog.Level. The second result is
// false for unknown names, in which case info is returned.
func ParseLevel(name string) (slog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}

// Setup builds the JSON logger described by cfg and installs it as the slog
// default.
func Setup(cfg LoggerConfig) (*slog.Logger, error) {
	level, ok := ParseLevel(cfg.Level)

	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}

	handler := slog.NewJSONHandler(out, &slog.HandlerOptions{
		Level:     level,
		AddSource: cfg.AddSource,
	})
	l := slog.New(handler)
	slog.SetDefault(l)

	if !ok {
		l.Warn("invalid log level configured, using default level",
			slog.String("configured_level", cfg.Level),
			slog.String("default_level", "info"))
	}

	return l, nil
}
