// Package logging configures the process-wide slog default logger.
package logging

import (
	"log/slog"
	"os"
	"strings"
)

// Options controls handler selection and verbosity.
type Options struct {
	// Debug lowers the level to debug regardless of LOG_LEVEL.
	Debug bool

	// JSON selects the JSON handler; the default is human-readable text.
	JSON bool
}

// SetDefaultStructuredLogger installs a slog default logger that tags
// every record with the component name and version. Logs go to stderr
// so command output on stdout stays machine-parseable.
//
// Verbosity comes from LOG_LEVEL (debug, info, warn, error) unless
// opts.Debug forces debug.
func SetDefaultStructuredLogger(name, version string, opts Options) {
	level := levelFromEnv()
	if opts.Debug {
		level = slog.LevelDebug
	}

	handlerOpts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if opts.JSON {
		handler = slog.NewJSONHandler(os.Stderr, handlerOpts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, handlerOpts)
	}

	logger := slog.New(handler).With(
		slog.String("name", name),
		slog.String("version", version),
	)
	slog.SetDefault(logger)
}

func levelFromEnv() slog.Level {
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
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
