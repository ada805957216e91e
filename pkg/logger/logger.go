package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

const serviceName = "planeet-planning"

// New constructs the process logger. LOG_FORMAT=text switches to a human readable handler.
func New() *slog.Logger {
	return build(os.Stdout, os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"))
}

// NewCLI writes text logs to stderr so command output on stdout stays machine readable.
func NewCLI(verbose bool) *slog.Logger {
	level := "warn"
	if verbose {
		level = "debug"
	}
	return build(os.Stderr, level, "text")
}

func build(w io.Writer, level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}
	var handler slog.Handler
	if strings.EqualFold(format, "text") {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}
	return slog.New(handler).With("service", serviceName)
}

func parseLevel(level string) slog.Leveler {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
