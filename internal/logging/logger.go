// Package logging builds the application loggers.
package logging

import (
	"io"
	"log/slog"
	"os"
)

// rewrite standardizes the 'error' key to 'err' so log lines stay
// consistent no matter which call site attached the attribute.
func rewrite(groups []string, a slog.Attr) slog.Attr {
	if a.Key == "error" {
		a.Key = "err"
	}
	return a
}

// New creates the text logger used by the CLI. It writes to stderr so
// stdout stays free for the interview transcript and JSON output.
func New(level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: rewrite,
	}))
}

// NewJSON creates a JSON logger for the HTTP service.
func NewJSON(level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: rewrite,
	}))
}

// NewNop returns a no-op logger.
func NewNop() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
