package logger

import (
	"io"
	"log/slog"
	"os"
)

// New builds the process logger: JSON at info level in prod, human-readable
// text at debug level everywhere else.
func New(env string) *slog.Logger {
	return NewWithWriter(env, os.Stdout)
}

// NewWithWriter is New with an explicit sink; tests pass io.Discard.
func NewWithWriter(env string, w io.Writer) *slog.Logger {
	if env == "prod" {
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
}
