// Package logger builds the shared process logger. Components log JSON
// key-value records with snake_case event names (draft_restored,
// draft_autosave_failed) so the wizard's lifecycle can be grepped by event.
package logger

import (
	"log/slog"
	"os"
)

// New returns the service-wide structured logger.
func New() *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}
	handler := slog.NewJSONHandler(os.Stdout, opts)
	return slog.New(handler).With("service", "permitdesk")
}
