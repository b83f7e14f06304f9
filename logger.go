package ggfx

import (
	"log/slog"

	"github.com/gogpu/ggfx/internal/logging"
)

// SetLogger configures the logger for ggfx and all its sub-packages.
// By default, ggfx produces no log output. Call SetLogger to enable logging.
//
// SetLogger is safe for concurrent use: it stores the new logger atomically.
// Pass nil to disable logging (restore default silent behavior).
//
// Log levels used by ggfx:
//   - [slog.LevelDebug]: mask paints, pool allocations, reconciliation plans
//   - [slog.LevelInfo]: session lifecycle
//   - [slog.LevelWarn]: unknown effect types, timed-out fades, misused targets
//
// Example:
//
//	ggfx.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	logging.Set(l)
}

// Logger returns the current logger used by ggfx.
//
// Logger is safe for concurrent use.
func Logger() *slog.Logger {
	return logging.Logger()
}
