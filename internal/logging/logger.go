// Package logging holds the slog logger shared by ggfx and its sub-packages.
//
// The root package exposes it as ggfx.SetLogger and ggfx.Logger. Keeping the
// pointer here lets render, mask, reconcile and region log without importing
// the root package.
package logging

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// nopHandler is a slog.Handler that silently discards all log records.
// Enabled returns false so callers skip message formatting entirely.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

// newNopLogger creates a logger that silently discards all output.
func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

// loggerPtr stores the active logger.
var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(newNopLogger())
}

// Set installs l as the logger for every ggfx package.
// Passing nil restores the silent default.
func Set(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)
}

// Logger returns the current logger. It never returns nil.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}

// With returns the current logger annotated with a component attribute.
// The result is resolved at call time, so hold it only for the duration of
// a single operation.
func With(component string) *slog.Logger {
	return Logger().With(slog.String("component", component))
}
