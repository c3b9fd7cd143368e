package sapling

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/phanxgames/sapling/event"
)

// nopHandler is a slog.Handler that silently discards all log records.
// Enabled returns false so callers skip formatting entirely.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

// loggerPtr stores the active logger.
var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(newNopLogger())
}

// SetLogger configures the logger for sapling and its event package.
// By default sapling produces no log output. Pass nil to restore the
// default silent logger.
//
// Log levels used by sapling:
//   - [slog.LevelDebug]: class load/unload and node init/ready/destroy transitions
//   - [slog.LevelWarn]: dropped listener errors and debug-mode tree warnings
//
// Example:
//
//	sapling.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)
	event.SetLogger(l)
}

// Logger returns the current logger used by sapling.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
