// Package zlog provides a thin, component-scoped wrapper around zerolog so that every subsystem
// of the analyzer logs with a consistent, structured shape without each package wiring up its own
// logger from scratch.
package zlog

import (
	"io"
	"os"
	"sync"

	"github.com/rs/zerolog"
)

var (
	mu      sync.Mutex
	sink    io.Writer = os.Stderr
	base              = zerolog.New(sink).With().Timestamp().Logger()
	globalL zerolog.Level
)

// Logger is a component-scoped logger. It embeds zerolog.Logger so callers can use the full
// zerolog fluent API (.Debug(), .Warn(), .Error(), .Fields(...)) in addition to the helpers below.
type Logger struct {
	zerolog.Logger
}

// SetOutput redirects all future loggers to w. Intended for tests and for the CLI's
// `--dump-cfg`/file-logging wiring.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	sink = w
	base = zerolog.New(sink).With().Timestamp().Logger().Level(globalL)
}

// SetLevel sets the global minimum level for all component loggers created after this call.
func SetLevel(lvl zerolog.Level) {
	mu.Lock()
	defer mu.Unlock()
	globalL = lvl
	base = base.Level(lvl)
}

// For returns a logger scoped to component, e.g. zlog.For("fixpoint") or
// zlog.For("resolver.assign"). The component name is attached to every emitted record as the
// "component" field.
func For(component string) Logger {
	mu.Lock()
	defer mu.Unlock()
	return Logger{base.With().Str("component", component).Logger()}
}

// WithFunction returns a child logger further scoped to a function name, used by the fixpoint
// engine and block executor to tag every per-function trace line.
func (l Logger) WithFunction(name string) Logger {
	return Logger{l.With().Str("func", name).Logger()}
}
