package logger

import corelogger "github.com/mpelletier/rosterd/core/logger"

// Logger aliases the core interface so adapter users import one package.
type Logger = corelogger.Logger

// NopLogger discards everything. Tests and optional components use it in
// place of a real backend.
type NopLogger struct{}

func (NopLogger) Debugf(string, ...any)         {}
func (NopLogger) Debugw(string, map[string]any) {}
func (NopLogger) Infof(string, ...any)          {}
func (NopLogger) Warnf(string, ...any)          {}
func (NopLogger) Errorf(string, ...any)         {}

// New returns the default zerolog-backed Logger for a component.
func New(component string) Logger {
	return NewZerologLogger(component)
}
