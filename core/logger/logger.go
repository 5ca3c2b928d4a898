// Package logger declares the logging interface the core packages depend
// on. Backends live in infra/logger; core code never imports one directly.
package logger

// Logger exposes leveled logging. Debugw carries structured fields for
// the high-volume decision logs; everything else is printf-shaped.
type Logger interface {
	Debugf(format string, args ...any)
	Debugw(msg string, fields map[string]any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}
