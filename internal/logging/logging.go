// Package logging wires the logr API to a zap backend and defines the
// verbosity levels used across the module.
package logging

import (
	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Verbosity levels for logr's V(). INFO-level messages use V(0).
const (
	DEBUG = 1
	TRACE = 2
)

// Log is the package-global logger. It discards everything until SetLogger
// or NewTestLogger is called.
var Log = logr.Discard()

// NewLogger builds a production logr.Logger backed by zap. verbosity maps to
// the zap level: 0 shows info and above, DEBUG and up enable debug output.
func NewLogger(verbosity int) (logr.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.Level(-verbosity))
	zl, err := cfg.Build()
	if err != nil {
		return logr.Logger{}, err
	}
	return zapr.NewLogger(zl), nil
}

// SetLogger replaces the package-global logger.
func SetLogger(l logr.Logger) {
	Log = l
}

// NewTestLogger builds a development logger at full verbosity, installs it as
// the package-global logger, and returns it.
func NewTestLogger() logr.Logger {
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.Level(-TRACE))
	zl, err := cfg.Build()
	if err != nil {
		// the development config cannot fail to build; keep the discard logger
		return Log
	}
	l := zapr.NewLogger(zl)
	Log = l
	return l
}
