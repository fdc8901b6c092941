// Package logger wraps zap construction so every binary configures
// logging the same way.
package logger

import (
	"go.uber.org/zap"
)

// Logger carries the shared zap instance.
type Logger struct {
	// Log is the configured zap logger.
	Log *zap.Logger
}

// New returns a Logger with a no-op zap instance; call Init before use.
func New() *Logger {
	return &Logger{Log: zap.NewNop()}
}

// Init builds the production zap logger at the given level
// ("Debug", "Info", "Warn", "Error"). Returns an error if the
// level does not parse or the logger cannot be built.
func (l *Logger) Init(level string) error {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return err
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = lvl
	zl, err := cfg.Build()
	if err != nil {
		return err
	}
	l.Log = zl
	return nil
}
