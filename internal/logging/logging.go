package logging

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Debug controls whether debug logs are printed.
var Debug bool

var (
	mu     sync.Mutex
	logger *zap.SugaredLogger
)

func base() *zap.SugaredLogger {
	mu.Lock()
	defer mu.Unlock()
	if logger == nil {
		cfg := zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		cfg.DisableStacktrace = true
		l, err := cfg.Build()
		if err != nil {
			l = zap.NewNop()
		}
		logger = l.Sugar()
	}
	return logger
}

// SetLogger replaces the process logger. Passing nil restores the default.
func SetLogger(l *zap.Logger) {
	mu.Lock()
	defer mu.Unlock()
	if l == nil {
		logger = nil
		return
	}
	logger = l.Sugar()
}

// Sync flushes buffered log entries.
func Sync() {
	_ = base().Sync()
}

// Debugf logs a formatted debug message when Debug is enabled.
func Debugf(format string, v ...any) {
	if Debug {
		base().Debugf(format, v...)
	}
}

// Infof logs a formatted informational message.
func Infof(format string, v ...any) {
	base().Infof(format, v...)
}

// Warnf logs a formatted warning.
func Warnf(format string, v ...any) {
	base().Warnf(format, v...)
}

// Errorf logs a formatted error.
func Errorf(format string, v ...any) {
	base().Errorf(format, v...)
}

// With returns a logger carrying the given key/value pairs.
func With(kv ...any) *zap.SugaredLogger {
	return base().With(kv...)
}
