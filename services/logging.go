package services

import (
	"sync/atomic"

	"go.uber.org/zap"
)

var (
	logger atomic.Pointer[zap.Logger]
	nop    = zap.NewNop()
)

// Log returns the services logger. It is a no-op logger until SetupLogging
// or SetLogger is called.
func Log() *zap.Logger {
	if l := logger.Load(); l != nil {
		return l
	}
	return nop
}

// SetLogger replaces the services logger. Safe to call while other
// goroutines are logging.
func SetLogger(l *zap.Logger) {
	logger.Store(l)
}

// SetupLogging configures a console logger, or json output for running
// under a supervisor.
func SetupLogging(json bool) *zap.Logger {
	var cfg zap.Config
	if json {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.DisableStacktrace = true
	}
	cfg.OutputPaths = []string{"stdout"}
	l, err := cfg.Build()
	if err != nil {
		l = zap.NewExample()
	}
	SetLogger(l)
	return l
}
