// Package logger builds the zap logger used for lintrunner's diagnostics.
package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a development logger writing to stderr at warn level, and the
// level handle to raise it once the debug flag is known.
func New() (*zap.SugaredLogger, zap.AtomicLevel, error) {
	level := zap.NewAtomicLevelAt(zapcore.WarnLevel)

	cfg := zap.NewDevelopmentConfig()
	cfg.Level = level
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	cfg.DisableStacktrace = true

	logger, err := cfg.Build()
	if err != nil {
		return nil, level, err
	}
	return logger.Sugar(), level, nil
}

// SetDebug switches level to debug when on is true.
func SetDebug(level zap.AtomicLevel, on bool) {
	if on {
		level.SetLevel(zapcore.DebugLevel)
	}
}
