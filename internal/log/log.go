// Package log wraps go.uber.org/zap with the handful of helpers dnsmark uses.
// Everything is written to stderr; stdout belongs to the resolved IP list.
package log

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the global logger instance.
var Logger = newLogger()

func newLogger() *zap.SugaredLogger {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.Level = zap.NewAtomicLevelAt(levelFromEnv(os.Getenv("LOG_LEVEL")))
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	cfg.DisableCaller = true
	cfg.DisableStacktrace = true

	l, err := cfg.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		return zap.NewNop().Sugar()
	}
	return l.Sugar()
}

// levelFromEnv maps LOG_LEVEL onto a zap level, defaulting to info for
// empty or unknown values.
func levelFromEnv(v string) zapcore.Level {
	if v == "" {
		return zap.InfoLevel
	}
	lvl, err := zapcore.ParseLevel(v)
	if err != nil {
		return zap.InfoLevel
	}
	return lvl
}

// With returns a child logger that attaches kv to every entry.
func With(kv ...any) *zap.SugaredLogger { return Logger.With(kv...) }

// Sync flushes buffered entries. Call it before the process exits.
func Sync() { _ = Logger.Sync() }

// Errorf logs a formatted message at error level.
func Errorf(format string, a ...any) { Logger.Errorf(format, a...) }
