// Package logging builds the process logger. INFO and WARN go to stdout,
// ERROR and above to stderr, and an optional log file receives every
// enabled level.
package logging

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Setup returns the logger and a cleanup that syncs it and closes the log
// file. verbose enables DEBUG.
func Setup(logPath string, verbose bool) (*zap.Logger, func(), error) {
	minLevel := zapcore.InfoLevel
	if verbose {
		minLevel = zapcore.DebugLevel
	}

	var file zapcore.WriteSyncer
	var f *os.File
	if logPath != "" {
		var err error
		f, err = os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("opening log file: %w", err)
		}
		file = zapcore.AddSync(f)
	}

	logger := New(zapcore.Lock(os.Stdout), zapcore.Lock(os.Stderr), file, minLevel)
	cleanup := func() {
		_ = logger.Sync()
		if f != nil {
			f.Close()
		}
	}
	return logger, cleanup, nil
}

// New routes entries below ERROR to out and the rest to errOut. When file
// is non-nil it gets a copy of every entry at or above minLevel.
func New(out, errOut, file zapcore.WriteSyncer, minLevel zapcore.Level) *zap.Logger {
	enc := zapcore.NewConsoleEncoder(encoderConfig())

	low := zap.LevelEnablerFunc(func(l zapcore.Level) bool {
		return l >= minLevel && l < zapcore.ErrorLevel
	})
	high := zap.LevelEnablerFunc(func(l zapcore.Level) bool {
		return l >= minLevel && l >= zapcore.ErrorLevel
	})

	cores := []zapcore.Core{
		zapcore.NewCore(enc, out, low),
		zapcore.NewCore(enc.Clone(), errOut, high),
	}
	if file != nil {
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig()), file, minLevel))
	}
	return zap.New(zapcore.NewTee(cores...))
}

func encoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	return cfg
}
