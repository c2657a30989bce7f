// Package logging provides structured logging for all speech-coach
// components. It wraps zap behind a small Fields-oriented interface so
// analysis and storage code never depends on a concrete logging backend.
package logging

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Fields holds structured log context
type Fields map[string]any

// Logger is the logging interface used throughout the application
type Logger interface {
	Debug(msg string, fields ...Fields)
	Info(msg string, fields ...Fields)
	Warn(msg string, fields ...Fields)
	Error(err error, msg string, fields ...Fields)
	WithFields(fields Fields) Logger
}

type zapLogger struct {
	base *zap.Logger
}

var (
	defaultLogger Logger = &zapLogger{base: newBase("info")}
	mu            sync.RWMutex
)

func newBase(level string) *zap.Logger {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = zapcore.InfoLevel
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)

	logger, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

// Configure replaces the default logger with one at the given level
// (debug, info, warn, error). Safe to call before any logging happens.
func Configure(level string) {
	mu.Lock()
	defer mu.Unlock()
	defaultLogger = &zapLogger{base: newBase(level)}
}

// Default returns the process-wide logger.
func Default() Logger {
	mu.RLock()
	defer mu.RUnlock()
	return defaultLogger
}

// WithFields returns the default logger annotated with fields.
func WithFields(fields Fields) Logger {
	return Default().WithFields(fields)
}

// Debug logs at debug level on the default logger.
func Debug(msg string, fields ...Fields) { Default().Debug(msg, fields...) }

// Info logs at info level on the default logger.
func Info(msg string, fields ...Fields) { Default().Info(msg, fields...) }

// Error logs an error on the default logger.
func Error(err error, msg string, fields ...Fields) { Default().Error(err, msg, fields...) }

func (l *zapLogger) zapFields(fields []Fields) []zap.Field {
	var out []zap.Field
	for _, f := range fields {
		for k, v := range f {
			out = append(out, zap.Any(k, v))
		}
	}
	return out
}

func (l *zapLogger) Debug(msg string, fields ...Fields) {
	l.base.Debug(msg, l.zapFields(fields)...)
}

func (l *zapLogger) Info(msg string, fields ...Fields) {
	l.base.Info(msg, l.zapFields(fields)...)
}

func (l *zapLogger) Warn(msg string, fields ...Fields) {
	l.base.Warn(msg, l.zapFields(fields)...)
}

func (l *zapLogger) Error(err error, msg string, fields ...Fields) {
	zf := l.zapFields(fields)
	if err != nil {
		zf = append(zf, zap.Error(err))
	}
	l.base.Error(msg, zf...)
}

func (l *zapLogger) WithFields(fields Fields) Logger {
	zf := l.zapFields([]Fields{fields})
	return &zapLogger{base: l.base.With(zf...)}
}
