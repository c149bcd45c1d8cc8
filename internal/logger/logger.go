package logger

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

type ctxKey struct{}

type implLogger struct {
	logger *logrus.Logger
	level  logrus.Level
}

// New creates a new Logger instance. format is "json" or "text".
func New(level, format string) Logger {
	return newWithOutput(level, format, os.Stdout)
}

func newWithOutput(level, format string, out io.Writer) *implLogger {
	base := logrus.New()
	base.SetOutput(out)

	if strings.EqualFold(format, "json") {
		base.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339Nano})
	} else {
		base.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: time.RFC3339})
	}

	lvl := parseLevel(level)
	base.SetLevel(lvl)

	return &implLogger{logger: base, level: lvl}
}

func parseLevel(level string) logrus.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return logrus.DebugLevel
	case "warn", "warning":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}

// WithField returns a context whose log lines carry key=value.
func WithField(ctx context.Context, key string, value interface{}) context.Context {
	prev, _ := ctx.Value(ctxKey{}).(logrus.Fields)
	fields := make(logrus.Fields, len(prev)+1)
	for k, v := range prev {
		fields[k] = v
	}
	fields[key] = value
	return context.WithValue(ctx, ctxKey{}, fields)
}

func (l *implLogger) shouldLog(level logrus.Level) bool {
	return level <= l.level
}

func (l *implLogger) entry(ctx context.Context) *logrus.Entry {
	e := logrus.NewEntry(l.logger)
	if ctx == nil {
		return e
	}
	if fields, ok := ctx.Value(ctxKey{}).(logrus.Fields); ok {
		e = e.WithFields(fields)
	}
	return e
}

func (l *implLogger) Debug(ctx context.Context, msg string, args ...interface{}) {
	if l.shouldLog(logrus.DebugLevel) {
		l.entry(ctx).Debugf(msg, args...)
	}
}

func (l *implLogger) Info(ctx context.Context, msg string, args ...interface{}) {
	if l.shouldLog(logrus.InfoLevel) {
		l.entry(ctx).Infof(msg, args...)
	}
}

func (l *implLogger) Warn(ctx context.Context, msg string, args ...interface{}) {
	if l.shouldLog(logrus.WarnLevel) {
		l.entry(ctx).Warnf(msg, args...)
	}
}

func (l *implLogger) Error(ctx context.Context, msg string, args ...interface{}) {
	if l.shouldLog(logrus.ErrorLevel) {
		l.entry(ctx).Errorf(msg, args...)
	}
}

// Discard returns a Logger that drops everything; handy in tests.
func Discard() Logger {
	return newWithOutput("error", "text", io.Discard)
}
