package logging

import (
	"context"
	"io"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

type Logger interface {
	Debug(args ...any)
	Debugf(format string, args ...any)
	Info(args ...any)
	Infof(format string, args ...any)
	Warn(args ...any)
	Warnf(format string, args ...any)
	Error(args ...any)
	Errorf(format string, args ...any)
	WithField(key string, value any) Logger
}

var (
	baseLoggerMu sync.RWMutex
	baseLogger   = logrus.New()
)

type logrusLogger struct {
	entry *logrus.Entry
}

func (l *logrusLogger) Debug(args ...any) {
	l.entry.Debug(args...)
}

func (l *logrusLogger) Debugf(format string, args ...any) {
	l.entry.Debugf(format, args...)
}

func (l *logrusLogger) Info(args ...any) {
	l.entry.Info(args...)
}

func (l *logrusLogger) Infof(format string, args ...any) {
	l.entry.Infof(format, args...)
}

func (l *logrusLogger) Error(args ...any) {
	l.entry.Error(args...)
}

func (l *logrusLogger) Errorf(format string, args ...any) {
	l.entry.Errorf(format, args...)
}

func (l *logrusLogger) Warn(args ...any) {
	l.entry.Warn(args...)
}

func (l *logrusLogger) Warnf(format string, args ...any) {
	l.entry.Warnf(format, args...)
}

func (l *logrusLogger) WithField(key string, value any) Logger {
	return &logrusLogger{entry: l.entry.WithField(key, value)}
}

// Configure sets the level and format of the default logrus backend.
// Format is "text" or "json"; an empty level keeps the current one.
func Configure(level string, format string, out io.Writer) error {
	baseLoggerMu.Lock()
	defer baseLoggerMu.Unlock()

	if strings.TrimSpace(level) != "" {
		parsed, err := logrus.ParseLevel(strings.TrimSpace(level))
		if err != nil {
			return err
		}
		baseLogger.SetLevel(parsed)
	}

	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json":
		baseLogger.SetFormatter(&logrus.JSONFormatter{})
	case "", "text":
		baseLogger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	if out != nil {
		baseLogger.SetOutput(out)
	}
	return nil
}

func NewLogger(ctx context.Context) Logger {
	factory := GetLoggerFactory()
	if factory != nil {
		return factory.CreateLogger(ctx)
	}

	return newLogrusLogger(ctx)
}

func newLogrusLogger(ctx context.Context) Logger {
	baseLoggerMu.RLock()
	defer baseLoggerMu.RUnlock()

	return &logrusLogger{entry: baseLogger.WithContext(ctx)}
}
