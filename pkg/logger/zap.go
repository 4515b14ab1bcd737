package logger

import (
	"errors"
	"syscall"

	"go.uber.org/zap"
)

// ZapLogger adapts a zap logger to the Logger interface. Messages are
// formatted printf style and emitted through the sugared logger.
type ZapLogger struct {
	sugar *zap.SugaredLogger
}

// NewZapLogger wraps l. A nil l yields a logger backed by zap.NewNop.
func NewZapLogger(l *zap.Logger) *ZapLogger {
	if l == nil {
		l = zap.NewNop()
	}
	return &ZapLogger{sugar: l.Sugar()}
}

// NewProductionZapLogger builds a JSON logger writing to stderr.
func NewProductionZapLogger() (*ZapLogger, error) {
	l, err := zap.NewProduction()
	if err != nil {
		return nil, err
	}
	return NewZapLogger(l), nil
}

// Info logs at info level.
func (z *ZapLogger) Info(format string, args ...interface{}) {
	z.sugar.Infof(format, args...)
}

// Warning logs at warn level.
func (z *ZapLogger) Warning(format string, args ...interface{}) {
	z.sugar.Warnf(format, args...)
}

// Error logs at error level.
func (z *ZapLogger) Error(format string, args ...interface{}) {
	z.sugar.Errorf(format, args...)
}

// Close flushes buffered entries. Sync on a terminal returns EINVAL or
// ENOTTY on some platforms; those are not reported.
func (z *ZapLogger) Close() error {
	err := z.sugar.Sync()
	if errors.Is(err, syscall.EINVAL) || errors.Is(err, syscall.ENOTTY) {
		return nil
	}
	return err
}

var _ Logger = (*ZapLogger)(nil)
