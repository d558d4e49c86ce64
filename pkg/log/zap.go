package log

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ZapSink implements Sink using zap.
type ZapSink struct {
	logger *zap.Logger
}

// NewZapSink creates a sink wrapping an existing *zap.Logger.
// A nil logger is replaced by zap.NewNop.
func NewZapSink(logger *zap.Logger) *ZapSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ZapSink{logger: logger}
}

// Write emits one zap entry at the matching level.
func (z *ZapSink) Write(level Level, values ...any) {
	msg, fields := render(values)
	ce := z.logger.Check(zapLevel(level), msg)
	if ce == nil {
		return
	}
	zf := make([]zap.Field, 0, len(fields))
	for _, f := range fields {
		zf = append(zf, zap.Any(f.Key, f.Value))
	}
	ce.Write(zf...)
}

// Sync flushes buffered entries.
func (z *ZapSink) Sync() error {
	return z.logger.Sync()
}

// Logger returns the underlying *zap.Logger.
func (z *ZapSink) Logger() *zap.Logger {
	return z.logger
}

func zapLevel(level Level) zapcore.Level {
	switch level {
	case LevelDebug:
		return zapcore.DebugLevel
	case LevelInfo:
		return zapcore.InfoLevel
	case LevelWarn:
		return zapcore.WarnLevel
	default:
		return zapcore.ErrorLevel
	}
}
