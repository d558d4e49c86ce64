package log

import "sync/atomic"

// Sink receives one write per Logger call.
// Implementations must accept any value shape and must not panic on it.
type Sink interface {
	Write(level Level, values ...any)
}

// SinkFunc adapts a plain function to the Sink interface.
type SinkFunc func(level Level, values ...any)

// Write calls f(level, values...).
func (f SinkFunc) Write(level Level, values ...any) {
	f(level, values...)
}

// NoopSink implements Sink by discarding all writes.
type NoopSink struct{}

// NewNoopSink creates a new no-op sink.
func NewNoopSink() *NoopSink {
	return &NoopSink{}
}

// Write discards the values.
func (NoopSink) Write(level Level, values ...any) {}

// LevelFilter drops writes below a minimum level before they reach the
// wrapped sink. The threshold can be changed while the filter is in use.
type LevelFilter struct {
	next Sink
	min  atomic.Int32
}

// NewLevelFilter wraps next so that only writes at or above min are forwarded.
func NewLevelFilter(next Sink, min Level) *LevelFilter {
	f := &LevelFilter{next: next}
	f.min.Store(int32(min))
	return f
}

// Write forwards the values when level passes the threshold.
func (f *LevelFilter) Write(level Level, values ...any) {
	if level < f.Level() {
		return
	}
	f.next.Write(level, values...)
}

// SetLevel replaces the threshold.
func (f *LevelFilter) SetLevel(min Level) {
	f.min.Store(int32(min))
}

// Level returns the current threshold.
func (f *LevelFilter) Level() Level {
	return Level(f.min.Load())
}
