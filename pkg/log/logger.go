package log

// Logger forwards calls to a Sink, classifying error-like values on the way.
// A Logger has no state of its own and is safe for concurrent use when its
// sink is.
type Logger struct {
	sink Sink
}

// New creates a Logger writing to sink. A nil sink discards all writes.
func New(sink Sink) *Logger {
	if sink == nil {
		sink = NoopSink{}
	}
	return &Logger{sink: sink}
}

// Info writes args unchanged at info level.
func (l *Logger) Info(args ...any) {
	l.sink.Write(LevelInfo, args...)
}

// Error writes err at a classified level. The first element of args, when
// present, is the context data; the rest are appended after it unchanged.
//
// Values without a stack trace are passed through as-is at error level.
// For error-like values the stack replaces err and the context data is
// replaced by its merged copy (see Classify).
func (l *Logger) Error(err any, args ...any) {
	var contextData any
	if len(args) > 0 {
		contextData = args[0]
	}
	c := Classify(err, contextData)

	values := make([]any, 0, len(args)+1)
	values = append(values, c.Representation)
	if len(args) > 0 {
		values = append(values, c.Context)
		values = append(values, args[1:]...)
	}
	l.sink.Write(c.Level, values...)
}

// Sink returns the sink the logger writes to.
func (l *Logger) Sink() Sink {
	return l.sink
}
