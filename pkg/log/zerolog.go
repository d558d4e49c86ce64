package log

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// ZerologSink implements Sink using zerolog.
type ZerologSink struct {
	logger zerolog.Logger
}

// NewConsoleZerologSink creates a zerolog sink with console output on w.
// A nil w writes to stderr; an empty timeFormat defaults to RFC3339.
func NewConsoleZerologSink(w io.Writer, timeFormat string) *ZerologSink {
	if w == nil {
		w = os.Stderr
	}
	if timeFormat == "" {
		timeFormat = time.RFC3339
	}
	output := zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: timeFormat,
	}
	logger := zerolog.New(output).With().Timestamp().Logger()
	return &ZerologSink{logger: logger}
}

// NewZerologSink creates a sink wrapping an existing zerolog.Logger.
func NewZerologSink(logger zerolog.Logger) *ZerologSink {
	return &ZerologSink{logger: logger}
}

// Write emits one zerolog event at the matching level.
func (z *ZerologSink) Write(level Level, values ...any) {
	event := z.logger.WithLevel(zerologLevel(level))
	if event == nil {
		return
	}
	msg, fields := render(values)
	for _, f := range fields {
		event = addField(event, f)
	}
	event.Msg(msg)
}

// Logger returns the underlying zerolog.Logger.
func (z *ZerologSink) Logger() zerolog.Logger {
	return z.logger
}

func zerologLevel(level Level) zerolog.Level {
	switch level {
	case LevelDebug:
		return zerolog.DebugLevel
	case LevelInfo:
		return zerolog.InfoLevel
	case LevelWarn:
		return zerolog.WarnLevel
	default:
		return zerolog.ErrorLevel
	}
}

// addField adds a Field to a zerolog.Event.
func addField(event *zerolog.Event, f Field) *zerolog.Event {
	switch v := f.Value.(type) {
	case string:
		return event.Str(f.Key, v)
	case int:
		return event.Int(f.Key, v)
	case int64:
		return event.Int64(f.Key, v)
	case uint64:
		return event.Uint64(f.Key, v)
	case float64:
		return event.Float64(f.Key, v)
	case bool:
		return event.Bool(f.Key, v)
	case time.Duration:
		return event.Dur(f.Key, v)
	case error:
		return event.AnErr(f.Key, v)
	default:
		return event.Interface(f.Key, v)
	}
}
