package log

import (
	"fmt"
	"reflect"
	"runtime"
	"strings"
)

// Tracer is implemented by errors that carry their own stack trace.
// Implementing it is one of the ways a value becomes error-like; an exported
// Stack string field or a "stack" map entry qualify as well, and are checked
// when Stack returns "" or panics.
type Tracer interface {
	Stack() string
}

// HasTrace reports whether v exposes a non-empty stack trace.
func HasTrace(v any) bool {
	_, ok := traceOf(v)
	return ok
}

// traceOf extracts the stack trace of v by structural inspection.
func traceOf(v any) (string, bool) {
	if v == nil {
		return "", false
	}
	if t, ok := v.(Tracer); ok {
		if s := callStack(t); s != "" {
			return s, true
		}
	}

	rv := indirect(reflect.ValueOf(v))
	switch rv.Kind() {
	case reflect.Struct:
		sf, ok := rv.Type().FieldByName("Stack")
		if !ok || !sf.IsExported() {
			return "", false
		}
		fv, err := rv.FieldByIndexErr(sf.Index)
		if err != nil {
			return "", false
		}
		fv = indirect(fv)
		if fv.Kind() != reflect.String || fv.Len() == 0 {
			return "", false
		}
		return fv.String(), true
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return "", false
		}
		e := indirect(rv.MapIndex(reflect.ValueOf("stack").Convert(rv.Type().Key())))
		if e.Kind() != reflect.String || e.Len() == 0 {
			return "", false
		}
		return e.String(), true
	}
	return "", false
}

// callStack calls t.Stack, treating a panicking method (typically a nil
// pointer receiver) as an empty trace.
func callStack(t Tracer) (s string) {
	defer func() {
		if recover() != nil {
			s = ""
		}
	}()
	return t.Stack()
}

// indirect follows pointers and interfaces down to a concrete value.
// It returns the zero Value when it meets a nil.
func indirect(rv reflect.Value) reflect.Value {
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return reflect.Value{}
		}
		rv = rv.Elem()
	}
	return rv
}

// TracedError is an error carrying the stack captured when it was created.
// Embed *TracedError in application error types to make them error-like;
// the embedding type's exported fields are then reported under fullError.
type TracedError struct {
	msg   string
	cause error
	stack string
}

// NewTraced creates an error with the given message and the caller's stack.
func NewTraced(msg string) *TracedError {
	return &TracedError{msg: msg, stack: captureStack(3)}
}

// Wrap attaches the caller's stack to err. Errors that already expose a trace
// are returned unchanged. Wrap(nil) returns nil.
func Wrap(err error) error {
	if err == nil {
		return nil
	}
	if HasTrace(err) {
		return err
	}
	return &TracedError{msg: err.Error(), cause: err, stack: captureStack(3)}
}

// Error returns the message.
func (e *TracedError) Error() string {
	return e.msg
}

// Stack returns the message followed by the captured frames.
func (e *TracedError) Stack() string {
	if e.stack == "" {
		return ""
	}
	return e.msg + "\n" + e.stack
}

// Unwrap returns the wrapped error, if any.
func (e *TracedError) Unwrap() error {
	return e.cause
}

// captureStack captures a stack trace.
//
// Skip parameter: Number of stack frames to skip.
//   - 0: includes runtime.Callers itself
//   - 3: skips runtime.Callers, captureStack and the constructor
func captureStack(skip int) string {
	var buf strings.Builder
	pcs := make([]uintptr, 32)
	n := runtime.Callers(skip, pcs)
	frames := runtime.CallersFrames(pcs[:n])

	for {
		frame, more := frames.Next()
		fmt.Fprintf(&buf, "    at %s (%s:%d)\n", frame.Function, frame.File, frame.Line)
		if !more {
			break
		}
	}
	return buf.String()
}
