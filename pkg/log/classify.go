package log

import (
	"encoding/json"
	"math"
	"reflect"
)

// Context keys read or written by Classify.
const (
	// FieldFullError holds the error details in the merged context.
	// A value supplied by the caller is never replaced.
	FieldFullError = "fullError"

	// FieldHTTPCode is the HTTP status associated with the error.
	FieldHTTPCode = "httpCode"

	// FieldIsHandledError marks errors the application anticipated.
	FieldIsHandledError = "isHandledError"
)

// serverErrorFloor is the first status code that is a server fault.
const serverErrorFloor = 500

// Classification is the result of Classify.
type Classification struct {
	// Level is LevelWarn or LevelError.
	Level Level

	// Representation is the stack trace for error-like values and the
	// original error value otherwise.
	Representation any

	// Context is a new Fields map with fullError set when the input context
	// was a mapping, and the original context data otherwise.
	Context any
}

// Classify derives the severity, representation and merged context for an
// error and its context data. It is pure: inputs are never modified and any
// input combination yields a result: a panic while inspecting err is
// treated as a value that is not error-like.
func Classify(err, contextData any) (c Classification) {
	defer func() {
		if recover() != nil {
			c = Classification{Level: LevelError, Representation: err, Context: contextData}
		}
	}()

	stack, ok := traceOf(err)
	if !ok {
		return Classification{Level: LevelError, Representation: err, Context: contextData}
	}

	c = Classification{Level: LevelError, Representation: stack, Context: contextData}
	fields, ok := asMapping(contextData)
	if !ok {
		return c
	}

	merged := make(Fields, len(fields)+1)
	for k, v := range fields {
		merged[k] = v
	}
	if _, exists := fields[FieldFullError]; !exists {
		merged[FieldFullError] = fullError(err)
	}
	c.Context = merged

	if isHandledClientError(fields) {
		c.Level = LevelWarn
	}
	return c
}

// fullError is the derived fullError value: the extra fields of err when it
// has any, otherwise err itself.
func fullError(err any) any {
	if extras := extraFields(err); extras != nil {
		return extras
	}
	return err
}

// isHandledClientError reports whether isHandledError is true and httpCode
// is a number below 500.
func isHandledClientError(fields Fields) bool {
	handled, _ := fields[FieldIsHandledError].(bool)
	if !handled {
		return false
	}
	code, ok := numeric(fields[FieldHTTPCode])
	return ok && code < serverErrorFloor
}

// numeric converts integer, unsigned, float and json.Number values to float64.
func numeric(v any) (float64, bool) {
	if n, ok := v.(json.Number); ok {
		f, err := n.Float64()
		return f, err == nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		return f, !math.IsNaN(f)
	}
	return 0, false
}
