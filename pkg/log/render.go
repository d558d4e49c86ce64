package log

import (
	"fmt"
	"sort"
)

// Field represents a key-value pair rendered by a structured sink.
type Field struct {
	Key   string
	Value interface{}
}

// argsKey groups values that are neither the message nor a mapping.
const argsKey = "args"

// render splits a write payload into a message and structured fields.
// The first value is the message unless it is a mapping. Mappings
// contribute their entries as fields in key order. Everything else is
// collected, in order, under "args".
func render(values []any) (string, []Field) {
	var (
		msg    string
		fields []Field
		args   []any
	)
	for i, v := range values {
		if m, ok := asMapping(v); ok {
			fields = appendSorted(fields, m)
			continue
		}
		if i == 0 {
			msg = message(v)
			continue
		}
		args = append(args, v)
	}
	if len(args) > 0 {
		fields = append(fields, Field{Key: argsKey, Value: args})
	}
	return msg, fields
}

func appendSorted(fields []Field, m Fields) []Field {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fields = append(fields, Field{Key: k, Value: m[k]})
	}
	return fields
}

func message(v any) string {
	switch m := v.(type) {
	case string:
		return m
	case error:
		return m.Error()
	case fmt.Stringer:
		return m.String()
	case nil:
		return ""
	default:
		return fmt.Sprint(m)
	}
}
