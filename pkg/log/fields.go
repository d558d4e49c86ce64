package log

import (
	"reflect"
	"strings"
)

// Fields is the context mapping passed alongside an error.
type Fields = map[string]any

// excludedFields are the base error fields never reported as extras.
var excludedFields = [...]string{"message", "stack"}

func isExcluded(key string) bool {
	for _, f := range excludedFields {
		if strings.EqualFold(key, f) {
			return true
		}
	}
	return false
}

// asMapping reports whether v is a non-nil map with string keys and returns
// it as a Fields view. A Fields value is returned as is and must be treated
// as read-only; other map types are copied.
func asMapping(v any) (Fields, bool) {
	if m, ok := v.(map[string]any); ok {
		return m, m != nil
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map || rv.IsNil() || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}
	out := make(Fields, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		out[iter.Key().String()] = iter.Value().Interface()
	}
	return out, true
}

// extraFields returns the fields of err beyond message and stack.
// Structs contribute their exported fields (embedded structs are flattened
// and json tag names are honored); string-keyed maps contribute their
// entries. The result is nil when there are no extras.
func extraFields(err any) Fields {
	root := reflect.ValueOf(err)
	rv := indirect(root)
	out := Fields{}
	switch rv.Kind() {
	case reflect.Struct:
		seen := map[uintptr]bool{}
		if root.Kind() == reflect.Pointer {
			seen[root.Pointer()] = true
		}
		collectStructFields(rv, out, seen)
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil
		}
		iter := rv.MapRange()
		for iter.Next() {
			if k := iter.Key().String(); !isExcluded(k) {
				out[k] = iter.Value().Interface()
			}
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// collectStructFields adds the reportable fields of rv to out. Embedded
// pointers already in seen are skipped so self-linked values terminate.
func collectStructFields(rv reflect.Value, out Fields, seen map[uintptr]bool) {
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		name, tagged := jsonName(sf)
		if name == "-" {
			continue
		}

		fv := rv.Field(i)
		if sf.Anonymous && !tagged && isStructType(sf.Type) {
			if fv.Kind() == reflect.Pointer {
				if fv.IsNil() || seen[fv.Pointer()] {
					continue
				}
				seen[fv.Pointer()] = true
			}
			if ev := indirect(fv); ev.Kind() == reflect.Struct {
				collectStructFields(ev, out, seen)
			}
			continue
		}

		if !sf.IsExported() || !fv.CanInterface() || isExcluded(sf.Name) || isExcluded(name) {
			continue
		}
		out[name] = fv.Interface()
	}
}

func isStructType(t reflect.Type) bool {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Kind() == reflect.Struct
}

// jsonName returns the key a field is reported under and whether it came
// from a json tag.
func jsonName(sf reflect.StructField) (string, bool) {
	tag := sf.Tag.Get("json")
	if tag == "-" {
		return "-", true
	}
	if name, _, _ := strings.Cut(tag, ","); name != "" {
		return name, true
	}
	return sf.Name, false
}
