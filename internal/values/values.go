// Package values holds the small set of dynamic-value helpers shared by the
// validator, field handlers and layout composers. Value trees arrive decoded
// from JSON or YAML, or built by hand in Go, so every helper accepts the
// generic shapes as well as typed slices and maps via reflection.
package values

import (
	"reflect"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// IsEmpty reports whether v counts as "not provided": nil, a whitespace-only
// string, or an empty slice or map.
func IsEmpty(v any) bool {
	if v == nil {
		return true
	}
	switch typed := v.(type) {
	case string:
		return strings.TrimSpace(typed) == ""
	case []any:
		return len(typed) == 0
	case map[string]any:
		return len(typed) == 0
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return rv.Len() == 0
	case reflect.Pointer, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

// Number converts numeric values (and numeric strings) to float64.
func Number(v any) (float64, bool) {
	switch typed := v.(type) {
	case float64:
		return typed, true
	case float32:
		return float64(typed), true
	case int:
		return float64(typed), true
	case int8:
		return float64(typed), true
	case int16:
		return float64(typed), true
	case int32:
		return float64(typed), true
	case int64:
		return float64(typed), true
	case uint:
		return float64(typed), true
	case uint8:
		return float64(typed), true
	case uint16:
		return float64(typed), true
	case uint32:
		return float64(typed), true
	case uint64:
		return float64(typed), true
	case json.Number:
		f, err := typed.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(typed), 64)
		return f, err == nil
	}
	return 0, false
}

// Equal compares two values for enum membership. Numbers compare by value so
// 1, int64(1) and 1.0 are equal; everything else uses deep equality.
func Equal(a, b any) bool {
	if an, ok := numberOnly(a); ok {
		if bn, ok := numberOnly(b); ok {
			return an == bn
		}
		return false
	}
	return reflect.DeepEqual(a, b)
}

func numberOnly(v any) (float64, bool) {
	if _, isString := v.(string); isString {
		return 0, false
	}
	return Number(v)
}

// Slice returns v as []any when it is any slice or array.
func Slice(v any) ([]any, bool) {
	if v == nil {
		return nil, false
	}
	if typed, ok := v.([]any); ok {
		return typed, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for idx := range out {
		out[idx] = rv.Index(idx).Interface()
	}
	return out, true
}

// Map returns v as map[string]any when it is a string-keyed map.
func Map(v any) (map[string]any, bool) {
	if v == nil {
		return nil, false
	}
	if typed, ok := v.(map[string]any); ok {
		return typed, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}
	out := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		out[iter.Key().String()] = iter.Value().Interface()
	}
	return out, true
}

// Lookup walks a dotted path ("a.b.0.c") through maps and slices. An empty
// path returns data itself.
func Lookup(data any, path string) (any, bool) {
	path = strings.TrimSpace(path)
	if path == "" {
		return data, true
	}
	current := data
	for _, segment := range strings.Split(path, ".") {
		if m, ok := Map(current); ok {
			next, exists := m[segment]
			if !exists {
				return nil, false
			}
			current = next
			continue
		}
		if s, ok := Slice(current); ok {
			idx, err := strconv.Atoi(segment)
			if err != nil || idx < 0 || idx >= len(s) {
				return nil, false
			}
			current = s[idx]
			continue
		}
		return nil, false
	}
	return current, true
}

// Join builds a dotted child path.
func Join(parent, child string) string {
	if parent == "" {
		return child
	}
	if child == "" {
		return parent
	}
	return parent + "." + child
}

// Text renders a scalar for display. Whole floats print without a fraction.
func Text(v any) string {
	switch typed := v.(type) {
	case nil:
		return ""
	case string:
		return typed
	case bool:
		return strconv.FormatBool(typed)
	case float64:
		return strconv.FormatFloat(typed, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(typed), 'f', -1, 32)
	case json.Number:
		return typed.String()
	}
	if n, ok := numberOnly(v); ok {
		return strconv.FormatFloat(n, 'f', -1, 64)
	}
	if _, isMap := Map(v); isMap {
		return marshalText(v)
	}
	if _, isSlice := Slice(v); isSlice {
		return marshalText(v)
	}
	if stringer, ok := v.(interface{ String() string }); ok {
		return stringer.String()
	}
	return marshalText(v)
}

func marshalText(v any) string {
	encoded, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(encoded)
}
