// Package fieldpath resolves dotted paths such as "inputData.area" or
// "customer.address.zip" against generic records.
package fieldpath

import (
	"reflect"
	"strconv"
	"strings"
)

// Get returns the value at path inside record. Path segments are separated
// by dots; a numeric segment indexes into a slice. The boolean is false when
// any segment is missing.
func Get(record map[string]any, path string) (any, bool) {
	if record == nil || path == "" {
		return nil, false
	}
	var current any = record
	for _, segment := range strings.Split(path, ".") {
		next, ok := step(current, segment)
		if !ok {
			return nil, false
		}
		current = next
	}
	return current, true
}

func step(current any, segment string) (any, bool) {
	switch v := current.(type) {
	case map[string]any:
		next, ok := v[segment]
		return next, ok
	case []any:
		idx, err := strconv.Atoi(segment)
		if err != nil || idx < 0 || idx >= len(v) {
			return nil, false
		}
		return v[idx], true
	case nil:
		return nil, false
	}

	// typed maps and slices (map[string]int, []string, ...)
	rv := reflect.ValueOf(current)
	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, false
		}
		val := rv.MapIndex(reflect.ValueOf(segment).Convert(rv.Type().Key()))
		if !val.IsValid() {
			return nil, false
		}
		return val.Interface(), true
	case reflect.Slice, reflect.Array:
		idx, err := strconv.Atoi(segment)
		if err != nil || idx < 0 || idx >= rv.Len() {
			return nil, false
		}
		return rv.Index(idx).Interface(), true
	}
	return nil, false
}

// Exists reports whether path resolves to a non-nil value.
func Exists(record map[string]any, path string) bool {
	v, ok := Get(record, path)
	return ok && v != nil
}
