// Package omitnilpointers turns partial updates expressed as pointer fields
// into plain field maps.
package omitnilpointers

import (
	"reflect"
)

// OmitNilPointers returns a copy of fields without nil entries, with every
// non-nil pointer replaced by the value it points to.
func OmitNilPointers(fields map[string]any) map[string]any {
	res := make(map[string]any, len(fields))
	for key, value := range fields {
		if value == nil {
			continue
		}

		v := reflect.ValueOf(value)
		if v.Kind() != reflect.Ptr {
			res[key] = value
			continue
		}

		if v.IsNil() {
			continue
		}

		res[key] = v.Elem().Interface()
	}

	return res
}
