// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package dump renders handler values as human-readable text for a
// line-oriented client.
package dump

import (
	"fmt"
	"reflect"
	"strings"

	"gopkg.in/yaml.v3"
)

// Sprint renders each value with Value and joins the results with a space.
func Sprint(a ...any) string {
	parts := make([]string, len(a))
	for i, v := range a {
		parts[i] = Value(v)
	}
	return strings.Join(parts, " ")
}

// Value renders v. Strings are returned verbatim, errors and Stringers by
// their text and scalars in their fmt form. Maps, slices and structs are
// rendered as YAML without the trailing newline.
func Value(v any) string {
	switch v := v.(type) {
	case nil:
		return "null"
	case string:
		return v
	case []byte:
		return string(v)
	case error:
		return v.Error()
	case fmt.Stringer:
		return v.String()
	}
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return "null"
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Map, reflect.Slice, reflect.Array, reflect.Struct:
	default:
		return fmt.Sprint(rv.Interface())
	}
	b, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%+v", v)
	}
	return strings.TrimRight(string(b), "\n")
}
