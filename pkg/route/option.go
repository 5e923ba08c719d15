// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package route

import (
	"fmt"
	"math"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/yeetrun/cmdserver/pkg/argv"
)

// ValueKind describes whether an option takes a value.
type ValueKind int

const (
	// KindBool options take no value; their presence means true.
	KindBool ValueKind = iota
	// KindRequired options are declared with a <value> placeholder.
	KindRequired
	// KindOptional options are declared with a [value] placeholder.
	KindOptional
)

func (k ValueKind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindRequired:
		return "required"
	case KindOptional:
		return "optional"
	default:
		return fmt.Sprintf("ValueKind(%d)", int(k))
	}
}

// CoerceFunc converts an explicitly supplied option value. It is not applied
// to defaults.
type CoerceFunc func(v any) (any, error)

// Option is a named flag-style input of a Command.
type Option struct {
	// Flags is the declaration text, e.g. "-p, --port [n]".
	Flags string
	// Short is the optional short flag, e.g. "-p".
	Short string
	// Long is the long flag, e.g. "--port" or "--no-color".
	Long string
	Kind ValueKind
	// Negate is set for --no-* options. Their key drops the "no-" prefix
	// and supplying the flag turns the value off.
	Negate bool

	Default    any
	HasDefault bool

	Description string
	Coerce      CoerceFunc
}

// OptionOpt configures an Option.
type OptionOpt func(*Option)

// WithDefault sets the value used when the option is not supplied. Numeric
// defaults are widened to int64 or float64, the types supplied values are
// coerced to.
func WithDefault(v any) OptionOpt {
	return func(o *Option) {
		o.Default = widen(v)
		o.HasDefault = true
	}
}

func widen(v any) any {
	switch n := v.(type) {
	case int:
		return int64(n)
	case int8:
		return int64(n)
	case int16:
		return int64(n)
	case int32:
		return int64(n)
	case uint:
		if uint64(n) <= math.MaxInt64 {
			return int64(n)
		}
	case uint8:
		return int64(n)
	case uint16:
		return int64(n)
	case uint32:
		return int64(n)
	case uint64:
		if n <= math.MaxInt64 {
			return int64(n)
		}
	case float32:
		return float64(n)
	}
	return v
}

// WithCoerce sets a conversion applied to explicitly supplied values.
func WithCoerce(fn CoerceFunc) OptionOpt {
	return func(o *Option) {
		o.Coerce = fn
	}
}

// ParseOption parses a flag declaration of the form
// "[-s,] --long [<value>|[value]]" or "--no-name".
func ParseOption(flags, description string, opts ...OptionOpt) (*Option, error) {
	fields := strings.FieldsFunc(flags, func(r rune) bool {
		return r == ' ' || r == ',' || r == '|'
	})
	if len(fields) == 0 || isPlaceholder(fields[0]) {
		return nil, fmt.Errorf("%w: %q", ErrBadOption, flags)
	}
	o := &Option{
		Flags:       strings.TrimSpace(flags),
		Description: description,
	}
	if len(fields) > 1 && !isPlaceholder(fields[1]) {
		o.Short = fields[0]
		fields = fields[1:]
	}
	o.Long = fields[0]
	if strings.Trim(o.Long, "-") == "" {
		return nil, fmt.Errorf("%w: %q", ErrBadOption, flags)
	}
	switch {
	case strings.Contains(flags, "<"):
		o.Kind = KindRequired
	case strings.Contains(flags, "["):
		o.Kind = KindOptional
	}
	if strings.HasPrefix(strings.TrimLeft(o.Long, "-"), "no-") {
		o.Negate = true
		o.Kind = KindBool
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.Negate && !o.HasDefault {
		o.Default = true
		o.HasDefault = true
	}
	return o, nil
}

func isPlaceholder(s string) bool {
	return strings.HasPrefix(s, "<") || strings.HasPrefix(s, "[")
}

// Name returns the long flag without dashes or a "no-" prefix.
func (o *Option) Name() string {
	return strings.TrimPrefix(strings.TrimLeft(o.Long, "-"), "no-")
}

// Key returns the canonical key of the option: Name with its dash separated
// words camel-cased. Resolved option maps and help output both use it.
func (o *Option) Key() string {
	return camelCase(o.Name())
}

// Is reports whether arg names this option by its short or long flag.
func (o *Option) Is(arg string) bool {
	return arg != "" && (arg == o.Short || arg == o.Long)
}

// tokenKeys lists the keys under which a value for o may appear in a
// tokenized line, most specific first.
func (o *Option) tokenKeys() []string {
	keys := []string{o.Key()}
	if name := o.Name(); name != o.Key() {
		keys = append(keys, name)
	}
	if o.Negate {
		keys = append(keys, "no-"+o.Name(), "no"+upperFirst(o.Key()))
	}
	if short := strings.TrimLeft(o.Short, "-"); short != "" {
		keys = append(keys, short)
	}
	return keys
}

// inverts reports whether a value supplied under key must be negated.
func (o *Option) inverts(key string) bool {
	return o.Negate && key != o.Key() && key != o.Name()
}

// resolve returns the effective value of o for the tokenized line a. The
// boolean result is false when the option was neither supplied nor has a
// default.
func (o *Option) resolve(a argv.Argv) (any, bool, error) {
	v, key, ok := a.Lookup(o.tokenKeys()...)
	if b, isBool := v.(bool); ok && isBool && b && o.Kind != KindBool {
		// A bare --port carries no value.
		ok = false
	}
	if !ok {
		if o.HasDefault {
			return o.Default, true, nil
		}
		return nil, false, nil
	}
	if b, isBool := v.(bool); isBool && o.inverts(key) {
		v = !b
	}
	if o.Coerce != nil {
		cv, err := o.Coerce(v)
		if err != nil {
			return nil, false, &OptionValueError{Option: o.Key(), Value: v, Err: err}
		}
		v = cv
	}
	return v, true, nil
}

func camelCase(flag string) string {
	parts := strings.Split(flag, "-")
	var b strings.Builder
	b.WriteString(parts[0])
	for _, p := range parts[1:] {
		b.WriteString(upperFirst(p))
	}
	return b.String()
}

func upperFirst(s string) string {
	r, n := utf8.DecodeRuneInString(s)
	if n == 0 {
		return s
	}
	return string(unicode.ToUpper(r)) + s[n:]
}
