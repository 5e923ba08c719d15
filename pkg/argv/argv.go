// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package argv splits a single command line into positional tokens and
// key/value options.
//
// Options may appear anywhere in the line and are removed from the
// positional stream without disturbing the order of the remaining tokens:
//
//	carrot to=x vegetables     -> Args [carrot vegetables], Options {to: "x"}
//	port = "80" restart=false  -> Options {port: 80, restart: false}
//	--watch -v                 -> Options {watch: true, v: true}
//
// Quotes group whitespace into a single token and are stripped from the
// result. Option values are coerced with Coerce; positional tokens always
// stay strings. Malformed input never produces an error: anything that does
// not look like an option is kept as a positional token.
package argv

import (
	"regexp"
	"strconv"
	"strings"
)

// Argv is the result of tokenizing a line.
type Argv struct {
	// Args holds positional tokens in the order they appeared.
	Args []string
	// Options maps option keys (leading dashes removed) to coerced values.
	// A repeated key keeps its last value.
	Options map[string]any
	// Keys lists option keys in order of first appearance.
	Keys []string
}

var (
	// keyRe matches an option key with optional leading dashes.
	keyRe = regexp.MustCompile(`^-{0,2}[A-Za-z0-9_][A-Za-z0-9_-]*$`)
	// assignRe matches the key part of a key=value token.
	assignRe = regexp.MustCompile(`^(-{0,2}[A-Za-z0-9_][A-Za-z0-9_-]*)=`)
	// flagRe matches bare --flag and -f tokens.
	flagRe = regexp.MustCompile(`^(?:--[A-Za-z][A-Za-z0-9_-]*|-[A-Za-z])$`)

	intRe     = regexp.MustCompile(`^-?\d+$`)
	decimalRe = regexp.MustCompile(`^-?\d+\.\d+$`)
)

// Parse tokenizes line.
func Parse(line string) Argv {
	a := Argv{
		Args:    []string{},
		Options: map[string]any{},
	}
	words := joinAssignments(split(line))
	for _, w := range words {
		if m := assignRe.FindStringSubmatch(w); m != nil {
			a.set(strings.TrimLeft(m[1], "-"), Coerce(strings.TrimSpace(unquote(w[len(m[0]):]))))
			continue
		}
		if flagRe.MatchString(w) {
			a.set(strings.TrimLeft(w, "-"), true)
			continue
		}
		a.Args = append(a.Args, unquote(w))
	}
	return a
}

func (a *Argv) set(key string, v any) {
	if _, ok := a.Options[key]; !ok {
		a.Keys = append(a.Keys, key)
	}
	a.Options[key] = v
}

// Lookup returns the value of the first key in keys that is present, along
// with the key that matched.
func (a Argv) Lookup(keys ...string) (v any, key string, ok bool) {
	for _, k := range keys {
		if v, ok := a.Options[k]; ok {
			return v, k, true
		}
	}
	return nil, "", false
}

// Coerce converts s to a bool, int64 or float64 when it looks like one and
// returns it unchanged otherwise.
func Coerce(s string) any {
	switch {
	case s == "true":
		return true
	case s == "false":
		return false
	case intRe.MatchString(s):
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	case decimalRe.MatchString(s):
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	}
	return s
}

// split breaks line into whitespace separated words. Quoted sections keep
// their whitespace and their quote characters; unquote removes them later.
// An unterminated quote is treated as a literal character.
func split(line string) []string {
	var (
		words []string
		cur   strings.Builder
		in    bool
	)
	runes := []rune(line)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case r == '"' || r == '\'':
			end := indexRune(runes[i+1:], r)
			if end < 0 {
				cur.WriteRune(r)
				in = true
				continue
			}
			cur.WriteString(string(runes[i : i+end+2]))
			in = true
			i += end + 1
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			if in {
				words = append(words, cur.String())
				cur.Reset()
				in = false
			}
		default:
			cur.WriteRune(r)
			in = true
		}
	}
	if in {
		words = append(words, cur.String())
	}
	return words
}

func indexRune(rs []rune, r rune) int {
	for i, c := range rs {
		if c == r {
			return i
		}
	}
	return -1
}

// joinAssignments folds "key = value", "key= value" and "key =value" into a
// single key=value word.
func joinAssignments(words []string) []string {
	out := make([]string, 0, len(words))
	for i := 0; i < len(words); i++ {
		w := words[i]
		switch {
		case keyRe.MatchString(w) && i+2 < len(words) && words[i+1] == "=":
			out = append(out, w+"="+words[i+2])
			i += 2
		case keyRe.MatchString(w) && i+1 < len(words) && len(words[i+1]) > 1 && strings.HasPrefix(words[i+1], "="):
			out = append(out, w+words[i+1])
			i++
		case strings.HasSuffix(w, "=") && keyRe.MatchString(strings.TrimSuffix(w, "=")) && i+1 < len(words):
			out = append(out, w+words[i+1])
			i++
		default:
			out = append(out, w)
		}
	}
	return out
}

// unquote removes balanced quote pairs from w, keeping their contents.
func unquote(w string) string {
	if !strings.ContainsAny(w, `"'`) {
		return w
	}
	runes := []rune(w)
	var b strings.Builder
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if r == '"' || r == '\'' {
			if end := indexRune(runes[i+1:], r); end >= 0 {
				b.WriteString(string(runes[i+1 : i+1+end]))
				i += end + 1
				continue
			}
		}
		b.WriteRune(r)
	}
	return b.String()
}
