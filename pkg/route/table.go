// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package route

import (
	"fmt"
	"strings"
	"sync"

	"github.com/yeetrun/cmdserver/pkg/argv"
	"tailscale.com/util/mak"
)

// entry is one name in the table: a command or an alias of one.
type entry struct {
	name    string
	cmd     *Command
	aliasOf string
}

// Table is a registry of commands keyed by name. Registration order is kept
// for help output; it does not affect matching.
//
// A Table is safe for concurrent use. Registration takes a write lock and
// matching a read lock, so commands may be added while serving.
type Table struct {
	// AllowMissingArgs disables the check that every required param is
	// bound when matching.
	AllowMissingArgs bool
	// Color enables ANSI colors in help output.
	Color bool

	mu      sync.RWMutex
	entries map[string]*entry
	order   []string
	last    *Command
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{}
}

// Register parses route and stores the command under its name, replacing any
// entry with the same name. The command is returned for further
// configuration.
func (t *Table) Register(route string) (*Command, error) {
	c, err := ParseRoute(route)
	if err != nil {
		return nil, err
	}
	c.table = t
	t.mu.Lock()
	defer t.mu.Unlock()
	t.setLocked(&entry{name: c.Name, cmd: c})
	t.last = c
	return c, nil
}

// MustRegister is like Register but panics on a malformed route.
func (t *Table) MustRegister(route string) *Command {
	c, err := t.Register(route)
	if err != nil {
		panic(err)
	}
	return c
}

// Alias adds names as aliases of the most recently registered command.
func (t *Table) Alias(names ...string) error {
	t.mu.RLock()
	last := t.last
	t.mu.RUnlock()
	if last == nil {
		return ErrNoCommand
	}
	t.alias(last, names)
	return nil
}

func (t *Table) alias(c *Command, names []string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, n := range names {
		n = strings.Join(strings.Fields(n), " ")
		if n == "" || n == c.Name {
			continue
		}
		t.setLocked(&entry{name: n, cmd: c, aliasOf: c.Name})
	}
}

func (t *Table) setLocked(e *entry) {
	if _, ok := t.entries[e.name]; !ok {
		t.order = append(t.order, e.name)
	}
	mak.Set(&t.entries, e.name, e)
}

// Lookup returns the command registered under name, which may be an alias.
func (t *Table) Lookup(name string) (*Command, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	e, ok := t.entries[name]
	if !ok {
		return nil, false
	}
	return e.cmd, true
}

// Names returns every registered name, aliases included, in registration
// order.
func (t *Table) Names() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]string(nil), t.order...)
}

// Invocation is the result of matching one line. It is built per line and
// not retained by the table.
type Invocation struct {
	Command *Command
	// Name is the table name that matched, which differs from Command.Name
	// when the line used an alias.
	Name string
	// Args holds the positional tokens bound to Command.Params, by index.
	Args []string
	// Options maps option keys to resolved values. Options that were not
	// supplied and have no default are absent.
	Options map[string]any
	// Argv is the raw tokenization of the line after the command name,
	// including options the command does not declare.
	Argv argv.Argv
	Line string
}

// CommandName returns the name of the matched command, resolving aliases.
func (inv *Invocation) CommandName() string {
	return inv.Command.Name
}

// Arg returns the token bound to the param called name.
func (inv *Invocation) Arg(name string) (string, bool) {
	for i, p := range inv.Command.Params {
		if p.Name == name {
			if i < len(inv.Args) {
				return inv.Args[i], true
			}
			return "", false
		}
	}
	return "", false
}

// Option returns the resolved value of the option with the given key.
func (inv *Invocation) Option(key string) (any, bool) {
	v, ok := inv.Options[key]
	return v, ok
}

// Bool returns the option as a bool; unset or non-bool values are false.
func (inv *Invocation) Bool(key string) bool {
	b, _ := inv.Options[key].(bool)
	return b
}

// Int returns the option as an integer.
func (inv *Invocation) Int(key string) (int64, bool) {
	switch v := inv.Options[key].(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	case float64:
		return int64(v), true
	}
	return 0, false
}

// String returns the option formatted as text, or "" when unset.
func (inv *Invocation) String(key string) string {
	v, ok := inv.Options[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// Match resolves line against the table.
//
// Lines consisting of the word "help", optionally followed by a topic,
// return a *HelpRequest. Otherwise every registered name N for which the
// line equals N or starts with N followed by a space is a candidate. No
// candidate yields ErrUnknown and more than one ErrAmbiguous; both are
// *MatchError values. With exactly one candidate the rest of the line is
// tokenized, options are resolved against their defaults and positional
// tokens are bound to the command params.
func (t *Table) Match(line string) (*Invocation, error) {
	line = strings.TrimSpace(line)
	if topic, ok := helpTopic(line); ok {
		return nil, &HelpRequest{Topic: topic, Text: t.Help(topic)}
	}

	t.mu.RLock()
	var cands []*entry
	for _, name := range t.order {
		if line == name || strings.HasPrefix(line, name+" ") {
			cands = append(cands, t.entries[name])
		}
	}
	allowMissing := t.AllowMissingArgs
	t.mu.RUnlock()

	switch len(cands) {
	case 0:
		return nil, &MatchError{Kind: Unknown, Input: line}
	case 1:
	default:
		names := make([]string, len(cands))
		for i, e := range cands {
			names[i] = e.name
		}
		return nil, &MatchError{Kind: Ambiguous, Input: line, Candidates: names}
	}

	e := cands[0]
	cmd := e.cmd
	a := argv.Parse(strings.TrimSpace(line[len(e.name):]))

	opts := make(map[string]any, len(cmd.Options))
	for _, o := range cmd.Options {
		v, ok, err := o.resolve(a)
		if err != nil {
			if ove, isOVE := err.(*OptionValueError); isOVE {
				ove.Command = cmd.Name
			}
			return nil, err
		}
		if ok {
			opts[o.Key()] = v
		}
	}

	n := min(len(a.Args), len(cmd.Params))
	args := make([]string, 0, n)
	args = append(args, a.Args[:n]...)
	if !allowMissing {
		for i, p := range cmd.Params {
			if p.Required && i >= n {
				return nil, &MissingArgumentError{Command: cmd.Name, Param: p}
			}
		}
	}

	return &Invocation{
		Command: cmd,
		Name:    e.name,
		Args:    args,
		Options: opts,
		Argv:    a,
		Line:    line,
	}, nil
}

// helpTopic reports whether line is a help request and returns its topic.
func helpTopic(line string) (string, bool) {
	const word = "help"
	if line == word {
		return "", true
	}
	if rest, ok := strings.CutPrefix(line, word+" "); ok {
		return strings.TrimSpace(rest), true
	}
	return "", false
}
