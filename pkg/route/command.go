// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package route

import (
	"fmt"
	"strings"
)

// Param is a positional slot declared in a route.
type Param struct {
	Name     string
	Required bool
}

func (p Param) String() string {
	if p.Required {
		return "<" + p.Name + ">"
	}
	return "[" + p.Name + "]"
}

// Command is a registered route: a name, its positional params and options.
type Command struct {
	// Name is the route text before the first parameter marker.
	Name string
	// Route is the declaration the command was parsed from.
	Route   string
	Params  []Param
	Options []*Option

	description string
	table       *Table
}

// ParseRoute parses a route declaration such as "launch <filename> [name]".
// The command name is everything before the first "<" or "[" marker, so
// names may span several words ("stack add <thing>").
func ParseRoute(route string) (*Command, error) {
	route = strings.TrimSpace(route)
	name, rest := route, ""
	if i := strings.IndexAny(route, "<["); i >= 0 {
		name, rest = route[:i], route[i:]
	}
	name = strings.Join(strings.Fields(name), " ")
	if name == "" {
		return nil, fmt.Errorf("%w %q: missing command name", ErrBadRoute, route)
	}
	c := &Command{Name: name, Route: route}
	for _, tok := range strings.Fields(rest) {
		switch {
		case len(tok) > 2 && tok[0] == '<' && tok[len(tok)-1] == '>':
			c.Params = append(c.Params, Param{Name: tok[1 : len(tok)-1], Required: true})
		case len(tok) > 2 && tok[0] == '[' && tok[len(tok)-1] == ']':
			c.Params = append(c.Params, Param{Name: tok[1 : len(tok)-1]})
		default:
			return nil, fmt.Errorf("%w %q: unexpected token %q", ErrBadRoute, route, tok)
		}
	}
	return c, nil
}

// Option adds an option to c and returns c for chaining. It panics if flags
// cannot be parsed, since option declarations are fixed at setup time.
func (c *Command) Option(flags, description string, opts ...OptionOpt) *Command {
	o, err := ParseOption(flags, description, opts...)
	if err != nil {
		panic(fmt.Sprintf("route: command %q: %v", c.Name, err))
	}
	c.Options = append(c.Options, o)
	return c
}

// Describe sets the description shown in help and returns c.
func (c *Command) Describe(text string) *Command {
	c.description = text
	return c
}

// Description returns the text set with Describe.
func (c *Command) Description() string {
	return c.description
}

// Alias registers additional names for c in the table it was registered
// with. Aliases share c, so they have the same params, options and handler.
func (c *Command) Alias(names ...string) *Command {
	if c.table == nil {
		panic(fmt.Sprintf("route: Alias on unregistered command %q", c.Name))
	}
	c.table.alias(c, names)
	return c
}

// LookupOption returns the option whose key, short or long flag is name.
func (c *Command) LookupOption(name string) (*Option, bool) {
	for _, o := range c.Options {
		if o.Key() == name || o.Is(name) {
			return o, true
		}
	}
	return nil, false
}

// signature renders the route with name in place of the command name.
func (c *Command) signature(name string) string {
	if name == c.Name {
		return c.Route
	}
	parts := []string{name}
	for _, p := range c.Params {
		parts = append(parts, p.String())
	}
	return strings.Join(parts, " ")
}
