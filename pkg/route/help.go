// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package route

import (
	"fmt"
	"strings"

	"github.com/yeetrun/cmdserver/pkg/tui"
)

// Help renders help text. With an empty name it lists every entry in
// registration order; with a registered name it returns that entry's block.
// An unknown name yields a "not a recognized command" line followed by the
// full listing.
func (t *Table) Help(name string) string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	c := tui.NewColorizer(t.Color)
	name = strings.TrimSpace(name)
	if name == "" {
		return t.helpAllLocked(c)
	}
	e, ok := t.entries[name]
	if !ok {
		return fmt.Sprintf("`%s` not a recognized command\n\n%s", c.Bold(name), t.helpAllLocked(c))
	}
	return helpBlock(e, c)
}

func (t *Table) helpAllLocked(c tui.Colorizer) string {
	var b strings.Builder
	for _, name := range t.order {
		b.WriteString(helpBlock(t.entries[name], c))
	}
	return b.String()
}

// helpBlock renders one entry: the route signature and description, then
// one line per option with the flags padded to the widest flag string.
func helpBlock(e *entry, c tui.Colorizer) string {
	var b strings.Builder
	cmd := e.cmd
	b.WriteString(c.Route(cmd.signature(e.name)))
	desc := cmd.Description()
	if e.aliasOf != "" {
		desc = strings.TrimSpace(fmt.Sprintf("%s (alias of %s)", desc, e.aliasOf))
	}
	if desc != "" {
		b.WriteString(": ")
		b.WriteString(desc)
	}
	b.WriteByte('\n')

	width := 0
	for _, o := range cmd.Options {
		width = max(width, len(o.Flags))
	}
	for _, o := range cmd.Options {
		line := fmt.Sprintf("  %-*s  %s", width, o.Flags, optionHelp(o))
		b.WriteString(strings.TrimRight(line, " "))
		b.WriteByte('\n')
	}
	return b.String()
}

// optionHelp is the description column of an option line. The key is shown
// when it differs from the long flag, so users know what to type. Negated
// options are not annotated: their key means the opposite of the flag.
func optionHelp(o *Option) string {
	s := o.Description
	if !o.Negate && o.Key() != strings.TrimLeft(o.Long, "-") {
		s = strings.TrimSpace(fmt.Sprintf("%s (as %s=...)", s, o.Key()))
	}
	return s
}
