// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tui

import (
	"os"

	"github.com/fatih/color"
)

// Colorizer wraps text in ANSI attributes when enabled. The zero value
// leaves text untouched.
type Colorizer struct {
	Enabled bool
}

// NewColorizer returns a Colorizer that is enabled only if enabled is true,
// NO_COLOR is unset and TERM names a capable terminal.
func NewColorizer(enabled bool) Colorizer {
	if !enabled {
		return Colorizer{}
	}
	if os.Getenv("NO_COLOR") != "" {
		return Colorizer{}
	}
	term := os.Getenv("TERM")
	if term == "" || term == "dumb" {
		return Colorizer{}
	}
	return Colorizer{Enabled: true}
}

// Wrap applies attrs to text.
func (c Colorizer) Wrap(text string, attrs ...color.Attribute) string {
	if !c.Enabled || len(attrs) == 0 {
		return text
	}
	col := color.New(attrs...)
	// color.NoColor follows the process stdout, not this text's destination.
	col.EnableColor()
	return col.Sprint(text)
}

func (c Colorizer) Bold(text string) string {
	return c.Wrap(text, color.Bold)
}

// Route renders a route signature in help output.
func (c Colorizer) Route(text string) string {
	return c.Wrap(text, color.FgCyan, color.Bold)
}

func (c Colorizer) Dim(text string) string {
	return c.Wrap(text, color.FgHiBlack)
}

func (c Colorizer) Green(text string) string {
	return c.Wrap(text, color.FgGreen)
}

func (c Colorizer) Magenta(text string) string {
	return c.Wrap(text, color.FgMagenta)
}

func (c Colorizer) Yellow(text string) string {
	return c.Wrap(text, color.FgYellow)
}

// Error renders text as a bold red error label.
func (c Colorizer) Error(text string) string {
	return c.Wrap(text, color.FgRed, color.Bold)
}
