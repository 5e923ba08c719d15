// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package route matches text command lines against a table of declared
// commands.
//
// A command is declared with a route string. The text before the first
// parameter marker is the command name; <name> declares a required
// positional param and [name] an optional one:
//
//	t := route.NewTable()
//	t.MustRegister("launch <filename> [name]").
//	    Describe("launch the server").
//	    Option("-p, --port [n]", "port to launch on", route.WithDefault(int64(0))).
//	    Option("--no-restart", "do not restart on crash")
//
// Option flags follow "[-s,] --long [<value>|[value]]". Every option has a
// canonical key, its long name without dashes and camel-cased
// ("--dry-run" is dryRun). A "--no-" option is boolean, defaults to true
// and is keyed without the prefix ("--no-restart" is restart).
//
// Lines are matched with Table.Match:
//
//	inv, err := t.Match(`launch app.js port=8080 --no-restart`)
//	// inv.Args    == ["app.js"]
//	// inv.Options == {port: 8080, restart: false}
//
// A line matches a name N when it equals N or starts with N and a space.
// More than one match is an error (ErrAmbiguous) rather than a guess. Lines
// starting with the word "help" return a *HelpRequest carrying the text
// rendered by Table.Help.
package route
