// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package cli turns the arguments of a command server binary into a Plan.
//
// The accepted form is
//
//	NAME [OPTIONS] [SOCKET [COMMAND...]]
//
// SOCKET may also be given with -S/--socket, in which case every remaining
// word is part of COMMAND. With no SOCKET the host runs a local prompt. With a SOCKET it connects to
// a running server, or starts one there when none answers. Any COMMAND words
// are sent once and the host exits. Process options may appear anywhere
// before "--"; everything after "--" belongs to the socket and command.
package cli

import (
	"slices"
	"strings"

	"github.com/shayne/yargs"
	"github.com/yeetrun/cmdserver/pkg/route"
)

// Flags are the process options shared by every host binary.
type Flags struct {
	Socket   string `flag:"socket" short:"S" help:"Socket to connect to or listen on"`
	Config   string `flag:"config" short:"c" help:"Path to cmdserver.toml"`
	LogLevel string `flag:"log-level" help:"Log level (debug|info|warn|error)"`
	NoColor  bool   `flag:"no-color" help:"Disable colored output"`
}

// Plan is what a host was asked to do.
type Plan struct {
	Flags Flags
	// Socket is the address to connect to or listen on. Empty means run
	// the local prompt.
	Socket string
	// Command is a single line to run against Socket. Empty means run
	// interactively.
	Command string
}

// Parse parses process arguments, without the program name. It returns
// yargs.ErrHelp for -h or --help and a *yargs.InvalidFlagError for an
// unknown option in front of the socket.
func Parse(args []string) (Plan, error) {
	parseArgs, extraArgs := splitArgsAtDoubleDash(args)
	result, err := yargs.ParseKnownFlags[Flags](parseArgs, yargs.KnownFlagsOptions{})
	if err != nil {
		return Plan{}, err
	}
	rest := append(slices.Clone(result.RemainingArgs), extraArgs...)

	lead := len(result.RemainingArgs)
	for i, arg := range result.RemainingArgs {
		if !strings.HasPrefix(arg, "-") {
			lead = i
			break
		}
	}
	if lead > 0 {
		arg := result.RemainingArgs[0]
		if arg == "-h" || arg == "--help" {
			return Plan{}, yargs.ErrHelp
		}
		return Plan{}, &yargs.InvalidFlagError{Flag: arg}
	}

	plan := Plan{Flags: result.Flags}
	if plan.Flags.Socket != "" {
		plan.Socket = plan.Flags.Socket
		plan.Command = strings.Join(rest, " ")
		return plan, nil
	}
	if len(rest) > 0 {
		plan.Socket = rest[0]
		plan.Command = strings.Join(rest[1:], " ")
	}
	return plan, nil
}

// Usage renders process help for a host binary. Commands registered in t
// are listed with their aliases.
func Usage(name, description string, t *route.Table) string {
	cfg := yargs.HelpConfig{
		Command: yargs.CommandInfo{
			Name:        name,
			Description: description,
			Examples: []string{
				name,
				name + " /tmp/" + name + ".sock",
				name + " 8080 help",
				name + " ws://localhost:8080/ -- launch app.js port=80",
			},
		},
	}
	if t != nil {
		cfg.SubCommands = map[string]yargs.SubCommandInfo{}
		for _, n := range t.Names() {
			c, ok := t.Lookup(n)
			if !ok {
				continue
			}
			info := cfg.SubCommands[c.Name]
			if n != c.Name {
				info.Aliases = append(info.Aliases, n)
			} else {
				info.Description = c.Description()
				info.Usage = strings.TrimSpace(strings.TrimPrefix(c.Route, c.Name))
			}
			info.Name = c.Name
			cfg.SubCommands[c.Name] = info
		}
	}
	return yargs.GenerateGlobalHelp(cfg, Flags{})
}

func splitArgsAtDoubleDash(args []string) ([]string, []string) {
	for i, arg := range args {
		if arg == "--" {
			if i+1 < len(args) {
				return args[:i], args[i+1:]
			}
			return args[:i], nil
		}
	}
	return args, nil
}
