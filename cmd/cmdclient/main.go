// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command cmdclient attaches to a running command server. With command
// words after the socket it sends them once and prints the responses;
// otherwise it opens an interactive session.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/shayne/yargs"
	"github.com/yeetrun/cmdserver/pkg/cli"
	"github.com/yeetrun/cmdserver/pkg/client"
	"github.com/yeetrun/cmdserver/pkg/config"
	"github.com/yeetrun/cmdserver/pkg/tui"
)

const name = "cmdclient"

func main() {
	log.SetFlags(0)

	plan, err := cli.Parse(os.Args[1:])
	if errors.Is(err, yargs.ErrHelp) {
		fmt.Print(cli.Usage(name, "Attach to a running command server", nil))
		return
	}
	if err != nil {
		log.Fatalf("%s: %v", name, err)
	}

	var cfg *config.Config
	if plan.Flags.Config != "" {
		cfg, err = config.Load(name, plan.Flags.Config)
	} else {
		cfg = config.Default(name)
	}
	if err != nil {
		log.Fatalf("%s: %v", name, err)
	}
	cfg.ApplyEnv(os.Getenv)
	cfg.ApplyFlags(&plan)
	color := tui.NewColorizer(cfg.Color)

	if plan.Socket == "" {
		fmt.Fprintln(os.Stderr, color.Error("error"), "you must supply a path, port or host:port")
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c, err := client.Attach(ctx, plan.Socket,
		client.WithLogger(cfg.NewLogger(os.Stderr)),
		client.WithColor(cfg.Color))
	if err != nil {
		fmt.Fprintln(os.Stderr, color.Error("error"), err)
		os.Exit(1)
	}
	defer c.Close()

	if plan.Command != "" {
		err = c.Exec(ctx, plan.Command, os.Stdout)
	} else {
		err = c.Interactive(ctx, os.Stdin, os.Stdout)
		fmt.Fprintln(os.Stderr, "disconnected")
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("%s: %v", name, err)
	}
}
