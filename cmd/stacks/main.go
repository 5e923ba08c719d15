// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command stacks is a small command server that keeps named stacks of
// things. Run it with no arguments for a local prompt, or with a socket to
// host the commands there or attach to a running instance.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/shayne/yargs"
	"github.com/yeetrun/cmdserver/pkg/cli"
	"github.com/yeetrun/cmdserver/pkg/client"
	"github.com/yeetrun/cmdserver/pkg/cmdserver"
	"github.com/yeetrun/cmdserver/pkg/config"
	"tailscale.com/util/must"
)

const (
	name        = "stacks"
	description = "Keep stacks of things, locally or on a socket"
)

func main() {
	log.SetFlags(0)

	plan, err := cli.Parse(os.Args[1:])
	if errors.Is(err, yargs.ErrHelp) {
		s := newServer(config.Default(name))
		fmt.Print(cli.Usage(name, description, s.Table()))
		return
	}
	if err != nil {
		log.Fatalf("%s: %v", name, err)
	}

	cfg, err := loadConfig(plan.Flags.Config)
	if err != nil {
		log.Fatalf("%s: %v", name, err)
	}
	cfg.ApplyEnv(os.Getenv)
	cfg.ApplyFlags(&plan)

	s := newServer(cfg)
	if err := s.Begin(context.Background(), plan); err != nil {
		if errors.Is(err, client.ErrRefused) {
			os.Exit(1)
		}
		log.Fatal(err)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.Load(name, path)
	}
	return config.LoadFromDir(name, must.Get(os.Getwd()))
}

func newServer(cfg *config.Config) *cmdserver.Server {
	s := cmdserver.New(cmdserver.Config{
		Name:             cfg.Name,
		Logger:           cfg.NewLogger(os.Stderr),
		Color:            cfg.Color,
		AllowMissingArgs: cfg.AllowMissingArgs,
	})
	newApp().register(s)
	return s
}
