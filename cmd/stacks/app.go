// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"fmt"
	"math"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/yeetrun/cmdserver/pkg/cmdserver"
	"github.com/yeetrun/cmdserver/pkg/route"
)

// app keeps named stacks of things in memory. Every connected client sees
// the same stacks.
type app struct {
	mu     sync.Mutex
	stacks map[string][]string
}

func newApp() *app {
	return &app{
		stacks: map[string][]string{
			"vegetables": nil,
			"meats":      nil,
		},
	}
}

// launchSpec is what the launch command reports back.
type launchSpec struct {
	File    string `yaml:"file"`
	Name    string `yaml:"name"`
	Port    int64  `yaml:"port,omitempty"`
	Watch   bool   `yaml:"watch"`
	Restart bool   `yaml:"restart"`
	Extra   string `yaml:"extra,omitempty"`
}

func (a *app) register(s *cmdserver.Server) {
	s.Command("pi", a.pi).Describe("print pi")
	s.Command("new <stack>", a.newStack).Describe("create an empty stack")
	s.Command("add <thing> <stack>", a.add).Describe("push a thing onto a stack")
	s.Command("list [stack]", a.list).Describe("show one stack or all of them")
	s.Command("ham", a.ham).Alias("pig", "pork")
	s.Command("bye", a.bye).Describe("disconnect").Alias("later", "see-ya", "peace")
	s.Command("launch <filename> [name]", a.launch).
		Describe("describe how a file would be launched").
		Option("-p, --port [n]", "port to listen on", route.WithDefault(int64(0))).
		Option("-w, --watch", "restart when the file changes", route.WithDefault(false)).
		Option("--no-restart", "do not restart on crash")
}

func (a *app) pi(ctx context.Context, c cmdserver.Client, inv *route.Invocation) error {
	return c.Send(math.Pi)
}

func (a *app) newStack(ctx context.Context, c cmdserver.Client, inv *route.Invocation) error {
	name, _ := inv.Arg("stack")
	a.mu.Lock()
	_, exists := a.stacks[name]
	if !exists {
		a.stacks[name] = nil
	}
	a.mu.Unlock()
	if exists {
		return fmt.Errorf("stack %q already exists", name)
	}
	return c.Send("created stack", name)
}

func (a *app) add(ctx context.Context, c cmdserver.Client, inv *route.Invocation) error {
	thing, _ := inv.Arg("thing")
	name, _ := inv.Arg("stack")
	a.mu.Lock()
	items, ok := a.stacks[name]
	if ok {
		a.stacks[name] = append(items, thing)
	}
	a.mu.Unlock()
	if !ok {
		return fmt.Errorf("no stack named %q", name)
	}
	return c.Send("added", thing, "to", name)
}

func (a *app) list(ctx context.Context, c cmdserver.Client, inv *route.Invocation) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if name, ok := inv.Arg("stack"); ok {
		items, ok := a.stacks[name]
		if !ok {
			return fmt.Errorf("no stack named %q", name)
		}
		return c.Send(map[string][]string{name: slices.Clone(items)})
	}
	out := make(map[string][]string, len(a.stacks))
	for name, items := range a.stacks {
		out[name] = slices.Clone(items)
	}
	return c.Send(out)
}

func (a *app) ham(ctx context.Context, c cmdserver.Client, inv *route.Invocation) error {
	return c.Send("is gross")
}

func (a *app) bye(ctx context.Context, c cmdserver.Client, inv *route.Invocation) error {
	if err := c.Send("later gator"); err != nil {
		return err
	}
	return c.Close()
}

func (a *app) launch(ctx context.Context, c cmdserver.Client, inv *route.Invocation) error {
	file, _ := inv.Arg("filename")
	name, ok := inv.Arg("name")
	if !ok {
		name = strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
	}
	port, _ := inv.Int("port")
	spec := launchSpec{
		File:    file,
		Name:    name,
		Port:    port,
		Watch:   inv.Bool("watch"),
		Restart: inv.Bool("restart"),
		Extra:   strings.Join(inv.Argv.Args[len(inv.Args):], " "),
	}
	return c.Send(&spec)
}
