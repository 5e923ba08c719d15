// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package cmdserver dispatches text command lines to typed handlers and
// hosts them on a local prompt or a socket.
package cmdserver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/yeetrun/cmdserver/pkg/route"
	"github.com/yeetrun/cmdserver/pkg/tui"
	"tailscale.com/util/mak"
	"tailscale.com/util/set"
)

// Handler runs a matched command. Output goes to c. A returned error is
// reported to the client as "Error: <err>".
type Handler func(ctx context.Context, c Client, inv *route.Invocation) error

// MissingFunc reports a line that matched no command.
type MissingFunc func(c Client, line string) error

// Config contains the server dependencies.
type Config struct {
	// Name is used in the local prompt.
	Name   string
	Logger *logrus.Logger
	// Color enables ANSI colors in help, prompts and messages.
	Color bool
	// AllowMissingArgs runs commands whose required params are unbound.
	AllowMissingArgs bool
	// Missing overrides the reply to unknown commands.
	Missing MissingFunc

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Server owns a command table, the handlers bound to it and the
// connections it serves.
type Server struct {
	cfg   Config
	log   *logrus.Logger
	table *route.Table
	color tui.Colorizer

	mu       sync.RWMutex
	handlers map[*route.Command]Handler

	conns struct {
		mu       sync.Mutex
		stopping bool
		s        set.HandleSet[*connClient]
	}
}

// New returns a Server with an empty command table.
func New(cfg Config) *Server {
	if cfg.Name == "" {
		cfg.Name = "cmdserver"
	}
	if cfg.Stdin == nil {
		cfg.Stdin = os.Stdin
	}
	if cfg.Stdout == nil {
		cfg.Stdout = os.Stdout
	}
	if cfg.Stderr == nil {
		cfg.Stderr = os.Stderr
	}
	log := cfg.Logger
	if log == nil {
		log = logrus.New()
		log.SetOutput(cfg.Stderr)
	}
	color := tui.NewColorizer(cfg.Color)
	t := route.NewTable()
	t.AllowMissingArgs = cfg.AllowMissingArgs
	t.Color = color.Enabled
	return &Server{
		cfg:   cfg,
		log:   log,
		table: t,
		color: color,
	}
}

// Table returns the server's command table.
func (s *Server) Table() *route.Table {
	return s.table
}

// Logger returns the server's logger.
func (s *Server) Logger() *logrus.Logger {
	return s.log
}

// Command registers the route pattern with handler h and returns the command for
// further configuration. Aliases added to the command share h. It panics on
// a malformed route.
func (s *Server) Command(pattern string, h Handler) *route.Command {
	cmd := s.table.MustRegister(pattern)
	s.Handle(cmd, h)
	return cmd
}

// Handle binds h to a command already registered in the table.
func (s *Server) Handle(cmd *route.Command, h Handler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	mak.Set(&s.handlers, cmd, h)
}

func (s *Server) handler(cmd *route.Command) Handler {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.handlers[cmd]
}

// Execute matches line and runs its handler, replying to c. Lookup and
// handler failures are reported to c; the returned error is only non-nil
// when a reply could not be delivered.
func (s *Server) Execute(ctx context.Context, line string, c Client) error {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}
	log := s.log.WithFields(logrus.Fields{"client": c.ID(), "command": line})
	log.Debug("received command")

	inv, err := s.table.Match(line)
	if err != nil {
		return s.reportMatchError(c, line, err)
	}
	h := s.handler(inv.Command)
	if h == nil {
		log.Warn("no handler registered")
		return c.Send(s.errorf("no handler for %s", inv.CommandName()))
	}
	if err := h(ctx, c, inv); err != nil {
		log.WithError(err).Debug("command failed")
		if errors.Is(err, ErrClientClosed) {
			return nil
		}
		return c.Send(s.errorf("%v", err))
	}
	return nil
}

func (s *Server) reportMatchError(c Client, line string, err error) error {
	var (
		help    *route.HelpRequest
		match   *route.MatchError
		missing *route.MissingArgumentError
	)
	switch {
	case errors.As(err, &help):
		return c.Send(help.Text)
	case errors.As(err, &match) && match.Kind == route.Ambiguous:
		return c.Send(fmt.Sprintf("Ambiguous command %s: matches %s",
			s.color.Error(match.Input), strings.Join(match.Candidates, ", ")))
	case errors.As(err, &match):
		if s.cfg.Missing != nil {
			return s.cfg.Missing(c, line)
		}
		return c.Send(fmt.Sprintf("Could not find command %s. Type %s if you don't know what to do.",
			s.color.Error(line), s.color.Bold("help")))
	case errors.As(err, &missing):
		return c.Send(fmt.Sprintf("Missing required argument %s for %s",
			s.color.Bold(missing.Param.String()), missing.Command))
	default:
		return c.Send(s.errorf("%v", err))
	}
}

func (s *Server) errorf(format string, a ...any) string {
	return s.color.Error("Error:") + " " + fmt.Sprintf(format, a...)
}
