// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cmdserver

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/yeetrun/cmdserver/pkg/cli"
	"github.com/yeetrun/cmdserver/pkg/client"
	"github.com/yeetrun/cmdserver/pkg/transport"
)

// Begin runs the server as plan asks:
//
//   - no socket: run the local prompt, executing plan.Command first.
//   - a socket with a live server: attach to it, sending plan.Command once
//     or running an interactive session.
//   - a socket nobody answers on: with a command, report it and fail;
//     otherwise listen there and serve until SIGINT or SIGTERM.
func (s *Server) Begin(ctx context.Context, plan cli.Plan) error {
	if plan.Socket == "" {
		return s.REPL(ctx, s.cfg.Stdin, s.cfg.Stdout, plan.Command)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cl, err := client.Attach(ctx, plan.Socket, client.WithLogger(s.log), client.WithColor(s.color.Enabled))
	if err == nil {
		defer cl.Close()
		if plan.Command != "" {
			return cl.Exec(ctx, plan.Command, s.cfg.Stdout)
		}
		return cl.Interactive(ctx, s.cfg.Stdin, s.cfg.Stdout)
	}
	if !errors.Is(err, client.ErrRefused) {
		return err
	}
	if plan.Command != "" {
		fmt.Fprintf(s.cfg.Stderr, "Can't connect to socket `%s`\n", s.color.Green(plan.Socket))
		return err
	}

	addr, err := transport.ParseAddr(plan.Socket)
	if err != nil {
		return err
	}
	ln, err := transport.Listen(ctx, addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	s.log.Infof("%s listening on %s", s.cfg.Name, ln.Addr())
	return s.Serve(ctx, ln)
}
