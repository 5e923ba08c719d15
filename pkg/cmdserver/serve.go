// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cmdserver

import (
	"context"
	"errors"
	"io"
	"net"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/yeetrun/cmdserver/pkg/transport"
	"github.com/yeetrun/cmdserver/pkg/tui"
	"golang.org/x/sync/errgroup"
	"tailscale.com/util/set"
)

// Serve accepts connections on ln until ctx is done or ln is closed. Lines
// from one connection are executed in order; connections run concurrently.
//
// When ctx is done the listener is closed and idle connections are closed
// at once. A connection executing a line keeps it until the handler has
// replied and is closed afterwards; the handler sees ctx canceled. Serve
// returns nil once every connection is closed.
func (s *Server) Serve(ctx context.Context, ln transport.Listener) error {
	log := s.log.WithField("addr", ln.Addr().String())
	log.Debug("listening")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		<-ctx.Done()
		ln.Close()
		s.drainConns()
		return nil
	})
	g.Go(func() error {
		defer cancel()
		for {
			conn, err := ln.Accept()
			if err != nil {
				if errors.Is(err, net.ErrClosed) || ctx.Err() != nil {
					return nil
				}
				return err
			}
			g.Go(func() error {
				s.serveConn(ctx, conn)
				return nil
			})
		}
	})
	err := g.Wait()
	log.Debug("stopped listening")
	return err
}

func (s *Server) serveConn(ctx context.Context, conn transport.Conn) {
	defer conn.Close()
	c := newConnClient(conn)
	h, ok := s.addConn(c)
	if !ok {
		return
	}
	defer s.removeConn(h)

	log := s.log.WithFields(logrus.Fields{"client": c.id, "remote": conn.RemoteAddr()})
	log.Debug("client connected")
	defer log.Debug("client disconnecting")

	for {
		line, err := conn.ReadLine()
		if err != nil {
			switch {
			case errors.Is(err, io.EOF), c.closed.Load(), c.isDraining():
			case errors.Is(err, transport.ErrLineTooLong):
				log.Warn("line too long, closing connection")
			default:
				log.WithError(err).Debug("read failed")
			}
			return
		}
		if !c.begin() {
			return
		}
		err = s.Execute(ctx, line, c)
		more := c.end()
		if err != nil {
			if !errors.Is(err, ErrClientClosed) {
				log.WithError(err).Debug("write failed")
			}
			return
		}
		if !more || c.closed.Load() {
			return
		}
	}
}

// addConn tracks c. It reports false once the server is shutting down.
func (s *Server) addConn(c *connClient) (set.Handle, bool) {
	cs := &s.conns
	cs.mu.Lock()
	defer cs.mu.Unlock()
	if cs.stopping {
		return set.Handle{}, false
	}
	return cs.s.Add(c), true
}

func (s *Server) removeConn(h set.Handle) {
	cs := &s.conns
	cs.mu.Lock()
	defer cs.mu.Unlock()
	delete(cs.s, h)
}

// drainConns refuses new connections and drains the tracked ones.
func (s *Server) drainConns() {
	cs := &s.conns
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.stopping = true
	for _, c := range cs.s {
		c.drain()
	}
}

// Conns returns the number of open connections.
func (s *Server) Conns() int {
	cs := &s.conns
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return len(cs.s)
}

// REPL runs a local prompt on in and out until in ends, a handler closes the
// session or ctx is done. A non-empty first line is executed before the
// first prompt.
func (s *Server) REPL(ctx context.Context, in io.Reader, out io.Writer, first string) error {
	p, err := tui.NewPrompt(in, out, s.color.Dim(s.cfg.Name)+s.color.Green("> "))
	if err != nil {
		return err
	}
	defer p.Close()

	c := &promptClient{id: uuid.NewString(), p: p}
	log := s.log.WithField("client", c.id)
	log.Debug("starting repl")
	defer log.Debug("stopping repl")

	if first != "" {
		if err := s.Execute(ctx, first, c); err != nil && !errors.Is(err, ErrClientClosed) {
			return err
		}
	}
	for !c.closed.Load() && ctx.Err() == nil {
		line, err := p.ReadLine()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := s.Execute(ctx, line, c); err != nil && !errors.Is(err, ErrClientClosed) {
			return err
		}
	}
	return nil
}
