// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package client talks to a running command server over any transport.
package client

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/yeetrun/cmdserver/pkg/transport"
	"github.com/yeetrun/cmdserver/pkg/tui"
	"golang.org/x/sync/errgroup"
)

// ErrRefused matches an AttachError for an address nobody listens on.
var ErrRefused = errors.New("connection refused")

// AttachError is returned by Attach when the server cannot be reached.
type AttachError struct {
	Target string
	Err    error
}

func (e *AttachError) Error() string {
	if transport.IsRefused(e.Err) {
		return fmt.Sprintf("could not connect to %s [received ECONNREFUSED]", e.Target)
	}
	return fmt.Sprintf("could not connect to %s: %v", e.Target, e.Err)
}

func (e *AttachError) Is(target error) bool {
	return target == ErrRefused && transport.IsRefused(e.Err)
}

func (e *AttachError) Unwrap() error {
	return e.Err
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger for connection events.
func WithLogger(log *logrus.Logger) Option {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}

// WithColor enables colored prompts in Interactive.
func WithColor(enabled bool) Option {
	return func(c *Client) {
		c.color = tui.NewColorizer(enabled)
	}
}

// Client is a connection to a command server.
type Client struct {
	target string
	addr   transport.Addr
	conn   transport.Conn
	log    *logrus.Logger
	color  tui.Colorizer
}

// Attach connects to the server at target, which is parsed with
// transport.ParseAddr.
func Attach(ctx context.Context, target string, opts ...Option) (*Client, error) {
	c := &Client{target: target}
	for _, opt := range opts {
		opt(c)
	}
	if c.log == nil {
		c.log = logrus.New()
		c.log.SetOutput(io.Discard)
	}
	addr, err := transport.ParseAddr(target)
	if err != nil {
		return nil, &AttachError{Target: target, Err: err}
	}
	c.addr = addr
	c.log.WithField("network", addr.Network).Debugf("connecting to %s", addr)
	conn, err := transport.Dial(ctx, addr)
	if err != nil {
		return nil, &AttachError{Target: target, Err: err}
	}
	c.conn = conn
	return c, nil
}

// Addr returns the parsed server address.
func (c *Client) Addr() transport.Addr {
	return c.addr
}

// Send writes one command line.
func (c *Client) Send(line string) error {
	return c.conn.WriteLine(line)
}

// Close closes the connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// Exec sends line, stops writing and copies every response line to w until
// the server closes the connection.
func (c *Client) Exec(ctx context.Context, line string, w io.Writer) error {
	stop := context.AfterFunc(ctx, func() { c.conn.Close() })
	defer stop()

	if err := c.conn.WriteLine(line); err != nil {
		return err
	}
	if err := c.conn.CloseWrite(); err != nil {
		return err
	}
	for {
		resp, err := c.conn.ReadLine()
		if errors.Is(err, io.EOF) {
			return ctx.Err()
		}
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
		if _, err := fmt.Fprintln(w, resp); err != nil {
			return err
		}
	}
}

// Interactive forwards lines typed on in to the server and prints responses
// to out, prefixed with the server address. It returns when the server
// closes the connection, after in ends and the server has flushed its
// replies, or when ctx is done.
func (c *Client) Interactive(ctx context.Context, in io.Reader, out io.Writer) error {
	name := c.addr.String()
	p, err := tui.NewPrompt(in, out, c.color.Dim(name)+c.color.Green(" < "))
	if err != nil {
		return err
	}
	defer p.Close()

	// Reads from in cannot be interrupted, so the input side is not part of
	// the group.
	inputDone := make(chan error, 1)
	go func() { inputDone <- c.forward(p) }()

	prefix := c.color.Dim(name) + c.color.Magenta(" >")
	readDone := make(chan struct{})
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(readDone)
		for {
			line, err := c.conn.ReadLine()
			if errors.Is(err, io.EOF) {
				return nil
			}
			if err != nil {
				return err
			}
			if err := p.Write(prefix + " " + line); err != nil {
				return err
			}
		}
	})
	g.Go(func() error {
		select {
		case err := <-inputDone:
			if err != nil {
				c.conn.Close()
				return err
			}
			c.log.Debug("input closed")
			if err := c.conn.CloseWrite(); err != nil {
				c.conn.Close()
			}
			return nil
		case <-readDone:
			return nil
		case <-ctx.Done():
			c.conn.Close()
			return nil
		}
	})
	return g.Wait()
}

func (c *Client) forward(p *tui.Prompt) error {
	for {
		line, err := p.ReadLine()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if line == "" {
			continue
		}
		if err := c.conn.WriteLine(line); err != nil {
			return err
		}
	}
}
