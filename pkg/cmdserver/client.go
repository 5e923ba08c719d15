// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cmdserver

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/yeetrun/cmdserver/pkg/dump"
	"github.com/yeetrun/cmdserver/pkg/transport"
	"github.com/yeetrun/cmdserver/pkg/tui"
)

// ErrClientClosed is returned by Send after the client was closed.
var ErrClientClosed = errors.New("client closed")

// Client is the party a command line came from.
type Client interface {
	// ID identifies the client in logs.
	ID() string
	// Send renders a with dump.Sprint and delivers it as one response.
	Send(a ...any) error
	// Close ends the session once the current command returns.
	Close() error
}

// connClient is a client connected through a transport.
type connClient struct {
	id     string
	conn   transport.Conn
	closed atomic.Bool

	mu       sync.Mutex // guards busy and draining
	busy     bool
	draining bool
}

func newConnClient(conn transport.Conn) *connClient {
	return &connClient{id: uuid.NewString(), conn: conn}
}

func (c *connClient) ID() string { return c.id }

func (c *connClient) Send(a ...any) error {
	if c.closed.Load() {
		return ErrClientClosed
	}
	return c.conn.WriteLine(dump.Sprint(a...))
}

func (c *connClient) Close() error {
	if c.closed.Swap(true) {
		return nil
	}
	return c.conn.Close()
}

// begin marks a line as executing. It reports false once the server has
// started shutting down.
func (c *connClient) begin() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.draining {
		return false
	}
	c.busy = true
	return true
}

// end marks the executing line done and reports whether another line may
// be read.
func (c *connClient) end() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.busy = false
	return !c.draining
}

// drain closes the connection if it is idle. A busy connection is closed by
// its reader after the executing line has replied.
func (c *connClient) drain() {
	c.mu.Lock()
	c.draining = true
	busy := c.busy
	c.mu.Unlock()
	if !busy {
		c.conn.Close()
	}
}

func (c *connClient) isDraining() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draining
}

// WriterClient is a Client that writes responses to an io.Writer, one per
// line. It is used for local sessions and tests.
type WriterClient struct {
	id     string
	mu     sync.Mutex
	w      io.Writer
	closed bool
}

// NewWriterClient returns a WriterClient writing to w.
func NewWriterClient(w io.Writer) *WriterClient {
	return &WriterClient{id: uuid.NewString(), w: w}
}

func (c *WriterClient) ID() string { return c.id }

func (c *WriterClient) Send(a ...any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClientClosed
	}
	_, err := fmt.Fprintln(c.w, strings.TrimRight(dump.Sprint(a...), "\n"))
	return err
}

func (c *WriterClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

// Closed reports whether Close was called.
func (c *WriterClient) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// promptClient answers on the local prompt.
type promptClient struct {
	id     string
	p      *tui.Prompt
	closed atomic.Bool
}

func (c *promptClient) ID() string { return c.id }

func (c *promptClient) Send(a ...any) error {
	if c.closed.Load() {
		return ErrClientClosed
	}
	return c.p.Write(strings.TrimRight(dump.Sprint(a...), "\n"))
}

func (c *promptClient) Close() error {
	c.closed.Store(true)
	return nil
}
