// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
)

// Listener accepts line-framed connections.
type Listener interface {
	// Accept waits for the next connection. It returns net.ErrClosed after
	// Close.
	Accept() (Conn, error)
	Close() error
	Addr() Addr
}

// Listen starts listening on a. A stale unix socket file left by a previous
// process is removed first.
func Listen(ctx context.Context, a Addr) (Listener, error) {
	switch a.Network {
	case WebSocket:
		l, err := listenWS(ctx, a)
		if err != nil {
			return nil, err
		}
		return l, nil
	case TCP, Unix:
	default:
		return nil, fmt.Errorf("unsupported network %q", a.Network)
	}
	if a.Network == Unix {
		if err := removeStaleSocket(a.Address); err != nil {
			return nil, err
		}
	}
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, string(a.Network), a.Address)
	if err != nil {
		return nil, err
	}
	addr := a
	if a.Network == TCP {
		addr.Address = ln.Addr().String()
	}
	return &netListener{ln: ln, addr: addr}, nil
}

func removeStaleSocket(path string) error {
	fi, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	if fi.Mode()&os.ModeSocket == 0 {
		return fmt.Errorf("%s exists and is not a socket", path)
	}
	// A live server still answers; only remove sockets nobody listens on.
	if c, err := net.Dial("unix", path); err == nil {
		c.Close()
		return fmt.Errorf("%s: address already in use", path)
	}
	return os.Remove(path)
}

type netListener struct {
	ln   net.Listener
	addr Addr
}

func (l *netListener) Accept() (Conn, error) {
	c, err := l.ln.Accept()
	if err != nil {
		return nil, err
	}
	return newNetConn(c), nil
}

func (l *netListener) Close() error {
	return l.ln.Close()
}

func (l *netListener) Addr() Addr {
	return l.addr
}

// Dial connects to a listener at a.
func Dial(ctx context.Context, a Addr) (Conn, error) {
	switch a.Network {
	case WebSocket:
		return dialWS(ctx, a)
	case TCP, Unix:
	default:
		return nil, fmt.Errorf("unsupported network %q", a.Network)
	}
	var d net.Dialer
	c, err := d.DialContext(ctx, string(a.Network), a.Address)
	if err != nil {
		return nil, err
	}
	return newNetConn(c), nil
}
