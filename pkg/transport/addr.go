// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package transport carries newline-framed text over tcp, unix sockets and
// websockets.
package transport

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
)

// Network is the kind of socket an Addr refers to.
type Network string

const (
	TCP       Network = "tcp"
	Unix      Network = "unix"
	WebSocket Network = "ws"
)

// ErrEmptyAddr is returned by ParseAddr for an empty address.
var ErrEmptyAddr = errors.New("empty socket address")

// Addr is a parsed socket address.
type Addr struct {
	Network Network
	// Address is host:port for TCP and WebSocket, a filesystem path for Unix.
	Address string
	// Path is the HTTP path of a WebSocket endpoint.
	Path string
}

// ParseAddr parses a socket address:
//
//	ws://host:port[/path]  websocket
//	host:port              tcp
//	8080                   tcp on localhost
//	anything else          unix socket path
func ParseAddr(s string) (Addr, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Addr{}, ErrEmptyAddr
	}
	if strings.HasPrefix(s, "ws://") {
		u, err := url.Parse(s)
		if err != nil {
			return Addr{}, fmt.Errorf("invalid websocket address %q: %w", s, err)
		}
		if u.Host == "" {
			return Addr{}, fmt.Errorf("invalid websocket address %q: missing host", s)
		}
		path := u.Path
		if path == "" {
			path = "/"
		}
		return Addr{Network: WebSocket, Address: u.Host, Path: path}, nil
	}
	if isDigits(s) {
		return Addr{Network: TCP, Address: net.JoinHostPort("localhost", s)}, nil
	}
	if !strings.ContainsRune(s, '/') {
		if _, port, err := net.SplitHostPort(s); err == nil && isDigits(port) {
			return Addr{Network: TCP, Address: s}, nil
		}
	}
	return Addr{Network: Unix, Address: s}, nil
}

func (a Addr) String() string {
	if a.Network == WebSocket {
		return "ws://" + a.Address + a.Path
	}
	return a.Address
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
