// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package transport

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"net"
	"strings"
	"sync"
	"syscall"
)

// MaxLineSize is the largest line, or websocket message, a Conn accepts.
const MaxLineSize = 1 << 20

// ErrLineTooLong is returned by ReadLine when the peer sends more than
// MaxLineSize bytes without ending the line.
var ErrLineTooLong = errors.New("line too long")

// Conn is a bidirectional stream of text lines.
type Conn interface {
	// ReadLine returns the next line without its terminator, or io.EOF
	// once the peer has finished writing.
	ReadLine() (string, error)
	// WriteLine writes s as one frame. Embedded newlines split it into
	// several lines on the receiving side.
	WriteLine(s string) error
	// CloseWrite tells the peer no more lines will be written while still
	// allowing reads.
	CloseWrite() error
	Close() error
	RemoteAddr() string
}

type netConn struct {
	c net.Conn
	r *bufio.Reader

	wmu sync.Mutex
}

func newNetConn(c net.Conn) *netConn {
	return &netConn{c: c, r: bufio.NewReader(c)}
}

func (n *netConn) ReadLine() (string, error) {
	var buf []byte
	for {
		chunk, err := n.r.ReadSlice('\n')
		buf = append(buf, chunk...)
		if len(buf) > MaxLineSize && len(bytes.TrimRight(buf, "\r\n")) > MaxLineSize {
			return "", ErrLineTooLong
		}
		switch {
		case err == nil:
			return strings.TrimRight(string(buf), "\r\n"), nil
		case errors.Is(err, bufio.ErrBufferFull):
			continue
		case errors.Is(err, io.EOF) && len(buf) > 0:
			return strings.TrimRight(string(buf), "\r"), nil
		case errors.Is(err, net.ErrClosed):
			return "", io.EOF
		default:
			return "", err
		}
	}
}

func (n *netConn) WriteLine(s string) error {
	n.wmu.Lock()
	defer n.wmu.Unlock()
	_, err := io.WriteString(n.c, strings.TrimRight(s, "\n")+"\n")
	return err
}

func (n *netConn) CloseWrite() error {
	if cw, ok := n.c.(interface{ CloseWrite() error }); ok {
		return cw.CloseWrite()
	}
	return n.c.Close()
}

func (n *netConn) Close() error {
	return n.c.Close()
}

func (n *netConn) RemoteAddr() string {
	if a := n.c.RemoteAddr(); a != nil && a.String() != "" {
		return a.String()
	}
	return n.c.LocalAddr().String()
}

// IsRefused reports whether err means nothing is listening at the address:
// a refused tcp connection or a missing unix socket.
func IsRefused(err error) bool {
	return errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ENOENT)
}
