// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package transport

import (
	"context"
	"errors"
	"io"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestParseAddr(t *testing.T) {
	tests := []struct {
		in   string
		want Addr
	}{
		{in: "8080", want: Addr{Network: TCP, Address: "localhost:8080"}},
		{in: " 9000 ", want: Addr{Network: TCP, Address: "localhost:9000"}},
		{in: "127.0.0.1:80", want: Addr{Network: TCP, Address: "127.0.0.1:80"}},
		{in: "[::1]:80", want: Addr{Network: TCP, Address: "[::1]:80"}},
		{in: "example.com:443", want: Addr{Network: TCP, Address: "example.com:443"}},
		{in: "ws://localhost:8080", want: Addr{Network: WebSocket, Address: "localhost:8080", Path: "/"}},
		{in: "ws://localhost:8080/cmd", want: Addr{Network: WebSocket, Address: "localhost:8080", Path: "/cmd"}},
		{in: "/tmp/stacks.sock", want: Addr{Network: Unix, Address: "/tmp/stacks.sock"}},
		{in: "stacks.sock", want: Addr{Network: Unix, Address: "stacks.sock"}},
		{in: "./a:1", want: Addr{Network: Unix, Address: "./a:1"}},
		{in: "host:http", want: Addr{Network: Unix, Address: "host:http"}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseAddr(tt.in)
			if err != nil {
				t.Fatalf("ParseAddr(%q): %v", tt.in, err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ParseAddr(%q) mismatch (-want +got):\n%s", tt.in, diff)
			}
		})
	}
}

func TestParseAddrErrors(t *testing.T) {
	if _, err := ParseAddr("  "); !errors.Is(err, ErrEmptyAddr) {
		t.Errorf("ParseAddr(blank) = %v, want ErrEmptyAddr", err)
	}
	if _, err := ParseAddr("ws://"); err == nil {
		t.Error("ParseAddr(ws://) succeeded, want missing host error")
	}
}

func TestAddrString(t *testing.T) {
	a := Addr{Network: WebSocket, Address: "localhost:1", Path: "/x"}
	if got := a.String(); got != "ws://localhost:1/x" {
		t.Errorf("String = %q", got)
	}
	u := Addr{Network: Unix, Address: "/tmp/s"}
	if got := u.String(); got != "/tmp/s" {
		t.Errorf("String = %q", got)
	}
}

// echoUpper serves one connection, answering each line with its upper-case
// form until the peer stops writing, then closes.
func echoUpper(t *testing.T, ln Listener) <-chan error {
	t.Helper()
	errc := make(chan error, 1)
	go func() {
		c, err := ln.Accept()
		if err != nil {
			errc <- err
			return
		}
		defer c.Close()
		for {
			line, err := c.ReadLine()
			if errors.Is(err, io.EOF) {
				errc <- nil
				return
			}
			if err != nil {
				errc <- err
				return
			}
			if err := c.WriteLine(strings.ToUpper(line)); err != nil {
				errc <- err
				return
			}
		}
	}()
	return errc
}

func testRoundTrip(t *testing.T, a Addr) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	ln, err := Listen(ctx, a)
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	defer ln.Close()
	errc := echoUpper(t, ln)

	c, err := Dial(ctx, ln.Addr())
	if err != nil {
		t.Fatalf("Dial(%v): %v", ln.Addr(), err)
	}
	defer c.Close()

	if err := c.WriteLine("pi"); err != nil {
		t.Fatal(err)
	}
	if err := c.WriteLine("add one\nadd two\n"); err != nil {
		t.Fatal(err)
	}
	if err := c.CloseWrite(); err != nil {
		t.Fatalf("CloseWrite: %v", err)
	}

	var got []string
	for {
		line, err := c.ReadLine()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatalf("ReadLine: %v", err)
		}
		got = append(got, line)
	}
	if diff := cmp.Diff([]string{"PI", "ADD ONE", "ADD TWO"}, got); diff != "" {
		t.Errorf("responses mismatch (-want +got):\n%s", diff)
	}
	if err := <-errc; err != nil {
		t.Fatalf("server: %v", err)
	}
}

func TestRoundTripTCP(t *testing.T) {
	testRoundTrip(t, Addr{Network: TCP, Address: "127.0.0.1:0"})
}

func TestRoundTripUnix(t *testing.T) {
	testRoundTrip(t, Addr{Network: Unix, Address: filepath.Join(t.TempDir(), "s.sock")})
}

func TestRoundTripWebSocket(t *testing.T) {
	testRoundTrip(t, Addr{Network: WebSocket, Address: "127.0.0.1:0", Path: "/cmd"})
}

func TestNetConnPartialLine(t *testing.T) {
	a, b := net.Pipe()
	defer a.Close()
	go func() {
		io.WriteString(b, "first\r\nlast")
		b.Close()
	}()
	c := newNetConn(a)
	for _, want := range []string{"first", "last"} {
		got, err := c.ReadLine()
		if err != nil {
			t.Fatalf("ReadLine: %v", err)
		}
		if got != want {
			t.Errorf("ReadLine = %q, want %q", got, want)
		}
	}
	if _, err := c.ReadLine(); !errors.Is(err, io.EOF) {
		t.Errorf("ReadLine at end = %v, want io.EOF", err)
	}
}

func TestNetConnLineLimit(t *testing.T) {
	a, b := net.Pipe()
	defer a.Close()
	go func() {
		defer b.Close()
		io.WriteString(b, strings.Repeat("a", MaxLineSize)+"\r\n")
		io.WriteString(b, strings.Repeat("b", MaxLineSize+1)+"\n")
	}()
	c := newNetConn(a)
	line, err := c.ReadLine()
	if err != nil {
		t.Fatalf("ReadLine at the limit: %v", err)
	}
	if len(line) != MaxLineSize {
		t.Errorf("len(line) = %d, want %d", len(line), MaxLineSize)
	}
	if _, err := c.ReadLine(); !errors.Is(err, ErrLineTooLong) {
		t.Errorf("ReadLine over the limit = %v, want ErrLineTooLong", err)
	}
}

func TestWebSocketMessageLimit(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	ln, err := Listen(ctx, Addr{Network: WebSocket, Address: "127.0.0.1:0", Path: "/"})
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()
	errc := make(chan error, 1)
	go func() {
		c, err := ln.Accept()
		if err != nil {
			errc <- err
			return
		}
		defer c.Close()
		_, err = c.ReadLine()
		errc <- err
	}()

	c, err := Dial(ctx, ln.Addr())
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()
	// The server may hang up before the whole frame is written.
	_ = c.WriteLine(strings.Repeat("a", MaxLineSize+1))
	select {
	case err := <-errc:
		if !errors.Is(err, ErrLineTooLong) {
			t.Errorf("server ReadLine = %v, want ErrLineTooLong", err)
		}
	case <-ctx.Done():
		t.Fatal("server did not reject the message")
	}
}

func TestDialRefused(t *testing.T) {
	ctx := context.Background()

	_, err := Dial(ctx, Addr{Network: Unix, Address: filepath.Join(t.TempDir(), "missing.sock")})
	if !IsRefused(err) {
		t.Errorf("Dial(missing unix) = %v, want refused", err)
	}

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	addr := ln.Addr().String()
	ln.Close()
	_, err = Dial(ctx, Addr{Network: TCP, Address: addr})
	if !IsRefused(err) {
		t.Errorf("Dial(closed tcp) = %v, want refused", err)
	}
	_, err = Dial(ctx, Addr{Network: WebSocket, Address: addr, Path: "/"})
	if !IsRefused(err) {
		t.Errorf("Dial(closed ws) = %v, want refused", err)
	}
}

func TestListenRemovesStaleSocket(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stale.sock")
	l, err := net.Listen("unix", path)
	if err != nil {
		t.Fatal(err)
	}
	l.(*net.UnixListener).SetUnlinkOnClose(false)
	l.Close()
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("stale socket missing: %v", err)
	}

	ln, err := Listen(context.Background(), Addr{Network: Unix, Address: path})
	if err != nil {
		t.Fatalf("Listen over stale socket: %v", err)
	}
	ln.Close()
}

func TestListenRefusesLiveSocket(t *testing.T) {
	path := filepath.Join(t.TempDir(), "live.sock")
	ctx := context.Background()
	ln, err := Listen(ctx, Addr{Network: Unix, Address: path})
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()
	if _, err := Listen(ctx, Addr{Network: Unix, Address: path}); err == nil {
		t.Fatal("second Listen on a live socket succeeded")
	}
}

func TestAcceptAfterClose(t *testing.T) {
	for _, a := range []Addr{
		{Network: TCP, Address: "127.0.0.1:0"},
		{Network: WebSocket, Address: "127.0.0.1:0", Path: "/"},
	} {
		ln, err := Listen(context.Background(), a)
		if err != nil {
			t.Fatal(err)
		}
		ln.Close()
		if _, err := ln.Accept(); !errors.Is(err, net.ErrClosed) {
			t.Errorf("%s: Accept after Close = %v, want net.ErrClosed", a.Network, err)
		}
	}
}
