// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package transport

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const closeTimeout = 5 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  16 * 1024,
	WriteBufferSize: 16 * 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

func newWSConn(c *websocket.Conn) *wsConn {
	c.SetReadLimit(MaxLineSize)
	return &wsConn{c: c}
}

// wsConn carries one or more lines per text message.
type wsConn struct {
	c       *websocket.Conn
	pending []string

	wmu sync.Mutex
}

func (w *wsConn) ReadLine() (string, error) {
	for len(w.pending) == 0 {
		mt, data, err := w.c.ReadMessage()
		if err != nil {
			if errors.Is(err, websocket.ErrReadLimit) {
				return "", ErrLineTooLong
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway,
				websocket.CloseNoStatusReceived, websocket.CloseAbnormalClosure) ||
				errors.Is(err, net.ErrClosed) {
				return "", io.EOF
			}
			return "", err
		}
		if mt != websocket.TextMessage && mt != websocket.BinaryMessage {
			continue
		}
		text := strings.TrimRight(string(data), "\r\n")
		w.pending = strings.Split(text, "\n")
	}
	line := strings.TrimRight(w.pending[0], "\r")
	w.pending = w.pending[1:]
	return line, nil
}

func (w *wsConn) WriteLine(s string) error {
	w.wmu.Lock()
	defer w.wmu.Unlock()
	return w.c.WriteMessage(websocket.TextMessage, []byte(strings.TrimRight(s, "\n")))
}

// CloseWrite sends a close frame. The peer echoes it after flushing its
// own writes, which ends reading on this side.
func (w *wsConn) CloseWrite() error {
	w.wmu.Lock()
	defer w.wmu.Unlock()
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	err := w.c.WriteControl(websocket.CloseMessage, msg, time.Now().Add(closeTimeout))
	if errors.Is(err, websocket.ErrCloseSent) {
		return nil
	}
	return err
}

// Close sends a close frame if none was sent yet and closes the connection.
func (w *wsConn) Close() error {
	w.wmu.Lock()
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = w.c.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
	w.wmu.Unlock()
	return w.c.Close()
}

func (w *wsConn) RemoteAddr() string {
	return w.c.RemoteAddr().String()
}

// wsListener accepts websocket upgrades on a single HTTP path.
type wsListener struct {
	addr  Addr
	srv   *http.Server
	conns chan *wsConn

	closeOnce sync.Once
	done      chan struct{}
}

func listenWS(ctx context.Context, a Addr) (*wsListener, error) {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", a.Address)
	if err != nil {
		return nil, err
	}
	l := &wsListener{
		addr:  Addr{Network: WebSocket, Address: ln.Addr().String(), Path: a.Path},
		conns: make(chan *wsConn),
		done:  make(chan struct{}),
	}
	mux := http.NewServeMux()
	mux.HandleFunc(a.Path, l.handleUpgrade)
	l.srv = &http.Server{Handler: mux}
	go l.srv.Serve(ln)
	return l, nil
}

func (l *wsListener) handleUpgrade(w http.ResponseWriter, r *http.Request) {
	c, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	select {
	case l.conns <- newWSConn(c):
	case <-l.done:
		_ = c.Close()
	}
}

func (l *wsListener) Accept() (Conn, error) {
	select {
	case c := <-l.conns:
		return c, nil
	case <-l.done:
		return nil, net.ErrClosed
	}
}

func (l *wsListener) Close() error {
	var err error
	l.closeOnce.Do(func() {
		close(l.done)
		err = l.srv.Close()
	})
	return err
}

func (l *wsListener) Addr() Addr {
	return l.addr
}

func dialWS(ctx context.Context, a Addr) (Conn, error) {
	c, _, err := websocket.DefaultDialer.DialContext(ctx, a.String(), nil)
	if err != nil {
		return nil, err
	}
	return newWSConn(c), nil
}
