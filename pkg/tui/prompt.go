// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tui

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sync"

	"golang.org/x/term"
)

var isTerminalFn = term.IsTerminal

// Prompt reads lines from a user. When in is a terminal it puts the terminal
// in raw mode and edits lines with golang.org/x/term; otherwise it prints the
// prompt and scans lines.
//
// Write may be called while another goroutine is blocked in ReadLine.
type Prompt struct {
	out    io.Writer
	prompt string

	term    *term.Terminal
	restore func() error

	mu sync.Mutex // guards out and prompt in line mode
	sc *bufio.Scanner
}

// NewPrompt returns a Prompt reading from in and writing to out. Close must
// be called to restore the terminal state.
func NewPrompt(in io.Reader, out io.Writer, prompt string) (*Prompt, error) {
	p := &Prompt{out: out, prompt: prompt}
	if f, ok := in.(*os.File); ok && isTerminalFn(int(f.Fd())) {
		fd := int(f.Fd())
		state, err := term.MakeRaw(fd)
		if err != nil {
			return nil, fmt.Errorf("failed to set raw mode: %w", err)
		}
		p.restore = func() error { return term.Restore(fd, state) }
		p.term = term.NewTerminal(struct {
			io.Reader
			io.Writer
		}{in, out}, prompt)
		return p, nil
	}
	p.sc = bufio.NewScanner(in)
	return p, nil
}

// ReadLine prompts for and returns the next line without its terminator. It
// returns io.EOF when input ends.
func (p *Prompt) ReadLine() (string, error) {
	if p.term != nil {
		return p.term.ReadLine()
	}
	p.mu.Lock()
	_, err := io.WriteString(p.out, p.prompt)
	p.mu.Unlock()
	if err != nil {
		return "", err
	}
	if !p.sc.Scan() {
		if err := p.sc.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return p.sc.Text(), nil
}

// Write prints s followed by a newline.
func (p *Prompt) Write(s string) error {
	if p.term != nil {
		_, err := p.term.Write([]byte(s + "\n"))
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	_, err := fmt.Fprintln(p.out, s)
	return err
}

// SetPrompt changes the prompt shown by subsequent reads.
func (p *Prompt) SetPrompt(prompt string) {
	if p.term != nil {
		p.term.SetPrompt(prompt)
		return
	}
	p.mu.Lock()
	p.prompt = prompt
	p.mu.Unlock()
}

// Close restores the terminal if NewPrompt changed its mode.
func (p *Prompt) Close() error {
	if p.restore == nil {
		return nil
	}
	restore := p.restore
	p.restore = nil
	return restore()
}
