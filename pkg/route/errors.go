// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package route

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors. Match returns the typed errors below, which report
// themselves as one of these through errors.Is.
var (
	// ErrHelp is returned by Match for lines starting with the word "help".
	ErrHelp = errors.New("help requested")
	// ErrUnknown means no registered name matches the line.
	ErrUnknown = errors.New("unknown command")
	// ErrAmbiguous means more than one registered name matches the line.
	ErrAmbiguous = errors.New("ambiguous command")
	// ErrMissingArgument means a required param had no token to bind.
	ErrMissingArgument = errors.New("missing required argument")

	ErrBadRoute  = errors.New("invalid route")
	ErrBadOption = errors.New("invalid option flags")
	ErrNoCommand = errors.New("no command registered")
)

// HelpRequest is returned by Match when the line asks for help. Text holds
// the rendered help for Topic.
type HelpRequest struct {
	Topic string
	Text  string
}

func (h *HelpRequest) Error() string {
	if h.Topic == "" {
		return "help requested"
	}
	return fmt.Sprintf("help requested for %q", h.Topic)
}

func (h *HelpRequest) Is(target error) bool {
	return target == ErrHelp
}

// MatchKind classifies a failed match.
type MatchKind int

const (
	Unknown MatchKind = iota
	Ambiguous
)

// MatchError reports a line that did not resolve to exactly one command.
// It is informational: callers report it back to the client.
type MatchError struct {
	Kind  MatchKind
	Input string
	// Candidates lists the matching names for Ambiguous errors.
	Candidates []string
}

func (e *MatchError) Error() string {
	if e.Kind == Ambiguous {
		return fmt.Sprintf("ambiguous command %q: matches %s", e.Input, strings.Join(e.Candidates, ", "))
	}
	return fmt.Sprintf("unknown command %q", e.Input)
}

func (e *MatchError) Is(target error) bool {
	switch e.Kind {
	case Unknown:
		return target == ErrUnknown
	case Ambiguous:
		return target == ErrAmbiguous
	}
	return false
}

// MissingArgumentError is returned when a required param has no token.
type MissingArgumentError struct {
	Command string
	Param   Param
}

func (e *MissingArgumentError) Error() string {
	return fmt.Sprintf("missing required argument %s for %s", e.Param, e.Command)
}

func (e *MissingArgumentError) Is(target error) bool {
	return target == ErrMissingArgument
}

// OptionValueError is returned when an option's Coerce function rejects an
// explicitly supplied value.
type OptionValueError struct {
	Command string
	Option  string
	Value   any
	Err     error
}

func (e *OptionValueError) Error() string {
	if e.Command != "" {
		return fmt.Sprintf("%s: invalid value %v for option %s: %v", e.Command, e.Value, e.Option, e.Err)
	}
	return fmt.Sprintf("invalid value %v for option %s: %v", e.Value, e.Option, e.Err)
}

func (e *OptionValueError) Unwrap() error {
	return e.Err
}
