// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cli

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/shayne/yargs"
	"github.com/yeetrun/cmdserver/pkg/route"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want Plan
	}{
		{name: "empty", args: nil, want: Plan{}},
		{name: "socket", args: []string{"/tmp/s.sock"}, want: Plan{Socket: "/tmp/s.sock"}},
		{
			name: "one shot",
			args: []string{"8080", "add", "carrot", "to=x", "vegetables"},
			want: Plan{Socket: "8080", Command: "add carrot to=x vegetables"},
		},
		{
			name: "flags first",
			args: []string{"--config", "x.toml", "--log-level", "debug", "--no-color", "8080", "pi"},
			want: Plan{
				Flags:   Flags{Config: "x.toml", LogLevel: "debug", NoColor: true},
				Socket:  "8080",
				Command: "pi",
			},
		},
		{
			name: "short config and equals",
			args: []string{"-c=x.toml", "8080"},
			want: Plan{Flags: Flags{Config: "x.toml"}, Socket: "8080"},
		},
		{
			name: "unknown flags after socket stay in command",
			args: []string{"8080", "launch", "app.js", "--watch"},
			want: Plan{Socket: "8080", Command: "launch app.js --watch"},
		},
		{
			name: "double dash protects command flags",
			args: []string{"--no-color", "8080", "--", "launch", "-c", "x"},
			want: Plan{Flags: Flags{NoColor: true}, Socket: "8080", Command: "launch -c x"},
		},
		{
			name: "socket flag",
			args: []string{"-S", "/tmp/s.sock", "new", "meats"},
			want: Plan{Flags: Flags{Socket: "/tmp/s.sock"}, Socket: "/tmp/s.sock", Command: "new meats"},
		},
		{
			name: "double dash first",
			args: []string{"--", "-weird.sock"},
			want: Plan{Socket: "-weird.sock"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.args)
			if err != nil {
				t.Fatalf("Parse(%q): %v", tt.args, err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Parse(%q) = %+v, want %+v", tt.args, got, tt.want)
			}
		})
	}
}

func TestParseHelp(t *testing.T) {
	for _, args := range [][]string{{"-h"}, {"--help"}, {"--no-color", "--help", "8080"}} {
		if _, err := Parse(args); !errors.Is(err, yargs.ErrHelp) {
			t.Errorf("Parse(%q) error = %v, want ErrHelp", args, err)
		}
	}
	plan, err := Parse([]string{"8080", "help"})
	if err != nil {
		t.Fatal(err)
	}
	if plan.Command != "help" {
		t.Errorf("Command = %q, want help", plan.Command)
	}
}

func TestParseUnknownFlag(t *testing.T) {
	_, err := Parse([]string{"--bogus", "8080"})
	var flagErr *yargs.InvalidFlagError
	if !errors.As(err, &flagErr) {
		t.Fatalf("error = %v, want InvalidFlagError", err)
	}
	if flagErr.Flag != "--bogus" {
		t.Errorf("Flag = %q, want --bogus", flagErr.Flag)
	}
}

func TestUsage(t *testing.T) {
	tbl := route.NewTable()
	tbl.MustRegister("pi").Describe("print pi")
	tbl.MustRegister("bye").Describe("disconnect").Alias("later")
	tbl.MustRegister("launch <filename> [name]").Describe("launch a file")

	got := Usage("stacks", "a stack of things", tbl)
	for _, want := range []string{
		"stacks - a stack of things",
		"pi",
		"print pi",
		"disconnect",
		"later",
		"--config",
		"--no-color",
		"stacks 8080 help",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("Usage missing %q:\n%s", want, got)
		}
	}
}
