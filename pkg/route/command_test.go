// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package route

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseRoute(t *testing.T) {
	tests := []struct {
		route      string
		wantName   string
		wantParams []Param
	}{
		{route: "pi", wantName: "pi"},
		{route: "new <stack>", wantName: "new", wantParams: []Param{{Name: "stack", Required: true}}},
		{route: "list [stack]", wantName: "list", wantParams: []Param{{Name: "stack"}}},
		{
			route:    "launch <filename> [name]",
			wantName: "launch",
			wantParams: []Param{
				{Name: "filename", Required: true},
				{Name: "name"},
			},
		},
		{route: "  stack   add  <thing> ", wantName: "stack add", wantParams: []Param{{Name: "thing", Required: true}}},
	}
	for _, tt := range tests {
		t.Run(tt.route, func(t *testing.T) {
			c, err := ParseRoute(tt.route)
			if err != nil {
				t.Fatalf("ParseRoute: %v", err)
			}
			if c.Name != tt.wantName {
				t.Errorf("Name = %q, want %q", c.Name, tt.wantName)
			}
			if diff := cmp.Diff(tt.wantParams, c.Params); diff != "" {
				t.Errorf("Params mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseRouteErrors(t *testing.T) {
	for _, route := range []string{"", "<x>", "[x]", "launch <file> extra", "launch <>", "launch <file"} {
		if _, err := ParseRoute(route); !errors.Is(err, ErrBadRoute) {
			t.Errorf("ParseRoute(%q) error = %v, want ErrBadRoute", route, err)
		}
	}
}

func TestCommandOptionPanics(t *testing.T) {
	c, err := ParseRoute("launch")
	if err != nil {
		t.Fatal(err)
	}
	defer func() {
		if recover() == nil {
			t.Fatal("Option with bad flags did not panic")
		}
	}()
	c.Option("<bad>", "")
}

func TestCommandAliasUnregisteredPanics(t *testing.T) {
	c, err := ParseRoute("bye")
	if err != nil {
		t.Fatal(err)
	}
	defer func() {
		if recover() == nil {
			t.Fatal("Alias on unregistered command did not panic")
		}
	}()
	c.Alias("later")
}

func TestLookupOption(t *testing.T) {
	c, err := ParseRoute("launch <filename>")
	if err != nil {
		t.Fatal(err)
	}
	c.Option("-p, --port [n]", "").Option("--no-restart", "")
	for _, name := range []string{"port", "-p", "--port"} {
		o, ok := c.LookupOption(name)
		if !ok || o.Long != "--port" {
			t.Errorf("LookupOption(%q) = %v, %v; want --port", name, o, ok)
		}
	}
	if o, ok := c.LookupOption("restart"); !ok || o.Long != "--no-restart" {
		t.Errorf("LookupOption(restart) = %v, %v; want --no-restart", o, ok)
	}
	if _, ok := c.LookupOption("watch"); ok {
		t.Error("LookupOption(watch) found an undeclared option")
	}
}
