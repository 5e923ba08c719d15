// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package config

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/sirupsen/logrus"
	"github.com/yeetrun/cmdserver/pkg/cli"
)

func writeFile(t *testing.T, path, data string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("MkdirAll error: %v", err)
	}
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("WriteFile error: %v", err)
	}
}

func TestLoadFromDirDefaults(t *testing.T) {
	cfg, err := LoadFromDir("stacks", t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(Default("stacks"), cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadFromDirSearchesParents(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, FileName)
	writeFile(t, path, `
name = "meats"
socket = "/tmp/meats.sock"
color = false
log_level = "debug"
allow_missing_args = true
`)
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromDir("stacks", nested)
	if err != nil {
		t.Fatal(err)
	}
	want := &Config{
		Name:             "meats",
		Socket:           "/tmp/meats.sock",
		Color:            false,
		LogLevel:         "debug",
		AllowMissingArgs: true,
		Path:             path,
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadKeepsDefaultsForMissingKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.toml")
	writeFile(t, path, `socket = "8080"`)
	cfg, err := Load("stacks", path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Name != "stacks" || !cfg.Color || cfg.LogLevel != "info" || cfg.Socket != "8080" {
		t.Errorf("config = %+v, want defaults with socket 8080", cfg)
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.toml")
	writeFile(t, bad, `name = `)
	if _, err := Load("x", bad); err == nil {
		t.Error("Load(bad toml) succeeded")
	}

	unknown := filepath.Join(dir, "unknown.toml")
	writeFile(t, unknown, "sokcet = \"8080\"\n")
	_, err := Load("x", unknown)
	if err == nil || !strings.Contains(err.Error(), "sokcet") {
		t.Errorf("Load(unknown key) = %v, want error naming the key", err)
	}

	if _, err := Load("x", filepath.Join(dir, "missing.toml")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Load(missing) = %v, want os.ErrNotExist", err)
	}
}

func TestApplyEnvAndFlags(t *testing.T) {
	env := map[string]string{
		"CMDSERVER_SOCKET":    "ws://localhost:9000/",
		"CMDSERVER_LOG_LEVEL": "warn",
	}
	cfg := Default("stacks")
	cfg.ApplyEnv(func(k string) string { return env[k] })
	if cfg.Socket != "ws://localhost:9000/" || cfg.LogLevel != "warn" || !cfg.Color {
		t.Fatalf("after env: %+v", cfg)
	}

	env["NO_COLOR"] = "1"
	cfg.ApplyEnv(func(k string) string { return env[k] })
	if cfg.Color {
		t.Fatal("NO_COLOR did not disable color")
	}

	plan := cli.Plan{Flags: cli.Flags{LogLevel: "debug"}}
	cfg.ApplyFlags(&plan)
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", cfg.LogLevel)
	}
	if plan.Socket != "ws://localhost:9000/" {
		t.Errorf("plan.Socket = %q, want config socket", plan.Socket)
	}

	plan = cli.Plan{Socket: "8080", Flags: cli.Flags{NoColor: true}}
	cfg = Default("stacks")
	cfg.Socket = "/tmp/other.sock"
	cfg.ApplyFlags(&plan)
	if plan.Socket != "8080" || cfg.Color {
		t.Errorf("plan.Socket = %q, Color = %v; want 8080, false", plan.Socket, cfg.Color)
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	cfg := Default("stacks")
	cfg.LogLevel = "debug"
	log := cfg.NewLogger(&buf)
	if log.GetLevel() != logrus.DebugLevel {
		t.Errorf("level = %v, want debug", log.GetLevel())
	}
	log.WithField("client", "c1").Debug("client connected")
	if !strings.Contains(buf.String(), "client=c1") {
		t.Errorf("log output = %q, want client field", buf.String())
	}

	buf.Reset()
	cfg.LogLevel = "loud"
	log = cfg.NewLogger(&buf)
	if log.GetLevel() != logrus.InfoLevel {
		t.Errorf("level = %v, want info fallback", log.GetLevel())
	}
	if !strings.Contains(buf.String(), "invalid log level loud") {
		t.Errorf("log output = %q, want warning", buf.String())
	}
}
