// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package config loads cmdserver.toml and merges environment and flag
// overrides into it.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/sirupsen/logrus"
	"github.com/yeetrun/cmdserver/pkg/cli"
)

// FileName is the config file looked up from the working directory upward.
const FileName = "cmdserver.toml"

const (
	envSocket   = "CMDSERVER_SOCKET"
	envLogLevel = "CMDSERVER_LOG_LEVEL"
	envNoColor  = "NO_COLOR"
)

// Config is the host configuration.
type Config struct {
	// Name is shown in the prompt.
	Name     string `toml:"name,omitempty"`
	Socket   string `toml:"socket,omitempty"`
	Color    bool   `toml:"color"`
	LogLevel string `toml:"log_level,omitempty"`
	// AllowMissingArgs lets commands run with unbound required params.
	AllowMissingArgs bool `toml:"allow_missing_args,omitempty"`

	// Path is the file the config was read from, if any.
	Path string `toml:"-"`
}

// Default returns the configuration used when no file is found.
func Default(name string) *Config {
	return &Config{
		Name:     name,
		Color:    true,
		LogLevel: "info",
	}
}

// Load reads the config at path. With an empty path it searches for
// FileName from the working directory upward and returns defaults when
// none exists.
func Load(name, path string) (*Config, error) {
	if path == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		return LoadFromDir(name, cwd)
	}
	return loadFile(name, path)
}

// LoadFromDir is like Load with no path, searching upward from dir.
func LoadFromDir(name, dir string) (*Config, error) {
	path, err := FindPath(dir)
	if errors.Is(err, os.ErrNotExist) {
		return Default(name), nil
	}
	if err != nil {
		return nil, err
	}
	return loadFile(name, path)
}

func loadFile(name, path string) (*Config, error) {
	cfg := Default(name)
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	cfg.Path = path
	return cfg, nil
}

// FindPath returns the nearest FileName in startDir or one of its parents,
// or an error matching os.ErrNotExist.
func FindPath(startDir string) (string, error) {
	dir := filepath.Clean(startDir)
	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		} else if !os.IsNotExist(err) {
			return "", err
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", os.ErrNotExist
}

// ApplyEnv overrides fields from environment variables looked up with
// getenv.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := strings.TrimSpace(getenv(envSocket)); v != "" {
		c.Socket = v
	}
	if v := strings.TrimSpace(getenv(envLogLevel)); v != "" {
		c.LogLevel = v
	}
	if getenv(envNoColor) != "" {
		c.Color = false
	}
}

// ApplyFlags overrides fields from process flags and fills in the socket
// when the plan names none.
func (c *Config) ApplyFlags(plan *cli.Plan) {
	if plan.Flags.LogLevel != "" {
		c.LogLevel = plan.Flags.LogLevel
	}
	if plan.Flags.NoColor {
		c.Color = false
	}
	if plan.Socket == "" {
		plan.Socket = c.Socket
	}
}

// NewLogger returns a logger writing to w at the configured level. An
// invalid level falls back to info with a warning.
func (c *Config) NewLogger(w io.Writer) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(w)
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if level, err := logrus.ParseLevel(c.LogLevel); err == nil {
		log.SetLevel(level)
	} else {
		log.Warnf("invalid log level %s, defaulting to info", c.LogLevel)
	}
	return log
}
