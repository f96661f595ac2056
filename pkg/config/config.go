// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 The Railscope Authors

// Package config loads the optional railscope configuration file. Values
// from the file act as defaults; command line flags always win.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Connection ConnectionConfig `yaml:"connection"`
	Watch      WatchConfig      `yaml:"watch"`
	History    HistoryConfig    `yaml:"history"`
}

// ---- CONNECTION ----

type ConnectionConfig struct {
	Device      string `yaml:"device"`
	URL         string `yaml:"url"`
	Username    string `yaml:"username"`
	NoSSLVerify bool   `yaml:"no_ssl_verify"`
}

// ---- WATCH ----

type WatchConfig struct {
	IntervalMs int `yaml:"interval_ms"`
}

// ---- HISTORY ----

type HistoryConfig struct {
	Path string `yaml:"path"`
}

// DefaultPath returns the conventional config file location, or "" when
// the user config directory cannot be determined.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "railscope", "config.yaml")
}

// Load reads a YAML configuration file. With an empty path the default
// location is tried and a missing file yields an empty config; a path
// requested explicitly must exist.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}

	cfg := &Config{}
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	return cfg, nil
}
