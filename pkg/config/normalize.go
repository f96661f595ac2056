// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 The Railscope Authors

package config

import (
	"os"
	"path/filepath"
	"strings"
)

// Normalize applies post-validation normalization.
// It is allowed to mutate configuration.
// It MUST be called only after Validate().
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	// Default poll interval: 1 second.
	if cfg.Watch.IntervalMs == 0 {
		cfg.Watch.IntervalMs = 1000
	}

	// YAML is not a shell, so "~/" in the archive path is expanded here.
	if strings.HasPrefix(cfg.History.Path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			cfg.History.Path = filepath.Join(home, cfg.History.Path[2:])
		}
	}
}
