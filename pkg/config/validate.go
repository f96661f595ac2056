// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 The Railscope Authors

package config

import (
	"fmt"
	"strings"
)

// Validate checks configuration correctness.
// It performs declarative validation only.
// It MUST NOT mutate configuration.
func Validate(cfg *Config) error {
	c := cfg.Connection

	if c.URL != "" {
		if !strings.HasPrefix(c.URL, "ws://") && !strings.HasPrefix(c.URL, "wss://") {
			return fmt.Errorf(
				"connection: url must use a ws:// or wss:// scheme, got %q",
				c.URL,
			)
		}
	}

	// Basic auth encodes "user:pass", so a colon in the username would
	// corrupt the credential string.
	if strings.Contains(c.Username, ":") {
		return fmt.Errorf("connection: username must not contain ':'")
	}
	for i := 0; i < len(c.Username); i++ {
		if c.Username[i] > 0x7F {
			return fmt.Errorf("connection: username must contain ASCII characters only")
		}
	}

	if cfg.Watch.IntervalMs < 0 {
		return fmt.Errorf("watch: interval_ms must not be negative, got %d", cfg.Watch.IntervalMs)
	}
	if cfg.Watch.IntervalMs > 0 && cfg.Watch.IntervalMs < 100 {
		return fmt.Errorf(
			"watch: interval_ms must be at least 100, got %d",
			cfg.Watch.IntervalMs,
		)
	}

	return nil
}
