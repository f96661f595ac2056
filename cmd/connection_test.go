// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 The Railscope Authors

package cmd

import (
	"strings"
	"testing"
)

// ============================================================
// WebSocket URL Validation Tests
// ============================================================

func TestOpenWebSocketConnection_RejectsBadSchemes(t *testing.T) {
	cases := []struct {
		name string
		url  string
	}{
		{"http", "http://psu.example.org/bridge"},
		{"https", "https://psu.example.org/bridge"},
		{"ftp", "ftp://psu.example.org"},
		{"bare host", "psu.example.org"},
		{"garbage", "://nope"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := OpenWebSocketConnection(tc.url, "", "", false)
			if err == nil {
				t.Fatalf("expected %q to be rejected before dialing", tc.url)
			}
		})
	}
}

func TestOpenWebSocketConnection_SchemeErrorNamesScheme(t *testing.T) {
	_, err := OpenWebSocketConnection("http://psu.example.org", "", "", false)
	if err == nil {
		t.Fatal("expected error for http scheme")
	}
	if !strings.Contains(err.Error(), "http") {
		t.Errorf("expected error to name the offending scheme, got %q", err.Error())
	}
}
