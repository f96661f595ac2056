// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 The Railscope Authors
//
// Railscope - Corsair PSU Telemetry Monitor
//
// A CLI tool for reading telemetry from Corsair RMi and HXi series power
// supplies over their USB HID register protocol.

package main

import (
	"os"

	"github.com/railscope/railscope/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
