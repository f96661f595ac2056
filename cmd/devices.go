// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 The Railscope Authors

package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List supported power supplies on the HID bus",
	Long: `Scan the HID bus for Corsair RMi and HXi series power supplies.

Each supported unit is listed with its device path, model and serial number.
The device node is opened briefly to verify access: hidraw nodes are
root-only by default, so a udev rule is usually needed to run unprivileged.

Corsair devices that are not on the supported model list (keyboards, coolers,
older supplies) are reported separately and never opened.

Exit codes:
  0 - At least one supported supply found
  1 - No supported supplies found
  2 - HID enumeration error`,
	RunE: runDevices,
}

func init() {
	rootCmd.AddCommand(devicesCmd)
}

func runDevices(cmd *cobra.Command, args []string) error {
	supported, other, err := EnumerateSupplies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Enumeration error: %v\n", err)
		os.Exit(2)
	}

	fmt.Printf("Railscope - Device Scan\n\n")

	for _, s := range supported {
		fmt.Printf("Device found:\n")
		fmt.Printf("  Path: %s\n", s.Path)
		fmt.Printf("  Model: %s\n", s.Model)
		fmt.Printf("  ID: %04x:%04x\n", s.Vendor, s.Product)
		if s.Serial != "" {
			fmt.Printf("  Serial: %s\n", s.Serial)
		}
		fmt.Printf("  Access: %s\n\n", probeAccess(s.Path))
	}

	if len(other) > 0 {
		fmt.Printf("Other Corsair HID devices (not supported):\n")
		for _, o := range other {
			fmt.Printf("  %s: %04x:%04x\n", o.Path, o.Vendor, o.Product)
		}
		fmt.Println()
	}

	// Summary
	fmt.Printf("--- Scan summary ---\n")
	fmt.Printf("Supplies found: %d\n", len(supported))

	if len(supported) == 0 {
		fmt.Printf("No supported power supply found. Check the USB cable between the\n")
		fmt.Printf("supply and the motherboard header, and that the model is an RMi or HXi unit.\n")
		os.Exit(1)
	}

	return nil
}

// probeAccess opens and closes a device node to report whether the current
// user can reach it
func probeAccess(path string) string {
	conn, err := OpenHIDConnection(path)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "permission") {
			return "DENIED (add a udev rule or run as root)"
		}
		return fmt.Sprintf("FAILED (%v)", err)
	}
	conn.Close()
	return "OK"
}
