// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 The Railscope Authors

package cmd

import (
	"github.com/spf13/cobra"

	"github.com/railscope/railscope/pkg/config"
)

var (
	// HID connection flags
	devicePath string

	// WebSocket bridge flags
	wsURL         string
	wsUsername    string
	wsNoSSLVerify bool

	// Config file
	configPath string
	appConfig  *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "railscope",
	Short: "Corsair PSU Telemetry Monitor",
	Long: `Railscope - A CLI tool for reading telemetry from Corsair RMi and HXi
series power supplies over their USB HID register protocol.

Provides commands for one-shot status reads, continuous monitoring, raw
register inspection, recording and archival of telemetry samples.

Connection modes:
  HID:       --device /dev/hidraw3 (omit to auto-detect a supported unit)
  WebSocket: --url ws://host/path [--username user]

For WebSocket authentication, the password is read from the RAILSCOPE_PASSWORD
environment variable, or prompted interactively if not set. The --password
flag is intentionally not provided to avoid leaking credentials in shell history.`,
	Version: "1.1.0",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if err := config.Validate(cfg); err != nil {
			return err
		}
		config.Normalize(cfg)

		// Flags win over config file values.
		if devicePath == "" {
			devicePath = cfg.Connection.Device
		}
		if wsURL == "" {
			wsURL = cfg.Connection.URL
		}
		if wsUsername == "" {
			wsUsername = cfg.Connection.Username
		}
		if !wsNoSSLVerify {
			wsNoSSLVerify = cfg.Connection.NoSSLVerify
		}

		appConfig = cfg
		return nil
	},
}

func init() {
	// HID connection flags
	rootCmd.PersistentFlags().StringVarP(&devicePath, "device", "d", "", "HID device path (e.g. /dev/hidraw3)")

	// WebSocket bridge flags
	rootCmd.PersistentFlags().StringVarP(&wsURL, "url", "u", "", "WebSocket bridge URL (ws:// or wss://)")
	rootCmd.PersistentFlags().StringVar(&wsUsername, "username", "", "Username for HTTP Basic auth")
	rootCmd.PersistentFlags().BoolVar(&wsNoSSLVerify, "no-ssl-verify", false, "Skip TLS certificate verification (wss:// only)")

	// Config file
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: $XDG_CONFIG_HOME/railscope/config.yaml)")
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}
