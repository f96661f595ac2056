// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 The Railscope Authors

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/railscope/railscope/pkg/psulink"
)

var (
	watchText       bool
	watchIntervalMs int
	watchStatsEvery int
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Monitor telemetry continuously",
	Long: `Poll full telemetry snapshots at a fixed interval and display them live.

By default a terminal dashboard is shown: identity, uptime counters, the
environmental sensors and all three output rails, together with poll/error
counters and a log of recent events. Readings outside plausibility windows
(implausible temperatures, negative power, rail overvoltage) are highlighted
but never stop the monitor.

With --text, one summary line is printed per poll instead, suitable for
piping; statistics are printed every --stats-interval seconds.

When several supported supplies are connected and none was chosen with
--device, the dashboard starts with a picker list.

The poll interval comes from --interval, falling back to the watch section
of the config file (default 1000 ms).`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().BoolVar(&watchText, "text", false, "Plain text output instead of the dashboard")
	watchCmd.Flags().IntVar(&watchIntervalMs, "interval", 0, "Poll interval in milliseconds (default from config, 1000)")
	watchCmd.Flags().IntVar(&watchStatsEvery, "stats-interval", 10, "Statistics interval in seconds (--text mode)")
}

// watchInterval resolves the poll interval: flag first, then config.
func watchInterval() time.Duration {
	ms := watchIntervalMs
	if ms <= 0 {
		ms = appConfig.Watch.IntervalMs
	}
	if ms <= 0 {
		ms = 1000
	}
	return time.Duration(ms) * time.Millisecond
}

func runWatch(cmd *cobra.Command, args []string) error {
	interval := watchInterval()

	if watchText {
		conn, connInfo, err := OpenConnection()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Connection error: %v\n", err)
			os.Exit(2)
		}
		defer conn.Close()
		return runWatchText(conn, connInfo, interval)
	}

	// Dashboard mode. With an explicit target (or exactly one supply on
	// the bus) the dashboard connects straight away; with several it
	// starts on the picker.
	if wsURL == "" && devicePath == "" {
		supplies, _, err := EnumerateSupplies()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Enumeration error: %v\n", err)
			os.Exit(2)
		}
		if len(supplies) == 0 {
			fmt.Fprintf(os.Stderr, "No supported power supply found (run 'railscope devices' to check)\n")
			os.Exit(2)
		}
		if len(supplies) > 1 {
			return runWatchTUI(nil, "", supplies, interval)
		}
		devicePath = supplies[0].Path
	}

	conn, connInfo, err := OpenConnection()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Connection error: %v\n", err)
		os.Exit(2)
	}
	return runWatchTUI(conn, connInfo, nil, interval)
}

// runWatchTUI starts the dashboard, either already connected or on the
// supply picker when conn is nil.
func runWatchTUI(conn Connection, connInfo string, supplies []SupplyInfo, interval time.Duration) error {
	m := newWatchModel(conn, connInfo, supplies, interval)
	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %v", err)
	}
	return nil
}

// runWatchText polls in a plain loop until a signal arrives. Protocol and
// transport errors are reported but do not stop the loop: the next poll is
// a fresh exchange, and intermittent faults are exactly what this mode
// exists to observe.
func runWatchText(conn Connection, connInfo string, interval time.Duration) error {
	fmt.Printf("Railscope - Telemetry Monitor\n")
	fmt.Printf("Connection: %s\n", connInfo)
	fmt.Printf("Interval: %v\n", interval)
	fmt.Printf("Press Ctrl+C to exit\n\n")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stats := psulink.NewStats()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	statsTicker := time.NewTicker(time.Duration(watchStatsEvery) * time.Second)
	defer statsTicker.Stop()

	poll := func() {
		snap, err := psulink.TakeSnapshot(conn)
		if err != nil {
			stats.Update(nil, err, nil)
			reportProtocolError(err)
			return
		}

		anomalies := psulink.ValidateSnapshot(snap)
		stats.Update(snap, nil, anomalies)

		fmt.Println(psulink.FormatSummary(snap))
		for _, a := range anomalies {
			fmt.Printf("  ANOMALY: %s\n", a.Message)
		}
	}

	poll()
	for {
		select {
		case <-ctx.Done():
			fmt.Println()
			fmt.Print(stats.String())
			return nil
		case <-ticker.C:
			poll()
		case <-statsTicker.C:
			fmt.Println()
			fmt.Print(stats.String())
			fmt.Println()
		}
	}
}
