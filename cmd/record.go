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

	"github.com/spf13/cobra"

	"github.com/railscope/railscope/pkg/psulink"
	"github.com/railscope/railscope/pkg/record"
)

var (
	recordOut      string
	recordInterval time.Duration
	recordCount    int
	recordQuiet    bool
)

var recordCmd = &cobra.Command{
	Use:   "record",
	Short: "Record telemetry samples to a file",
	Long: `Sample full telemetry snapshots at a fixed interval into a recording file.

The recording is a CBOR stream: one header entry (format version, device,
start time) followed by one entry per sample. Play it back with 'railscope
replay' or load it into the archive with 'railscope history import'.

Recording stops after --count samples, or on Ctrl+C/SIGTERM, whichever comes
first. A failed poll aborts the recording: the protocol has no partial
results, and a gap-free stream is worth more than a long one.

Exit codes:
  0 - Recording completed
  1 - A poll or a write to the recording failed
  2 - Connection error`,
	RunE: runRecord,
}

func init() {
	rootCmd.AddCommand(recordCmd)
	recordCmd.Flags().StringVar(&recordOut, "out", "", "Recording file to create (required)")
	recordCmd.Flags().DurationVar(&recordInterval, "interval", time.Second, "Sampling interval")
	recordCmd.Flags().IntVar(&recordCount, "count", 0, "Stop after this many samples (0 = until interrupted)")
	recordCmd.Flags().BoolVar(&recordQuiet, "quiet", false, "Do not echo samples while recording")
	recordCmd.MarkFlagRequired("out")
}

func runRecord(cmd *cobra.Command, args []string) error {
	if recordInterval < 100*time.Millisecond {
		return fmt.Errorf("--interval must be at least 100ms, got %v", recordInterval)
	}

	conn, connInfo, err := OpenConnection()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Connection error: %v\n", err)
		os.Exit(2)
	}
	defer conn.Close()

	w, err := record.Create(recordOut, connInfo)
	if err != nil {
		return err
	}
	defer w.Close()

	fmt.Printf("Railscope - Recorder\n")
	fmt.Printf("Connection: %s\n", connInfo)
	fmt.Printf("Recording to: %s\n", recordOut)
	fmt.Printf("Interval: %v\n", recordInterval)
	if recordCount > 0 {
		fmt.Printf("Count: %d samples\n", recordCount)
	}
	fmt.Printf("Press Ctrl+C to stop\n\n")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ticker := time.NewTicker(recordInterval)
	defer ticker.Stop()

	sample := func() error {
		snap, err := psulink.TakeSnapshot(conn)
		if err != nil {
			reportProtocolError(err)
			return err
		}
		if err := w.Append(snap); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return err
		}
		if !recordQuiet {
			fmt.Println(psulink.FormatSummary(snap))
		}
		return nil
	}

	if err := sample(); err != nil {
		os.Exit(1)
	}

	for recordCount == 0 || w.Count() < recordCount {
		select {
		case <-ctx.Done():
			fmt.Printf("\nInterrupted, %d samples recorded to %s\n", w.Count(), recordOut)
			return w.Close()
		case <-ticker.C:
			if err := sample(); err != nil {
				w.Close()
				os.Exit(1)
			}
		}
	}

	fmt.Printf("\n%d samples recorded to %s\n", w.Count(), recordOut)
	return w.Close()
}
