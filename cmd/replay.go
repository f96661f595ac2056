// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 The Railscope Authors

package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/railscope/railscope/pkg/psulink"
	"github.com/railscope/railscope/pkg/record"
)

var replaySummary bool

var replayCmd = &cobra.Command{
	Use:   "replay FILE",
	Short: "Play back a recording",
	Long: `Decode a recording file and print its samples.

Each sample is printed in the full status layout; with --summary, one line
per sample instead. No device is needed, so recordings taken on one machine
can be inspected on another.`,
	Args: cobra.ExactArgs(1),
	RunE: runReplay,
}

func init() {
	rootCmd.AddCommand(replayCmd)
	replayCmd.Flags().BoolVar(&replaySummary, "summary", false, "One line per sample")
}

func runReplay(cmd *cobra.Command, args []string) error {
	r, err := record.Open(args[0])
	if err != nil {
		return err
	}
	defer r.Close()

	hdr := r.Header()
	fmt.Printf("Recording: %s\n", args[0])
	fmt.Printf("Device: %s\n", hdr.Device)
	fmt.Printf("Started: %s\n\n", time.Unix(hdr.Started, 0).Format(time.RFC3339))

	count := 0
	for {
		s, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		count++

		snap := s.Snapshot()
		if replaySummary {
			fmt.Println(psulink.FormatSummary(snap))
		} else {
			fmt.Printf("--- sample %d (%s) ---\n", count, snap.Taken.Format(time.RFC3339))
			fmt.Print(psulink.FormatSnapshot(snap))
			fmt.Println()
		}
	}

	fmt.Printf("%d samples\n", count)
	return nil
}
