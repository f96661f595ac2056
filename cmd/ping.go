// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 The Railscope Authors

package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/railscope/railscope/pkg/psulink"
)

var (
	pingTimeout int
	pingCount   int
)

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Test the connection with identity probes",
	Long: `Send identity probes to the supply and measure the round-trip time.

The identity probe is the cheapest exchange the protocol offers: the supply
echoes the request header and returns its firmware identity tag. A reply
proves the full path works end to end.

This is useful for verifying:
  - The HID device (or WebSocket bridge) is reachable
  - HTTP Basic authentication works (WebSocket mode)
  - The supply is answering register reads

Exit codes:
  0 - All probes answered
  1 - One or more probes failed/timed out
  2 - Connection error`,
	RunE: runPing,
}

func init() {
	rootCmd.AddCommand(pingCmd)
	pingCmd.Flags().IntVar(&pingTimeout, "timeout", 5, "Timeout in seconds for each probe")
	pingCmd.Flags().IntVar(&pingCount, "count", 3, "Number of probes to send")
}

func runPing(cmd *cobra.Command, args []string) error {
	conn, connInfo, err := OpenConnection()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Connection error: %v\n", err)
		os.Exit(2)
	}
	defer conn.Close()

	fmt.Printf("Railscope - Identity Probe\n")
	fmt.Printf("Connection: %s\n", connInfo)
	fmt.Printf("Timeout: %d seconds per probe\n", pingTimeout)
	fmt.Printf("Count: %d probes\n\n", pingCount)

	dev := psulink.NewDevice(conn)
	successCount := 0
	failCount := 0

	for i := 1; i <= pingCount; i++ {
		fmt.Printf("Probe %d/%d: ", i, pingCount)

		responseChan := make(chan string, 1)
		errChan := make(chan error, 1)

		startTime := time.Now()
		go func() {
			tag, err := dev.Identity()
			if err != nil {
				errChan <- err
				return
			}
			responseChan <- tag
		}()

		// Wait for response or timeout
		select {
		case tag := <-responseChan:
			rtt := time.Since(startTime)
			fmt.Printf("reply, identity='%s', rtt=%v\n", tag, rtt.Round(time.Microsecond))
			successCount++

		case err := <-errChan:
			fmt.Printf("FAILED: %v\n", err)
			failCount++

		case <-time.After(time.Duration(pingTimeout) * time.Second):
			fmt.Printf("TIMEOUT (no response in %ds)\n", pingTimeout)
			failCount++
		}

		// Small delay between probes
		if i < pingCount {
			time.Sleep(100 * time.Millisecond)
		}
	}

	// Summary
	fmt.Printf("\n--- Probe statistics ---\n")
	fmt.Printf("%d probes sent, %d responses received, %.0f%% loss\n",
		pingCount, successCount, float64(failCount)/float64(pingCount)*100)

	if failCount > 0 {
		os.Exit(1)
	}
	return nil
}
