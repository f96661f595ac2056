// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 The Railscope Authors

package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/railscope/railscope/pkg/psulink"
)

var statusJSON bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Read one full telemetry snapshot",
	Long: `Read a complete telemetry snapshot and print it.

The snapshot covers the supply's identity strings, power-on counters, both
temperature sensors, fan speed, input voltage, total output power and the
voltage, current and power of the three output rails.

The read is all-or-nothing: if any register exchange fails, no partial
values are printed and the raw response bytes are dumped to stderr.

Exit codes:
  0 - Snapshot read and printed
  1 - Snapshot failed (protocol or transport error)
  2 - Connection error`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "Print the snapshot as JSON")
}

func runStatus(cmd *cobra.Command, args []string) error {
	conn, _, err := OpenConnection()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Connection error: %v\n", err)
		os.Exit(2)
	}
	defer conn.Close()

	snap, err := psulink.TakeSnapshot(conn)
	if err != nil {
		reportProtocolError(err)
		os.Exit(1)
	}

	if statusJSON {
		return printSnapshotJSON(snap)
	}

	fmt.Print(psulink.FormatSnapshot(snap))
	return nil
}

type railJSON struct {
	Volts float64 `json:"volts"`
	Amps  float64 `json:"amps"`
	Watts float64 `json:"watts"`
}

type snapshotJSON struct {
	Name        string     `json:"name"`
	Vendor      string     `json:"vendor"`
	Product     string     `json:"product"`
	PoweredSecs uint32     `json:"powered_secs"`
	UptimeSecs  uint32     `json:"uptime_secs"`
	Temp1       float64    `json:"temp1"`
	Temp2       float64    `json:"temp2"`
	FanRPM      float64    `json:"fan_rpm"`
	SupplyVolts float64    `json:"supply_volts"`
	TotalWatts  float64    `json:"total_watts"`
	Rails       []railJSON `json:"rails"`
	Taken       string     `json:"taken"`
}

func printSnapshotJSON(snap *psulink.Snapshot) error {
	out := snapshotJSON{
		Name:        snap.Name,
		Vendor:      snap.Vendor,
		Product:     snap.Product,
		PoweredSecs: uint32(snap.Powered / time.Second),
		UptimeSecs:  uint32(snap.Uptime / time.Second),
		Temp1:       snap.TempA,
		Temp2:       snap.TempB,
		FanRPM:      snap.FanRPM,
		SupplyVolts: snap.SupplyVolts,
		TotalWatts:  snap.TotalWatts,
		Taken:       snap.Taken.Format(time.RFC3339),
	}
	for _, r := range snap.Rails {
		out.Rails = append(out.Rails, railJSON{Volts: r.Volts, Amps: r.Amps, Watts: r.Watts})
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// reportProtocolError prints the error and, when the failure carries raw
// response bytes, a hex dump of them to stderr.
func reportProtocolError(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)

	var mismatch *psulink.MismatchError
	if errors.As(err, &mismatch) && len(mismatch.Response) > 0 {
		fmt.Fprintf(os.Stderr, "Response dump:\n%s", psulink.HexDump(mismatch.Response))
	}

	var transport *psulink.TransportError
	if errors.As(err, &transport) && len(transport.Data) > 0 {
		fmt.Fprintf(os.Stderr, "Partial data:\n%s", psulink.HexDump(transport.Data))
	}
}
