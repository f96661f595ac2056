// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 The Railscope Authors

package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/railscope/railscope/pkg/psulink"
)

var (
	registerAddr string
	registerLen  int
)

var registersCmd = &cobra.Command{
	Use:   "registers",
	Short: "Dump raw register contents",
	Long: `Read registers and dump their raw payload bytes as hex and ASCII.

With --reg, a single register is read; without it, the survey set is read:
every register the protocol notes list, including the ones whose meaning is
still unknown. Unknown registers are never decoded, only dumped, so this
command is the place to stare at bytes when reverse engineering further.

Exit codes:
  0 - All reads completed
  1 - A register read failed
  2 - Connection error`,
	RunE: runRegisters,
}

func init() {
	rootCmd.AddCommand(registersCmd)
	registersCmd.Flags().StringVar(&registerAddr, "reg", "", "Register to read (e.g. 0x8d); omit for the survey set")
	registersCmd.Flags().IntVar(&registerLen, "len", psulink.MaxPayloadSize, "Payload bytes to request (1-62)")
}

func runRegisters(cmd *cobra.Command, args []string) error {
	if registerLen < 1 || registerLen > psulink.MaxPayloadSize {
		return fmt.Errorf("--len must be between 1 and %d, got %d", psulink.MaxPayloadSize, registerLen)
	}

	var regs []byte
	if registerAddr != "" {
		v, err := strconv.ParseUint(registerAddr, 0, 8)
		if err != nil {
			return fmt.Errorf("invalid register %q: %v", registerAddr, err)
		}
		regs = []byte{byte(v)}
	} else {
		regs = surveyRegisters()
	}

	conn, connInfo, err := OpenConnection()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Connection error: %v\n", err)
		os.Exit(2)
	}
	defer conn.Close()

	fmt.Printf("Railscope - Register Dump\n")
	fmt.Printf("Connection: %s\n\n", connInfo)

	dev := psulink.NewDevice(conn)
	for _, reg := range regs {
		label := psulink.RegisterName(reg)
		if label == "" {
			label = "unknown"
		}
		fmt.Printf("register 0x%02x (%s):\n", reg, label)

		payload, err := dev.ReadRegister(reg, registerLen)
		if err != nil {
			reportProtocolError(err)
			os.Exit(1)
		}
		fmt.Print(psulink.HexDump(payload))
		fmt.Println()
	}

	return nil
}

// surveyRegisters is every register worth staring at: the decoded telemetry
// set first, then the addresses with unknown meaning.
func surveyRegisters() []byte {
	regs := []byte{
		psulink.RegSupplyVolts,
		psulink.RegTempA,
		psulink.RegTempB,
		psulink.RegFanRPM,
		psulink.RegVendorString,
		psulink.RegProductString,
		psulink.RegPoweredTotal,
		psulink.RegPoweredSession,
		psulink.RegTotalWatts,
	}
	return append(regs, psulink.UnknownRegisters...)
}
