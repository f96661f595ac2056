// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 The Railscope Authors

package psulink

import (
	"bytes"
	"errors"
	"testing"
)

// ============================================================
// Test Transports
// ============================================================

// captureTransport records the outbound frame and answers with a canned
// echo plus payload, for asserting on exact frame bytes.
type captureTransport struct {
	frame   []byte
	payload []byte
	echoOp  byte
	echoReg byte
	pending []byte
}

func (c *captureTransport) Write(p []byte) (int, error) {
	c.frame = append([]byte(nil), p...)

	resp := make([]byte, InputReportSize)
	resp[0] = c.echoOp
	resp[1] = c.echoReg
	copy(resp[2:], c.payload)
	c.pending = resp
	return len(p), nil
}

func (c *captureTransport) Read(p []byte) (int, error) {
	n := copy(p, c.pending)
	c.pending = c.pending[n:]
	return n, nil
}

// chunkTransport serves reads in small pieces to exercise the full-report
// read loop.
type chunkTransport struct {
	inner *Sim
	chunk int
}

func (c *chunkTransport) Write(p []byte) (int, error) {
	return c.inner.Write(p)
}

func (c *chunkTransport) Read(p []byte) (int, error) {
	if len(p) > c.chunk {
		p = p[:c.chunk]
	}
	return c.inner.Read(p)
}

// ============================================================
// Frame Layout Tests
// ============================================================

func TestExchange_FrameLayout(t *testing.T) {
	ct := &captureTransport{echoOp: OpReadRegister, echoReg: RegTempA}

	_, err := Exchange(ct, ReadCommand(RegTempA), 2)
	if err != nil {
		t.Fatalf("exchange failed: %v", err)
	}

	if len(ct.frame) != OutputReportSize {
		t.Fatalf("expected %d byte frame, got %d", OutputReportSize, len(ct.frame))
	}
	if ct.frame[0] != 0x00 {
		t.Errorf("report ID byte: expected 0x00, got 0x%02x", ct.frame[0])
	}
	if ct.frame[1] != OpReadRegister || ct.frame[2] != RegTempA || ct.frame[3] != 0x00 {
		t.Errorf("command bytes: expected 03 8d 00, got %02x %02x %02x",
			ct.frame[1], ct.frame[2], ct.frame[3])
	}
	for i := 4; i < OutputReportSize; i++ {
		if ct.frame[i] != 0x00 {
			t.Errorf("padding byte at offset %d: expected 0x00, got 0x%02x", i, ct.frame[i])
		}
	}
}

func TestExchange_FreshBufferPerCall(t *testing.T) {
	// A second exchange with a different command must not carry any bytes
	// from the first.
	ct := &captureTransport{echoOp: OpReadIdentity, echoReg: RegIdentityTag}
	if _, err := Exchange(ct, IdentityCommand(), 10); err != nil {
		t.Fatalf("first exchange failed: %v", err)
	}

	ct.echoOp = OpWriteRegister
	ct.echoReg = RegRailSelect
	if _, err := Exchange(ct, SelectRailCommand(2), 0); err != nil {
		t.Fatalf("second exchange failed: %v", err)
	}

	want := make([]byte, OutputReportSize)
	want[1] = OpWriteRegister
	want[2] = RegRailSelect
	want[3] = 0x02
	if !bytes.Equal(ct.frame, want) {
		t.Errorf("second frame carries stale bytes:\n%s", HexDump(ct.frame))
	}
}

// ============================================================
// Length Invariant Tests
// ============================================================

func TestExchange_ShortWrite(t *testing.T) {
	sim := NewSim()
	sim.FailWriteAt = 1

	_, err := Exchange(sim, ReadCommand(RegTempA), 2)
	var terr *TransportError
	if !errors.As(err, &terr) {
		t.Fatalf("expected TransportError, got %v", err)
	}
	if terr.Op != "write" {
		t.Errorf("expected write error, got %q", terr.Op)
	}
	if terr.Want != OutputReportSize {
		t.Errorf("expected want=%d, got %d", OutputReportSize, terr.Want)
	}
	if terr.Got >= OutputReportSize {
		t.Errorf("short write reported %d bytes", terr.Got)
	}
}

func TestExchange_ShortRead(t *testing.T) {
	sim := NewSim()
	sim.FailReadAt = 1

	_, err := Exchange(sim, ReadCommand(RegTempA), 2)
	var terr *TransportError
	if !errors.As(err, &terr) {
		t.Fatalf("expected TransportError, got %v", err)
	}
	if terr.Op != "read" {
		t.Errorf("expected read error, got %q", terr.Op)
	}
	if terr.Want != InputReportSize {
		t.Errorf("expected want=%d, got %d", InputReportSize, terr.Want)
	}
	if terr.Got != InputReportSize/4 {
		t.Errorf("expected got=%d, got %d", InputReportSize/4, terr.Got)
	}
	if len(terr.Data) != terr.Got {
		t.Errorf("diagnostic data length %d does not match got=%d", len(terr.Data), terr.Got)
	}
}

// ============================================================
// Echo Validation Tests
// ============================================================

func TestExchange_EchoMismatch(t *testing.T) {
	sim := NewSim()
	sim.WrongEchoAt = 1

	payload, err := Exchange(sim, ReadCommand(RegTempA), 2)
	if payload != nil {
		t.Errorf("expected no payload on mismatch, got %d bytes", len(payload))
	}

	var merr *MismatchError
	if !errors.As(err, &merr) {
		t.Fatalf("expected MismatchError, got %v", err)
	}
	if merr.Want.Op != OpReadRegister || merr.Want.Reg != RegTempA {
		t.Errorf("expected command echoed in error, got %v", merr.Want)
	}
	if merr.GotOp == OpReadRegister {
		t.Errorf("GotOp should differ from the request op")
	}
	if len(merr.Response) != InputReportSize {
		t.Errorf("expected full %d byte response in error, got %d", InputReportSize, len(merr.Response))
	}
}

func TestExchange_EchoMismatch_AllPairs(t *testing.T) {
	// Any echo differing in op, reg or both must be rejected.
	cases := []struct {
		name string
		op   byte
		reg  byte
	}{
		{"wrong op", OpReadIdentity, RegTempA},
		{"wrong reg", OpReadRegister, RegTempB},
		{"wrong both", OpWriteRegister, RegFanRPM},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			ct := &captureTransport{echoOp: tt.op, echoReg: tt.reg}
			_, err := Exchange(ct, ReadCommand(RegTempA), 2)
			var merr *MismatchError
			if !errors.As(err, &merr) {
				t.Fatalf("expected MismatchError, got %v", err)
			}
			if merr.GotOp != tt.op || merr.GotReg != tt.reg {
				t.Errorf("error carries echo %02x %02x, expected %02x %02x",
					merr.GotOp, merr.GotReg, tt.op, tt.reg)
			}
		})
	}
}

// ============================================================
// Payload Handling Tests
// ============================================================

func TestExchange_PayloadCap(t *testing.T) {
	sim := NewSim()
	payload, err := Exchange(sim, ReadCommand(RegVendorString), 100)
	if err != nil {
		t.Fatalf("exchange failed: %v", err)
	}
	if len(payload) != MaxPayloadSize {
		t.Errorf("expected payload capped at %d bytes, got %d", MaxPayloadSize, len(payload))
	}
}

func TestExchange_ZeroPayload(t *testing.T) {
	sim := NewSim()
	payload, err := Exchange(sim, SelectRailCommand(1), 0)
	if err != nil {
		t.Fatalf("exchange failed: %v", err)
	}
	if len(payload) != 0 {
		t.Errorf("expected empty payload, got %d bytes", len(payload))
	}
	if sim.SelectedRail() != 1 {
		t.Errorf("expected rail 1 selected, got %d", sim.SelectedRail())
	}
}

func TestExchange_ChunkedReads(t *testing.T) {
	// Transports are byte streams; a full report may arrive in pieces.
	ct := &chunkTransport{inner: NewSim(), chunk: 7}
	payload, err := Exchange(ct, ReadCommand(RegSupplyVolts), 2)
	if err != nil {
		t.Fatalf("exchange failed: %v", err)
	}
	if len(payload) != 2 {
		t.Fatalf("expected 2 payload bytes, got %d", len(payload))
	}
	if got := Linear16(uint16(payload[0]) | uint16(payload[1])<<8).Float64(); got != 230.0 {
		t.Errorf("expected 230.0 across chunked reads, got %v", got)
	}
}

func TestExchange_NoHostViolations(t *testing.T) {
	sim := NewSim()
	if _, err := Exchange(sim, ReadCommand(RegTempA), 2); err != nil {
		t.Fatalf("exchange failed: %v", err)
	}
	if _, err := Exchange(sim, IdentityCommand(), MaxPayloadSize); err != nil {
		t.Fatalf("exchange failed: %v", err)
	}
	if len(sim.Violations) != 0 {
		t.Errorf("sim flagged host violations: %v", sim.Violations)
	}
}
