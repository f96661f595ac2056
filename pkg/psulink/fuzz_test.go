// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 The Railscope Authors

package psulink

import (
	"errors"
	"math"
	"math/rand"
	"os"
	"strconv"
	"testing"
	"time"
)

// getFuzzRounds returns the number of fuzz rounds from FUZZ_ROUNDS env var, default 1000
func getFuzzRounds() int {
	if envRounds := os.Getenv("FUZZ_ROUNDS"); envRounds != "" {
		if rounds, err := strconv.Atoi(envRounds); err == nil && rounds > 0 {
			return rounds
		}
	}
	return 1000
}

// getFuzzSeed returns the seed from FUZZ_SEED env var, or generates one from current time
func getFuzzSeed() int64 {
	if envSeed := os.Getenv("FUZZ_SEED"); envSeed != "" {
		if seed, err := strconv.ParseInt(envSeed, 10, 64); err == nil {
			return seed
		}
	}
	return time.Now().UnixNano()
}

// newFuzzRng creates a new random number generator and logs the seed for reproducibility
func newFuzzRng(t *testing.T) *rand.Rand {
	seed := getFuzzSeed()
	t.Logf("Seed: %d (reproduce with FUZZ_SEED=%d)", seed, seed)
	return rand.New(rand.NewSource(seed))
}

// ============================================================
// Codec Fuzz Tests
// ============================================================

// TestFuzzLinear16_TotalDecode verifies the codec is total and that field
// extraction, recomposition and decoding agree for every random word
func TestFuzzLinear16_TotalDecode(t *testing.T) {
	rounds := getFuzzRounds()
	rng := newFuzzRng(t)
	t.Logf("Running %d fuzz rounds", rounds)

	for i := 0; i < rounds; i++ {
		raw := uint16(rng.Intn(0x10000))
		l := Linear16(raw)

		m := l.Mantissa()
		e := l.Exponent()
		if m < -1024 || m > 1023 {
			t.Fatalf("round %d: mantissa %d outside 11-bit signed range for 0x%04x", i, m, raw)
		}
		if e < -16 || e > 15 {
			t.Fatalf("round %d: exponent %d outside 5-bit signed range for 0x%04x", i, e, raw)
		}

		if back := NewLinear16(m, e); uint16(back) != raw {
			t.Errorf("round %d: recompose mismatch: 0x%04x -> (%d, %d) -> 0x%04x",
				i, raw, m, e, uint16(back))
		}

		independent := float64(m) * math.Pow(2, float64(e))
		if v := l.Float64(); v != independent {
			t.Errorf("round %d: decode disagrees with field math for 0x%04x: %v != %v",
				i, raw, v, independent)
		}
	}
}

// ============================================================
// Exchange Fuzz Tests
// ============================================================

// TestFuzzExchange_RandomRegisters reads random non-rail registers and
// verifies payload sizing and echo handling never misbehave
func TestFuzzExchange_RandomRegisters(t *testing.T) {
	rounds := getFuzzRounds()
	rng := newFuzzRng(t)
	t.Logf("Running %d fuzz rounds", rounds)

	sim := NewSim()
	for i := 0; i < rounds; i++ {
		reg := byte(rng.Intn(256))
		if reg == RegRailVolts || reg == RegRailAmps || reg == RegRailWatts {
			continue // rail registers need a select first; covered elsewhere
		}
		max := rng.Intn(80)

		payload, err := Exchange(sim, ReadCommand(reg), max)
		if err != nil {
			t.Fatalf("round %d: exchange failed for reg 0x%02x: %v", i, reg, err)
		}
		want := max
		if want > MaxPayloadSize {
			want = MaxPayloadSize
		}
		if len(payload) != want {
			t.Errorf("round %d: payload length %d, expected %d", i, len(payload), want)
		}
	}
	if len(sim.Violations) != 0 {
		t.Errorf("sim flagged host violations: %v", sim.Violations)
	}
}

// TestFuzzExchange_CorruptedEchoAlwaysRejected verifies no corrupted echo
// is ever silently accepted
func TestFuzzExchange_CorruptedEchoAlwaysRejected(t *testing.T) {
	rounds := getFuzzRounds()
	rng := newFuzzRng(t)
	t.Logf("Running %d fuzz rounds", rounds)

	for i := 0; i < rounds; i++ {
		op := byte(rng.Intn(256))
		reg := byte(rng.Intn(256))
		cmd := ReadCommand(reg)

		// Force the echo pair to differ from the request in op, reg or both.
		if op == cmd.Op && reg == cmd.Reg {
			op ^= 0x80
		}

		ct := &captureTransport{echoOp: op, echoReg: reg}
		payload, err := Exchange(ct, cmd, rng.Intn(MaxPayloadSize))
		if payload != nil {
			t.Fatalf("round %d: corrupted echo %02x %02x produced a payload", i, op, reg)
		}
		var merr *MismatchError
		if !errors.As(err, &merr) {
			t.Fatalf("round %d: expected MismatchError, got %v", i, err)
		}
	}
}

// ============================================================
// Session Fuzz Tests
// ============================================================

// TestFuzzSnapshot_RandomTelemetry randomizes every register and verifies
// the session surfaces exactly the decoded values
func TestFuzzSnapshot_RandomTelemetry(t *testing.T) {
	rounds := getFuzzRounds() / 10
	if rounds < 1 {
		rounds = 1
	}
	rng := newFuzzRng(t)
	t.Logf("Running %d fuzz rounds", rounds)

	for i := 0; i < rounds; i++ {
		sim := NewSim()
		for reg := range sim.Scalars {
			sim.Scalars[reg] = Linear16(rng.Intn(0x10000))
		}
		for rail := range sim.Rails {
			for reg := range sim.Rails[rail] {
				sim.Rails[rail][reg] = Linear16(rng.Intn(0x10000))
			}
		}
		sim.PoweredSeconds = rng.Uint32()
		sim.UptimeSeconds = rng.Uint32()

		snap, err := TakeSnapshot(sim)
		if err != nil {
			t.Fatalf("round %d: snapshot failed: %v", i, err)
		}

		if snap.TempA != sim.Scalars[RegTempA].Float64() {
			t.Errorf("round %d: temp1 %v, expected %v", i, snap.TempA, sim.Scalars[RegTempA].Float64())
		}
		if snap.TotalWatts != sim.Scalars[RegTotalWatts].Float64() {
			t.Errorf("round %d: total watts %v, expected %v", i, snap.TotalWatts, sim.Scalars[RegTotalWatts].Float64())
		}
		for rail := 0; rail < RailCount; rail++ {
			if snap.Rails[rail].Volts != sim.Rails[rail][RegRailVolts].Float64() {
				t.Errorf("round %d: rail %d volts %v, expected %v",
					i, rail, snap.Rails[rail].Volts, sim.Rails[rail][RegRailVolts].Float64())
			}
		}
		if secs := uint32(snap.Powered / time.Second); secs != sim.PoweredSeconds {
			t.Errorf("round %d: powered %d, expected %d", i, secs, sim.PoweredSeconds)
		}
		if len(sim.Violations) != 0 {
			t.Fatalf("round %d: sim flagged violations: %v", i, sim.Violations)
		}
	}
}

// TestFuzzHexDump_NeverPanics dumps random data and sanity checks the shape
func TestFuzzHexDump_NeverPanics(t *testing.T) {
	rounds := getFuzzRounds()
	rng := newFuzzRng(t)
	t.Logf("Running %d fuzz rounds", rounds)

	for i := 0; i < rounds; i++ {
		length := rng.Intn(256)
		data := make([]byte, length)
		rng.Read(data)

		out := HexDump(data)
		wantLines := (length + 15) / 16
		gotLines := 0
		for _, c := range out {
			if c == '\n' {
				gotLines++
			}
		}
		if gotLines != wantLines {
			t.Errorf("round %d: %d bytes dumped as %d lines, expected %d", i, length, gotLines, wantLines)
		}
	}
}
