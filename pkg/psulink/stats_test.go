// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 The Railscope Authors

package psulink

import (
	"strings"
	"testing"
)

// ============================================================
// Statistics Tests
// ============================================================

func TestStats_CleanPolls(t *testing.T) {
	stats := NewStats()
	snap := healthySnapshot()

	for i := 0; i < 5; i++ {
		stats.Update(snap, nil, nil)
	}

	if stats.TotalPolls != 5 {
		t.Errorf("expected 5 total polls, got %d", stats.TotalPolls)
	}
	if stats.CleanPolls != 5 {
		t.Errorf("expected 5 clean polls, got %d", stats.CleanPolls)
	}
	if stats.TransportErrors != 0 || stats.EchoMismatches != 0 || stats.Anomalies != 0 {
		t.Errorf("expected no errors, got %+v", stats)
	}
}

func TestStats_ErrorClassification(t *testing.T) {
	stats := NewStats()

	stats.Update(nil, &TransportError{Op: "write", Want: 65, Got: 12}, nil)
	stats.Update(nil, &MismatchError{Want: ReadCommand(RegTempA), GotOp: 0x00, GotReg: 0x00}, nil)
	stats.Update(nil, &TransportError{Op: "read", Want: 64, Got: 0}, nil)

	if stats.TotalPolls != 3 {
		t.Errorf("expected 3 total polls, got %d", stats.TotalPolls)
	}
	if stats.TransportErrors != 2 {
		t.Errorf("expected 2 transport errors, got %d", stats.TransportErrors)
	}
	if stats.EchoMismatches != 1 {
		t.Errorf("expected 1 echo mismatch, got %d", stats.EchoMismatches)
	}
	if stats.CleanPolls != 0 {
		t.Errorf("failed polls must not count as clean, got %d", stats.CleanPolls)
	}
}

func TestStats_AnomalyCounting(t *testing.T) {
	stats := NewStats()
	snap := healthySnapshot()
	snap.TempA = 900.0
	snap.FanRPM = 50000

	anomalies := ValidateSnapshot(snap)
	if len(anomalies) != 2 {
		t.Fatalf("expected 2 anomalies, got %d", len(anomalies))
	}

	stats.Update(snap, nil, anomalies)

	if stats.Anomalies != 2 {
		t.Errorf("expected 2 anomalies counted, got %d", stats.Anomalies)
	}
	if stats.InvalidTemp != 1 || stats.HighRPM != 1 {
		t.Errorf("expected per-type counts 1/1, got temp=%d rpm=%d", stats.InvalidTemp, stats.HighRPM)
	}
	if stats.CleanPolls != 0 {
		t.Errorf("anomalous poll must not count as clean, got %d", stats.CleanPolls)
	}
}

func TestStats_String(t *testing.T) {
	stats := NewStats()
	snap := healthySnapshot()
	stats.Update(snap, nil, nil)
	stats.Update(nil, &TransportError{Op: "read", Want: 64, Got: 0}, nil)

	out := stats.String()
	for _, want := range []string{"Total Polls:", "Clean Polls:", "Transport Errors:", "Poll Rate:", "Error Rate:"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Echo Mismatches:") {
		t.Error("zero-count sections should be omitted")
	}
}

func TestStats_Reset(t *testing.T) {
	stats := NewStats()
	stats.Update(healthySnapshot(), nil, nil)
	stats.Update(nil, &TransportError{Op: "write", Want: 65, Got: 0}, nil)

	stats.Reset()

	if stats.TotalPolls != 0 || stats.CleanPolls != 0 || stats.TransportErrors != 0 {
		t.Errorf("expected zeroed counters after reset, got %+v", stats)
	}
}
