// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 The Railscope Authors

package psulink

import (
	"math"
	"testing"
)

// ============================================================
// Linear16 Decode Tests
// ============================================================

func TestLinear16_Zero(t *testing.T) {
	if v := Linear16(0x0000).Float64(); v != 0.0 {
		t.Errorf("expected 0.0, got %v", v)
	}
}

func TestLinear16_One(t *testing.T) {
	l := NewLinear16(1, 0)
	if uint16(l) != 0x0001 {
		t.Errorf("expected raw word 0x0001, got 0x%04x", uint16(l))
	}
	if v := l.Float64(); v != 1.0 {
		t.Errorf("expected 1.0, got %v", v)
	}
}

func TestLinear16_KnownValues(t *testing.T) {
	tests := []struct {
		name     string
		raw      uint16
		mantissa int
		exponent int
		expected float64
	}{
		{
			name:     "positive exponent",
			raw:      0x1199,
			mantissa: 409,
			exponent: 2,
			expected: 1636.0, // 409 * 2^2
		},
		{
			name:     "negative exponent",
			raw:      0x8999,
			mantissa: 409,
			exponent: -15,
			expected: 0.012481689453125, // 409 * 2^-15
		},
		{
			name:     "negative mantissa",
			raw:      0x07ff,
			mantissa: -1,
			exponent: 0,
			expected: -1.0,
		},
		{
			name:     "typical temperature",
			raw:      0xd226,
			mantissa: 550,
			exponent: -6,
			expected: 8.59375,
		},
		{
			name:     "exponent minus one",
			raw:      0xf830,
			mantissa: 48,
			exponent: -1,
			expected: 24.0,
		},
		{
			name:     "mantissa lower bound",
			raw:      0x0400,
			mantissa: -1024,
			exponent: 0,
			expected: -1024.0,
		},
		{
			name:     "mantissa upper bound",
			raw:      0x03ff,
			mantissa: 1023,
			exponent: 0,
			expected: 1023.0,
		},
		{
			name:     "exponent lower bound",
			raw:      0x8001,
			mantissa: 1,
			exponent: -16,
			expected: 0.0000152587890625, // 2^-16
		},
		{
			name:     "exponent upper bound",
			raw:      0x7801,
			mantissa: 1,
			exponent: 15,
			expected: 32768.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := Linear16(tt.raw)
			if m := l.Mantissa(); m != tt.mantissa {
				t.Errorf("mantissa mismatch: expected %d, got %d", tt.mantissa, m)
			}
			if e := l.Exponent(); e != tt.exponent {
				t.Errorf("exponent mismatch: expected %d, got %d", tt.exponent, e)
			}
			if v := l.Float64(); math.Abs(v-tt.expected) > 1e-9 {
				t.Errorf("value mismatch: expected %v, got %v", tt.expected, v)
			}
		})
	}
}

func TestLinear16_FieldBoundaries(t *testing.T) {
	tests := []struct {
		name     string
		mantissa int
		exponent int
		expected float64
	}{
		{"min mantissa min exponent", -1024, -16, -0.015625},
		{"min mantissa max exponent", -1024, 15, -33554432.0},
		{"max mantissa min exponent", 1023, -16, 0.0156097412109375},
		{"max mantissa max exponent", 1023, 15, 33521664.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewLinear16(tt.mantissa, tt.exponent)
			if m := l.Mantissa(); m != tt.mantissa {
				t.Errorf("mantissa not recovered: expected %d, got %d", tt.mantissa, m)
			}
			if e := l.Exponent(); e != tt.exponent {
				t.Errorf("exponent not recovered: expected %d, got %d", tt.exponent, e)
			}
			independent := float64(tt.mantissa) * math.Pow(2, float64(tt.exponent))
			if v := l.Float64(); v != independent {
				t.Errorf("decode disagrees with direct computation: %v != %v", v, independent)
			}
			if v := l.Float64(); math.Abs(v-tt.expected) > 1e-9 {
				t.Errorf("value mismatch: expected %v, got %v", tt.expected, v)
			}
		})
	}
}

func TestNewLinear16_RoundTrip(t *testing.T) {
	for mantissa := -1024; mantissa <= 1023; mantissa += 31 {
		for exponent := -16; exponent <= 15; exponent++ {
			l := NewLinear16(mantissa, exponent)
			if m := l.Mantissa(); m != mantissa {
				t.Fatalf("mantissa %d exponent %d: recovered mantissa %d", mantissa, exponent, m)
			}
			if e := l.Exponent(); e != exponent {
				t.Fatalf("mantissa %d exponent %d: recovered exponent %d", mantissa, exponent, e)
			}
		}
	}
}
