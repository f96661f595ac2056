// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 The Railscope Authors

package psulink

import "math"

// Linear16 is the 16-bit linear float format used by the scalar telemetry
// registers, in the style of the PMBus LINEAR11 encoding: bits 15..11 are a
// signed 5-bit exponent, bits 10..0 a signed 11-bit mantissa, and the value
// is mantissa * 2^exponent.
type Linear16 uint16

// Exponent extracts the signed 5-bit exponent field. Shifting the word as a
// signed 16-bit integer duplicates the sign bit, which is exactly the
// required sign extension.
func (l Linear16) Exponent() int {
	return int(int16(l) >> 11)
}

// Mantissa extracts the signed 11-bit mantissa field, sign-extended by
// shifting it to the top of a 16-bit word and arithmetic-shifting back.
func (l Linear16) Mantissa() int {
	return int(int16(l<<5) >> 5)
}

// Float64 decodes the value. The function is total: every 16-bit word is a
// valid encoding.
func (l Linear16) Float64() float64 {
	return float64(l.Mantissa()) * math.Pow(2, float64(l.Exponent()))
}

// NewLinear16 packs a mantissa and exponent into the wire format. Values are
// masked to their field widths; callers wanting round-trip fidelity must
// stay within mantissa -1024..1023 and exponent -16..15.
func NewLinear16(mantissa, exponent int) Linear16 {
	return Linear16(uint16(exponent&0x1f)<<11 | uint16(mantissa&0x7ff))
}
