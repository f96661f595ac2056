// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 The Railscope Authors

package psulink

import (
	"errors"
	"fmt"
	"io"
)

// Sim is an in-memory power supply presented as the same io.ReadWriter a
// real HID handle provides. It answers the full register set, keeps the
// device-side selected-rail state, and records protocol violations by the
// host (bad frame sizes, stale padding bytes, rail reads before a select,
// writes before the previous response was drained).
//
// Unused response bytes are filled with Fill rather than zero, because the
// real device does not guarantee a zeroed tail and consumers must not rely
// on one.
//
// Fault injection is 1-based on the exchange counter: setting FailWriteAt,
// FailReadAt or WrongEchoAt to n makes the n-th exchange fail in that way.
type Sim struct {
	Identity string
	Vendor   string
	Product  string

	PoweredSeconds uint32
	UptimeSeconds  uint32

	Scalars map[byte]Linear16            // flat scalar registers
	Rails   [RailCount]map[byte]Linear16 // rail-scoped registers, per rail
	Raw     map[byte][]byte              // raw payloads for anything else

	// Strict makes host protocol violations fail the exchange instead of
	// only being recorded.
	Strict bool

	Fill byte

	FailWriteAt int
	FailReadAt  int
	WrongEchoAt int

	Violations []string

	selectedRail int
	selectIssued bool
	exchanges    int
	pending      []byte
}

// NewSim builds a simulated unit with plausible defaults: identity strings,
// uptime counters and telemetry values that decode to exact binary
// fractions, so tests can compare them without tolerance gymnastics.
func NewSim() *Sim {
	s := &Sim{
		Identity:       "TestPSU",
		Vendor:         "CORSAIR",
		Product:        "RM650i",
		PoweredSeconds: 4763748, // 55d. 3h
		UptimeSeconds:  108,
		Scalars: map[byte]Linear16{
			RegTempA:       NewLinear16(91, -1), // 45.5
			RegTempB:       NewLinear16(77, -1), // 38.5
			RegFanRPM:      NewLinear16(0, 0),   // fan stopped
			RegSupplyVolts: NewLinear16(230, 0), // 230.0
			RegTotalWatts:  NewLinear16(52, 0),  // 52.0
		},
		Fill: 0xa5,
	}
	s.Rails[0] = map[byte]Linear16{
		RegRailVolts: NewLinear16(97, -3), // 12.125
		RegRailAmps:  NewLinear16(13, -2), // 3.25
		RegRailWatts: NewLinear16(38, 0),  // 38.0
	}
	s.Rails[1] = map[byte]Linear16{
		RegRailVolts: NewLinear16(5, 0),   // 5.0
		RegRailAmps:  NewLinear16(3, -1),  // 1.5
		RegRailWatts: NewLinear16(15, -1), // 7.5
	}
	s.Rails[2] = map[byte]Linear16{
		RegRailVolts: NewLinear16(27, -3), // 3.375
		RegRailAmps:  NewLinear16(1, -1),  // 0.5
		RegRailWatts: NewLinear16(13, -3), // 1.625
	}
	return s
}

// SelectedRail reports the device-side rail state, for test assertions.
func (s *Sim) SelectedRail() int {
	return s.selectedRail
}

// Exchanges reports how many output reports the sim has accepted.
func (s *Sim) Exchanges() int {
	return s.exchanges
}

func (s *Sim) violate(format string, args ...interface{}) error {
	msg := fmt.Sprintf(format, args...)
	s.Violations = append(s.Violations, msg)
	if s.Strict {
		return errors.New("sim: " + msg)
	}
	return nil
}

// Write accepts one output report and queues the matching input report.
func (s *Sim) Write(p []byte) (int, error) {
	s.exchanges++

	if s.FailWriteAt == s.exchanges {
		n := len(p) / 2
		return n, io.ErrShortWrite
	}

	if len(p) != OutputReportSize {
		if err := s.violate("output report is %d bytes, want %d", len(p), OutputReportSize); err != nil {
			return 0, err
		}
		return len(p), nil
	}
	if s.pending != nil {
		if err := s.violate("write before previous response was read"); err != nil {
			return 0, err
		}
	}
	if p[0] != 0 {
		if err := s.violate("report ID byte is 0x%02x, want 0x00", p[0]); err != nil {
			return 0, err
		}
	}
	for i := 4; i < OutputReportSize; i++ {
		if p[i] != 0 {
			if err := s.violate("stale byte 0x%02x at offset %d, padding must be zero", p[i], i); err != nil {
				return 0, err
			}
			break
		}
	}

	op, reg, arg := p[1], p[2], p[3]

	resp := make([]byte, InputReportSize)
	for i := range resp {
		resp[i] = s.Fill
	}
	resp[0] = op
	resp[1] = reg
	payload := resp[2:]

	switch {
	case op == OpWriteRegister && reg == RegRailSelect:
		if int(arg) >= RailCount {
			if err := s.violate("rail select argument %d out of range", arg); err != nil {
				return 0, err
			}
		} else {
			s.selectedRail = int(arg)
			s.selectIssued = true
		}

	case op == OpReadIdentity && reg == RegIdentityTag:
		putString(payload, s.Identity)

	case op == OpReadRegister:
		if err := s.serveRegister(reg, payload); err != nil {
			return 0, err
		}

	default:
		if err := s.violate("unsupported command op=0x%02x reg=0x%02x", op, reg); err != nil {
			return 0, err
		}
	}

	if s.WrongEchoAt == s.exchanges {
		resp[0] ^= 0xff
	}

	s.pending = resp
	return OutputReportSize, nil
}

func (s *Sim) serveRegister(reg byte, payload []byte) error {
	switch reg {
	case RegVendorString:
		putString(payload, s.Vendor)
	case RegProductString:
		putString(payload, s.Product)
	case RegPoweredTotal:
		putUint32(payload, s.PoweredSeconds)
	case RegPoweredSession:
		putUint32(payload, s.UptimeSeconds)
	case RegRailVolts, RegRailAmps, RegRailWatts:
		if !s.selectIssued {
			if err := s.violate("rail register 0x%02x read before any rail select", reg); err != nil {
				return err
			}
		}
		putUint16(payload, uint16(s.Rails[s.selectedRail][reg]))
	default:
		if v, ok := s.Scalars[reg]; ok {
			putUint16(payload, uint16(v))
		} else if raw, ok := s.Raw[reg]; ok {
			copy(payload, raw)
		}
		// Unmapped registers answer with the fill pattern, like real
		// units answer unknown addresses with junk.
	}
	return nil
}

// Read serves the queued input report. Short destination buffers drain the
// report across calls, matching byte-stream transport semantics.
func (s *Sim) Read(p []byte) (int, error) {
	if s.pending == nil {
		return 0, io.EOF
	}

	if s.FailReadAt == s.exchanges && len(s.pending) == InputReportSize {
		s.pending = s.pending[:InputReportSize/4]
	}

	n := copy(p, s.pending)
	s.pending = s.pending[n:]
	if len(s.pending) == 0 {
		s.pending = nil
	}
	return n, nil
}

func putString(dst []byte, v string) {
	n := copy(dst, v)
	if n < len(dst) {
		dst[n] = 0
	}
}

func putUint16(dst []byte, v uint16) {
	dst[0] = byte(v)
	dst[1] = byte(v >> 8)
}

func putUint32(dst []byte, v uint32) {
	dst[0] = byte(v)
	dst[1] = byte(v >> 8)
	dst[2] = byte(v >> 16)
	dst[3] = byte(v >> 24)
}
