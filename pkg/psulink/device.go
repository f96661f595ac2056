// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 The Railscope Authors

package psulink

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Device is the register access layer over an open transport. It holds no
// state of its own; in particular it never caches the device-side selected
// rail, which has no readback and belongs to the unit, not the host.
type Device struct {
	rw io.ReadWriter
}

// NewDevice wraps an open transport. The caller keeps ownership of the
// handle and must serialize all access to it.
func NewDevice(rw io.ReadWriter) *Device {
	return &Device{rw: rw}
}

// ReadRegister reads up to max raw payload bytes from a register.
func (d *Device) ReadRegister(reg byte, max int) ([]byte, error) {
	return Exchange(d.rw, ReadCommand(reg), max)
}

// ReadUint16 reads a register as a little-endian 16-bit word.
func (d *Device) ReadUint16(reg byte) (uint16, error) {
	p, err := d.ReadRegister(reg, 2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(p), nil
}

// ReadUint32 reads a register as a little-endian 32-bit word.
func (d *Device) ReadUint32(reg byte) (uint32, error) {
	p, err := d.ReadRegister(reg, 4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(p), nil
}

// ReadScalar reads a register and decodes it as a Linear16 value.
func (d *Device) ReadScalar(reg byte) (float64, error) {
	w, err := d.ReadUint16(reg)
	if err != nil {
		return 0, err
	}
	return Linear16(w).Float64(), nil
}

// ReadString reads a register holding a NUL-terminated string. Bytes after
// the terminator are device garbage and are dropped.
func (d *Device) ReadString(reg byte) (string, error) {
	p, err := d.ReadRegister(reg, MaxPayloadSize)
	if err != nil {
		return "", err
	}
	return cutString(p), nil
}

// Identity reads the device's self-reported name.
func (d *Device) Identity() (string, error) {
	p, err := Exchange(d.rw, IdentityCommand(), MaxPayloadSize)
	if err != nil {
		return "", err
	}
	return cutString(p), nil
}

// SelectRail points the rail-scoped registers (volts, amps, watts) at one
// of the three output rails. It must be issued before every rail-scoped
// read and again with rail 0 when finished, so the unit is left in its
// default state for whoever talks to it next.
func (d *Device) SelectRail(rail int) error {
	if rail < 0 || rail >= RailCount {
		return fmt.Errorf("rail %d out of range 0-%d", rail, RailCount-1)
	}
	_, err := Exchange(d.rw, SelectRailCommand(rail), 0)
	return err
}

func cutString(p []byte) string {
	for i, c := range p {
		if c == 0 {
			return string(p[:i])
		}
	}
	return string(p)
}
