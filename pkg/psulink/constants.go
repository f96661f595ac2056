// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 The Railscope Authors

// Package psulink implements the vendor register protocol spoken by Corsair
// RMi and HXi series power supplies over their USB HID interface.
//
// The protocol is reverse engineered and undocumented by the vendor. Each
// exchange is one fixed-size HID output report carrying a 3-byte command
// followed by one fixed-size input report echoing the command and carrying
// the payload. Most telemetry registers hold a 16-bit linear float; uptime
// counters are 32-bit seconds; identity registers hold NUL-terminated
// strings. This package provides the report framing, the register access
// layer, the numeric codec, and a snapshot session that reads the full
// telemetry set in one pass.
package psulink

// Report sizes. The output report is 65 bytes because hidraw expects the
// report ID in byte 0; this device uses unnumbered reports, so byte 0 is
// always zero and the device sees 64 bytes.
const (
	OutputReportSize = 65
	InputReportSize  = 64
	MaxPayloadSize   = 62 // input report minus the 2-byte command echo
)

// Command opcodes
const (
	OpWriteRegister = 0x02
	OpReadRegister  = 0x03
	OpReadIdentity  = 0xfe
)

// Control registers
const (
	RegRailSelect  = 0x00 // write: arg selects output rail 0-2
	RegIdentityTag = 0x03 // reg byte accompanying OpReadIdentity
)

// Telemetry registers. Scalar registers hold one 16-bit linear float.
const (
	RegTempA       = 0x8d // temperature 1, degrees C
	RegTempB       = 0x8e // temperature 2, degrees C
	RegFanRPM      = 0x90 // fan speed, RPM
	RegSupplyVolts = 0x88 // input supply voltage
	RegTotalWatts  = 0xee // total output power
)

// Rail-scoped registers; only valid immediately after a matching rail
// select write. The device keeps the selected rail internally with no
// readback, so callers must issue the select themselves each time.
const (
	RegRailVolts = 0x8b
	RegRailAmps  = 0x8c
	RegRailWatts = 0x96
)

// String and counter registers
const (
	RegVendorString   = 0x99 // NUL-terminated, up to 62 bytes
	RegProductString  = 0x9a // NUL-terminated, up to 62 bytes
	RegPoweredTotal   = 0xd1 // seconds powered since manufacture, uint32
	RegPoweredSession = 0xd2 // seconds powered this session, uint32
)

// Registers observed on the wire but with unknown meaning. Exposed for raw
// dumps only; never decoded beyond a byte passthrough.
var UnknownRegisters = []byte{
	0x40, 0x44, 0x46, 0x4f,
	0x7a, 0x7b, 0x7d, 0x7e,
	0xc4, 0xd4, 0xd8, 0xd9,
}

// RailCount is fixed for every supported model: rails 0, 1 and 2.
const RailCount = 3

// VendorID is the USB vendor ID shared by all supported units.
const VendorID = 0x1b1c

// Product IDs of known units
const (
	ProductHX650i   = 0x1c04
	ProductHX750i   = 0x1c05
	ProductHX850i   = 0x1c06
	ProductHX1000i  = 0x1c07
	ProductHX1200i  = 0x1c08
	ProductRM650i   = 0x1c0a
	ProductRM750i   = 0x1c0b
	ProductRM850i   = 0x1c0c
	ProductRM1000i  = 0x1c0d
	ProductHX1000i2 = 0x1c1e // second generation HX1000i
)

var productNames = map[uint16]string{
	ProductHX650i:   "HX650i",
	ProductHX750i:   "HX750i",
	ProductHX850i:   "HX850i",
	ProductHX1000i:  "HX1000i",
	ProductHX1200i:  "HX1200i",
	ProductRM650i:   "RM650i",
	ProductRM750i:   "RM750i",
	ProductRM850i:   "RM850i",
	ProductRM1000i:  "RM1000i",
	ProductHX1000i2: "HX1000i",
}

// Supported reports whether a USB vendor/product ID pair identifies a unit
// this package knows how to talk to. Devices failing this check must be
// rejected before any report is written.
func Supported(vendor, product uint16) bool {
	if vendor != VendorID {
		return false
	}
	_, ok := productNames[product]
	return ok
}

// ProductName returns the marketing name for a supported product ID, or an
// empty string for an unknown one.
func ProductName(product uint16) string {
	return productNames[product]
}

// RegisterName returns a short name for registers this package decodes, or
// an empty string for unknown ones.
func RegisterName(reg byte) string {
	switch reg {
	case RegRailSelect:
		return "rail select"
	case RegSupplyVolts:
		return "supply volts"
	case RegRailVolts:
		return "rail volts"
	case RegRailAmps:
		return "rail amps"
	case RegTempA:
		return "temp1"
	case RegTempB:
		return "temp2"
	case RegFanRPM:
		return "fan rpm"
	case RegRailWatts:
		return "rail watts"
	case RegVendorString:
		return "vendor"
	case RegProductString:
		return "product"
	case RegPoweredTotal:
		return "powered total"
	case RegPoweredSession:
		return "powered session"
	case RegTotalWatts:
		return "total watts"
	}
	return ""
}
