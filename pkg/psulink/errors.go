// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 The Railscope Authors

package psulink

import "fmt"

// TransportError reports a short write or short read on the underlying
// stream. The protocol has no partial-frame recovery, so any byte count
// other than the full report size is fatal for the exchange. Data holds
// whatever bytes were received before the failure, for diagnostics.
type TransportError struct {
	Op   string // "write" or "read"
	Want int
	Got  int
	Data []byte
	Err  error // underlying stream error, if any
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("transport %s: %d bytes of %d: %v", e.Op, e.Got, e.Want, e.Err)
	}
	return fmt.Sprintf("transport %s: %d bytes of %d", e.Op, e.Got, e.Want)
}

func (e *TransportError) Unwrap() error { return e.Err }

// MismatchError reports a response whose echo bytes do not match the
// request. This means host and device have lost synchronization; retrying
// would compound the desync, so the exchange is abandoned. Response holds
// the full input report for diagnostics.
type MismatchError struct {
	Want     Command
	GotOp    byte
	GotReg   byte
	Response []byte
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("response mismatch: sent %v, device echoed op=0x%02x reg=0x%02x",
		e.Want, e.GotOp, e.GotReg)
}

// NotEligibleError reports a device that fails the vendor/product gate.
// No protocol traffic is ever sent to such a device.
type NotEligibleError struct {
	Vendor  uint16
	Product uint16
}

func (e *NotEligibleError) Error() string {
	return fmt.Sprintf("device %04x:%04x is not a supported power supply", e.Vendor, e.Product)
}
