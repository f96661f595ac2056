// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 The Railscope Authors

package psulink

import (
	"io"
	"time"
)

// Rail holds the electrical telemetry for one output rail.
type Rail struct {
	Volts float64
	Amps  float64
	Watts float64
}

// Snapshot is the result of one full telemetry pass. It is built fresh per
// call and not modified afterwards.
type Snapshot struct {
	Name    string // device self-reported name
	Vendor  string
	Product string

	Powered time.Duration // total time powered since manufacture
	Uptime  time.Duration // time powered this session

	TempA       float64 // degrees C
	TempB       float64 // degrees C
	FanRPM      float64
	SupplyVolts float64
	TotalWatts  float64

	Rails [RailCount]Rail

	Taken time.Time
}

// TakeSnapshot reads the complete telemetry set in one fixed sequence:
// identity and vendor/product strings, the two uptime counters, the five
// environmental scalars, then volts/amps/watts for each rail behind its
// select write, and finally a select back to rail 0. The sequence never
// branches on device capability; all supported units answer the same set.
//
// Any single failure aborts the whole pass: the error propagates unchanged
// and no snapshot is returned. There is no retry and no partial result. On
// the error path one best-effort rail 0 select is still issued so a failed
// pass does not leave the unit pointed at a stray rail; its outcome does
// not mask the original error.
func TakeSnapshot(rw io.ReadWriter) (*Snapshot, error) {
	dev := NewDevice(rw)
	snap, err := takeSnapshot(dev)
	if err != nil {
		dev.SelectRail(0) // best effort
		return nil, err
	}
	return snap, nil
}

func takeSnapshot(dev *Device) (*Snapshot, error) {
	var snap Snapshot
	var err error

	if snap.Name, err = dev.Identity(); err != nil {
		return nil, err
	}
	if snap.Vendor, err = dev.ReadString(RegVendorString); err != nil {
		return nil, err
	}
	if snap.Product, err = dev.ReadString(RegProductString); err != nil {
		return nil, err
	}

	powered, err := dev.ReadUint32(RegPoweredTotal)
	if err != nil {
		return nil, err
	}
	snap.Powered = time.Duration(powered) * time.Second

	uptime, err := dev.ReadUint32(RegPoweredSession)
	if err != nil {
		return nil, err
	}
	snap.Uptime = time.Duration(uptime) * time.Second

	if snap.TempA, err = dev.ReadScalar(RegTempA); err != nil {
		return nil, err
	}
	if snap.TempB, err = dev.ReadScalar(RegTempB); err != nil {
		return nil, err
	}
	if snap.FanRPM, err = dev.ReadScalar(RegFanRPM); err != nil {
		return nil, err
	}
	if snap.SupplyVolts, err = dev.ReadScalar(RegSupplyVolts); err != nil {
		return nil, err
	}
	if snap.TotalWatts, err = dev.ReadScalar(RegTotalWatts); err != nil {
		return nil, err
	}

	for rail := 0; rail < RailCount; rail++ {
		if err = dev.SelectRail(rail); err != nil {
			return nil, err
		}
		if snap.Rails[rail].Volts, err = dev.ReadScalar(RegRailVolts); err != nil {
			return nil, err
		}
		if snap.Rails[rail].Amps, err = dev.ReadScalar(RegRailAmps); err != nil {
			return nil, err
		}
		if snap.Rails[rail].Watts, err = dev.ReadScalar(RegRailWatts); err != nil {
			return nil, err
		}
	}

	// Leave the unit on rail 0. Device state has no readback, so the only
	// deterministic state is the one we put it in.
	if err = dev.SelectRail(0); err != nil {
		return nil, err
	}

	snap.Taken = time.Now()
	return &snap, nil
}
