// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 The Railscope Authors

package psulink

import (
	"fmt"
	"strings"
	"time"
)

// FormatUptime renders a duration the way the counters are usually read:
// whole days and the remaining hours.
func FormatUptime(d time.Duration) string {
	secs := int64(d / time.Second)
	return fmt.Sprintf("%dd. %dh", secs/86400, secs/3600%24)
}

// FormatSnapshot renders a snapshot as the classic fixed-column report:
// quoted identity strings, uptime counters with raw seconds, one line per
// scalar and per rail value. Labels occupy a 16-column field.
func FormatSnapshot(s *Snapshot) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%-16s'%s'\n", "name:", s.Name)
	fmt.Fprintf(&b, "%-16s'%s'\n", "vendor:", s.Vendor)
	fmt.Fprintf(&b, "%-16s'%s'\n", "product:", s.Product)
	fmt.Fprintf(&b, "%-16s%d (%s)\n", "powered:", int64(s.Powered/time.Second), FormatUptime(s.Powered))
	fmt.Fprintf(&b, "%-16s%d (%s)\n", "uptime:", int64(s.Uptime/time.Second), FormatUptime(s.Uptime))
	fmt.Fprintf(&b, "%-16s%5.1f\n", "temp1:", s.TempA)
	fmt.Fprintf(&b, "%-16s%5.1f\n", "temp2:", s.TempB)
	fmt.Fprintf(&b, "%-16s%5.1f\n", "fan rpm:", s.FanRPM)
	fmt.Fprintf(&b, "%-16s%5.1f\n", "supply volts:", s.SupplyVolts)
	fmt.Fprintf(&b, "%-16s%5.1f\n", "total watts:", s.TotalWatts)
	for i, r := range s.Rails {
		fmt.Fprintf(&b, "%-16s%5.1f\n", fmt.Sprintf("output%d volts:", i), r.Volts)
		fmt.Fprintf(&b, "%-16s%5.1f\n", fmt.Sprintf("output%d amps:", i), r.Amps)
		fmt.Fprintf(&b, "%-16s%5.1f\n", fmt.Sprintf("output%d watts:", i), r.Watts)
	}

	return b.String()
}

// FormatSummary renders a snapshot as one line, for periodic text output
// and recording playback.
func FormatSummary(s *Snapshot) string {
	return fmt.Sprintf("%s %s vin=%.1fV out=%.1fW temp=%.1f/%.1fC fan=%.0frpm rails=%.1f/%.1f/%.1fW",
		s.Taken.Format("15:04:05"), s.Name,
		s.SupplyVolts, s.TotalWatts,
		s.TempA, s.TempB, s.FanRPM,
		s.Rails[0].Watts, s.Rails[1].Watts, s.Rails[2].Watts)
}
