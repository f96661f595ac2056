// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 The Railscope Authors

package psulink

import (
	"fmt"
	"strings"
)

// HexDump renders data as hex plus ASCII, 16 bytes per line with an offset
// column, non-printable bytes shown as '.'. Used on error paths to expose
// raw frames when the device answers something unexpected.
func HexDump(data []byte) string {
	var b strings.Builder
	for off := 0; off < len(data); off += 16 {
		end := off + 16
		if end > len(data) {
			end = len(data)
		}
		line := data[off:end]

		fmt.Fprintf(&b, "%04x  ", off)
		for i := 0; i < 16; i++ {
			if i < len(line) {
				fmt.Fprintf(&b, "%02x ", line[i])
			} else {
				b.WriteString("   ")
			}
			if i == 7 {
				b.WriteByte(' ')
			}
		}
		b.WriteByte(' ')
		for _, c := range line {
			if c >= 0x20 && c <= 0x7e {
				b.WriteByte(c)
			} else {
				b.WriteByte('.')
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}
