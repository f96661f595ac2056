// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 The Railscope Authors

package psulink

import "io"

// Exchange performs one command/response round trip: write one full output
// report, read one full input report, validate the echo, and return up to
// max payload bytes. The output buffer is a fresh zeroed array every call;
// the transport pads nothing, so stale bytes would otherwise reach the
// device as trailing garbage.
//
// The protocol is strictly half-duplex. Callers own the transport handle
// exclusively for the duration of the call; there is no internal locking
// and no timeout. Errors are never retried here: a short write or read is
// a *TransportError, a bad echo is a *MismatchError, and both end the
// exchange with no payload.
func Exchange(rw io.ReadWriter, cmd Command, max int) ([]byte, error) {
	var out [OutputReportSize]byte
	out[1] = cmd.Op
	out[2] = cmd.Reg
	out[3] = cmd.Arg

	n, err := rw.Write(out[:])
	if err != nil || n != OutputReportSize {
		return nil, &TransportError{Op: "write", Want: OutputReportSize, Got: n, Err: err}
	}

	var in [InputReportSize]byte
	n, err = io.ReadFull(rw, in[:])
	if err != nil || n != InputReportSize {
		return nil, &TransportError{Op: "read", Want: InputReportSize, Got: n, Data: in[:n], Err: err}
	}

	if in[0] != cmd.Op || in[1] != cmd.Reg {
		return nil, &MismatchError{Want: cmd, GotOp: in[0], GotReg: in[1], Response: in[:]}
	}

	if max > MaxPayloadSize {
		max = MaxPayloadSize
	}
	payload := make([]byte, max)
	copy(payload, in[2:2+max])
	return payload, nil
}
