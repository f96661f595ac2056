// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 The Railscope Authors

package psulink

import "fmt"

// Command is the 3-byte tuple carried in every output report: an opcode, a
// register address and a register-specific argument. Commands are built per
// call and have no identity beyond their bytes.
type Command struct {
	Op  byte
	Reg byte
	Arg byte
}

// ReadCommand builds a register read. The argument byte is always zero for
// reads.
func ReadCommand(reg byte) Command {
	return Command{Op: OpReadRegister, Reg: reg}
}

// IdentityCommand builds the identity string read. The device answers with
// its self-reported name, NUL terminated.
func IdentityCommand() Command {
	return Command{Op: OpReadIdentity, Reg: RegIdentityTag}
}

// SelectRailCommand builds the output rail select write. rail must be in
// range; Device.SelectRail checks it before anything touches the wire.
func SelectRailCommand(rail int) Command {
	return Command{Op: OpWriteRegister, Reg: RegRailSelect, Arg: byte(rail)}
}

// String renders the command for diagnostics, naming the register when the
// name is known.
func (c Command) String() string {
	if name := RegisterName(c.Reg); name != "" {
		return fmt.Sprintf("op=0x%02x reg=0x%02x (%s) arg=0x%02x", c.Op, c.Reg, name, c.Arg)
	}
	return fmt.Sprintf("op=0x%02x reg=0x%02x arg=0x%02x", c.Op, c.Reg, c.Arg)
}
