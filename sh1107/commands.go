// Copyright 2025 The sh1107sim Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package sh1107

import (
	"fmt"

	"go.uber.org/zap"
)

// Command opcodes from the SH1107 datasheet. Opcodes that encode an
// argument in their low bits are represented by the base value of their
// range.
const (
	cmdColumnLow      byte = 0x00 // 0x00..0x0f, low nibble of the column
	cmdColumnHigh     byte = 0x10 // 0x10..0x17, high bits of the column
	cmdPageAddressing byte = 0x20
	cmdVertAddressing byte = 0x21
	cmdContrast       byte = 0x81
	cmdSegRemapOff    byte = 0xa0
	cmdSegRemapOn     byte = 0xa1
	cmdAllOnResume    byte = 0xa4
	cmdAllOn          byte = 0xa5
	cmdNormalVideo    byte = 0xa6
	cmdInverseVideo   byte = 0xa7
	cmdMultiplex      byte = 0xa8
	cmdDCDC           byte = 0xad
	cmdDisplayOff     byte = 0xae
	cmdDisplayOn      byte = 0xaf
	cmdPage           byte = 0xb0 // 0xb0..0xbf, page in the low nibble
	cmdScanNormal     byte = 0xc0
	cmdScanReversed   byte = 0xc8
	cmdDisplayOffset  byte = 0xd3
	cmdClockDivider   byte = 0xd5
	cmdPrecharge      byte = 0xd9
	cmdComPins        byte = 0xda
	cmdVCOMDeselect   byte = 0xdb
	cmdStartLine      byte = 0xdc
	cmdNOP            byte = 0xe3
)

// command is one entry of the opcode dispatch table. lo and hi bound the
// opcodes it matches, inclusive; params is the number of argument bytes
// that follow the opcode on the wire. apply mutates the device and reports
// whether the display content may have changed; a nil apply consumes the
// command and its argument without effect.
type command struct {
	name   string
	lo, hi byte
	params int
	apply  func(d *Dev, op, arg byte) bool
}

// ignored accepts a documented command without emulating it.
func ignored(*Dev, byte, byte) bool { return false }

// commandTable drives both halves of command handling: the accumulator
// reads params off the first matching entry, the interpreter runs its
// apply. Entries are matched first to last, so exact opcodes that fall
// inside a range (0xc0, 0xc8 in the page range) must precede it.
var commandTable = []command{
	{"contrast", cmdContrast, cmdContrast, 1, func(d *Dev, _, arg byte) bool {
		d.contrast = arg
		return true
	}},
	{"display-off", cmdDisplayOff, cmdDisplayOff, 0, func(d *Dev, _, _ byte) bool {
		d.displayOn = false
		d.requestRefresh()
		return false
	}},
	{"display-on", cmdDisplayOn, cmdDisplayOn, 0, func(d *Dev, _, _ byte) bool {
		d.displayOn = true
		d.requestRefresh()
		return false
	}},
	{"normal-video", cmdNormalVideo, cmdNormalVideo, 0, func(d *Dev, _, _ byte) bool {
		d.inverted = false
		return true
	}},
	{"inverse-video", cmdInverseVideo, cmdInverseVideo, 0, func(d *Dev, _, _ byte) bool {
		d.inverted = true
		return true
	}},
	{"page-addressing", cmdPageAddressing, cmdPageAddressing, 0, func(d *Dev, _, _ byte) bool {
		d.mode = pageAddressing
		return false
	}},
	{"vertical-addressing", cmdVertAddressing, cmdVertAddressing, 0, func(d *Dev, _, _ byte) bool {
		d.mode = verticalAddressing
		return false
	}},
	{"scan-normal", cmdScanNormal, cmdScanNormal, 0, func(d *Dev, _, _ byte) bool {
		d.reverseRows = false
		return true
	}},
	{"scan-reversed", cmdScanReversed, cmdScanReversed, 0, func(d *Dev, _, _ byte) bool {
		d.reverseRows = true
		return true
	}},
	{"segment-remap-off", cmdSegRemapOff, cmdSegRemapOff, 0, func(d *Dev, _, _ byte) bool {
		d.segmentRemap = false
		return true
	}},
	{"segment-remap-on", cmdSegRemapOn, cmdSegRemapOn, 0, func(d *Dev, _, _ byte) bool {
		d.segmentRemap = true
		return true
	}},
	{"start-line", cmdStartLine, cmdStartLine, 1, func(d *Dev, _, arg byte) bool {
		d.startLine = arg
		return true
	}},
	{"clock-divider", cmdClockDivider, cmdClockDivider, 1, func(d *Dev, _, arg byte) bool {
		d.clockDivider = 1 + arg&0x0f
		return false
	}},
	{"precharge", cmdPrecharge, cmdPrecharge, 1, func(d *Dev, _, arg byte) bool {
		d.phase1 = arg & 0x0f
		d.phase2 = arg >> 4
		return false
	}},
	{"multiplex", cmdMultiplex, cmdMultiplex, 1, ignored},
	{"display-offset", cmdDisplayOffset, cmdDisplayOffset, 1, ignored},
	{"com-pins", cmdComPins, cmdComPins, 1, ignored},
	{"vcom-deselect", cmdVCOMDeselect, cmdVCOMDeselect, 1, ignored},
	{"all-on", cmdAllOn, cmdAllOn, 0, ignored},
	{"all-on-resume", cmdAllOnResume, cmdAllOnResume, 0, ignored},
	{"nop", cmdNOP, cmdNOP, 0, ignored},
	// The DC-DC control prefix takes an argument but its effect is not
	// emulated, so it is consumed and reported like an unknown opcode.
	{"dc-dc", cmdDCDC, cmdDCDC, 1, nil},
	{"column-low", cmdColumnLow, cmdColumnLow | 0x0f, 0, func(d *Dev, op, _ byte) bool {
		d.activeColumn = ((d.activeColumn & 0x70) | int(op)) % d.width
		return false
	}},
	{"column-high", cmdColumnHigh, cmdColumnHigh | 0x07, 0, func(d *Dev, op, _ byte) bool {
		d.activeColumn = ((d.activeColumn & 0x0f) | int(op&0x07)<<4) % d.width
		return false
	}},
	{"page", cmdPage, 0xc0, 0, func(d *Dev, op, _ byte) bool {
		d.activePage = int(op & 0x0f)
		return true
	}},
}

// findCommand returns the first table entry matching op, or nil.
func findCommand(op byte) *command {
	for i := range commandTable {
		if c := &commandTable[i]; op >= c.lo && op <= c.hi {
			return c
		}
	}
	return nil
}

// acceptCommand buffers one byte of the command stream and reports whether
// a complete command was dispatched. The opcode's table entry declares how
// many argument bytes to collect first; opcodes without an entry dispatch
// immediately. The expected length is clamped to the buffer size, so no
// table entry can demand more bytes than fit.
func (d *Dev) acceptCommand(v byte) bool {
	d.cmd[d.cmdIndex] = v
	if d.cmdIndex == 0 {
		d.cmdLen = 1
		if c := findCommand(v); c != nil {
			d.cmdLen += c.params
		}
		if d.cmdLen > len(d.cmd) {
			d.cmdLen = len(d.cmd)
		}
	}
	d.cmdIndex++
	if d.cmdIndex < d.cmdLen {
		return false
	}
	d.processCommand()
	return true
}

// processCommand interprets the buffered command and resets the buffer.
func (d *Dev) processCommand() {
	op := d.cmd[0]
	var arg byte
	if d.cmdLen > 1 {
		arg = d.cmd[1]
	}
	d.cmdIndex = 0
	c := findCommand(op)
	if c == nil || c.apply == nil {
		d.log.Warn("unknown command", zap.String("opcode", fmt.Sprintf("%#02x", op)))
		return
	}
	if c.apply(d, op, arg) && d.displayOn {
		d.requestRefresh()
	}
}
