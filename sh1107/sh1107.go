// Copyright 2025 The sh1107sim Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package sh1107

import (
	"fmt"
	"image"
	"sync"

	"go.uber.org/zap"
	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/physic"

	"github.com/chipemu/sh1107sim/image1bit"
)

// DefaultOpts is the recommended default options: a 128x128 panel with
// display RAM column offset 96 answering on I²C address 0x3c.
var DefaultOpts = Opts{
	W:       128,
	H:       128,
	XOffset: 96,
	Addr:    0x3c,
}

// Opts defines the emulated panel.
type Opts struct {
	// W and H are the panel dimensions in pixels. Each must be a multiple
	// of 8 between 8 and 128.
	W int
	H int
	// XOffset is the fixed horizontal offset of the panel glass within
	// the 128 column display RAM. It varies between display modules; 96
	// matches the common 1.12" 128x128 boards.
	XOffset int
	// Addr is the I²C address the chip answers on, typically 0x3c or
	// 0x3d.
	Addr uint16
	// Drawer receives the rendered frame on each refresh tick. It may be
	// nil when the host only polls Snapshot; no refresh is ever scheduled
	// then.
	//
	// Draw is called with the device lock held. The drawer must not call
	// back into the device.
	Drawer display.Drawer
	// Scheduler arms the one-shot refresh timer. Defaults to
	// TimerScheduler.
	Scheduler Scheduler
	// Logger receives protocol diagnostics. Defaults to a no-op logger.
	Logger *zap.Logger
}

// Dev is an emulated SH1107 display controller.
//
// It implements i2c.BusCloser; point any periph.io I²C device driver at it
// and the driver's traffic lands in the emulated display RAM. Dev is safe
// for concurrent use.
type Dev struct {
	width   int
	height  int
	xOffset int
	addr    uint16

	drawer display.Drawer
	sched  Scheduler
	log    *zap.Logger

	mu sync.Mutex
	// Display RAM, 16 pages by 128 columns, one byte per column per page
	// with the least significant bit topmost. Sized for the largest panel
	// regardless of the configured width, like the physical die.
	ram [ramPages * ramWidth]byte

	// Display settings.
	displayOn    bool
	inverted     bool
	reverseRows  bool
	segmentRemap bool
	contrast     byte
	startLine    byte

	// Addressing state.
	mode         addressingMode
	activeColumn int
	activePage   int

	// Timing settings, stored but not interpreted.
	clockDivider   byte
	multiplexRatio byte
	phase1         byte
	phase2         byte

	// Protocol framing.
	awaitingControl bool
	continuous      bool
	commandMode     bool
	cmd             [8]byte
	cmdIndex        int
	cmdLen          int

	busSpeed       physic.Frequency
	refreshPending bool
	frame          *image1bit.VerticalLSB
}

// New returns an emulated SH1107 wired to opts.Drawer.
func New(opts *Opts) (*Dev, error) {
	if opts.W < 8 || opts.W > 128 || opts.W&7 != 0 {
		return nil, fmt.Errorf("sh1107: invalid width %d", opts.W)
	}
	if opts.H < 8 || opts.H > 128 || opts.H&7 != 0 {
		return nil, fmt.Errorf("sh1107: invalid height %d", opts.H)
	}
	if opts.XOffset < -opts.W || opts.XOffset > opts.W {
		return nil, fmt.Errorf("sh1107: invalid column offset %d", opts.XOffset)
	}
	addr := opts.Addr
	if addr == 0 {
		addr = DefaultOpts.Addr
	}
	if addr != 0x3c && addr != 0x3d {
		return nil, fmt.Errorf("sh1107: unsupported I²C address %#x", addr)
	}
	sched := opts.Scheduler
	if sched == nil {
		sched = TimerScheduler{}
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	d := &Dev{
		width:   opts.W,
		height:  opts.H,
		xOffset: opts.XOffset,
		addr:    addr,
		drawer:  opts.Drawer,
		sched:   sched,
		log:     log,
		frame:   image1bit.NewVerticalLSB(image.Rect(0, 0, opts.W, opts.H)),
	}
	d.mu.Lock()
	d.resetLocked()
	d.mu.Unlock()
	return d, nil
}

func (d *Dev) String() string {
	return fmt.Sprintf("sh1107.Dev{%dx%d, %#02x}", d.width, d.height, d.addr)
}

// Reset returns every display setting to its power-on default, as a pulse
// on the RES# pin would. Display RAM is preserved.
func (d *Dev) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.resetLocked()
	d.log.Debug("reset")
}

func (d *Dev) resetLocked() {
	d.displayOn = false
	d.inverted = false
	d.reverseRows = false
	d.segmentRemap = false
	d.contrast = 0x7f
	d.startLine = 0
	d.mode = pageAddressing
	d.activeColumn = 0
	d.activePage = 0
	d.clockDivider = 1
	d.multiplexRatio = 63
	d.phase1 = 2
	d.phase2 = 2
	d.awaitingControl = true
	d.cmdIndex = 0
	d.refreshPending = false
}

// Snapshot renders the current display RAM through the display settings
// and returns the frame. It works with or without a Drawer and never
// waits for a refresh tick.
func (d *Dev) Snapshot() *image1bit.VerticalLSB {
	d.mu.Lock()
	defer d.mu.Unlock()
	img := image1bit.NewVerticalLSB(image.Rect(0, 0, d.width, d.height))
	d.renderLocked(img)
	return img
}

// requestRefresh arms a one-shot render unless one is already pending.
// The caller must hold d.mu.
func (d *Dev) requestRefresh() {
	if d.drawer == nil || d.refreshPending {
		return
	}
	d.refreshPending = true
	d.sched.Schedule(frameInterval, d.refresh)
}

// refresh is the timer callback: render the RAM and push the frame to the
// drawer. Writes that arrive after this ran schedule the next tick.
func (d *Dev) refresh() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.renderLocked(d.frame)
	if err := d.drawer.Draw(d.frame.Bounds(), d.frame, image.Point{}); err != nil {
		d.log.Warn("drawer rejected frame", zap.Error(err))
	}
	d.refreshPending = false
}
