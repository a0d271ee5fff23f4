// Copyright 2025 The sh1107sim Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package oled

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"

	"github.com/chipemu/sh1107sim/image1bit"
)

// Commands, from the SH1107 datasheet.
const (
	setLowColumn    byte = 0x00
	setHighColumn   byte = 0x10
	memoryModePage  byte = 0x20
	setContrast     byte = 0x81
	segRemapOff     byte = 0xa0
	segRemapOn      byte = 0xa1
	normalDisplay   byte = 0xa6
	invertDisplay   byte = 0xa7
	setMultiplex    byte = 0xa8
	dcdcSetting     byte = 0xad
	displayOff      byte = 0xae
	displayOn       byte = 0xaf
	pageAddress     byte = 0xb0
	comScanInc      byte = 0xc0
	comScanDec      byte = 0xc8
	setClockDiv     byte = 0xd5
	setPrecharge    byte = 0xd9
	setVCOMDeselect byte = 0xdb
	setStartLine    byte = 0xdc
)

const (
	i2cCmd  = 0x00 // I²C transaction has a stream of command bytes
	i2cData = 0x40 // I²C transaction has a stream of data bytes
)

// DefaultOpts is the recommended default options.
var DefaultOpts = Opts{
	W:    128,
	H:    128,
	Addr: 0x3c,
}

// Opts defines the options for the device.
type Opts struct {
	W int
	H int
	// MirrorVertical corresponds to the COM scan direction in the panel
	// hardware. Try toggling this if the display is flipped vertically.
	MirrorVertical bool
	// MirrorHorizontal corresponds to the SEG remap configuration in the
	// panel hardware. Try toggling this if the display is flipped
	// horizontally.
	MirrorHorizontal bool
	// The I²C address of the display.
	Addr uint16
}

// NewSPI returns a Dev object that communicates over 4-wire SPI to a
// SH1107 display controller.
//
// Connect SDA to SPI_MOSI, SCK to SPI_CLK, CS to SPI_CS and pass the gpio
// pin wired to D/C. 3-wire mode is not supported.
func NewSPI(p spi.Port, dc gpio.PinOut, opts *Opts) (*Dev, error) {
	if dc == nil || dc == gpio.INVALID {
		return nil, fmt.Errorf("oled: a D/C pin is required, 3-wire mode is not supported")
	}
	if err := dc.Out(gpio.Low); err != nil {
		return nil, err
	}
	c, err := p.Connect(3300*physic.KiloHertz, spi.Mode0, 8)
	if err != nil {
		return nil, err
	}
	return newDev(c, opts, true, dc)
}

// NewI2C returns a Dev object that communicates over I²C to a SH1107
// display controller.
func NewI2C(i i2c.Bus, opts *Opts) (*Dev, error) {
	addr := opts.Addr
	if addr == 0x00 {
		addr = DefaultOpts.Addr
	}
	// Maximum clock speed is 1/2.5µs = 400KHz.
	return newDev(&i2c.Dev{Bus: i, Addr: addr}, opts, false, nil)
}

// Dev is an open handle to the display controller.
type Dev struct {
	// Communication
	c   conn.Conn
	dc  gpio.PinOut
	spi bool

	// Display size controlled by the SH1107.
	rect image.Rectangle

	// Mutable
	// Each of the up to 16 pages covers a horizontal band 8 pixels high,
	// one byte per column. 16*128 = 2048 bytes total for a 128x128
	// display.
	buffer []byte
	// next is lazily initialized on first Draw(). Write() skips this
	// buffer.
	next               *image1bit.VerticalLSB
	startPage, endPage int
	startCol, endCol   int
	// full forces the next paint to send the whole frame.
	full   bool
	halted bool
}

// newDev is the common initialization code that is independent of the bus
// (I²C or SPI) being used.
func newDev(c conn.Conn, opts *Opts, usingSPI bool, dc gpio.PinOut) (*Dev, error) {
	if opts.W < 8 || opts.W > 128 || opts.W&7 != 0 {
		return nil, fmt.Errorf("oled: invalid width %d", opts.W)
	}
	if opts.H < 8 || opts.H > 128 || opts.H&7 != 0 {
		return nil, fmt.Errorf("oled: invalid height %d", opts.H)
	}
	nbPages := opts.H / 8
	d := &Dev{
		c:         c,
		spi:       usingSPI,
		dc:        dc,
		rect:      image.Rect(0, 0, opts.W, opts.H),
		buffer:    make([]byte, nbPages*opts.W),
		startPage: 0,
		endPage:   nbPages,
		startCol:  0,
		endCol:    opts.W,
		// The controller RAM content is unknown, redraw everything on the
		// first paint.
		full: true,
	}
	if err := d.sendCommand(getInitCmd(opts)); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Dev) String() string {
	if d.spi {
		return fmt.Sprintf("oled.Dev{%s, %s, %s}", d.c, d.dc, d.rect.Max)
	}
	return fmt.Sprintf("oled.Dev{%s, %s}", d.c, d.rect.Max)
}

// ColorModel implements display.Drawer.
//
// It is a one bit color model, as implemented by image1bit.Bit.
func (d *Dev) ColorModel() color.Model {
	return image1bit.BitModel
}

// Bounds implements display.Drawer. Min is guaranteed to be {0, 0}.
func (d *Dev) Bounds() image.Rectangle {
	return d.rect
}

// Draw implements display.Drawer.
//
// It draws synchronously; once this function returns, the display is
// updated. On a slow bus (I²C) it may be preferable to defer Draw() calls
// to a background goroutine.
func (d *Dev) Draw(r image.Rectangle, src image.Image, sp image.Point) error {
	var next []byte
	if img, ok := src.(*image1bit.VerticalLSB); ok && r == d.rect && img.Rect == d.rect && sp.X == 0 && sp.Y == 0 {
		// Exact size, full frame, image1bit encoding: fast path!
		next = img.Pix
	} else {
		// Double buffering.
		if d.next == nil {
			d.next = image1bit.NewVerticalLSB(d.rect)
		}
		next = d.next.Pix
		draw.Src.Draw(d.next, r, src, sp)
	}
	return d.drawInternal(next)
}

// Write writes a buffer of pixels to the display.
//
// The format is unusual as each byte represents 8 vertical pixels at a
// time, in horizontal bands 8 pixels high.
//
// This function accepts the content of image1bit.VerticalLSB.Pix.
func (d *Dev) Write(pixels []byte) (int, error) {
	if len(pixels) != len(d.buffer) {
		return 0, fmt.Errorf("oled: invalid pixel stream length; expected %d bytes, got %d bytes", len(d.buffer), len(pixels))
	}
	// Write() skips d.next so it saves 2KiB of RAM.
	if err := d.drawInternal(pixels); err != nil {
		return 0, err
	}
	return len(pixels), nil
}

// SetContrast changes the screen contrast.
func (d *Dev) SetContrast(level byte) error {
	return d.sendCommand([]byte{setContrast, level})
}

// SetDisplayStartLine scrolls the displayed image to start from startLine
// without rewriting display RAM.
//
// startLine must be between 0 and 127.
func (d *Dev) SetDisplayStartLine(startLine byte) error {
	if startLine > 0x7f {
		return fmt.Errorf("oled: invalid start line %d", startLine)
	}
	return d.sendCommand([]byte{setStartLine, startLine})
}

// Invert the display (black on white vs white on black).
func (d *Dev) Invert(blackOnWhite bool) error {
	b := []byte{normalDisplay}
	if blackOnWhite {
		b[0] = invertDisplay
	}
	return d.sendCommand(b)
}

// Halt turns off the display.
//
// Sending any other command afterward reenables the display.
func (d *Dev) Halt() error {
	d.halted = false
	err := d.sendCommand([]byte{displayOff})
	if err == nil {
		d.halted = true
	}
	return err
}

func getInitCmd(opts *Opts) []byte {
	segRemap := segRemapOff
	if opts.MirrorHorizontal {
		segRemap = segRemapOn
	}
	comScan := comScanInc
	if opts.MirrorVertical {
		comScan = comScanDec
	}
	// Initialization flow per the datasheet's software reset sequence,
	// with the DC-DC and timing values the Adafruit driver uses.
	return []byte{
		displayOff,
		setMultiplex, byte(opts.H - 1),
		memoryModePage,
		pageAddress,
		segRemap,
		comScan,
		setStartLine, 0x00,
		dcdcSetting, 0x81,
		setClockDiv, 0x50,
		setVCOMDeselect, 0x35,
		setPrecharge, 0x22,
		normalDisplay,
		displayOn,
	}
}

// calculateSubset returns the smallest page and column band that differs
// between the on-device buffer and next, or skip when they are identical.
func (d *Dev) calculateSubset(next []byte) (int, int, int, int, bool) {
	w := d.rect.Dx()
	h := d.rect.Dy()
	startPage := 0
	endPage := h / 8
	startCol := 0
	endCol := w
	if d.full {
		d.full = false
	} else {
		pageSize := w

		// Top.
		for ; startPage < endPage; startPage++ {
			x := pageSize * startPage
			y := pageSize * (startPage + 1)
			if !bytes.Equal(d.buffer[x:y], next[x:y]) {
				break
			}
		}
		// Bottom.
		for ; endPage > startPage; endPage-- {
			x := pageSize * (endPage - 1)
			y := pageSize * endPage
			if !bytes.Equal(d.buffer[x:y], next[x:y]) {
				break
			}
		}
		if startPage == endPage {
			// Early exit, the image is exactly the same.
			return 0, 0, 0, 0, true
		}

		// Left.
		for ; startCol < endCol; startCol++ {
			for i := startPage; i < endPage; i++ {
				x := i*pageSize + startCol
				if d.buffer[x] != next[x] {
					goto breakLeft
				}
			}
		}
	breakLeft:

		// Right.
		for ; endCol > startCol; endCol-- {
			for i := startPage; i < endPage; i++ {
				x := i*pageSize + endCol - 1
				if d.buffer[x] != next[x] {
					goto breakRight
				}
			}
		}
	breakRight:
	}
	return startPage, endPage, startCol, endCol, false
}

// drawInternal sends image data to the controller.
func (d *Dev) drawInternal(next []byte) error {
	startPage, endPage, startCol, endCol, skip := d.calculateSubset(next)
	if skip {
		return nil
	}
	copy(d.buffer, next)
	d.startPage = startPage
	d.endPage = endPage
	d.startCol = startCol
	d.endCol = endCol

	pageSize := d.rect.Dx()
	for page := d.startPage; page < d.endPage; page++ {
		err := d.sendCommand([]byte{
			pageAddress | byte(page),
			setLowColumn | (byte(d.startCol) & 0x0f),
			setHighColumn | (byte(d.startCol) >> 4),
		})
		if err != nil {
			return err
		}
		pageStart := page * pageSize
		if err := d.sendData(d.buffer[pageStart+d.startCol : pageStart+d.endCol]); err != nil {
			return err
		}
	}
	return nil
}

func (d *Dev) sendData(c []byte) error {
	if d.halted {
		// Transparently enable the display.
		if err := d.sendCommand(nil); err != nil {
			return err
		}
	}
	if d.spi {
		// 4-wire SPI.
		if err := d.dc.Out(gpio.High); err != nil {
			return err
		}
		return d.c.Tx(c, nil)
	}
	return d.c.Tx(append([]byte{i2cData}, c...), nil)
}

func (d *Dev) sendCommand(c []byte) error {
	if d.halted {
		// Transparently enable the display.
		c = append([]byte{displayOn}, c...)
		d.halted = false
	}
	if d.spi {
		// 4-wire SPI.
		if err := d.dc.Out(gpio.Low); err != nil {
			return err
		}
		return d.c.Tx(c, nil)
	}
	return d.c.Tx(append([]byte{i2cCmd}, c...), nil)
}

var _ display.Drawer = &Dev{}
