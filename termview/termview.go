// Copyright 2025 The sh1107sim Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package termview implements a display.Drawer that renders a monochrome
// panel to a terminal using ANSI color codes.
//
// Useful to watch what firmware paints on the emulated SH1107 without a
// graphical environment: hand it to the emulator as its Drawer and every
// refresh redraws in place.
package termview

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"io"

	"github.com/maruel/ansi256"
	"github.com/mattn/go-colorable"
	"periph.io/x/conn/v3/display"

	"github.com/chipemu/sh1107sim/image1bit"
)

// Opts represents the options available for this display.
type Opts struct {
	// W and H describe the viewed panel in pixels.
	W int
	H int
	// On and Off are the colors for lit and dark pixels. The zero values
	// select white on black.
	On  color.NRGBA
	Off color.NRGBA
	// Palette translates colors to terminal codes. Defaults to
	// ansi256.Default.
	Palette *ansi256.Palette
	// Writer receives the terminal output. Defaults to a colorable
	// stdout.
	Writer io.Writer
}

// Dev is a monochrome panel viewer that outputs to the console.
type Dev struct {
	w       io.Writer
	rect    image.Rectangle
	palette ansi256.Palette
	on, off color.NRGBA

	frame *image1bit.VerticalLSB
	drawn bool
	buf   bytes.Buffer
}

// New returns a Dev that displays at the console.
func New(opts *Opts) (*Dev, error) {
	if opts.W <= 0 || opts.H <= 0 {
		return nil, fmt.Errorf("termview: invalid size %dx%d", opts.W, opts.H)
	}
	p := opts.Palette
	if p == nil {
		p = ansi256.Default
	}
	w := opts.Writer
	if w == nil {
		w = colorable.NewColorableStdout()
	}
	on := opts.On
	if on == (color.NRGBA{}) {
		on = color.NRGBA{0xff, 0xff, 0xff, 0xff}
	}
	off := opts.Off
	if off == (color.NRGBA{}) {
		off = color.NRGBA{0x00, 0x00, 0x00, 0xff}
	}
	return &Dev{
		w:       w,
		rect:    image.Rect(0, 0, opts.W, opts.H),
		palette: *p,
		on:      on,
		off:     off,
		frame:   image1bit.NewVerticalLSB(image.Rect(0, 0, opts.W, opts.H)),
	}, nil
}

func (d *Dev) String() string {
	return fmt.Sprintf("TermView{%dx%d}", d.rect.Dx(), d.rect.Dy())
}

// Halt implements conn.Resource.
//
// It resets the terminal attributes so the shell is not corrupted.
func (d *Dev) Halt() error {
	_, err := d.w.Write([]byte("\n\033[0m"))
	return err
}

// ColorModel implements display.Drawer.
func (d *Dev) ColorModel() color.Model {
	return image1bit.BitModel
}

// Bounds implements display.Drawer.
func (d *Dev) Bounds() image.Rectangle {
	return d.rect
}

// Draw implements display.Drawer.
func (d *Dev) Draw(r image.Rectangle, src image.Image, sp image.Point) error {
	r = r.Intersect(d.rect)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			c := src.At(sp.X+x-r.Min.X, sp.Y+y-r.Min.Y)
			d.frame.SetBit(x, y, image1bit.BitModel.Convert(c).(image1bit.Bit))
		}
	}
	return d.refresh()
}

// Write accepts a full frame in the vertical LSB packing used by the
// controller RAM, the content of image1bit.VerticalLSB.Pix.
func (d *Dev) Write(pixels []byte) (int, error) {
	if len(pixels) != len(d.frame.Pix) {
		return 0, fmt.Errorf("termview: invalid frame length %d, want %d", len(pixels), len(d.frame.Pix))
	}
	copy(d.frame.Pix, pixels)
	if err := d.refresh(); err != nil {
		return 0, err
	}
	return len(pixels), nil
}

// refresh repaints the whole panel, moving the cursor back up so
// consecutive frames animate in place.
func (d *Dev) refresh() error {
	// Minimize allocations per call, the buffer is reused.
	d.buf.Reset()
	if d.drawn {
		fmt.Fprintf(&d.buf, "\033[%dA", d.rect.Dy())
	}
	for y := 0; y < d.rect.Dy(); y++ {
		_, _ = d.buf.WriteString("\r\033[0m")
		for x := 0; x < d.rect.Dx(); x++ {
			c := d.off
			if d.frame.BitAt(x, y) == image1bit.On {
				c = d.on
			}
			_, _ = io.WriteString(&d.buf, d.palette.Block(c))
		}
		_, _ = d.buf.WriteString("\033[0m\n")
	}
	d.drawn = true
	_, err := d.buf.WriteTo(d.w)
	return err
}

var _ display.Drawer = &Dev{}
var _ fmt.Stringer = &Dev{}
