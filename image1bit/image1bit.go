// Copyright 2025 The sh1107sim Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package image1bit implements a 1-bit image format with the vertical LSB
// packing used by SH1107-class display controllers.
//
// Each byte of pixel data covers a band of 8 vertically stacked pixels in
// one column; the least significant bit is the topmost pixel of the band.
// This is the exact layout of the controller's display RAM, so frames can
// move between the simulator, drivers and viewers without bit shuffling.
package image1bit

import (
	"image"
	"image/color"
)

// Bit implements a 1-bit color.
type Bit bool

// RGBA returns either all white or all black.
func (b Bit) RGBA() (uint32, uint32, uint32, uint32) {
	if b {
		return 0xffff, 0xffff, 0xffff, 0xffff
	}
	return 0, 0, 0, 0xffff
}

func (b Bit) String() string {
	if b {
		return "On"
	}
	return "Off"
}

// Possible bitness.
const (
	On  = Bit(true)
	Off = Bit(false)
)

// BitModel converts any color.Color to Bit.
//
// A color converts to On when its intensity, once reduced to grayscale, is
// at least 50%.
var BitModel = color.ModelFunc(convertBit)

func convertBit(c color.Color) color.Color {
	if b, ok := c.(Bit); ok {
		return b
	}
	r, g, b, _ := c.RGBA()
	// Values are on 16 bits.
	y := (299*r + 587*g + 114*b + 500) / 1000
	return Bit(y >= 0x8000)
}

// VerticalLSB is a 1-bit image with 8 vertically stacked pixels per byte.
//
// The image is divided into horizontal bands of 8 pixel rows. Each band is
// stored as one byte per column, LSB on top.
type VerticalLSB struct {
	// Pix holds the image's pixels, as vertically packed bits. A band of
	// 8 rows takes Stride bytes.
	Pix []byte
	// Stride is the Pix stride (in bytes) between vertically adjacent
	// bands.
	Stride int
	// Rect is the image's bounds.
	Rect image.Rectangle
}

// NewVerticalLSB returns an initialized VerticalLSB instance.
//
// The vertical span is rounded out to full 8-pixel bands.
func NewVerticalLSB(r image.Rectangle) *VerticalLSB {
	w, h := r.Dx(), r.Dy()
	if w < 0 || h < 0 {
		return &VerticalLSB{Rect: r}
	}
	bands := bandEnd(r.Max.Y) - bandStart(r.Min.Y)
	return &VerticalLSB{
		Pix:    make([]byte, w*bands),
		Stride: w,
		Rect:   r,
	}
}

// ColorModel implements image.Image.
func (i *VerticalLSB) ColorModel() color.Model {
	return BitModel
}

// Bounds implements image.Image.
func (i *VerticalLSB) Bounds() image.Rectangle {
	return i.Rect
}

// At implements image.Image.
func (i *VerticalLSB) At(x, y int) color.Color {
	return i.BitAt(x, y)
}

// BitAt is the optimized version of At().
func (i *VerticalLSB) BitAt(x, y int) Bit {
	if !(image.Point{X: x, Y: y}.In(i.Rect)) {
		return Off
	}
	offset, mask := i.pixOffset(x, y)
	return Bit(i.Pix[offset]&mask != 0)
}

// Set implements draw.Image.
func (i *VerticalLSB) Set(x, y int, c color.Color) {
	i.SetBit(x, y, convertBit(c).(Bit))
}

// SetBit is the optimized version of Set().
func (i *VerticalLSB) SetBit(x, y int, b Bit) {
	if !(image.Point{X: x, Y: y}.In(i.Rect)) {
		return
	}
	offset, mask := i.pixOffset(x, y)
	if b {
		i.Pix[offset] |= mask
	} else {
		i.Pix[offset] &^= mask
	}
}

// DrawHLine draws a horizontal line on row y from x1 to x2 exclusive.
func (i *VerticalLSB) DrawHLine(x1, x2, y int, b Bit) {
	for x := x1; x < x2; x++ {
		i.SetBit(x, y, b)
	}
}

// DrawVLine draws a vertical line on column x from y1 to y2 exclusive.
func (i *VerticalLSB) DrawVLine(y1, y2, x int, b Bit) {
	for y := y1; y < y2; y++ {
		i.SetBit(x, y, b)
	}
}

// pixOffset returns the byte offset into Pix and the bit mask addressing
// the pixel at (x, y). The caller must have bounds-checked (x, y).
func (i *VerticalLSB) pixOffset(x, y int) (int, byte) {
	band := y/8 - bandStart(i.Rect.Min.Y)
	offset := band*i.Stride + (x - i.Rect.Min.X)
	return offset, 1 << uint(y&7)
}

func bandStart(y int) int {
	return y / 8
}

func bandEnd(y int) int {
	return (y + 7) / 8
}
