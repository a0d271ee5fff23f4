// Copyright 2025 The sh1107sim Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package image1bit

import (
	"image"
	"image/color"
	"testing"
)

func TestBitRGBA(t *testing.T) {
	if r, g, b, a := On.RGBA(); r != 0xffff || g != 0xffff || b != 0xffff || a != 0xffff {
		t.Errorf("On.RGBA() = (%x, %x, %x, %x)", r, g, b, a)
	}
	if r, g, b, a := Off.RGBA(); r != 0 || g != 0 || b != 0 || a != 0xffff {
		t.Errorf("Off.RGBA() = (%x, %x, %x, %x)", r, g, b, a)
	}
	if On.String() != "On" || Off.String() != "Off" {
		t.Errorf("String() = %q, %q", On.String(), Off.String())
	}
}

func TestBitModel(t *testing.T) {
	tests := []struct {
		name  string
		input color.Color
		want  Bit
	}{
		{"bit passthrough", On, On},
		{"black", color.Black, Off},
		{"white", color.White, On},
		{"dark gray", color.RGBA{0x40, 0x40, 0x40, 0xff}, Off},
		{"light gray", color.RGBA{0xc0, 0xc0, 0xc0, 0xff}, On},
		{"red", color.RGBA{0xff, 0x00, 0x00, 0xff}, Off},
		{"green", color.RGBA{0x00, 0xff, 0x00, 0xff}, On},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BitModel.Convert(tt.input).(Bit); got != tt.want {
				t.Errorf("Convert(%v) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestNewVerticalLSB(t *testing.T) {
	tests := []struct {
		name       string
		rect       image.Rectangle
		wantPixLen int
		wantStride int
	}{
		{"128x128", image.Rect(0, 0, 128, 128), 128 * 16, 128},
		{"128x64", image.Rect(0, 0, 128, 64), 128 * 8, 128},
		{"ragged height", image.Rect(0, 0, 8, 12), 8 * 2, 8},
		{"band offset", image.Rect(0, 8, 8, 24), 8 * 2, 8},
		{"empty", image.Rect(0, 0, 0, 0), 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := NewVerticalLSB(tt.rect)
			if len(img.Pix) != tt.wantPixLen {
				t.Errorf("len(Pix) = %d, want %d", len(img.Pix), tt.wantPixLen)
			}
			if img.Stride != tt.wantStride {
				t.Errorf("Stride = %d, want %d", img.Stride, tt.wantStride)
			}
			if img.Bounds() != tt.rect {
				t.Errorf("Bounds() = %v, want %v", img.Bounds(), tt.rect)
			}
		})
	}
}

func TestVerticalLSBPacking(t *testing.T) {
	// One byte covers 8 vertically stacked pixels, LSB on top.
	tests := []struct {
		x, y       int
		wantOffset int
		wantMask   byte
	}{
		{0, 0, 0, 0x01},
		{0, 7, 0, 0x80},
		{5, 3, 5, 0x08},
		{0, 8, 16, 0x01},
		{15, 15, 31, 0x80},
	}
	for _, tt := range tests {
		img := NewVerticalLSB(image.Rect(0, 0, 16, 16))
		img.SetBit(tt.x, tt.y, On)
		for i, b := range img.Pix {
			want := byte(0)
			if i == tt.wantOffset {
				want = tt.wantMask
			}
			if b != want {
				t.Errorf("SetBit(%d, %d): Pix[%d] = %#02x, want %#02x", tt.x, tt.y, i, b, want)
			}
		}
		if !img.BitAt(tt.x, tt.y) {
			t.Errorf("BitAt(%d, %d) = Off after SetBit", tt.x, tt.y)
		}
	}
}

func TestVerticalLSBSetClear(t *testing.T) {
	img := NewVerticalLSB(image.Rect(0, 0, 8, 8))
	img.Set(3, 4, color.White)
	if !img.BitAt(3, 4) {
		t.Fatal("Set(white) did not set the bit")
	}
	img.Set(3, 4, color.Black)
	if img.BitAt(3, 4) {
		t.Fatal("Set(black) did not clear the bit")
	}
}

func TestVerticalLSBOutOfBounds(t *testing.T) {
	img := NewVerticalLSB(image.Rect(0, 0, 8, 8))
	// Writes outside the bounds are dropped, reads return Off.
	img.SetBit(-1, 0, On)
	img.SetBit(8, 0, On)
	img.SetBit(0, 8, On)
	for _, b := range img.Pix {
		if b != 0 {
			t.Fatalf("out of bounds write modified Pix: %#v", img.Pix)
		}
	}
	if img.BitAt(8, 8) != Off {
		t.Error("BitAt() out of bounds = On, want Off")
	}
}

func TestDrawLines(t *testing.T) {
	img := NewVerticalLSB(image.Rect(0, 0, 8, 8))
	img.DrawHLine(1, 7, 2, On)
	img.DrawVLine(0, 8, 4, On)
	for x := 0; x < 8; x++ {
		want := x >= 1 && x < 7
		if got := bool(img.BitAt(x, 2)); got != want {
			t.Errorf("BitAt(%d, 2) = %v, want %v", x, got, want)
		}
	}
	for y := 0; y < 8; y++ {
		if !img.BitAt(4, y) {
			t.Errorf("BitAt(4, %d) = Off, want On", y)
		}
	}
}
