// Copyright 2025 The sh1107sim Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package sh1107

import "github.com/chipemu/sh1107sim/image1bit"

// renderLocked rasterizes the display RAM through the current display
// settings into img, which must be d.width by d.height. RAM is never
// modified; rendering twice with unchanged state yields identical frames.
// The caller must hold d.mu.
//
// The row arithmetic runs in uint32 like the silicon's counters: with
// rows reversed a start line beyond height-1 wraps through the unsigned
// domain before the final modulo. The modulo is by width, not height, a
// controller quirk visible on non-square panels that hosts rely on.
func (d *Dev) renderLocked(img *image1bit.VerticalLSB) {
	w := uint32(d.width)
	for y := 0; y < d.height; y++ {
		virtualY := uint32(y) + uint32(d.startLine)
		if d.reverseRows {
			virtualY = uint32(d.height-1) - virtualY
		}
		virtualY %= w
		rowBase := (virtualY / 8) * w
		mask := byte(1) << (virtualY & 7)
		for x := 0; x < d.width; x++ {
			column := (uint32(x) + uint32(d.xOffset) + w) % w
			on := d.ram[rowBase+column]&mask != 0
			if d.inverted {
				on = !on
			}
			img.SetBit(x, y, image1bit.Bit(on && d.displayOn))
		}
	}
}
