// Copyright 2025 The sh1107sim Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package sh1107

// Display RAM geometry. The die always carries 16 pages of 128 columns;
// panels narrower than that use a slice of it, selected by Opts.XOffset.
const (
	ramPages = 16
	ramWidth = 128
)

// addressingMode selects how the address counter advances after a data
// write. The values are the opcodes that select them.
type addressingMode byte

const (
	// pageAddressing advances the column and wraps within the page.
	pageAddressing = addressingMode(cmdPageAddressing)
	// verticalAddressing advances the page, stepping to the next column
	// after the last page.
	verticalAddressing = addressingMode(cmdVertAddressing)
)

func (m addressingMode) String() string {
	if m == verticalAddressing {
		return "vertical"
	}
	return "page"
}

// writeData stores one byte of pixel data at the address counter and
// advances it. Each byte covers an 8 row band of one column, least
// significant bit topmost. Segment remap mirrors the written column, not
// the rendered one.
func (d *Dev) writeData(v byte) {
	column := d.activeColumn
	if d.segmentRemap {
		column = d.width - 1 - column
	}
	d.ram[d.activePage*d.width+column] = v
	switch d.mode {
	case verticalAddressing:
		d.activePage++
		if d.activePage >= ramPages {
			d.activePage = 0
			d.activeColumn++
			if d.activeColumn >= d.width {
				d.activeColumn = 0
			}
		}
	default:
		d.activeColumn++
		if d.activeColumn >= d.width {
			d.activeColumn = 0
		}
	}
	d.requestRefresh()
}
