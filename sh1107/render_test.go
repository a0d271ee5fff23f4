// Copyright 2025 The sh1107sim Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package sh1107

import (
	"image"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap/zaptest"

	"github.com/chipemu/sh1107sim/image1bit"
)

// snapshotDev builds a device without a drawer; tests pull frames with
// Snapshot.
func snapshotDev(t *testing.T, opts Opts) *Dev {
	t.Helper()
	opts.Logger = zaptest.NewLogger(t)
	d, err := New(&opts)
	if err != nil {
		t.Fatal(err)
	}
	return d
}

// The default panel maps RAM column c to screen column (c+32)%128: RAM
// column 0 lands at x=32 with the stock offset of 96.
func TestSnapshotDefaultMapping(t *testing.T) {
	d := snapshotDev(t, DefaultOpts)
	sendCommands(t, d, 0xaf)
	sendData(t, d, 0x01)

	img := d.Snapshot()
	if got := img.BitAt(32, 0); got != image1bit.On {
		t.Errorf("pixel (32,0) = %s, want On", got)
	}
	for _, p := range []image.Point{{31, 0}, {33, 0}, {32, 1}} {
		if got := img.BitAt(p.X, p.Y); got != image1bit.Off {
			t.Errorf("pixel (%d,%d) = %s, want Off", p.X, p.Y, got)
		}
	}
}

func TestSnapshotDisplayOff(t *testing.T) {
	d := snapshotDev(t, DefaultOpts)
	sendData(t, d, 0xff, 0xff, 0xff, 0xff)

	want := image1bit.NewVerticalLSB(image.Rect(0, 0, 128, 128))
	if diff := cmp.Diff(want, d.Snapshot()); diff != "" {
		t.Errorf("frame with display off (-want +got):\n%s", diff)
	}
}

// A set bit renders dark when inverted, a clear bit lights up.
func TestSnapshotInvert(t *testing.T) {
	d := snapshotDev(t, DefaultOpts)
	sendCommands(t, d, 0xaf, 0xa7)
	sendData(t, d, 0x08) // bit 3, row 3

	img := d.Snapshot()
	if got := img.BitAt(32, 3); got != image1bit.Off {
		t.Errorf("inverted set pixel (32,3) = %s, want Off", got)
	}
	if got := img.BitAt(32, 2); got != image1bit.On {
		t.Errorf("inverted clear pixel (32,2) = %s, want On", got)
	}

	sendCommands(t, d, 0xa6)
	img = d.Snapshot()
	if got := img.BitAt(32, 3); got != image1bit.On {
		t.Errorf("normal set pixel (32,3) = %s, want On", got)
	}
}

func TestSnapshotStartLine(t *testing.T) {
	d := snapshotDev(t, DefaultOpts)
	sendCommands(t, d, 0xaf)
	sendData(t, d, 0x02) // bit 1, row 1

	if got := d.Snapshot().BitAt(32, 1); got != image1bit.On {
		t.Errorf("pixel (32,1) before scroll = %s, want On", got)
	}

	// Scrolling by one line moves RAM row 1 to screen row 0.
	sendCommands(t, d, 0xdc, 0x01)
	img := d.Snapshot()
	if got := img.BitAt(32, 0); got != image1bit.On {
		t.Errorf("pixel (32,0) after scroll = %s, want On", got)
	}
	if got := img.BitAt(32, 1); got != image1bit.Off {
		t.Errorf("pixel (32,1) after scroll = %s, want Off", got)
	}
}

func TestSnapshotReverseRows(t *testing.T) {
	d := snapshotDev(t, DefaultOpts)
	sendCommands(t, d, 0xaf, 0xbf) // page 15
	sendData(t, d, 0x80)           // bit 7: RAM row 127

	if got := d.Snapshot().BitAt(32, 127); got != image1bit.On {
		t.Errorf("pixel (32,127) unreversed = %s, want On", got)
	}

	sendCommands(t, d, 0xc8)
	img := d.Snapshot()
	if got := img.BitAt(32, 0); got != image1bit.On {
		t.Errorf("pixel (32,0) reversed = %s, want On", got)
	}
	if got := img.BitAt(32, 127); got != image1bit.Off {
		t.Errorf("pixel (32,127) reversed = %s, want Off", got)
	}
}

// Scrolling past the end wraps through the row counter: with reversed
// rows and start line 200 the screen's top row shows RAM row 55.
func TestSnapshotReverseRowsScrollWrap(t *testing.T) {
	d := snapshotDev(t, DefaultOpts)
	sendCommands(t, d, 0xaf, 0xb6) // page 6
	sendData(t, d, 0x80)           // bit 7: RAM row 55

	sendCommands(t, d, 0xc8, 0xdc, 200)
	if got := d.Snapshot().BitAt(32, 0); got != image1bit.On {
		t.Errorf("pixel (32,0) = %s, want On", got)
	}
}

func TestSnapshotColumnWrap(t *testing.T) {
	d := snapshotDev(t, DefaultOpts)
	sendCommands(t, d, 0xaf, 0x0f, 0x17) // column 127
	sendData(t, d, 0x01)

	// Column 127 shows at x=31 with the stock offset.
	if got := d.Snapshot().BitAt(31, 0); got != image1bit.On {
		t.Errorf("pixel (31,0) = %s, want On", got)
	}
}

func TestSnapshotXOffsetZero(t *testing.T) {
	d := snapshotDev(t, Opts{W: 128, H: 128, XOffset: 0, Addr: 0x3c})
	sendCommands(t, d, 0xaf)
	sendData(t, d, 0x01)

	if got := d.Snapshot().BitAt(0, 0); got != image1bit.On {
		t.Errorf("pixel (0,0) = %s, want On", got)
	}
}

func TestSnapshotXOffsetNegative(t *testing.T) {
	d := snapshotDev(t, Opts{W: 128, H: 128, XOffset: -8, Addr: 0x3c})
	sendCommands(t, d, 0xaf)
	sendData(t, d, 0x01)

	// RAM column 0 shows at x=8 when the glass sits 8 columns into RAM.
	if got := d.Snapshot().BitAt(8, 0); got != image1bit.On {
		t.Errorf("pixel (8,0) = %s, want On", got)
	}
}

// The row counter wraps modulo the panel width, not its height. On a
// 64 wide, 128 tall panel the bottom half repeats the top half.
func TestSnapshotRowWrapUsesWidth(t *testing.T) {
	d := snapshotDev(t, Opts{W: 64, H: 128, XOffset: 0, Addr: 0x3c})
	sendCommands(t, d, 0xaf)
	sendData(t, d, 0x01)

	img := d.Snapshot()
	if got := img.BitAt(0, 0); got != image1bit.On {
		t.Errorf("pixel (0,0) = %s, want On", got)
	}
	if got := img.BitAt(0, 64); got != image1bit.On {
		t.Errorf("pixel (0,64) = %s, want On (rows wrap at the width)", got)
	}
	if got := img.BitAt(0, 63); got != image1bit.Off {
		t.Errorf("pixel (0,63) = %s, want Off", got)
	}
}

func TestSnapshotIdempotent(t *testing.T) {
	d := snapshotDev(t, DefaultOpts)
	sendCommands(t, d, 0xaf, 0xa7, 0xc8, 0xdc, 0x20)
	sendData(t, d, 0xde, 0xad, 0xbe, 0xef)

	ram := d.ram
	first := d.Snapshot()
	second := d.Snapshot()
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("repeated snapshots differ (-first +second):\n%s", diff)
	}
	if d.ram != ram {
		t.Error("rendering modified display RAM")
	}
}
