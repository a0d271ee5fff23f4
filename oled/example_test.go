// Copyright 2025 The sh1107sim Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package oled_test

import (
	"fmt"
	"image"
	"log"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/chipemu/sh1107sim/image1bit"
	"github.com/chipemu/sh1107sim/oled"
	"github.com/chipemu/sh1107sim/sh1107"
)

// The driver runs against the emulated chip exactly as it would against
// the real part: point NewI2C at the emulated bus, draw, and the frame is
// recoverable from the simulator.
func Example() {
	sim, err := sh1107.New(&sh1107.Opts{W: 128, H: 128, XOffset: 0, Addr: 0x3c})
	if err != nil {
		log.Fatal(err)
	}
	dev, err := oled.NewI2C(sim, &oled.Opts{W: 128, H: 128})
	if err != nil {
		log.Fatal(err)
	}

	img := image1bit.NewVerticalLSB(dev.Bounds())
	f := basicfont.Face7x13
	drawer := font.Drawer{
		Dst:  img,
		Src:  &image.Uniform{image1bit.On},
		Face: f,
		Dot:  fixed.P(0, f.Ascent),
	}
	drawer.DrawString("SH1107")
	if err := dev.Draw(dev.Bounds(), img, image.Point{}); err != nil {
		log.Fatal(err)
	}

	frame := sim.Snapshot()
	fmt.Println(frame.Bounds().Dx(), frame.Bounds().Dy())
	// Output: 128 128
}
