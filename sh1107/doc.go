// Copyright 2025 The sh1107sim Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package sh1107 emulates the Sino Wealth SH1107 monochrome OLED display
// controller for use inside circuit or firmware simulators.
//
// The emulated chip consumes the same byte protocol as the physical part:
// control bytes select between command and data payloads, commands mutate
// the display and addressing settings, and data bytes land in the 16-page
// bit-addressable display RAM with page or vertical auto-increment. A
// coalescing ~60Hz refresh renders the RAM through the scroll, mirror,
// remap and invert settings into a 1-bit frame and hands it to a
// display.Drawer owned by the host.
//
// The device is exposed through the periph.io bus interfaces: it
// implements i2c.Bus (and i2c.BusCloser), so a driver stack written
// against periph.io/x/conn can be pointed at the simulator without
// modification. NewSPIPort provides the 4-wire SPI flavor where a D/C
// gpio pin replaces the control bytes.
//
// Analog timing commands (clock divider, precharge periods, VCOM
// deselect, multiplex ratio) are accepted and stored but have no effect
// on rendering.
//
// # Datasheet
//
// https://www.displayfuture.com/Display/datasheet/controller/SH1107.pdf
package sh1107
