// Copyright 2025 The sh1107sim Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package oled controls a monochrome OLED display driven by a SH1107
// controller, such as the Adafruit 1.12" 128x128 board.
//
// The driver does differential updates: it only sends modified pixels for
// the smallest band of pages, to economize bus bandwidth. This matters on
// I²C, where the default bus speed (often 100kHz) saturates at less than
// 10 frames per second for full redraws.
//
// The device can be driven on either I²C or SPI with 4 wires. It pairs
// with the emulated chip in the sh1107 package: hand NewI2C the emulated
// bus, or NewSPI the emulated port, and the drawn frames land in the
// simulated display RAM.
//
// # Datasheet
//
// https://www.displayfuture.com/Display/datasheet/controller/SH1107.pdf
package oled
