// Copyright 2025 The sh1107sim Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package sh1107

import (
	"encoding/hex"
	"fmt"

	"go.uber.org/zap"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
)

// Control byte flags. Both are active low: a cleared continuation bit
// keeps the selected stream for the rest of the transaction, a cleared
// data bit selects the command stream.
const (
	controlContinuation byte = 0x80
	controlData         byte = 0x40
)

// busReadValue is returned for every byte read over the bus. The emulated
// chip, like many SH1107 modules, does not implement readback and leaves
// the data line released.
const busReadValue = 0xff

// Tx implements i2c.Bus. Each call is one transaction: the START
// condition re-arms control byte parsing, w is run through the
// command/data demultiplexer, and every byte of r reads back 0xff.
func (d *Dev) Tx(addr uint16, w, r []byte) error {
	if addr != d.addr {
		return fmt.Errorf("sh1107: no device at address %#x", addr)
	}
	d.mu.Lock()
	d.awaitingControl = true
	for _, v := range w {
		d.writeByte(v)
	}
	for i := range r {
		r[i] = busReadValue
	}
	// STOP. Anything short of a full command stays buffered.
	d.awaitingControl = true
	d.mu.Unlock()

	log := d.log.With(zap.Int("write", len(w)), zap.Int("read", len(r)))
	if len(w) > 0 && len(w) <= 16 {
		log = log.With(zap.String("data", hex.EncodeToString(w)))
	}
	log.Debug("transfer")
	return nil
}

// SetSpeed implements i2c.Bus. The speed is recorded but transfers are
// always instantaneous.
func (d *Dev) SetSpeed(f physic.Frequency) error {
	if f <= 0 {
		return fmt.Errorf("sh1107: invalid bus speed %s", f)
	}
	d.mu.Lock()
	d.busSpeed = f
	d.mu.Unlock()
	d.log.Debug("bus speed", zap.String("frequency", f.String()))
	return nil
}

// Close implements i2c.BusCloser. The device stays usable; only the
// transaction framing is reset.
func (d *Dev) Close() error {
	d.mu.Lock()
	d.awaitingControl = true
	d.mu.Unlock()
	return nil
}

// writeByte feeds one wire byte through the control/command/data
// demultiplexer. The caller must hold d.mu.
func (d *Dev) writeByte(v byte) {
	if d.awaitingControl {
		d.commandMode = v&controlData == 0
		d.continuous = v&controlContinuation == 0
		d.awaitingControl = false
		return
	}
	if d.commandMode {
		if !d.acceptCommand(v) {
			// Mid-command; the argument byte arrives next, control
			// bytes cannot be interleaved.
			return
		}
	} else {
		d.writeData(v)
	}
	if !d.continuous {
		d.awaitingControl = true
	}
}

// RegisterBus publishes the device in the i2creg registry so host code
// can reach it through i2creg.Open. Aliases may be nil; number is the
// bus ordinal, -1 for none.
func RegisterBus(name string, aliases []string, number int, d *Dev) error {
	return i2creg.Register(name, aliases, number, func() (i2c.BusCloser, error) {
		return d, nil
	})
}

var _ i2c.BusCloser = &Dev{}
