// Copyright 2025 The sh1107sim Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package sh1107

import (
	"encoding/hex"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
)

// SPIPort is the 4-wire SPI face of the emulated chip. The control bytes
// of the I²C protocol are replaced by the D/C pin: the level the host
// drives on dc when a transaction runs selects the command stream (low)
// or the data stream (high).
//
// Share the same gpio pin between the device driver and this port, for
// example a gpiotest.Pin.
type SPIPort struct {
	d   *Dev
	dc  gpio.PinIO
	max physic.Frequency
}

// NewSPIPort returns a spi.PortCloser backed by the emulated chip.
//
// In 4-wire mode dc is required; 3-wire mode (9 bit words) is not
// emulated.
func NewSPIPort(d *Dev, dc gpio.PinIO) (*SPIPort, error) {
	if dc == nil || dc == gpio.INVALID {
		return nil, errors.New("sh1107: a D/C pin is required in 4-wire mode")
	}
	return &SPIPort{d: d, dc: dc}, nil
}

func (p *SPIPort) String() string {
	return p.d.String()
}

// Connect implements spi.Port.
func (p *SPIPort) Connect(f physic.Frequency, mode spi.Mode, bits int) (spi.Conn, error) {
	if f <= 0 {
		return nil, fmt.Errorf("sh1107: invalid clock speed %s", f)
	}
	if p.max != 0 && f > p.max {
		f = p.max
	}
	if bits == 9 {
		return nil, errors.New("sh1107: 3-wire mode is not emulated, connect with 8 bit words and a D/C pin")
	}
	if bits != 8 {
		return nil, fmt.Errorf("sh1107: invalid word size %d", bits)
	}
	p.d.log.Debug("spi connect",
		zap.String("frequency", f.String()),
		zap.String("mode", mode.String()))
	return &spiConn{p: p}, nil
}

// LimitSpeed implements spi.PortCloser.
func (p *SPIPort) LimitSpeed(f physic.Frequency) error {
	if f <= 0 {
		return fmt.Errorf("sh1107: invalid clock speed %s", f)
	}
	p.max = f
	return nil
}

// Close implements spi.PortCloser.
func (p *SPIPort) Close() error {
	return nil
}

// spiConn routes whole transactions to one of the two streams depending
// on the D/C pin level.
type spiConn struct {
	p *SPIPort
}

func (c *spiConn) String() string {
	return c.p.String()
}

// Tx implements conn.Conn. The D/C pin is sampled once per transaction;
// the host cannot change it while the clock runs.
func (c *spiConn) Tx(w, r []byte) error {
	d := c.p.d
	command := c.p.dc.Read() == gpio.Low

	d.mu.Lock()
	for _, v := range w {
		if command {
			d.acceptCommand(v)
		} else {
			d.writeData(v)
		}
	}
	for i := range r {
		r[i] = busReadValue
	}
	d.mu.Unlock()

	log := d.log.With(zap.Bool("command", command), zap.Int("write", len(w)))
	if len(w) > 0 && len(w) <= 16 {
		log = log.With(zap.String("data", hex.EncodeToString(w)))
	}
	log.Debug("spi transfer")
	return nil
}

// TxPackets implements spi.Conn.
func (c *spiConn) TxPackets(p []spi.Packet) error {
	for i := range p {
		if b := p[i].BitsPerWord; b != 0 && b != 8 {
			return fmt.Errorf("sh1107: invalid word size %d", b)
		}
		if err := c.Tx(p[i].W, p[i].R); err != nil {
			return err
		}
	}
	return nil
}

// Duplex implements conn.Conn. Reads never carry chip data, so the
// connection behaves as half duplex.
func (c *spiConn) Duplex() conn.Duplex {
	return conn.Half
}

var (
	_ spi.PortCloser = &SPIPort{}
	_ spi.Conn       = &spiConn{}
)
