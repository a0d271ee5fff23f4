// Copyright 2025 The sh1107sim Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package termview

import (
	"bytes"
	"image"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/chipemu/sh1107sim/image1bit"
	"github.com/chipemu/sh1107sim/sh1107"
)

func TestNewInvalidSize(t *testing.T) {
	if _, err := New(&Opts{W: 0, H: 8}); err == nil {
		t.Error("New accepted zero width")
	}
	if _, err := New(&Opts{W: 8, H: -1}); err == nil {
		t.Error("New accepted negative height")
	}
}

func TestDraw(t *testing.T) {
	var buf bytes.Buffer
	d, err := New(&Opts{W: 4, H: 8, Writer: &buf})
	if err != nil {
		t.Fatal(err)
	}

	img := image1bit.NewVerticalLSB(d.Bounds())
	if err := d.Draw(d.Bounds(), img, image.Point{}); err != nil {
		t.Fatal(err)
	}
	dark := buf.String()
	if got := strings.Count(dark, "\n"); got != 8 {
		t.Errorf("first frame has %d rows, want 8", got)
	}
	if strings.Contains(dark, "\033[8A") {
		t.Error("first frame moved the cursor up")
	}

	// A lit pixel changes the output, and the second frame repaints in
	// place.
	buf.Reset()
	img.SetBit(1, 1, image1bit.On)
	if err := d.Draw(d.Bounds(), img, image.Point{}); err != nil {
		t.Fatal(err)
	}
	lit := buf.String()
	if !strings.HasPrefix(lit, "\033[8A") {
		t.Error("second frame does not move the cursor up")
	}
	if strings.TrimPrefix(lit, "\033[8A") == dark {
		t.Error("lit frame renders identically to the dark frame")
	}
}

func TestWrite(t *testing.T) {
	var buf bytes.Buffer
	d, err := New(&Opts{W: 8, H: 8, Writer: &buf})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := d.Write(make([]byte, 3)); err == nil {
		t.Error("Write with a short buffer succeeded, want error")
	}

	n, err := d.Write([]byte{0xff, 0, 0, 0, 0, 0, 0, 0})
	if err != nil {
		t.Fatal(err)
	}
	if n != 8 {
		t.Errorf("Write = %d bytes, want 8", n)
	}
	if buf.Len() == 0 {
		t.Error("Write produced no terminal output")
	}
}

func TestHalt(t *testing.T) {
	var buf bytes.Buffer
	d, err := New(&Opts{W: 2, H: 2, Writer: &buf})
	if err != nil {
		t.Fatal(err)
	}
	if err := d.Halt(); err != nil {
		t.Fatal(err)
	}
	if got := buf.String(); got != "\n\033[0m" {
		t.Errorf("Halt wrote %q, want %q", got, "\n\033[0m")
	}
}

// collectScheduler queues refresh callbacks for the test to run.
type collectScheduler struct {
	pending []func()
}

func (s *collectScheduler) Schedule(_ time.Duration, fire func()) {
	s.pending = append(s.pending, fire)
}

func (s *collectScheduler) fire() {
	p := s.pending
	s.pending = nil
	for _, f := range p {
		f()
	}
}

// The viewer plugs into the emulated chip as its Drawer.
func TestViewerWithEmulatedChip(t *testing.T) {
	var buf bytes.Buffer
	view, err := New(&Opts{W: 128, H: 128, Writer: &buf})
	if err != nil {
		t.Fatal(err)
	}
	sched := &collectScheduler{}
	sim, err := sh1107.New(&sh1107.Opts{
		W:         128,
		H:         128,
		XOffset:   0,
		Addr:      0x3c,
		Drawer:    view,
		Scheduler: sched,
		Logger:    zaptest.NewLogger(t),
	})
	if err != nil {
		t.Fatal(err)
	}

	// Display on, one data byte.
	if err := sim.Tx(0x3c, []byte{0x00, 0xaf}, nil); err != nil {
		t.Fatal(err)
	}
	if err := sim.Tx(0x3c, []byte{0x40, 0x01}, nil); err != nil {
		t.Fatal(err)
	}
	sched.fire()

	if got := strings.Count(buf.String(), "\n"); got != 128 {
		t.Errorf("rendered %d rows, want 128", got)
	}
	if view.frame.BitAt(0, 0) != image1bit.On {
		t.Error("viewer frame pixel (0,0) = Off, want On")
	}
}
