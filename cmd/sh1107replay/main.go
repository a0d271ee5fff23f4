// Copyright 2025 The sh1107sim Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// sh1107replay feeds a recorded I²C byte trace to the emulated SH1107 and
// writes a PNG snapshot of the resulting panel.
//
// The trace is hex text with one bus transaction per line. Whitespace
// inside a line is ignored and "#" starts a comment:
//
//	# init: contrast 0xcf, display on
//	00 81 cf af
//	40 ff ff ff ff
package main

import (
	"bytes"
	"encoding/hex"
	"io"
	"os"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
	flag "github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/chipemu/sh1107sim/sh1107"
)

var (
	in     = flag.String("in", "-", "trace file, - for stdin")
	out    = flag.String("out", "snapshot.png", "output PNG file")
	scale  = flag.Int("scale", 4, "snapshot scale factor")
	width  = flag.Int("width", 128, "panel width")
	height = flag.Int("height", 128, "panel height")
	offset = flag.Int("offset", 96, "panel column offset in display RAM")
	addr   = flag.Uint16("addr", 0x3c, "chip I²C address")
	debug  = flag.Bool("debug", false, "enable debug logging")
)

func main() {
	flag.Parse()

	logger, err := newLogger()
	if err != nil {
		panic(err)
	}

	if err := replay(afero.NewOsFs(), logger); err != nil {
		logger.Fatal("replay failed", zap.Error(err))
	}
}

func newLogger() (*zap.Logger, error) {
	if *debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func replay(fs afero.Fs, logger *zap.Logger) error {
	trace, err := readTrace(fs)
	if err != nil {
		return err
	}

	dev, err := sh1107.New(&sh1107.Opts{
		W:       *width,
		H:       *height,
		XOffset: *offset,
		Addr:    *addr,
		Logger:  logger.Named("sh1107"),
	})
	if err != nil {
		return err
	}

	for i, tx := range trace {
		if err := dev.Tx(*addr, tx, nil); err != nil {
			return errors.Wrapf(err, "transaction %d", i+1)
		}
	}

	snap := dev.Snapshot()
	img := imaging.Resize(snap, *width * *scale, *height * *scale, imaging.NearestNeighbor)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return errors.Wrap(err, "encoding snapshot")
	}
	if err := afero.WriteFile(fs, *out, buf.Bytes(), 0644); err != nil {
		return err
	}

	logger.Info("snapshot written",
		zap.String("path", *out),
		zap.Int("transactions", len(trace)))
	return nil
}

func readTrace(fs afero.Fs) ([][]byte, error) {
	var data []byte
	var err error
	if *in == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = afero.ReadFile(fs, *in)
	}
	if err != nil {
		return nil, err
	}
	return parseTrace(data)
}

func parseTrace(data []byte) ([][]byte, error) {
	var txs [][]byte
	for n, line := range strings.Split(string(data), "\n") {
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		line = strings.Join(strings.Fields(line), "")
		if line == "" {
			continue
		}
		raw, err := hex.DecodeString(line)
		if err != nil {
			return nil, errors.Wrapf(err, "trace line %d", n+1)
		}
		txs = append(txs, raw)
	}
	return txs, nil
}
