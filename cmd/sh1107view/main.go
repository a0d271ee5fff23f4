// Copyright 2025 The sh1107sim Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// sh1107view drives the emulated SH1107 with demo scenes and shows the
// panel output, by default as an MJPEG stream on -listen.
//
// The byte stream travels the full path a real host would use: scenes are
// drawn through the oled driver, which talks I²C to the emulated chip. With
// -i2c the same transactions are mirrored to a physical panel.
package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/pkg/errors"
	flag "github.com/spf13/pflag"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"

	"github.com/chipemu/sh1107sim/oled"
	"github.com/chipemu/sh1107sim/sh1107"
	"github.com/chipemu/sh1107sim/termview"
	"github.com/chipemu/sh1107sim/videosink"
)

const (
	panelW = 128
	panelH = 128
)

var (
	listen   = flag.String("listen", ":8080", "HTTP listen address for the MJPEG stream")
	scale    = flag.Int("scale", 4, "scale factor for streamed frames")
	term     = flag.Bool("term", false, "render to the terminal instead of serving HTTP")
	interval = flag.String("interval", "10s", "scene rotation interval")
	images   = flag.StringSlice("image", nil, "image files to add to the scene rotation")
	i2cName  = flag.String("i2c", "", "also drive a physical panel on this I²C bus")
	contrast = flag.Uint8("contrast", 0x7f, "panel contrast")
	invert   = flag.Bool("invert", false, "black-on-white rendering")
	debug    = flag.Bool("debug", false, "enable debug logging")
)

func main() {
	flag.Parse()

	fx.New(
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log.Named("fx")}
		}),
		fx.Provide(
			newLogger,
			newViewer,
			newPanel,
			newScenes,
		),
		fx.Invoke(
			serveStream,
			runScenes,
		),
	).Run()
}

func newLogger() (*zap.Logger, error) {
	if *debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// viewer is the frame sink of the emulated panel: an MJPEG stream by
// default, the terminal with -term.
type viewer struct {
	drawer display.Drawer
	sink   *videosink.Display // nil with -term
}

func newViewer(logger *zap.Logger) (*viewer, error) {
	if *term {
		tv, err := termview.New(&termview.Opts{W: panelW, H: panelH})
		if err != nil {
			return nil, err
		}
		return &viewer{drawer: tv}, nil
	}

	sink, err := videosink.New(&videosink.Options{
		Width:  panelW,
		Height: panelH,
		Scale:  *scale,
		Logger: logger.Named("videosink"),
	})
	if err != nil {
		return nil, err
	}
	return &viewer{drawer: sink, sink: sink}, nil
}

// newPanel wires the emulated chip to the viewer and opens the oled driver
// on its bus. With -i2c the bus is teed to real hardware.
func newPanel(v *viewer, logger *zap.Logger, lc fx.Lifecycle) (*oled.Dev, error) {
	sim, err := sh1107.New(&sh1107.Opts{
		W:       panelW,
		H:       panelH,
		XOffset: 0,
		Drawer:  v.drawer,
		Logger:  logger.Named("sh1107"),
	})
	if err != nil {
		return nil, err
	}

	var bus i2c.Bus = sim
	if *i2cName != "" {
		if _, err := host.Init(); err != nil {
			return nil, errors.Wrap(err, "initializing host drivers")
		}
		hw, err := i2creg.Open(*i2cName)
		if err != nil {
			return nil, errors.Wrapf(err, "opening bus %q", *i2cName)
		}
		lc.Append(fx.Hook{
			OnStop: func(context.Context) error { return hw.Close() },
		})
		bus = &teeBus{sim: sim, hw: hw}
	}

	return oled.NewI2C(bus, &oled.Opts{W: panelW, H: panelH})
}

// teeBus feeds the emulated chip and a physical panel with the same
// transactions. Reads go to the hardware only.
type teeBus struct {
	sim *sh1107.Dev
	hw  i2c.Bus
}

func (t *teeBus) String() string {
	return fmt.Sprintf("tee{%s, %s}", t.sim, t.hw)
}

func (t *teeBus) Tx(addr uint16, w, r []byte) error {
	if err := t.sim.Tx(addr, w, nil); err != nil {
		return err
	}
	return t.hw.Tx(addr, w, r)
}

func (t *teeBus) SetSpeed(f physic.Frequency) error {
	if err := t.sim.SetSpeed(f); err != nil {
		return err
	}
	return t.hw.SetSpeed(f)
}

func serveStream(v *viewer, logger *zap.Logger, lc fx.Lifecycle) {
	if v.sink == nil {
		return
	}

	srv := &http.Server{Addr: *listen, Handler: v.sink}

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			logger.Info("serving MJPEG stream", zap.String("addr", *listen))
			go func() {
				if err := srv.ListenAndServe(); err != http.ErrServerClosed {
					logger.Fatal("HTTP server failed", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			if err := v.sink.Halt(); err != nil {
				return err
			}
			return srv.Shutdown(ctx)
		},
	})
}
