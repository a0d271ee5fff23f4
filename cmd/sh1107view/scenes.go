// Copyright 2025 The sh1107sim Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"context"
	"image"
	"math"
	"path/filepath"
	"time"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/chipemu/sh1107sim/oled"
)

// A scene produces one monochrome frame per tick. Frames are rendered in
// grayscale; the driver reduces them to 1 bit.
type scene struct {
	name   string
	render func(t time.Duration) image.Image
}

func newScenes(logger *zap.Logger) ([]scene, error) {
	small, err := demoFace(13)
	if err != nil {
		return nil, err
	}
	big, err := demoFace(28)
	if err != nil {
		return nil, err
	}

	scenes := []scene{
		clockScene(small),
		bounceScene(),
		waveScene(),
		shapesScene(),
		bannerScene(big),
	}

	for _, path := range *images {
		img, err := imaging.Open(path)
		if err != nil {
			return nil, errors.Wrapf(err, "loading %s", path)
		}
		fitted := imaging.Fill(img, panelW, panelH, imaging.Center, imaging.Lanczos)
		scenes = append(scenes, scene{
			name:   filepath.Base(path),
			render: func(time.Duration) image.Image { return fitted },
		})
		logger.Info("added image scene", zap.String("path", path))
	}

	return scenes, nil
}

// demoFace parses the bundled Go Regular font at the given point size.
func demoFace(points float64) (font.Face, error) {
	f, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, err
	}
	return truetype.NewFace(f, &truetype.Options{Size: points}), nil
}

// runScenes drives the panel: one frame every 33ms, a randomly sampled
// scene every -interval.
func runScenes(scenes []scene, dev *oled.Dev, logger *zap.Logger, lc fx.Lifecycle) error {
	every, err := time.ParseDuration(*interval)
	if err != nil {
		return errors.Wrap(err, "parsing -interval")
	}

	stop := make(chan struct{})
	done := make(chan struct{})

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			if err := dev.SetContrast(*contrast); err != nil {
				return err
			}
			if err := dev.Invert(*invert); err != nil {
				return err
			}

			go func() {
				defer close(done)

				current := lo.Sample(scenes)
				logger.Info("scene", zap.String("name", current.name))

				rotate := time.NewTicker(every)
				defer rotate.Stop()
				frame := time.NewTicker(33 * time.Millisecond)
				defer frame.Stop()
				start := time.Now()

				for {
					select {
					case <-stop:
						return
					case <-rotate.C:
						current = lo.Sample(scenes)
						logger.Info("scene", zap.String("name", current.name))
					case <-frame.C:
						img := current.render(time.Since(start))
						if err := dev.Draw(dev.Bounds(), img, image.Point{}); err != nil {
							logger.Warn("draw failed", zap.Error(err))
						}
					}
				}
			}()
			return nil
		},
		OnStop: func(context.Context) error {
			close(stop)
			<-done
			return dev.Halt()
		},
	})

	return nil
}

func clockScene(face font.Face) scene {
	return scene{
		name: "clock",
		render: func(time.Duration) image.Image {
			dc := gg.NewContext(panelW, panelH)
			dc.SetRGB(0, 0, 0)
			dc.Clear()
			dc.SetRGB(1, 1, 1)

			now := time.Now()
			cx := float64(panelW) / 2
			cy := float64(panelH)/2 - 8
			r := cy - 6

			dc.DrawCircle(cx, cy, r)
			dc.Stroke()

			hour := float64(now.Hour()%12)/12*2*math.Pi - math.Pi/2 + float64(now.Minute())/60*math.Pi/6
			min := float64(now.Minute())/60*2*math.Pi - math.Pi/2
			sec := float64(now.Second())/60*2*math.Pi - math.Pi/2

			dc.SetLineWidth(3)
			dc.DrawLine(cx, cy, cx+math.Cos(hour)*r*0.5, cy+math.Sin(hour)*r*0.5)
			dc.Stroke()
			dc.SetLineWidth(2)
			dc.DrawLine(cx, cy, cx+math.Cos(min)*r*0.8, cy+math.Sin(min)*r*0.8)
			dc.Stroke()
			dc.SetLineWidth(1)
			dc.DrawLine(cx, cy, cx+math.Cos(sec)*r*0.9, cy+math.Sin(sec)*r*0.9)
			dc.Stroke()

			dc.SetFontFace(face)
			dc.DrawStringAnchored(now.Format("15:04:05"), cx, float64(panelH)-9, 0.5, 0.5)

			return dc.Image()
		},
	}
}

func bounceScene() scene {
	return scene{
		name: "bounce",
		render: func(t time.Duration) image.Image {
			dc := gg.NewContext(panelW, panelH)
			dc.SetRGB(0, 0, 0)
			dc.Clear()
			dc.SetRGB(1, 1, 1)

			const r = 9
			x := bounce(t.Seconds()*43, panelW-2*r) + r
			y := bounce(t.Seconds()*31, panelH-2*r) + r
			dc.DrawCircle(x, y, r)
			dc.Fill()

			dc.DrawRectangle(1, 1, panelW-2, panelH-2)
			dc.Stroke()
			return dc.Image()
		},
	}
}

// bounce folds a linearly growing position into [0, span], reflecting at
// the ends.
func bounce(pos float64, span int) float64 {
	p := math.Mod(pos, float64(2*span))
	if p > float64(span) {
		p = float64(2*span) - p
	}
	return p
}

func waveScene() scene {
	return scene{
		name: "wave",
		render: func(t time.Duration) image.Image {
			dc := gg.NewContext(panelW, panelH)
			dc.SetRGB(0, 0, 0)
			dc.Clear()
			dc.SetRGB(1, 1, 1)
			dc.SetLineWidth(2)

			phase := t.Seconds() * 2
			amplitude := 30 * math.Sin(phase/3)
			for x := 0; x < panelW; x++ {
				y := float64(panelH)/2 + math.Sin(float64(x)/12+phase)*amplitude
				if x == 0 {
					dc.MoveTo(float64(x), y)
				} else {
					dc.LineTo(float64(x), y)
				}
			}
			dc.Stroke()
			return dc.Image()
		},
	}
}

func shapesScene() scene {
	return scene{
		name: "shapes",
		render: func(t time.Duration) image.Image {
			dc := gg.NewContext(panelW, panelH)
			dc.SetRGB(0, 0, 0)
			dc.Clear()
			dc.SetRGB(1, 1, 1)

			const padding = 8.0
			dc.DrawRoundedRectangle(padding, padding, panelW-2*padding, panelH-2*padding, 10)
			dc.Stroke()

			lit := int(t.Seconds()*4) % 10
			for i := 0; i < 10; i++ {
				dc.DrawCircle(float64(20+10*i), 50, 4)
				if i <= lit {
					dc.Fill()
				} else {
					dc.Stroke()
				}
			}
			for i := 0; i < 10; i++ {
				dc.DrawRectangle(float64(20+10*i), 70, 5, 5)
				if i >= lit {
					dc.Fill()
				} else {
					dc.Stroke()
				}
			}
			return dc.Image()
		},
	}
}

func bannerScene(face font.Face) scene {
	return scene{
		name: "banner",
		render: func(t time.Duration) image.Image {
			dc := gg.NewContext(panelW, panelH)
			dc.SetRGB(0, 0, 0)
			dc.Clear()
			dc.SetRGB(1, 1, 1)
			dc.SetFontFace(face)

			text := "SH1107"
			w, h := dc.MeasureString(text)
			x := float64(panelW) - math.Mod(t.Seconds()*40, float64(panelW)+w)
			y := (float64(panelH) + h) / 2
			dc.DrawString(text, x, y)

			dc.DrawRoundedRectangle(x-6, y-h-6, w+12, h+12, 6)
			dc.Stroke()
			return dc.Image()
		},
	}
}
