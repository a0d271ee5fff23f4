// Copyright 2025 The sh1107sim Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package videosink streams a monochrome panel over HTTP.
//
// The package implements display.Drawer backed by a 1-bit frame buffer and
// an http.Handler that sends clients an initial snapshot of the buffer plus
// a new image on every change. Hand the Display to the emulator as its
// Drawer to watch firmware output in a browser, or use it on a headless
// device to expose a copy of its local panel.
//
// The stream protocol is "MJPEG" (https://en.wikipedia.org/wiki/Motion_JPEG)
// as used by IP cameras. Computer-drawn monochrome graphics compress far
// better as PNG, so that is the default part format; JPEG can be selected
// via Options.Format or the "format" URL parameter. Small panels are hard
// to look at on a modern screen at native size, so each pixel can be
// expanded to a square block with Options.Scale or the "scale" URL
// parameter.
package videosink

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"image/png"
	"net/http"
	"sync"

	"go.uber.org/zap"
	"periph.io/x/conn/v3/display"

	"github.com/chipemu/sh1107sim/image1bit"
)

// maxScale bounds the per-pixel expansion factor. A 128x128 panel at the
// limit is already a 2048x2048 image per frame.
const maxScale = 16

// Options for videosink devices.
type Options struct {
	// Width and height of the panel in pixels.
	Width, Height int

	// Scale expands every panel pixel to a Scale x Scale block in the
	// streamed images. Zero selects 1 (native size). Clients can override
	// it per request with the "scale" URL parameter.
	Scale int

	// Format specifies the image format to send to clients.
	Format ImageFormat

	// PNGCompression selects the compression level for PNG parts. The
	// zero value is png.DefaultCompression.
	PNGCompression png.CompressionLevel

	// JPEGQuality selects the quality for JPEG parts, 1 to 100. Zero
	// selects the image/jpeg default; out of range values are clamped by
	// the encoder.
	JPEGQuality int

	// Logger receives debug output. nil disables logging.
	Logger *zap.Logger
}

// Display is a virtual monochrome panel whose content is served as a
// multipart image stream over HTTP.
type Display struct {
	defaultFormat ImageFormat
	defaultScale  int
	pngEnc        *png.Encoder
	jpegOptions   jpeg.Options
	log           *zap.Logger

	mu       sync.Mutex
	buffer   *image1bit.VerticalLSB
	clients  map[*client]struct{}
	snapshot map[imageConfig][]byte
}

var _ display.Drawer = (*Display)(nil)
var _ http.Handler = (*Display)(nil)

// New creates a new videosink device instance.
func New(opt *Options) (*Display, error) {
	if opt.Width <= 0 || opt.Height <= 0 {
		return nil, fmt.Errorf("videosink: invalid size %dx%d", opt.Width, opt.Height)
	}
	scale := opt.Scale
	if scale == 0 {
		scale = 1
	}
	if scale < 1 || scale > maxScale {
		return nil, fmt.Errorf("videosink: invalid scale %d", opt.Scale)
	}
	quality := opt.JPEGQuality
	if quality == 0 {
		quality = jpeg.DefaultQuality
	}
	logger := opt.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Display{
		defaultFormat: opt.Format,
		defaultScale:  scale,
		pngEnc:        newPNGEncoder(opt.PNGCompression),
		jpegOptions:   jpeg.Options{Quality: quality},
		log:           logger,
		buffer:        image1bit.NewVerticalLSB(image.Rect(0, 0, opt.Width, opt.Height)),
		clients:       map[*client]struct{}{},
		snapshot:      map[imageConfig][]byte{},
	}, nil
}

// String returns the name of the device.
func (d *Display) String() string {
	return fmt.Sprintf("VideoSink{%dx%d}", d.buffer.Rect.Dx(), d.buffer.Rect.Dy())
}

// Halt implements conn.Resource and terminates all running client requests
// asynchronously.
func (d *Display) Halt() error {
	d.mu.Lock()
	d.terminateClientsLocked()
	d.mu.Unlock()

	return nil
}

// ColorModel implements display.Drawer.
func (d *Display) ColorModel() color.Model {
	return image1bit.BitModel
}

// Bounds implements display.Drawer.
func (d *Display) Bounds() image.Rectangle {
	return d.buffer.Bounds()
}

// Draw implements display.Drawer. Sources that are not 1-bit are reduced
// through image1bit.BitModel.
func (d *Display) Draw(dstRect image.Rectangle, src image.Image, srcPts image.Point) error {
	d.mu.Lock()
	draw.Draw(d.buffer, dstRect, src, srcPts, draw.Src)
	d.bufferChangedLocked()
	d.mu.Unlock()

	return nil
}

// expandLocked renders the 1-bit buffer as an 8-bit grayscale image with
// every panel pixel covering a scale x scale block. Lit pixels are white.
func (d *Display) expandLocked(scale int) *image.Gray {
	w := d.buffer.Rect.Dx()
	h := d.buffer.Rect.Dy()
	img := image.NewGray(image.Rect(0, 0, w*scale, h*scale))
	for y := 0; y < h; y++ {
		base := y * scale * img.Stride
		row := img.Pix[base : base+img.Stride]
		for x := 0; x < w; x++ {
			if d.buffer.BitAt(x, y) == image1bit.On {
				for i := 0; i < scale; i++ {
					row[x*scale+i] = 0xff
				}
			}
		}
		// Rows within a block are identical.
		for i := 1; i < scale; i++ {
			copy(img.Pix[base+i*img.Stride:base+(i+1)*img.Stride], row)
		}
	}
	return img
}
