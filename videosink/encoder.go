// Copyright 2025 The sh1107sim Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package videosink

import (
	"image/png"
	"sync"
)

// pngEncoderBufferPool adapts sync.Pool to png.EncoderBufferPool so that
// all Display instances share encoder scratch state.
type pngEncoderBufferPool sync.Pool

func (p *pngEncoderBufferPool) Get() *png.EncoderBuffer {
	buf, _ := (*sync.Pool)(p).Get().(*png.EncoderBuffer)
	return buf
}

func (p *pngEncoderBufferPool) Put(buf *png.EncoderBuffer) {
	(*sync.Pool)(p).Put(buf)
}

var sharedPNGBuffers pngEncoderBufferPool

// newPNGEncoder returns an encoder at the given compression level backed by
// the shared buffer pool.
func newPNGEncoder(level png.CompressionLevel) *png.Encoder {
	return &png.Encoder{
		CompressionLevel: level,
		BufferPool:       &sharedPNGBuffers,
	}
}
