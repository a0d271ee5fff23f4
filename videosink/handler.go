// Copyright 2025 The sh1107sim Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package videosink

import (
	"bytes"
	"fmt"
	"image/jpeg"
	"mime"
	"net/http"
	"net/textproto"
	"sync"

	"go.uber.org/zap"
)

// bufferPool stores reusable []byte instances.
var bufferPool = sync.Pool{
	New: func() interface{} {
		return []byte(nil)
	},
}

type client struct {
	refresh   chan struct{}
	terminate chan struct{}
}

// bufferChangedLocked invalidates all cached snapshots and pokes every
// connected client to fetch a fresh one.
func (d *Display) bufferChangedLocked() {
	for cfg, buffer := range d.snapshot {
		if buffer != nil {
			//lint:ignore SA6002 buffer is []byte and thus pointer-like
			bufferPool.Put(buffer)
		}

		delete(d.snapshot, cfg)
	}

	for c := range d.clients {
		select {
		case c.refresh <- struct{}{}:
		default:
		}
	}
}

func (d *Display) terminateClientsLocked() {
	for c := range d.clients {
		select {
		case c.terminate <- struct{}{}:
		default:
		}
	}
}

func (d *Display) encodeBufferLocked(cfg imageConfig) ([]byte, error) {
	buf := bytes.NewBuffer(bufferPool.Get().([]byte)[:0])
	img := d.expandLocked(cfg.scale)

	switch cfg.format {
	case PNG:
		if err := d.pngEnc.Encode(buf, img); err != nil {
			return nil, err
		}

	case JPEG:
		if err := jpeg.Encode(buf, img, &d.jpegOptions); err != nil {
			return nil, err
		}

	default:
		return nil, fmt.Errorf("unhandled image format %s", cfg.format)
	}

	return buf.Bytes(), nil
}

func (d *Display) grabSnapshot(cfg imageConfig) []byte {
	d.mu.Lock()
	defer d.mu.Unlock()

	encoded, ok := d.snapshot[cfg]
	if !ok {
		var err error

		encoded, err = d.encodeBufferLocked(cfg)
		if err != nil {
			panic(fmt.Sprintf("encoding image failed: %v", err))
		}
		d.snapshot[cfg] = encoded
	}

	return append(bufferPool.Get().([]byte)[:0], encoded...)
}

// ServeHTTP handles HTTP GET requests and sends a stream of images
// representing the panel buffer in response. The display options control
// the defaults and clients can override them per request using the
// "format" ("?format=png", "?format=jpeg") and "scale" ("?scale=4")
// parameters.
func (d *Display) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if err := r.Body.Close(); err != nil {
		d.log.Warn("closing request body", zap.Error(err))
	}

	if r.Method != http.MethodGet {
		http.Error(w, "", http.StatusMethodNotAllowed)
		return
	}

	cfg, err := d.configFromQuery(r.URL.Query())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	pw := makePartWriter(w)

	w.Header().Set("Content-Type",
		mime.FormatMediaType("multipart/x-mixed-replace", map[string]string{
			"boundary": pw.boundary,
		}))

	c := &client{
		refresh:   make(chan struct{}, 1),
		terminate: make(chan struct{}, 1),
	}

	d.mu.Lock()
	d.clients[c] = struct{}{}
	d.mu.Unlock()

	d.log.Debug("stream client connected",
		zap.String("remote", r.RemoteAddr),
		zap.Stringer("format", cfg.format),
		zap.Int("scale", cfg.scale))

	defer func() {
		d.mu.Lock()
		delete(d.clients, c)
		d.mu.Unlock()

		d.log.Debug("stream client disconnected", zap.String("remote", r.RemoteAddr))
	}()

	partHeaders := make(textproto.MIMEHeader)
	partHeaders.Set("Content-Type", mime.FormatMediaType(cfg.format.mimeType(), nil))
	partHeaders.Set("Content-Transfer-Encoding", "binary")

	for {
		payload := d.grabSnapshot(cfg)
		err := pw.writeFrame(partHeaders, payload)

		if payload != nil {
			//lint:ignore SA6002 buffer is []byte and thus pointer-like
			bufferPool.Put(payload)
		}

		if err != nil {
			// Errors cause the request to be silently terminated. There's no
			// good way to deliver an error message to the client within an
			// image stream.
			return
		}

		if flusher, ok := w.(http.Flusher); ok {
			flusher.Flush()
		}

		select {
		case <-c.refresh:
		case <-c.terminate:
			return
		case <-r.Context().Done():
			return
		}
	}
}
