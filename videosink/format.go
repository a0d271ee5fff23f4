// Copyright 2025 The sh1107sim Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package videosink

import (
	"fmt"
	"net/url"
	"strconv"
)

// ImageFormat selects the encoding of streamed frames.
type ImageFormat int

const (
	PNG ImageFormat = iota
	JPEG

	// DefaultFormat is the format used when not set explicitly in options or
	// as a URL parameter.
	DefaultFormat = PNG
)

func (f ImageFormat) String() string {
	switch f {
	case PNG:
		return "PNG"
	case JPEG:
		return "JPEG"
	default:
		return fmt.Sprint(int(f))
	}
}

func (f ImageFormat) mimeType() string {
	switch f {
	case PNG:
		return "image/png"
	case JPEG:
		return "image/jpeg"
	}

	return "application/octet-stream"
}

// ImageFormatFromString returns the ImageFormat value for the given format
// abbreviation.
func ImageFormatFromString(value string) (ImageFormat, error) {
	switch value {
	case "png":
		return PNG, nil
	case "jpg", "jpeg":
		return JPEG, nil
	}

	return DefaultFormat, fmt.Errorf("unrecognized image format %q", value)
}

// imageConfig is the per-client encoding configuration. Snapshots are
// cached per distinct configuration so clients sharing one do not pay for
// separate encodes.
type imageConfig struct {
	format ImageFormat
	scale  int
}

// configFromQuery derives a client configuration from the display defaults
// and the "format" and "scale" URL parameters.
func (d *Display) configFromQuery(values url.Values) (imageConfig, error) {
	cfg := imageConfig{
		format: d.defaultFormat,
		scale:  d.defaultScale,
	}

	if value := values.Get("format"); value != "" {
		format, err := ImageFormatFromString(value)
		if err != nil {
			return imageConfig{}, err
		}
		cfg.format = format
	}

	if value := values.Get("scale"); value != "" {
		scale, err := strconv.Atoi(value)
		if err != nil || scale < 1 || scale > maxScale {
			return imageConfig{}, fmt.Errorf("scale must be an integer between 1 and %d, got %q", maxScale, value)
		}
		cfg.scale = scale
	}

	return cfg, nil
}
