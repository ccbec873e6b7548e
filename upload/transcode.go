// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package upload

import (
	"bytes"
	"fmt"

	"github.com/disintegration/imaging"
)

const (
	MaxWidth    = 1920
	MaxHeight   = 1080
	JPEGQuality = 80
)

// Transcode fits an image into MaxWidth x MaxHeight, keeping its aspect
// ratio, and re-encodes it as JPEG. Smaller images are only re-encoded.
func Transcode(data []byte) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	img = imaging.Fit(img, MaxWidth, MaxHeight, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(JPEGQuality)); err != nil {
		return nil, fmt.Errorf("encode image: %w", err)
	}
	return buf.Bytes(), nil
}
