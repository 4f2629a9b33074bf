// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package imageio

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"net/url"
	"strings"
)

// MIME types produced and understood by this package.
const (
	MIMEPNG  = "image/png"
	MIMEJPEG = "image/jpeg"
	MIMESVG  = "image/svg+xml"
)

// JPEGQuality is used when encoding JPEG rasters.
const JPEGQuality = 92

// Encode writes img as PNG or JPEG according to mime.
func Encode(img image.Image, mime string) ([]byte, error) {
	var buf bytes.Buffer
	var err error
	switch mime {
	case MIMEPNG:
		err = png.Encode(&buf, img)
	case MIMEJPEG:
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: JPEGQuality})
	default:
		return nil, fmt.Errorf("%w: encode %s", ErrUnsupported, mime)
	}
	if err != nil {
		return nil, fmt.Errorf("imageio: encode %s: %w", mime, err)
	}
	return buf.Bytes(), nil
}

// DataURL wraps data in a base64 data URL.
func DataURL(data []byte, mime string) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// EncodeDataURL encodes img and wraps it in a data URL.
func EncodeDataURL(img image.Image, mime string) (string, error) {
	data, err := Encode(img, mime)
	if err != nil {
		return "", err
	}
	return DataURL(data, mime), nil
}

// DecodeDataURL returns the payload and MIME type of a data URL. Both base64
// and percent-encoded payloads are accepted.
func DecodeDataURL(ref string) ([]byte, string, error) {
	rest, ok := strings.CutPrefix(ref, "data:")
	if !ok {
		return nil, "", fmt.Errorf("%w: not a data URL", ErrUnsupported)
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, "", fmt.Errorf("%w: malformed data URL", ErrUnsupported)
	}
	params := strings.Split(meta, ";")
	mime := params[0]
	b64 := false
	for _, p := range params[1:] {
		if p == "base64" {
			b64 = true
		}
	}
	if b64 {
		data, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, "", fmt.Errorf("imageio: data URL: %w", err)
		}
		return data, mime, nil
	}
	s, err := url.PathUnescape(payload)
	if err != nil {
		return nil, "", fmt.Errorf("imageio: data URL: %w", err)
	}
	return []byte(s), mime, nil
}
