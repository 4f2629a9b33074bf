// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package ggedit

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"strings"
	"time"

	"github.com/gogpu/gg"
	"github.com/gogpu/ggedit/imageio"
	"github.com/gogpu/ggedit/internal/pdf"
	"github.com/gogpu/ggedit/layer"
	"github.com/gogpu/ggedit/surface"
)

// Format is an export file format.
type Format string

const (
	FormatPNG  Format = "png"
	FormatJPEG Format = "jpeg"
	// FormatPDF is a single landscape page with the JPEG raster embedded.
	FormatPDF Format = "pdf"
)

// ParseFormat parses a format name or file extension, case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")) {
	case "png":
		return FormatPNG, nil
	case "jpeg", "jpg":
		return FormatJPEG, nil
	case "pdf":
		return FormatPDF, nil
	}
	return "", fmt.Errorf("%w: %q", ErrFormat, s)
}

// ContentType returns the MIME type of f.
func (f Format) ContentType() string {
	switch f {
	case FormatPNG:
		return imageio.MIMEPNG
	case FormatJPEG:
		return imageio.MIMEJPEG
	case FormatPDF:
		return "application/pdf"
	}
	return "application/octet-stream"
}

// Metadata describes the content of a published or scheduled raster.
type Metadata struct {
	CanvasWidth  float64            `json:"canvasWidth"`
	CanvasHeight float64            `json:"canvasHeight"`
	PixelWidth   int                `json:"pixelWidth"`
	PixelHeight  int                `json:"pixelHeight"`
	TextLayers   []layer.TextLayer  `json:"textLayers"`
	MediaLayers  []layer.MediaLayer `json:"mediaLayers"`
	ImageFilters layer.ImageFilters `json:"imageFilters"`
	// Extra carries caller-supplied values unchanged.
	Extra map[string]string `json:"extra,omitempty"`
}

// ScheduleRequest is handed to a ScheduleFunc.
type ScheduleRequest struct {
	ScheduledTime time.Time `json:"scheduledTime"`
	Metadata      Metadata  `json:"metadata"`
}

// PublishFunc receives the exported raster as a PNG data URL.
type PublishFunc func(ctx context.Context, rasterDataURL string, meta Metadata) error

// ScheduleFunc receives the exported raster as a PNG data URL with the
// requested publication time.
type ScheduleFunc func(ctx context.Context, rasterDataURL string, req ScheduleRequest) error

// Raster renders the composition at the export multiplier without
// selection handles or the crop overlay.
func (e *Editor) Raster(ctx context.Context) (*image.RGBA, error) {
	if e.closed.Load() {
		return nil, ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return e.surf.Render(surface.RenderOptions{
		Multiplier: e.multiplier,
		Filters:    e.model.Filters(),
	}), nil
}

// ExportRaster renders the composition and writes it to w in format f.
// Errors are logged and returned.
func (e *Editor) ExportRaster(ctx context.Context, w io.Writer, f Format) (err error) {
	start := time.Now()
	defer func() {
		if err != nil {
			e.log.Warn("export failed", "format", f, "err", err)
		} else {
			observeExport(f, start)
		}
		observe("export", err)
	}()

	parsed, err := ParseFormat(string(f))
	if err != nil {
		return err
	}
	f = parsed
	img, err := e.Raster(ctx)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	switch f {
	case FormatPNG, FormatJPEG:
		dc := gg.NewContextForImage(img)
		if f == FormatPNG {
			err = dc.EncodePNG(&buf)
		} else {
			err = dc.EncodeJPEG(&buf, imageio.JPEGQuality)
		}
		_ = dc.Close()
	case FormatPDF:
		var data []byte
		if data, err = imageio.Encode(img, imageio.MIMEJPEG); err == nil {
			data, err = pdf.FromJPEG(data)
			buf.Write(data)
		}
	}
	if err != nil {
		return fmt.Errorf("ggedit: export %s: %w", f, err)
	}
	if _, err := buf.WriteTo(w); err != nil {
		return fmt.Errorf("ggedit: export %s: %w", f, err)
	}
	return nil
}

// handOff renders the PNG data URL and metadata passed to publish and
// schedule callbacks.
func (e *Editor) handOff(ctx context.Context, extra map[string]string) (string, Metadata, error) {
	img, err := e.Raster(ctx)
	if err != nil {
		return "", Metadata{}, err
	}
	ref, err := imageio.EncodeDataURL(img, imageio.MIMEPNG)
	if err != nil {
		return "", Metadata{}, fmt.Errorf("ggedit: encode raster: %w", err)
	}
	b := img.Bounds()
	meta := Metadata{
		CanvasWidth:  e.size.Width,
		CanvasHeight: e.size.Height,
		PixelWidth:   b.Dx(),
		PixelHeight:  b.Dy(),
		TextLayers:   e.model.TextLayers(),
		MediaLayers:  e.model.MediaLayers(),
		ImageFilters: e.model.Filters(),
		Extra:        extra,
	}
	return ref, meta, nil
}

// Publish renders the composition and passes it to fn.
func (e *Editor) Publish(ctx context.Context, fn PublishFunc, extra map[string]string) error {
	ref, meta, err := e.handOff(ctx, extra)
	if err != nil {
		return observe("publish", err)
	}
	if err := fn(ctx, ref, meta); err != nil {
		e.log.Warn("publish failed", "err", err)
		return observe("publish", fmt.Errorf("ggedit: publish: %w", err))
	}
	return observe("publish", nil)
}

// Schedule renders the composition and passes it to fn with the time
// parsed from when, an ISO 8601 timestamp with a zone offset.
func (e *Editor) Schedule(ctx context.Context, fn ScheduleFunc, when string, extra map[string]string) error {
	at, err := parseWhen(when)
	if err != nil {
		return observe("schedule", err)
	}
	ref, meta, err := e.handOff(ctx, extra)
	if err != nil {
		return observe("schedule", err)
	}
	if err := fn(ctx, ref, ScheduleRequest{ScheduledTime: at, Metadata: meta}); err != nil {
		e.log.Warn("schedule failed", "when", at, "err", err)
		return observe("schedule", fmt.Errorf("ggedit: schedule: %w", err))
	}
	return observe("schedule", nil)
}

func parseWhen(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04Z07:00"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidSchedule, s)
}
