// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package crop

import (
	"image"
	"math"

	"github.com/gogpu/gg"
	"github.com/gogpu/ggedit/geom"
)

// Rasterize copies the window r (native pixels of src) onto a new bitmap of
// exactly round(r.Width) x round(r.Height) pixels.
func Rasterize(src image.Image, r geom.Rect) (*image.RGBA, error) {
	if src == nil {
		return nil, ErrNoBackground
	}
	w, h := int(math.Round(r.Width)), int(math.Round(r.Height))
	if w <= 0 || h <= 0 {
		return nil, ErrEmptyRegion
	}

	// ImageBuf is zero-based whatever src.Bounds().Min is.
	sb := src.Bounds()
	x0, y0 := int(math.Round(r.X)), int(math.Round(r.Y))
	window := image.Rect(x0, y0, x0+w, y0+h).Intersect(image.Rect(0, 0, sb.Dx(), sb.Dy()))
	if window.Empty() {
		return nil, ErrEmptyRegion
	}

	dc := gg.NewContext(w, h)
	defer dc.Close()

	// Rounding can leave the window a pixel short of the target at the
	// image edge; stretch it to fill.
	dc.DrawImageEx(gg.ImageBufFromImage(src), gg.DrawImageOptions{
		DstWidth:      float64(w),
		DstHeight:     float64(h),
		SrcRect:       &window,
		Interpolation: gg.InterpBilinear,
		Opacity:       1,
	})

	out, ok := dc.Image().(*image.RGBA)
	if !ok {
		out = image.NewRGBA(image.Rect(0, 0, w, h))
	}
	return out, nil
}
