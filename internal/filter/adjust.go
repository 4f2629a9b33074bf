// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package filter

import (
	"image"
	"image/draw"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/scene"
	"github.com/gogpu/ggedit/layer"
)

// MaxBlurRadius bounds the blur sigma in image pixels.
const MaxBlurRadius = 64

// Chain builds the filters for f. canvasPerPixel is the display scale of
// the image (canvas units per native pixel); blur is specified in canvas
// units so that it looks the same regardless of image resolution.
//
// Color adjustments are folded into a single matrix, applied in the order
// brightness, contrast, grayscale, sepia. Blur runs last.
func Chain(f layer.ImageFilters, canvasPerPixel float64) *scene.FilterChain {
	f = f.Clamp()
	m := Identity()
	if f.Brightness != 0 {
		m = m.Then(Brightness(float32(1 + f.Brightness/100)))
	}
	if f.Contrast != 0 {
		m = m.Then(Contrast(float32(1 + f.Contrast/100)))
	}
	if f.Grayscale != 0 {
		m = m.Then(Saturation(float32(1 - f.Grayscale/100)))
	}
	if f.Sepia != 0 {
		m = m.Then(Sepia(float32(f.Sepia / 100)))
	}

	chain := scene.NewFilterChain()
	if !m.IsIdentity() {
		chain.Add(m)
	}
	if f.Blur > 0 {
		r := f.Blur / 10
		if canvasPerPixel > 0 {
			r /= canvasPerPixel
		}
		chain.Add(&Blur{Radius: min(r, MaxBlurRadius)})
	}
	return chain
}

// ApplyImage runs f over img and returns a new image of the same size.
// Neutral filters return a plain copy.
func ApplyImage(img image.Image, f layer.ImageFilters, canvasPerPixel float64) *image.RGBA {
	src := ToPixmap(img)
	w, h := src.Width(), src.Height()
	chain := Chain(f, canvasPerPixel)
	if chain.Len() == 0 {
		return src.ToImage()
	}
	dst := gg.NewPixmap(w, h)
	chain.Apply(src, dst, scene.Rect{MaxX: float32(w), MaxY: float32(h)})
	return dst.ToImage()
}

// ToPixmap copies img into a new gg pixmap with its origin at (0, 0).
func ToPixmap(img image.Image) *gg.Pixmap {
	b := img.Bounds()
	pm := gg.NewPixmap(b.Dx(), b.Dy())
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	copy(pm.Data(), rgba.Pix)
	return pm
}

// BlurImage returns a blurred copy of img. It is used for text shadows.
func BlurImage(img image.Image, radius float64) *image.RGBA {
	src := ToPixmap(img)
	if radius <= 0 {
		return src.ToImage()
	}
	dst := gg.NewPixmap(src.Width(), src.Height())
	(&Blur{Radius: min(radius, MaxBlurRadius)}).Apply(src, dst,
		scene.Rect{MaxX: float32(src.Width()), MaxY: float32(src.Height())})
	return dst.ToImage()
}
