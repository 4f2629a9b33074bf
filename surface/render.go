// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package surface

import (
	"image"
	"image/color"
	"math"

	"github.com/gogpu/gg"
	"github.com/gogpu/ggedit/geom"
	"github.com/gogpu/ggedit/layer"
	"golang.org/x/image/draw"
)

// Sprite resolution bounds, in sprite pixels per unscaled unit.
const (
	minSpriteRes = 0.5
	maxSpriteRes = 8
)

// RenderOptions control Render.
type RenderOptions struct {
	// Multiplier scales the output; 2 renders at twice the canvas size.
	// Zero means 1.
	Multiplier float64
	// Filters are applied to the background only.
	Filters layer.ImageFilters
	// Decorations draws the selection handles and the overlay.
	Decorations bool
	// Fill is the color under the background. The zero value means white.
	Fill gg.RGBA
}

// Render composites the scene into a new image of the canvas size times
// the multiplier.
func (s *Surface) Render(opts RenderOptions) *image.RGBA {
	m := opts.Multiplier
	if m <= 0 {
		m = 1
	}
	fill := opts.Fill
	if fill == (gg.RGBA{}) {
		fill = gg.White
	}
	w := max(int(math.Round(s.size.Width*m)), 1)
	h := max(int(math.Round(s.size.Height*m)), 1)

	s.mu.Lock()
	defer s.mu.Unlock()

	dc := gg.NewContext(w, h)
	dc.ClearWithColor(fill)
	if bg := s.filteredLocked(opts.Filters); bg != nil {
		b := s.bg.bounds.Scale(m)
		dc.DrawImageEx(gg.ImageBufFromImage(bg), gg.DrawImageOptions{
			X:             b.X,
			Y:             b.Y,
			DstWidth:      b.Width,
			DstHeight:     b.Height,
			Interpolation: gg.InterpBilinear,
			Opacity:       1,
		})
	}
	dst := toRGBA(dc.Image())
	dc.Close()

	for _, id := range s.order {
		s.compositeLocked(dst, s.objects[id], m)
	}

	if opts.Decorations {
		dc := gg.NewContextForImage(dst)
		s.decorateLocked(dc, m)
		dst = toRGBA(dc.Image())
		dc.Close()
	}
	return dst
}

// RenderContext renders into a gg context, for encoding with EncodePNG or
// EncodeJPEG. The caller closes it.
func (s *Surface) RenderContext(opts RenderOptions) *gg.Context {
	return gg.NewContextForImage(s.Render(opts))
}

func (s *Surface) compositeLocked(dst *image.RGBA, o *object, m float64) {
	if o.geo.Opacity <= 0 || o.size.Empty() {
		return
	}
	var (
		src   image.Image
		toBox geom.Affine
	)
	switch o.kind {
	case KindText:
		res := geom.Clamp(m*max(o.geo.Scale.X, o.geo.Scale.Y), minSpriteRes, maxSpriteRes)
		sp := o.textSprite(res)
		src = sp.img
		toBox = geom.Scaling(1/res, 1/res).Then(geom.Translation(-sp.pad, -sp.pad))
	case KindMedia:
		if o.pixels == nil {
			pw := max(int(math.Ceil(o.size.Width*o.geo.Scale.X*m)), 1)
			ph := max(int(math.Ceil(o.size.Height*o.geo.Scale.Y*m)), 1)
			src = placeholder(pw, ph)
			toBox = geom.Scaling(o.size.Width/float64(pw), o.size.Height/float64(ph))
			break
		}
		b := o.pixels.Bounds()
		if b.Empty() {
			return
		}
		src = o.pixels
		toBox = geom.Translation(-float64(b.Min.X), -float64(b.Min.Y)).
			Then(geom.Scaling(o.size.Width/float64(b.Dx()), o.size.Height/float64(b.Dy())))
	}

	s2d := toBox.Then(o.affine()).Then(geom.Scaling(m, m))
	var dopts *draw.Options
	if o.geo.Opacity < 1 {
		dopts = &draw.Options{SrcMask: image.NewUniform(color.Alpha{A: uint8(o.geo.Opacity*255 + 0.5)})}
	}
	draw.BiLinear.Transform(dst, s2d.Aff3(), src, src.Bounds(), draw.Over, dopts)
}

// decorateLocked draws the selection frame, the handles and the overlay.
func (s *Surface) decorateLocked(dc *gg.Context, m float64) {
	if o, ok := s.objects[s.selected]; ok && o.decor != nil {
		st := *o.decor
		a := o.affine().Then(geom.Scaling(m, m))
		w, h := o.size.Width, o.size.Height
		frame := []geom.Point{a.Apply(geom.Pt(0, 0)), a.Apply(geom.Pt(w, 0)), a.Apply(geom.Pt(w, h)), a.Apply(geom.Pt(0, h))}

		dc.SetColor(st.Border.Color())
		dc.SetLineWidth(m)
		dc.MoveTo(frame[0].X, frame[0].Y)
		for _, p := range frame[1:] {
			dc.LineTo(p.X, p.Y)
		}
		dc.ClosePath()
		_ = dc.Stroke()

		top := a.Apply(geom.Pt(w/2, 0))
		rot := s.rotatePoint(o).Mul(m)
		dc.DrawLine(top.X, top.Y, rot.X, rot.Y)
		_ = dc.Stroke()

		r := st.Size * m / 2
		for _, hp := range handlePoints(o.size) {
			drawHandle(dc, a.Apply(hp[0]), r, st)
		}
		circle := st
		circle.Corner = CornerCircle
		drawHandle(dc, rot, r, circle)
	}
	if s.overlay != nil {
		s.overlay.Draw(dc, m)
	}
}

func drawHandle(dc *gg.Context, p geom.Point, r float64, st HandleStyle) {
	shape := func() {
		if st.Corner == CornerCircle {
			dc.DrawCircle(p.X, p.Y, r)
		} else {
			dc.DrawRectangle(p.X-r, p.Y-r, 2*r, 2*r)
		}
	}
	dc.SetColor(st.Color.Color())
	shape()
	_ = dc.Fill()
	dc.SetColor(st.Border.Color())
	shape()
	_ = dc.Stroke()
}

func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	return rgba
}
