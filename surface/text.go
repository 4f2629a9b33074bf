// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package surface

import (
	"image"
	"image/color"
	"math"
	"strings"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/text"
	"github.com/gogpu/ggedit/geom"
	"github.com/gogpu/ggedit/internal/filter"
	"github.com/gogpu/ggedit/layer"
	"golang.org/x/image/draw"
)

// emptyWidth keeps empty text grabbable, as a fraction of the font size.
const emptyWidth = 0.5

func splitLines(content string) []string {
	return strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n")
}

// measureText returns the unscaled box of l: the widest line by the line
// height times the line count.
func measureText(src *text.FontSource, l layer.TextLayer) geom.Size {
	size := l.FontSize
	if size <= 0 {
		size = 1
	}
	face := src.Face(size)
	lines := splitLines(l.Content)
	w := 0.0
	for _, ln := range lines {
		w = max(w, face.Advance(ln))
	}
	if w == 0 {
		w = size * emptyWidth
	}
	lh := face.Metrics().LineHeight()
	return geom.Sz(math.Ceil(w), math.Ceil(lh*float64(len(lines))))
}

// shadowPad is the room a shadow needs around the box.
func shadowPad(sh *layer.Shadow) float64 {
	if sh == nil {
		return 0
	}
	return math.Ceil(max(math.Abs(sh.OffsetX), math.Abs(sh.OffsetY)) + 3*sh.Blur)
}

func parseOr(s string, def gg.RGBA) gg.RGBA {
	c, err := layer.ParseColor(s)
	if err != nil {
		return def
	}
	return c
}

// textSprite rasterizes o at res sprite pixels per unit. The sprite covers
// the box grown by the shadow padding on every side.
func (o *object) textSprite(res float64) *sprite {
	if o.sprite != nil && o.sprite.res == res {
		return o.sprite
	}
	l := o.text
	pad := shadowPad(l.Shadow)
	sw := int(math.Ceil((o.size.Width + 2*pad) * res))
	sh := int(math.Ceil((o.size.Height + 2*pad) * res))
	img := image.NewRGBA(image.Rect(0, 0, max(sw, 1), max(sh, 1)))
	box := geom.R(pad*res, pad*res, o.size.Width*res, o.size.Height*res)

	if bg := l.BackgroundColor; bg != "" && bg != layer.Transparent {
		if c, err := layer.ParseColor(bg); err == nil {
			r := image.Rect(int(box.X), int(box.Y), int(math.Ceil(box.Right())), int(math.Ceil(box.Bottom())))
			draw.Draw(img, r, image.NewUniform(c.Color()), image.Point{}, draw.Over)
		}
	}

	face := o.source.Face(l.FontSize * res)
	mask := renderMask(face, l, img.Bounds(), box)

	if s := l.Shadow; s != nil {
		c := parseOr(s.Color, gg.RGBA{A: 0.5})
		if c.A > 0 {
			blurred := filter.BlurImage(mask, s.Blur*res)
			off := image.Pt(-int(math.Round(s.OffsetX*res)), -int(math.Round(s.OffsetY*res)))
			draw.DrawMask(img, img.Bounds(), image.NewUniform(c.Color()), image.Point{}, blurred, off, draw.Over)
		}
	}

	var fill image.Image
	if l.Color.IsGradient() {
		fill = gradientImage(l.Color.Gradient, img.Bounds(), box)
	} else {
		fill = image.NewUniform(parseOr(l.Color.Solid, gg.Black).Color())
	}
	draw.DrawMask(img, img.Bounds(), fill, image.Point{}, mask, image.Point{}, draw.Over)

	o.sprite = &sprite{img: img, res: res, pad: pad}
	return o.sprite
}

// renderMask draws the glyphs of l in opaque white; only the alpha channel
// is used.
func renderMask(face text.Face, l layer.TextLayer, bounds image.Rectangle, box geom.Rect) image.Image {
	dc := gg.NewContext(bounds.Dx(), bounds.Dy())
	defer dc.Close()
	dc.SetFont(face)
	dc.SetColor(color.White)

	m := face.Metrics()
	lh := m.LineHeight()
	lines := splitLines(l.Content)
	for i, ln := range lines {
		y := box.Y + float64(i)*lh + m.Ascent
		if l.TextAlign == layer.AlignJustify && i < len(lines)-1 {
			drawJustified(dc, face, ln, box.X, y, box.Width)
			continue
		}
		x := box.X
		switch adv := face.Advance(ln); l.TextAlign {
		case layer.AlignCenter:
			x += (box.Width - adv) / 2
		case layer.AlignRight:
			x += box.Width - adv
		}
		dc.DrawString(ln, x, y)
	}
	return dc.Image()
}

func drawJustified(dc *gg.Context, face text.Face, line string, x, y, width float64) {
	words := strings.Fields(line)
	if len(words) < 2 {
		dc.DrawString(line, x, y)
		return
	}
	total := 0.0
	for _, w := range words {
		total += face.Advance(w)
	}
	gap := (width - total) / float64(len(words)-1)
	for _, w := range words {
		dc.DrawString(w, x, y)
		x += face.Advance(w) + gap
	}
}

// gradientImage fills bounds with g running across box.
func gradientImage(g *layer.Gradient, bounds image.Rectangle, box geom.Rect) image.Image {
	x1, y1 := box.Right(), box.Y
	if g.Direction == layer.Vertical {
		x1, y1 = box.X, box.Bottom()
	}
	brush := gg.NewLinearGradientBrush(box.X, box.Y, x1, y1).
		AddColorStop(0, parseOr(g.StartColor, gg.Black)).
		AddColorStop(1, parseOr(g.EndColor, gg.Black))

	dc := gg.NewContext(bounds.Dx(), bounds.Dy())
	defer dc.Close()
	dc.SetFillBrush(brush)
	dc.DrawRectangle(0, 0, float64(bounds.Dx()), float64(bounds.Dy()))
	_ = dc.Fill()
	return dc.Image()
}
