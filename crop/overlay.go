// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package crop

import (
	"github.com/gogpu/gg"
	"github.com/gogpu/ggedit/geom"
)

var (
	dimColor    = gg.RGBA{R: 0, G: 0, B: 0, A: 0.5}
	borderColor = gg.White
	handleColor = gg.Hex("#3b82f6")
)

// HandleAt returns the part of the overlay under p. Corners take
// precedence over the body.
func (c *Controller) HandleAt(p geom.Point) Handle {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.handleAtLocked(p)
}

func (c *Controller) handleAtLocked(p geom.Point) Handle {
	if c.state != Active {
		return HandleNone
	}
	r := c.rect
	hit := func(x, y float64) bool {
		return geom.R(x, y, 0, 0).Inset(-c.HandleSize).Contains(p)
	}
	switch {
	case hit(r.X, r.Y):
		return HandleTopLeft
	case hit(r.Right(), r.Y):
		return HandleTopRight
	case hit(r.X, r.Bottom()):
		return HandleBottomLeft
	case hit(r.Right(), r.Bottom()):
		return HandleBottomRight
	case r.Contains(p):
		return HandleBody
	}
	return HandleNone
}

// PointerDown starts a drag if p is on the overlay. It reports whether the
// controller took the gesture.
func (c *Controller) PointerDown(p geom.Point) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.drag = c.handleAtLocked(p)
	c.dragFrom = p
	return c.drag != HandleNone
}

// PointerMove continues a drag started by PointerDown.
func (c *Controller) PointerMove(p geom.Point) {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch c.drag {
	case HandleNone:
		return
	case HandleBody:
		d := p.Sub(c.dragFrom)
		c.rect = c.clampLocked(c.rect.Translate(d.X, d.Y))
	default:
		c.rect = c.resizeLocked(c.drag, p)
	}
	c.dragFrom = p
}

// PointerUp ends the drag.
func (c *Controller) PointerUp(p geom.Point) {
	c.PointerMove(p)
	c.mu.Lock()
	c.drag = HandleNone
	c.mu.Unlock()
}

// Draw paints the overlay: the image outside the crop is dimmed, the crop
// gets a dashed border and square corner handles. Coordinates are canvas
// units scaled by multiplier.
func (c *Controller) Draw(dc *gg.Context, multiplier float64) {
	c.mu.Lock()
	if c.state != Active {
		c.mu.Unlock()
		return
	}
	b, r, hs := c.bounds.Scale(multiplier), c.rect.Scale(multiplier), c.HandleSize*multiplier
	c.mu.Unlock()

	dc.Push()
	defer dc.Pop()

	dc.SetColor(dimColor.Color())
	for _, d := range []geom.Rect{
		geom.R(b.X, b.Y, b.Width, r.Y-b.Y),
		geom.R(b.X, r.Bottom(), b.Width, b.Bottom()-r.Bottom()),
		geom.R(b.X, r.Y, r.X-b.X, r.Height),
		geom.R(r.Right(), r.Y, b.Right()-r.Right(), r.Height),
	} {
		if !d.Empty() {
			dc.DrawRectangle(d.X, d.Y, d.Width, d.Height)
			_ = dc.Fill()
		}
	}

	dc.SetColor(borderColor.Color())
	dc.SetLineWidth(multiplier)
	dc.SetDash(6*multiplier, 4*multiplier)
	dc.DrawRectangle(r.X, r.Y, r.Width, r.Height)
	_ = dc.Stroke()
	dc.SetDash()

	dc.SetColor(handleColor.Color())
	for _, p := range []geom.Point{r.Min(), geom.Pt(r.Right(), r.Y), geom.Pt(r.X, r.Bottom()), r.Max()} {
		dc.DrawRectangle(p.X-hs/2, p.Y-hs/2, hs, hs)
		_ = dc.Fill()
	}
}
