// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package geom

// Mapping converts between canvas space and the native pixel space of an
// image displayed at Bounds.
type Mapping struct {
	// Bounds is the image's on-screen rectangle in canvas space.
	Bounds Rect
	// Native is the image's pixel size.
	Native Size
}

// Scale returns the display factor (canvas units per native pixel) along x.
func (m Mapping) Scale() float64 {
	if m.Native.Width == 0 {
		return 0
	}
	return m.Bounds.Width / m.Native.Width
}

// ToImage maps a canvas-space rectangle into native pixel space:
//
//	image = (canvas - Bounds.origin) / Bounds.size * Native
//
// Each edge is clamped to [0, Native].
func (m Mapping) ToImage(r Rect) Rect {
	if m.Bounds.Empty() || m.Native.Empty() {
		return Rect{}
	}
	kx := m.Native.Width / m.Bounds.Width
	ky := m.Native.Height / m.Bounds.Height
	x0 := Clamp((r.X-m.Bounds.X)*kx, 0, m.Native.Width)
	y0 := Clamp((r.Y-m.Bounds.Y)*ky, 0, m.Native.Height)
	x1 := Clamp((r.Right()-m.Bounds.X)*kx, 0, m.Native.Width)
	y1 := Clamp((r.Bottom()-m.Bounds.Y)*ky, 0, m.Native.Height)
	return Rect{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
}

// ToCanvas is the inverse of ToImage, without clamping.
func (m Mapping) ToCanvas(r Rect) Rect {
	if m.Native.Empty() {
		return Rect{}
	}
	kx := m.Bounds.Width / m.Native.Width
	ky := m.Bounds.Height / m.Native.Height
	return Rect{
		X:      m.Bounds.X + r.X*kx,
		Y:      m.Bounds.Y + r.Y*ky,
		Width:  r.Width * kx,
		Height: r.Height * ky,
	}
}
