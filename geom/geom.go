// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package geom provides the rectangle, scaling and coordinate-space helpers
// used by the editor. All values are in float64 canvas units unless a
// function says otherwise.
package geom

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Point is a location in canvas or image space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point { return Point{X: x, Y: y} }

// Add returns p+q.
func (p Point) Add(q Point) Point { return Point{p.X + q.X, p.Y + q.Y} }

// Sub returns p-q.
func (p Point) Sub(q Point) Point { return Point{p.X - q.X, p.Y - q.Y} }

// Mul returns p scaled by k.
func (p Point) Mul(k float64) Point { return Point{p.X * k, p.Y * k} }

func (p Point) vec() r2.Vec { return r2.Vec{X: p.X, Y: p.Y} }

func fromVec(v r2.Vec) Point { return Point{v.X, v.Y} }

// Size is a width/height pair.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Sz is shorthand for Size{Width: w, Height: h}.
func Sz(w, h float64) Size { return Size{Width: w, Height: h} }

// Empty reports whether either dimension is not positive.
func (s Size) Empty() bool { return s.Width <= 0 || s.Height <= 0 }

// Scale returns s multiplied by k on both axes.
func (s Size) Scale(k float64) Size { return Size{s.Width * k, s.Height * k} }

// Ratio returns Width/Height, or 0 for an empty size.
func (s Size) Ratio() float64 {
	if s.Height == 0 {
		return 0
	}
	return s.Width / s.Height
}

// Rect is an axis-aligned rectangle with its origin at the top-left corner.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// R is shorthand for Rect{X: x, Y: y, Width: w, Height: h}.
func R(x, y, w, h float64) Rect { return Rect{X: x, Y: y, Width: w, Height: h} }

// RectFromPoints returns the rectangle spanned by two opposite corners.
func RectFromPoints(a, b Point) Rect {
	x0, x1 := math.Min(a.X, b.X), math.Max(a.X, b.X)
	y0, y1 := math.Min(a.Y, b.Y), math.Max(a.Y, b.Y)
	return Rect{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
}

func (r Rect) Right() float64  { return r.X + r.Width }
func (r Rect) Bottom() float64 { return r.Y + r.Height }
func (r Rect) Min() Point      { return Point{r.X, r.Y} }
func (r Rect) Max() Point      { return Point{r.Right(), r.Bottom()} }
func (r Rect) Size() Size      { return Size{r.Width, r.Height} }

// Center returns the midpoint of r.
func (r Rect) Center() Point {
	return Point{r.X + r.Width/2, r.Y + r.Height/2}
}

// Empty reports whether r has no area.
func (r Rect) Empty() bool { return r.Width <= 0 || r.Height <= 0 }

// Contains reports whether p lies inside r, edges included.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X <= r.Right() && p.Y >= r.Y && p.Y <= r.Bottom()
}

// ContainsRect reports whether o lies entirely inside r.
func (r Rect) ContainsRect(o Rect) bool {
	return o.X >= r.X && o.Y >= r.Y && o.Right() <= r.Right() && o.Bottom() <= r.Bottom()
}

// Intersects is the standard AABB test: two rectangles intersect unless one
// is entirely left of, right of, above or below the other. Rectangles that
// only share an edge do not intersect.
func (r Rect) Intersects(o Rect) bool {
	return !(r.Right() <= o.X || o.Right() <= r.X || r.Bottom() <= o.Y || o.Bottom() <= r.Y)
}

// Translate returns r moved by (dx, dy).
func (r Rect) Translate(dx, dy float64) Rect {
	r.X += dx
	r.Y += dy
	return r
}

// Inset shrinks r by d on every side. The result never has negative size.
func (r Rect) Inset(d float64) Rect {
	r.X += d
	r.Y += d
	r.Width = math.Max(0, r.Width-2*d)
	r.Height = math.Max(0, r.Height-2*d)
	return r
}

// Scale multiplies every component of r by k.
func (r Rect) Scale(k float64) Rect {
	return Rect{r.X * k, r.Y * k, r.Width * k, r.Height * k}
}

// Union returns the smallest rectangle containing r and o. An empty
// rectangle contributes nothing, as with image.Rectangle.Union.
func (r Rect) Union(o Rect) Rect {
	b := r.box().Union(o.box())
	return fromBox(b)
}

// CenteredAt returns r moved so that its center is c.
func (r Rect) CenteredAt(c Point) Rect {
	r.X = c.X - r.Width/2
	r.Y = c.Y - r.Height/2
	return r
}

func (r Rect) box() r2.Box { return r2.Box{Min: r.Min().vec(), Max: r.Max().vec()} }

func fromBox(b r2.Box) Rect {
	return Rect{X: b.Min.X, Y: b.Min.Y, Width: b.Max.X - b.Min.X, Height: b.Max.Y - b.Min.Y}
}

// FitScale returns the uniform factor that fits src inside dst:
// min(dst.Width/src.Width, dst.Height/src.Height). It returns 0 when src is
// empty.
func FitScale(src, dst Size) float64 {
	if src.Empty() {
		return 0
	}
	return math.Min(dst.Width/src.Width, dst.Height/src.Height)
}

// CenterIn returns a rectangle of size s centered in container.
func CenterIn(s Size, container Rect) Rect {
	return Rect{
		X:      container.X + (container.Width-s.Width)/2,
		Y:      container.Y + (container.Height-s.Height)/2,
		Width:  s.Width,
		Height: s.Height,
	}
}

// FitAspect returns the largest rectangle with width/height == ratio that
// fits inside within, centered on it.
func FitAspect(ratio float64, within Rect) Rect {
	if ratio <= 0 || within.Empty() {
		return within
	}
	w, h := within.Width, within.Width/ratio
	if h > within.Height {
		h = within.Height
		w = h * ratio
	}
	return CenterIn(Size{w, h}, within)
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// NormalizeDegrees maps an angle to [0, 360).
func NormalizeDegrees(deg float64) float64 {
	if math.IsNaN(deg) || math.IsInf(deg, 0) {
		return 0
	}
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	if deg >= 360 {
		deg = 0
	}
	return deg
}

// Radians converts degrees to radians.
func Radians(deg float64) float64 { return deg * math.Pi / 180 }

// Degrees converts radians to degrees.
func Degrees(rad float64) float64 { return rad * 180 / math.Pi }

// RotatePoint rotates p by deg degrees around pivot.
func RotatePoint(p Point, deg float64, pivot Point) Point {
	if deg == 0 {
		return p
	}
	return fromVec(r2.Rotate(p.vec(), Radians(deg), pivot.vec()))
}

// RotatedBounds returns the axis-aligned bounding box of r after rotating it
// by deg degrees around its own center.
func RotatedBounds(r Rect, deg float64) Rect {
	deg = NormalizeDegrees(deg)
	if deg == 0 {
		return r
	}
	rot := r2.NewRotation(Radians(deg), r.Center().vec())
	// r2.Box.Union drops zero-volume boxes, so the corners are folded by hand.
	b := r2.Box{
		Min: r2.Vec{X: math.Inf(1), Y: math.Inf(1)},
		Max: r2.Vec{X: math.Inf(-1), Y: math.Inf(-1)},
	}
	for _, v := range r.box().Vertices() {
		p := rot.Rotate(v)
		b.Min.X, b.Min.Y = math.Min(b.Min.X, p.X), math.Min(b.Min.Y, p.Y)
		b.Max.X, b.Max.Y = math.Max(b.Max.X, p.X), math.Max(b.Max.Y, p.Y)
	}
	return fromBox(b)
}
