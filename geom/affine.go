// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package geom

import (
	"math"

	"golang.org/x/image/math/f64"
)

// Affine is a 2x3 matrix in row-major order:
//
//	x' = A[0]*x + A[1]*y + A[2]
//	y' = A[3]*x + A[4]*y + A[5]
//
// The layout matches f64.Aff3 so it can be handed to x/image/draw directly.
type Affine [6]float64

// Identity returns the identity transform.
func Identity() Affine { return Affine{1, 0, 0, 0, 1, 0} }

// Translation returns a translation by (tx, ty).
func Translation(tx, ty float64) Affine { return Affine{1, 0, tx, 0, 1, ty} }

// Scaling returns a scale by (sx, sy).
func Scaling(sx, sy float64) Affine { return Affine{sx, 0, 0, 0, sy, 0} }

// Rotation returns a rotation by deg degrees around the origin.
func Rotation(deg float64) Affine {
	s, c := math.Sincos(Radians(deg))
	return Affine{c, -s, 0, s, c, 0}
}

// Then returns the transform that applies a first and then b.
func (a Affine) Then(b Affine) Affine {
	return Affine{
		b[0]*a[0] + b[1]*a[3],
		b[0]*a[1] + b[1]*a[4],
		b[0]*a[2] + b[1]*a[5] + b[2],
		b[3]*a[0] + b[4]*a[3],
		b[3]*a[1] + b[4]*a[4],
		b[3]*a[2] + b[4]*a[5] + b[5],
	}
}

// Apply transforms p.
func (a Affine) Apply(p Point) Point {
	return Point{
		X: a[0]*p.X + a[1]*p.Y + a[2],
		Y: a[3]*p.X + a[4]*p.Y + a[5],
	}
}

// Invert returns the inverse transform. ok is false for singular matrices.
func (a Affine) Invert() (inv Affine, ok bool) {
	det := a[0]*a[4] - a[1]*a[3]
	if det == 0 || math.IsNaN(det) {
		return Affine{}, false
	}
	id := 1 / det
	inv[0] = a[4] * id
	inv[1] = -a[1] * id
	inv[3] = -a[3] * id
	inv[4] = a[0] * id
	inv[2] = -(inv[0]*a[2] + inv[1]*a[5])
	inv[5] = -(inv[3]*a[2] + inv[4]*a[5])
	return inv, true
}

// Aff3 converts a to the x/image representation.
func (a Affine) Aff3() f64.Aff3 { return f64.Aff3(a) }
