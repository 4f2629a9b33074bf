// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package filter

import (
	"github.com/gogpu/gg"
	"github.com/gogpu/gg/scene"
)

// ColorMatrix transforms straight-alpha colors with a 4x5 matrix:
//
//	[R']   [m0  m1  m2  m3  m4 ]   [R]
//	[G'] = [m5  m6  m7  m8  m9 ] * [G]
//	[B']   [m10 m11 m12 m13 m14]   [B]
//	[A']   [m15 m16 m17 m18 m19]   [A]
//	                               [1]
//
// Channels are in [0, 255]; the fifth column is an offset in the same units.
type ColorMatrix struct {
	M [20]float32
}

var identity = [20]float32{
	1, 0, 0, 0, 0,
	0, 1, 0, 0, 0,
	0, 0, 1, 0, 0,
	0, 0, 0, 1, 0,
}

// Identity returns a matrix that leaves colors unchanged.
func Identity() *ColorMatrix { return &ColorMatrix{M: identity} }

// Brightness scales RGB by factor. 0 is black, 1 is unchanged.
func Brightness(factor float32) *ColorMatrix {
	m := identity
	m[0], m[6], m[12] = factor, factor, factor
	return &ColorMatrix{M: m}
}

// Contrast pushes RGB away from (factor > 1) or toward (factor < 1) mid-gray.
func Contrast(factor float32) *ColorMatrix {
	off := 128 * (1 - factor)
	m := identity
	m[0], m[6], m[12] = factor, factor, factor
	m[4], m[9], m[14] = off, off, off
	return &ColorMatrix{M: m}
}

// Rec. 709 luma weights.
const (
	lumR = 0.2126
	lumG = 0.7152
	lumB = 0.0722
)

// Saturation blends between luminance (0) and the original color (1).
func Saturation(factor float32) *ColorMatrix {
	inv := 1 - factor
	return &ColorMatrix{M: [20]float32{
		lumR*inv + factor, lumG * inv, lumB * inv, 0, 0,
		lumR * inv, lumG*inv + factor, lumB * inv, 0, 0,
		lumR * inv, lumG * inv, lumB*inv + factor, 0, 0,
		0, 0, 0, 1, 0,
	}}
}

var sepiaTone = [20]float32{
	0.393, 0.769, 0.189, 0, 0,
	0.349, 0.686, 0.168, 0, 0,
	0.272, 0.534, 0.131, 0, 0,
	0, 0, 0, 1, 0,
}

// Sepia blends toward the classic sepia tone by amount in [0, 1].
func Sepia(amount float32) *ColorMatrix {
	var m [20]float32
	for i := range m {
		m[i] = identity[i] + (sepiaTone[i]-identity[i])*amount
	}
	return &ColorMatrix{M: m}
}

// IsIdentity reports whether f leaves colors unchanged.
func (f *ColorMatrix) IsIdentity() bool { return f.M == identity }

// Then returns the matrix that applies f first and then next.
func (f *ColorMatrix) Then(next *ColorMatrix) *ColorMatrix {
	a, b := &f.M, &next.M
	var r [20]float32
	for row := 0; row < 4; row++ {
		for col := 0; col < 5; col++ {
			var sum float32
			for k := 0; k < 4; k++ {
				sum += b[row*5+k] * a[k*5+col]
			}
			if col == 4 {
				sum += b[row*5+4]
			}
			r[row*5+col] = sum
		}
	}
	return &ColorMatrix{M: r}
}

// Apply implements scene.Filter. Pixels outside bounds are left untouched.
func (f *ColorMatrix) Apply(src, dst *gg.Pixmap, bounds scene.Rect) {
	if src == nil || dst == nil {
		return
	}
	x0, y0, x1, y1 := clip(bounds, src, dst)
	sd, dd := src.Data(), dst.Data()
	sw, dw := src.Width(), dst.Width()
	m := &f.M

	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			si := (y*sw + x) * 4
			di := (y*dw + x) * 4

			a := float32(sd[si+3])
			var r, g, b float32
			if a > 0 {
				r = float32(sd[si+0]) * 255 / a
				g = float32(sd[si+1]) * 255 / a
				b = float32(sd[si+2]) * 255 / a
			}

			nr := m[0]*r + m[1]*g + m[2]*b + m[3]*a + m[4]
			ng := m[5]*r + m[6]*g + m[7]*b + m[8]*a + m[9]
			nb := m[10]*r + m[11]*g + m[12]*b + m[13]*a + m[14]
			na := clampf(m[15]*r+m[16]*g+m[17]*b+m[18]*a+m[19], 0, 255)

			k := na / 255
			dd[di+0] = toByte(clampf(nr, 0, 255) * k)
			dd[di+1] = toByte(clampf(ng, 0, 255) * k)
			dd[di+2] = toByte(clampf(nb, 0, 255) * k)
			dd[di+3] = toByte(na)
		}
	}
}

// ExpandBounds implements scene.Filter. Color matrices are per-pixel.
func (f *ColorMatrix) ExpandBounds(input scene.Rect) scene.Rect { return input }

var _ scene.Filter = (*ColorMatrix)(nil)
