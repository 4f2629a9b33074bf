// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package filter

import (
	"math"
	"sync"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/scene"
)

// Blur is a separable Gaussian blur. Radius is the standard deviation in
// pixels. Edges are extended by clamping.
type Blur struct {
	Radius float64
}

// Apply implements scene.Filter. Only pixels inside bounds are written, but
// samples may be read from the whole of src.
func (f *Blur) Apply(src, dst *gg.Pixmap, bounds scene.Rect) {
	if src == nil || dst == nil {
		return
	}
	x0, y0, x1, y1 := clip(bounds, src, dst)
	if x0 >= x1 || y0 >= y1 {
		return
	}
	if f.Radius <= 0 {
		copyRegion(src, dst, x0, y0, x1, y1)
		return
	}

	kernel := Kernel(f.Radius)
	half := len(kernel) / 2
	sw, sh := src.Width(), src.Height()
	sd := src.Data()

	// Horizontal pass covers the rows the vertical pass will sample.
	ry0, ry1 := max(0, y0-half), min(sh, y1+half)
	w := x1 - x0
	tmp := make([]float32, w*(ry1-ry0)*4)
	for y := ry0; y < ry1; y++ {
		row := y * sw
		for x := x0; x < x1; x++ {
			var acc [4]float32
			for k, wt := range kernel {
				sx := min(max(x+k-half, 0), sw-1)
				i := (row + sx) * 4
				acc[0] += float32(sd[i+0]) * wt
				acc[1] += float32(sd[i+1]) * wt
				acc[2] += float32(sd[i+2]) * wt
				acc[3] += float32(sd[i+3]) * wt
			}
			copy(tmp[((y-ry0)*w+(x-x0))*4:], acc[:])
		}
	}

	dd, dw := dst.Data(), dst.Width()
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			var acc [4]float32
			for k, wt := range kernel {
				ty := min(max(y+k-half, ry0), ry1-1) - ry0
				i := (ty*w + (x - x0)) * 4
				acc[0] += tmp[i+0] * wt
				acc[1] += tmp[i+1] * wt
				acc[2] += tmp[i+2] * wt
				acc[3] += tmp[i+3] * wt
			}
			di := (y*dw + x) * 4
			a := clampf(acc[3], 0, 255)
			dd[di+0] = toByte(clampf(acc[0], 0, a))
			dd[di+1] = toByte(clampf(acc[1], 0, a))
			dd[di+2] = toByte(clampf(acc[2], 0, a))
			dd[di+3] = toByte(a)
		}
	}
}

// ExpandBounds implements scene.Filter.
func (f *Blur) ExpandBounds(input scene.Rect) scene.Rect {
	e := float32(math.Ceil(f.Radius * 3))
	return scene.Rect{MinX: input.MinX - e, MinY: input.MinY - e, MaxX: input.MaxX + e, MaxY: input.MaxY + e}
}

var _ scene.Filter = (*Blur)(nil)

var kernels sync.Map // int (radius*100) -> []float32

// Kernel returns a normalized 1D Gaussian kernel with sigma = radius and
// 2*ceil(3*radius)+1 taps. Kernels are cached by radius.
func Kernel(radius float64) []float32 {
	if radius <= 0 {
		return []float32{1}
	}
	key := int(math.Round(radius * 100))
	if k, ok := kernels.Load(key); ok {
		return k.([]float32)
	}
	half := int(math.Ceil(radius * 3))
	k := make([]float32, 2*half+1)
	var sum float64
	for i := range k {
		x := float64(i - half)
		v := math.Exp(-x * x / (2 * radius * radius))
		k[i] = float32(v)
		sum += v
	}
	for i := range k {
		k[i] = float32(float64(k[i]) / sum)
	}
	kernels.Store(key, k)
	return k
}

func copyRegion(src, dst *gg.Pixmap, x0, y0, x1, y1 int) {
	sd, dd := src.Data(), dst.Data()
	sw, dw := src.Width(), dst.Width()
	for y := y0; y < y1; y++ {
		copy(dd[(y*dw+x0)*4:(y*dw+x1)*4], sd[(y*sw+x0)*4:(y*sw+x1)*4])
	}
}

// clip intersects bounds with both pixmaps.
func clip(b scene.Rect, src, dst *gg.Pixmap) (x0, y0, x1, y1 int) {
	x0 = max(int(b.MinX), 0)
	y0 = max(int(b.MinY), 0)
	x1 = min(int(math.Ceil(float64(b.MaxX))), src.Width(), dst.Width())
	y1 = min(int(math.Ceil(float64(b.MaxY))), src.Height(), dst.Height())
	return x0, y0, x1, y1
}

func clampf(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func toByte(v float32) uint8 { return uint8(v + 0.5) }
