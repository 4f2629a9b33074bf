// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package geom

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/floats/scalar"
)

const tol = 1e-9

func rectNear(a, b Rect, eps float64) bool {
	return scalar.EqualWithinAbs(a.X, b.X, eps) &&
		scalar.EqualWithinAbs(a.Y, b.Y, eps) &&
		scalar.EqualWithinAbs(a.Width, b.Width, eps) &&
		scalar.EqualWithinAbs(a.Height, b.Height, eps)
}

func TestRectIntersects(t *testing.T) {
	base := R(10, 10, 100, 50)
	tests := []struct {
		name string
		o    Rect
		want bool
	}{
		{"overlap", R(50, 30, 100, 100), true},
		{"contained", R(20, 20, 5, 5), true},
		{"container", R(0, 0, 500, 500), true},
		{"left", R(0, 10, 5, 50), false},
		{"right", R(200, 10, 5, 5), false},
		{"above", R(10, 0, 100, 5), false},
		{"below", R(10, 100, 100, 5), false},
		{"touching edge", R(110, 10, 10, 10), false},
		{"touching bottom", R(10, 60, 10, 10), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := base.Intersects(tt.o); got != tt.want {
				t.Errorf("Intersects(%v) = %v, want %v", tt.o, got, tt.want)
			}
			if got := tt.o.Intersects(base); got != tt.want {
				t.Errorf("symmetric Intersects(%v) = %v, want %v", tt.o, got, tt.want)
			}
		})
	}
}

func TestFitScale(t *testing.T) {
	tests := []struct {
		src, dst Size
		want     float64
	}{
		{Sz(1000, 500), Sz(800, 600), 0.8},
		{Sz(400, 800), Sz(800, 600), 0.75},
		{Sz(100, 100), Sz(800, 600), 6},
		{Sz(0, 100), Sz(800, 600), 0},
	}
	for _, tt := range tests {
		if got := FitScale(tt.src, tt.dst); !scalar.EqualWithinAbs(got, tt.want, tol) {
			t.Errorf("FitScale(%v, %v) = %v, want %v", tt.src, tt.dst, got, tt.want)
		}
	}
}

func TestCenterIn(t *testing.T) {
	got := CenterIn(Sz(800, 400), R(0, 0, 800, 600))
	if want := R(0, 100, 800, 400); got != want {
		t.Errorf("CenterIn = %v, want %v", got, want)
	}
}

func TestFitAspect(t *testing.T) {
	within := R(0, 0, 400, 400)
	tests := []struct {
		ratio float64
		want  Rect
	}{
		{1, R(0, 0, 400, 400)},
		{2, R(0, 100, 400, 200)},
		{0.5, R(100, 0, 200, 400)},
	}
	for _, tt := range tests {
		got := FitAspect(tt.ratio, within)
		if !rectNear(got, tt.want, tol) {
			t.Errorf("FitAspect(%v) = %v, want %v", tt.ratio, got, tt.want)
		}
		if !scalar.EqualWithinAbs(got.Width/got.Height, tt.ratio, tol) {
			t.Errorf("FitAspect(%v) ratio = %v", tt.ratio, got.Width/got.Height)
		}
	}
}

func TestNormalizeDegrees(t *testing.T) {
	tests := []struct{ in, want float64 }{
		{0, 0},
		{90, 90},
		{360, 0},
		{370, 10},
		{-90, 270},
		{-720, 0},
		{725.5, 5.5},
	}
	for _, tt := range tests {
		if got := NormalizeDegrees(tt.in); !scalar.EqualWithinAbs(got, tt.want, tol) {
			t.Errorf("NormalizeDegrees(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestRotatedBounds(t *testing.T) {
	r := R(0, 0, 100, 50)
	got := RotatedBounds(r, 90)
	want := R(25, -25, 50, 100)
	if !rectNear(got, want, 1e-6) {
		t.Errorf("RotatedBounds(90) = %v, want %v", got, want)
	}
	d := 75 * math.Sqrt2 / 2
	if got, want := RotatedBounds(r, 45), R(50-d, 25-d, 2*d, 2*d); !rectNear(got, want, 1e-6) {
		t.Errorf("RotatedBounds(45) = %v, want %v", got, want)
	}
	if got := RotatedBounds(r, 360); got != r {
		t.Errorf("RotatedBounds(360) = %v, want %v", got, r)
	}
}

func TestMappingRoundTrip(t *testing.T) {
	// 1000x500 image shown at scale 0.8 with origin (0, 100).
	m := Mapping{Bounds: R(0, 100, 800, 400), Native: Sz(1000, 500)}
	overlay := R(80, 140, 240, 160)

	img := m.ToImage(overlay)
	s := m.Scale()
	if !scalar.EqualWithinAbs(img.Width, overlay.Width/s, 1e-6) ||
		!scalar.EqualWithinAbs(img.Height, overlay.Height/s, 1e-6) {
		t.Errorf("ToImage size = %vx%v, want %vx%v", img.Width, img.Height, overlay.Width/s, overlay.Height/s)
	}
	if want := R(100, 50, 300, 200); !rectNear(img, want, 1e-6) {
		t.Errorf("ToImage = %v, want %v", img, want)
	}
	if back := m.ToCanvas(img); !rectNear(back, overlay, 1e-6) {
		t.Errorf("ToCanvas(ToImage) = %v, want %v", back, overlay)
	}
}

func TestMappingClamps(t *testing.T) {
	m := Mapping{Bounds: R(100, 100, 200, 100), Native: Sz(400, 200)}
	got := m.ToImage(R(50, 50, 400, 400))
	if want := R(0, 0, 400, 200); got != want {
		t.Errorf("ToImage = %v, want %v", got, want)
	}
	if got := (Mapping{}).ToImage(R(0, 0, 1, 1)); got != (Rect{}) {
		t.Errorf("empty mapping ToImage = %v", got)
	}
}

func TestAffine(t *testing.T) {
	a := Scaling(2, 3).Then(Rotation(90)).Then(Translation(10, 0))
	got := a.Apply(Pt(1, 1))
	// scale -> (2,3); rotate 90 -> (-3,2); translate -> (7,2)
	if !scalar.EqualWithinAbs(got.X, 7, 1e-9) || !scalar.EqualWithinAbs(got.Y, 2, 1e-9) {
		t.Errorf("Apply = %v, want (7, 2)", got)
	}

	inv, ok := a.Invert()
	if !ok {
		t.Fatal("Invert reported singular matrix")
	}
	back := inv.Apply(got)
	if !scalar.EqualWithinAbs(back.X, 1, 1e-9) || !scalar.EqualWithinAbs(back.Y, 1, 1e-9) {
		t.Errorf("Invert round trip = %v, want (1, 1)", back)
	}

	if _, ok := Scaling(0, 1).Invert(); ok {
		t.Error("Invert of singular matrix should fail")
	}
}

func TestRectHelpers(t *testing.T) {
	r := R(10, 20, 30, 40)
	if r.Right() != 40 || r.Bottom() != 60 {
		t.Errorf("Right/Bottom = %v/%v", r.Right(), r.Bottom())
	}
	if c := r.Center(); c != Pt(25, 40) {
		t.Errorf("Center = %v", c)
	}
	if !r.Contains(Pt(10, 20)) || r.Contains(Pt(9, 20)) {
		t.Error("Contains edge handling")
	}
	if got := r.Inset(20); got.Width != 0 || got.Height != 0 {
		t.Errorf("Inset past size = %v", got)
	}
	if got := r.Union(R(0, 0, 5, 5)); got != R(0, 0, 40, 60) {
		t.Errorf("Union = %v", got)
	}
	if got := RectFromPoints(Pt(5, 9), Pt(1, 2)); got != R(1, 2, 4, 7) {
		t.Errorf("RectFromPoints = %v", got)
	}
}
