// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package crop

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/gogpu/gg"
	"github.com/gogpu/ggedit/geom"
	"gonum.org/v1/gonum/floats/scalar"
)

const tol = 1e-9

// A 1000x500 image displayed at 0.8 with origin (0,100).
var (
	testBounds = geom.R(0, 100, 800, 400)
	testNative = geom.Sz(1000, 500)
)

func begin(t *testing.T, a Aspect) *Controller {
	t.Helper()
	c := New()
	if err := c.Begin(testBounds, testNative, a); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	return c
}

func inside(r, b geom.Rect) bool {
	return r.X >= b.X-tol && r.Y >= b.Y-tol && r.Right() <= b.Right()+tol && r.Bottom() <= b.Bottom()+tol
}

func TestParseAspect(t *testing.T) {
	for _, a := range Aspects {
		got, err := ParseAspect(string(a))
		if err != nil || got != a {
			t.Errorf("ParseAspect(%q) = %q, %v", a, got, err)
		}
	}
	if got, _ := ParseAspect(""); got != Freeform {
		t.Errorf("empty aspect = %q", got)
	}
	if _, err := ParseAspect("7:5"); !errors.Is(err, ErrAspect) {
		t.Errorf("ParseAspect(7:5) err = %v", err)
	}
}

func TestAspectRatio(t *testing.T) {
	tests := []struct {
		a    Aspect
		want float64
		ok   bool
	}{
		{Freeform, 0, false},
		{Original, 2, true},
		{Square, 1, true},
		{Wide, 16.0 / 9, true},
		{R2x3, 2.0 / 3, true},
	}
	for _, tt := range tests {
		got, ok := tt.a.Ratio(geom.Sz(800, 400))
		if ok != tt.ok || !scalar.EqualWithinAbs(got, tt.want, tol) {
			t.Errorf("%s.Ratio = %v, %v; want %v, %v", tt.a, got, ok, tt.want, tt.ok)
		}
	}
}

func TestBegin(t *testing.T) {
	c := begin(t, Freeform)
	if !c.Active() {
		t.Fatal("not active after Begin")
	}
	r := c.Rect()
	if !scalar.EqualWithinAbs(r.Width, 560, tol) || !scalar.EqualWithinAbs(r.Height, 280, tol) {
		t.Errorf("initial overlay = %v, want 70%% of bounds", r)
	}
	if c := r.Center(); !scalar.EqualWithinAbs(c.X, 400, tol) || !scalar.EqualWithinAbs(c.Y, 300, tol) {
		t.Errorf("overlay not centered: %v", c)
	}

	sq := begin(t, Square).Rect()
	if !scalar.EqualWithinAbs(sq.Width, sq.Height, tol) {
		t.Errorf("square overlay = %v", sq)
	}

	if err := New().Begin(geom.Rect{}, testNative, Freeform); !errors.Is(err, ErrNoBackground) {
		t.Errorf("Begin without background err = %v", err)
	}
}

func TestInactiveOperations(t *testing.T) {
	c := New()
	if err := c.Move(1, 1); !errors.Is(err, ErrInactive) {
		t.Errorf("Move err = %v", err)
	}
	if err := c.SetAspect(Square); !errors.Is(err, ErrInactive) {
		t.Errorf("SetAspect err = %v", err)
	}
	if _, err := c.Region(); !errors.Is(err, ErrInactive) {
		t.Errorf("Region err = %v", err)
	}
	if _, err := c.Prepare(); !errors.Is(err, ErrInactive) {
		t.Errorf("Prepare err = %v", err)
	}
}

func TestSetAspectFitsAndCenters(t *testing.T) {
	c := begin(t, Freeform)
	if err := c.SetAspect(Wide); err != nil {
		t.Fatal(err)
	}
	r := c.Rect()
	if !scalar.EqualWithinAbs(r.Width/r.Height, 16.0/9, 1e-9) {
		t.Errorf("ratio = %v", r.Width/r.Height)
	}
	area := geom.CenterIn(testBounds.Size().Scale(0.8), testBounds).Inset(10)
	if !inside(r, area) {
		t.Errorf("overlay %v outside fit area %v", r, area)
	}
	if !scalar.EqualWithinAbs(r.Height, area.Height, tol) {
		t.Errorf("overlay is not the largest fit: %v in %v", r, area)
	}
	ce := r.Center()
	if !scalar.EqualWithinAbs(ce.X, 400, tol) || !scalar.EqualWithinAbs(ce.Y, 300, tol) {
		t.Errorf("overlay not re-centered: %v", ce)
	}

	if err := c.SetAspect(Original); err != nil {
		t.Fatal(err)
	}
	if r := c.Rect(); !scalar.EqualWithinAbs(r.Width/r.Height, 2, 1e-9) {
		t.Errorf("original ratio = %v, want 2", r.Width/r.Height)
	}
}

func TestFixedRatioSurvivesResize(t *testing.T) {
	for _, a := range []Aspect{Square, Wide, Tall, R4x5, R3x2, Original} {
		c := begin(t, a)
		want, _ := a.Ratio(testBounds.Size())
		moves := []struct {
			h Handle
			p geom.Point
		}{
			{HandleBottomRight, geom.Pt(900, 900)},
			{HandleTopLeft, geom.Pt(-50, 20)},
			{HandleTopRight, geom.Pt(410, 310)},
			{HandleBottomLeft, geom.Pt(395, 305)},
			{HandleBottomRight, geom.Pt(700, 330)},
		}
		for _, m := range moves {
			if err := c.Resize(m.h, m.p); err != nil {
				t.Fatal(err)
			}
			r := c.Rect()
			if !scalar.EqualWithinAbs(r.Width/r.Height, want, 1e-9) {
				t.Errorf("%s after %v to %v: ratio %v, want %v", a, m.h, m.p, r.Width/r.Height, want)
			}
			if !inside(r, testBounds) {
				t.Errorf("%s after %v: %v escapes bounds", a, m.h, r)
			}
		}
	}
}

func TestFreeformResizeIsIndependent(t *testing.T) {
	c := begin(t, Freeform)
	c.Resize(HandleTopLeft, geom.Pt(80, 140))
	c.Resize(HandleBottomRight, geom.Pt(320, 300))
	r := c.Rect()
	want := geom.R(80, 140, 240, 160)
	if r != want {
		t.Errorf("Rect = %v, want %v", r, want)
	}
}

func TestMoveClamps(t *testing.T) {
	c := begin(t, Freeform)
	c.Move(-10000, 10000)
	r := c.Rect()
	if !inside(r, testBounds) {
		t.Fatalf("overlay %v escapes bounds", r)
	}
	if !scalar.EqualWithinAbs(r.X, testBounds.X+c.ClampMargin, tol) ||
		!scalar.EqualWithinAbs(r.Bottom(), testBounds.Bottom()-c.ClampMargin, tol) {
		t.Errorf("overlay %v not pushed to the bottom-left corner", r)
	}
}

func TestShrinkWhenBoundsShrink(t *testing.T) {
	c := begin(t, Square)
	small := geom.R(100, 150, 200, 100)
	c.SetBounds(small)
	r := c.Rect()
	if !inside(r, small) {
		t.Errorf("overlay %v not shrunk into %v", r, small)
	}
	if !scalar.EqualWithinAbs(r.Width, r.Height, 1e-9) {
		t.Errorf("shrink broke the ratio: %v", r)
	}
}

func TestRegionMapping(t *testing.T) {
	c := begin(t, Freeform)
	c.Resize(HandleTopLeft, geom.Pt(80, 140))
	c.Resize(HandleBottomRight, geom.Pt(320, 300))

	reg, err := c.Region()
	if err != nil {
		t.Fatal(err)
	}
	want := geom.R(100, 50, 300, 200)
	for _, p := range [][2]float64{
		{reg.Image.X, want.X}, {reg.Image.Y, want.Y},
		{reg.Image.Width, want.Width}, {reg.Image.Height, want.Height},
	} {
		if !scalar.EqualWithinAbs(p[0], p[1], 1e-6) {
			t.Fatalf("Image = %v, want %v", reg.Image, want)
		}
	}
	if w, h := reg.PixelSize(); w != 300 || h != 200 {
		t.Errorf("PixelSize = %dx%d", w, h)
	}

	// Recomputed against new bounds, not cached.
	c.SetBounds(geom.R(0, 100, 400, 200))
	reg2, _ := c.Region()
	if reg2.Image == reg.Image {
		t.Error("Region did not follow the new bounds")
	}
	if !inside(reg2.Image, geom.R(0, 0, 1000, 500)) {
		t.Errorf("Region %v outside native image", reg2.Image)
	}
}

func TestCommitLifecycle(t *testing.T) {
	c := begin(t, Square)
	tk, err := c.Prepare()
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Complete(tk); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if c.Active() {
		t.Error("still active after Complete")
	}

	c = begin(t, Square)
	tk, _ = c.Prepare()
	c.Cancel()
	if err := c.Complete(tk); !errors.Is(err, ErrStale) {
		t.Errorf("Complete after Cancel err = %v", err)
	}

	c = begin(t, Square)
	tk, _ = c.Prepare()
	c.Begin(testBounds, testNative, Wide)
	if err := c.Complete(tk); !errors.Is(err, ErrStale) {
		t.Errorf("Complete after re-Begin err = %v", err)
	}
	if !c.Active() {
		t.Error("stale Complete must not leave Active")
	}
}

func TestPointerGestures(t *testing.T) {
	c := begin(t, Freeform)
	r := c.Rect()

	if c.PointerDown(geom.Pt(5, 5)) {
		t.Error("PointerDown outside overlay was taken")
	}
	if !c.PointerDown(r.Center()) {
		t.Fatal("PointerDown on overlay body not taken")
	}
	c.PointerUp(r.Center().Add(geom.Pt(10, -20)))
	if got := c.Rect(); got != r.Translate(10, -20) {
		t.Errorf("drag body: %v, want %v", got, r.Translate(10, -20))
	}

	r = c.Rect()
	if h := c.HandleAt(r.Max()); h != HandleBottomRight {
		t.Fatalf("HandleAt corner = %v", h)
	}
	c.PointerDown(r.Max())
	c.PointerMove(r.Max().Add(geom.Pt(-100, -50)))
	c.PointerUp(r.Max().Add(geom.Pt(-100, -50)))
	got := c.Rect()
	if got.Min() != r.Min() || !scalar.EqualWithinAbs(got.Width, r.Width-100, tol) {
		t.Errorf("corner drag: %v from %v", got, r)
	}
}

func TestDraw(t *testing.T) {
	c := begin(t, Square)
	dc := gg.NewContext(800, 600)
	defer dc.Close()
	dc.ClearWithColor(gg.White)
	c.Draw(dc, 1)

	img := dc.Image()
	// Outside the overlay but inside the image: dimmed.
	if r, _, _, _ := img.At(5, 105).RGBA(); r>>8 > 200 {
		t.Errorf("outside pixel not dimmed: r=%d", r>>8)
	}
	// Overlay center stays untouched.
	ce := c.Rect().Center()
	if r, _, _, _ := img.At(int(ce.X), int(ce.Y)).RGBA(); r>>8 != 255 {
		t.Errorf("overlay center changed: r=%d", r>>8)
	}
}

func TestRasterize(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 1000, 500))
	for y := 0; y < 500; y++ {
		for x := 0; x < 1000; x++ {
			src.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 0, A: 255})
		}
	}

	out, err := Rasterize(src, geom.R(100, 50, 300, 200))
	if err != nil {
		t.Fatal(err)
	}
	if b := out.Bounds(); b.Dx() != 300 || b.Dy() != 200 {
		t.Fatalf("size = %v, want 300x200", b)
	}

	out, err = Rasterize(src, geom.R(899.6, 399.7, 100.4, 100.3))
	if err != nil {
		t.Fatal(err)
	}
	if b := out.Bounds(); b.Dx() != 100 || b.Dy() != 100 {
		t.Errorf("edge crop size = %v", b)
	}

	if _, err := Rasterize(src, geom.R(0, 0, 0.2, 10)); !errors.Is(err, ErrEmptyRegion) {
		t.Errorf("empty region err = %v", err)
	}
	if _, err := Rasterize(nil, geom.R(0, 0, 10, 10)); !errors.Is(err, ErrNoBackground) {
		t.Errorf("nil source err = %v", err)
	}
}
