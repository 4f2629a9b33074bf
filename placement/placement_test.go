// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package placement

import (
	"testing"

	"github.com/gogpu/ggedit/geom"
)

func place(e Engine, objs []Object, size geom.Size, role Role) []Object {
	p := e.Position(objs, size, role)
	return append(objs, Object{Bounds: geom.R(p.X, p.Y, size.Width, size.Height), Role: role})
}

func TestGridNonOverlap(t *testing.T) {
	e := NewEngine(geom.Sz(800, 600))
	sizes := []geom.Size{
		geom.Sz(100, 100), geom.Sz(150, 60), geom.Sz(90, 200), geom.Sz(300, 40),
		geom.Sz(100, 100), geom.Sz(55, 55), geom.Sz(220, 120), geom.Sz(40, 40),
	}
	var objs []Object
	for i, s := range sizes {
		objs = place(e, objs, s, RoleNone)
		added := objs[len(objs)-1].Bounds
		for j, prev := range objs[:len(objs)-1] {
			if added.Intersects(prev.Bounds) {
				t.Fatalf("object %d %v intersects object %d %v", i, added, j, prev.Bounds)
			}
		}
		if added.Right() > 800 || added.Bottom() > 600 {
			t.Fatalf("object %d %v outside canvas", i, added)
		}
	}
}

func TestGridFirstCell(t *testing.T) {
	e := NewEngine(geom.Sz(800, 600))
	if got := e.Position(nil, geom.Sz(100, 100), RoleNone); got != geom.Pt(0, 0) {
		t.Errorf("empty canvas = %v, want (0, 0)", got)
	}
	objs := []Object{{Bounds: geom.R(0, 0, 100, 100)}}
	// Touching the existing box is allowed, so the next cell is x=100.
	if got := e.Position(objs, geom.Sz(50, 50), RoleNone); got != geom.Pt(100, 0) {
		t.Errorf("next cell = %v, want (100, 0)", got)
	}
}

func TestGridFallback(t *testing.T) {
	e := NewEngine(geom.Sz(200, 200))
	objs := []Object{
		{Bounds: geom.R(0, 0, 200, 200)},
		{Bounds: geom.R(10, 10, 5, 5)},
	}
	got := e.Position(objs, geom.Sz(50, 50), RoleNone)
	if want := geom.Pt(90, 90); got != want {
		t.Errorf("fallback = %v, want %v", got, want)
	}
	// Larger than the canvas falls back immediately.
	if got := e.Position(nil, geom.Sz(500, 10), RoleNone); got != geom.Pt(50, 50) {
		t.Errorf("oversized fallback = %v, want (50, 50)", got)
	}
}

func TestHeadingStack(t *testing.T) {
	e := NewEngine(geom.Sz(800, 600))
	var objs []Object
	var lastY float64 = -1
	for i := 0; i < 3; i++ {
		objs = place(e, objs, geom.Sz(200, 40), RoleHeading)
		b := objs[len(objs)-1].Bounds
		if b.Y <= lastY {
			t.Errorf("heading %d y=%v not below %v", i, b.Y, lastY)
		}
		if b.X != 300 {
			t.Errorf("heading %d x=%v, want centered 300", i, b.X)
		}
		lastY = b.Y
	}
	if objs[0].Bounds.Y != e.TopMargin {
		t.Errorf("first heading y=%v, want %v", objs[0].Bounds.Y, e.TopMargin)
	}
}

func TestParagraphStack(t *testing.T) {
	e := NewEngine(geom.Sz(800, 600))

	if got := e.Position(nil, geom.Sz(300, 30), RoleParagraph); got != geom.Pt(e.LeftMargin, e.ParagraphTop) {
		t.Errorf("first paragraph without heading = %v", got)
	}

	var objs []Object
	objs = place(e, objs, geom.Sz(200, 40), RoleHeading)
	objs = place(e, objs, geom.Sz(200, 40), RoleHeading)
	lowestHeading := objs[1].Bounds.Bottom()

	var lastY float64 = -1
	for i := 0; i < 3; i++ {
		objs = place(e, objs, geom.Sz(300, 30), RoleParagraph)
		b := objs[len(objs)-1].Bounds
		if b.Y <= lastY {
			t.Errorf("paragraph %d y=%v not below %v", i, b.Y, lastY)
		}
		if b.Y <= lowestHeading {
			t.Errorf("paragraph %d y=%v not below heading bottom %v", i, b.Y, lowestHeading)
		}
		if b.X != e.LeftMargin {
			t.Errorf("paragraph %d x=%v, want %v", i, b.X, e.LeftMargin)
		}
		lastY = b.Y
	}
}

func TestParagraphBelowLaterHeading(t *testing.T) {
	e := NewEngine(geom.Sz(800, 600))
	objs := []Object{
		{Bounds: geom.R(40, 120, 300, 30), Role: RoleParagraph},
		{Bounds: geom.R(300, 300, 200, 40), Role: RoleHeading},
	}
	got := e.Position(objs, geom.Sz(300, 30), RoleParagraph)
	if got.Y != 360 {
		t.Errorf("paragraph y = %v, want 360 (below heading)", got.Y)
	}
}

func TestPositionIsPure(t *testing.T) {
	e := NewEngine(geom.Sz(400, 400))
	objs := []Object{{Bounds: geom.R(0, 0, 100, 100)}}
	a := e.Position(objs, geom.Sz(50, 50), RoleNone)
	b := e.Position(objs, geom.Sz(50, 50), RoleNone)
	if a != b || len(objs) != 1 {
		t.Errorf("Position not pure: %v vs %v", a, b)
	}
}
