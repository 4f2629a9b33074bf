// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package placement chooses initial positions for newly added layers.
//
// The engine is a pure function of the existing object bounds; it never
// mutates editor state.
package placement

import "github.com/gogpu/ggedit/geom"

// Role is a semantic hint that selects the stacking strategy.
type Role int

const (
	// RoleNone places objects on the first free grid cell.
	RoleNone Role = iota
	// RoleHeading stacks centered headings from the top.
	RoleHeading
	// RoleParagraph stacks left-aligned paragraphs below the headings.
	RoleParagraph
)

func (r Role) String() string {
	switch r {
	case RoleHeading:
		return "heading"
	case RoleParagraph:
		return "paragraph"
	}
	return "none"
}

// Object is an existing, non-background object on the canvas.
type Object struct {
	Bounds geom.Rect
	Role   Role
}

// Engine holds the layout constants. The zero value is not useful; use
// NewEngine.
type Engine struct {
	Canvas geom.Size

	// Step is the grid pitch for role-less placement.
	Step float64
	// TopMargin is the y of the first heading.
	TopMargin float64
	// ParagraphTop is the y of the first paragraph when there is no heading.
	ParagraphTop float64
	// LeftMargin is the x of paragraphs.
	LeftMargin float64
	// Gap separates stacked objects.
	Gap float64
	// FallbackOrigin and FallbackStep define the overlap-tolerant position
	// used when the grid is full: origin + n*step on both axes.
	FallbackOrigin float64
	FallbackStep   float64
}

// NewEngine returns an engine for a canvas of the given size.
func NewEngine(canvas geom.Size) Engine {
	return Engine{
		Canvas:         canvas,
		Step:           20,
		TopMargin:      40,
		ParagraphTop:   120,
		LeftMargin:     40,
		Gap:            20,
		FallbackOrigin: 50,
		FallbackStep:   20,
	}
}

// Position returns the top-left corner for a new object of the given size.
func (e Engine) Position(objects []Object, size geom.Size, role Role) geom.Point {
	switch role {
	case RoleHeading:
		y := e.TopMargin
		if b, ok := lowest(objects, RoleHeading); ok {
			y = b + e.Gap
		}
		return geom.Pt((e.Canvas.Width-size.Width)/2, y)

	case RoleParagraph:
		y := e.ParagraphTop
		if b, ok := lowest(objects, RoleHeading); ok {
			y = b + e.Gap
		}
		if b, ok := lowest(objects, RoleParagraph); ok {
			y = max(y, b+e.Gap)
		}
		return geom.Pt(e.LeftMargin, y)
	}
	return e.free(objects, size)
}

// free scans the grid row by row from the top-left and returns the first
// cell whose candidate box misses every object.
func (e Engine) free(objects []Object, size geom.Size) geom.Point {
	step := e.Step
	if step <= 0 {
		step = 20
	}
	for y := 0.0; y+size.Height <= e.Canvas.Height; y += step {
		for x := 0.0; x+size.Width <= e.Canvas.Width; x += step {
			c := geom.R(x, y, size.Width, size.Height)
			if !intersectsAny(c, objects) {
				return geom.Pt(x, y)
			}
		}
	}
	n := float64(len(objects))
	off := e.FallbackOrigin + n*e.FallbackStep
	return geom.Pt(off, off)
}

func intersectsAny(r geom.Rect, objects []Object) bool {
	for _, o := range objects {
		if r.Intersects(o.Bounds) {
			return true
		}
	}
	return false
}

// lowest returns the largest bottom edge among objects with the given role.
func lowest(objects []Object, role Role) (float64, bool) {
	var (
		bottom float64
		found  bool
	)
	for _, o := range objects {
		if o.Role != role {
			continue
		}
		if !found || o.Bounds.Bottom() > bottom {
			bottom = o.Bounds.Bottom()
			found = true
		}
	}
	return bottom, found
}
