// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package surface

import (
	"math"

	"github.com/gogpu/gg"
	"github.com/gogpu/ggedit/geom"
	"github.com/gogpu/ggedit/layer"
)

// Overlay is an interactive decoration above every object. It sees
// pointer events first; PointerDown returns true to take the gesture.
type Overlay interface {
	PointerDown(p geom.Point) bool
	PointerMove(p geom.Point)
	PointerUp(p geom.Point)
	Draw(dc *gg.Context, multiplier float64)
}

// Key is a keyboard command understood while the surface has focus.
type Key int

const (
	KeySendToBack Key = iota
	KeyBringToFront
	KeyEscape
)

// minExtent is the smallest scaled side a gesture may produce.
const minExtent = 4

type handle int

const (
	handleNone handle = iota
	handleTopLeft
	handleTopRight
	handleBottomLeft
	handleBottomRight
	handleTop
	handleBottom
	handleLeft
	handleRight
	handleRotate
)

type gestureMode int

const (
	modeMove gestureMode = iota
	modeScale
	modeScaleX
	modeScaleY
	modeRotate
	modeOverlay
)

type gesture struct {
	id      string
	mode    gestureMode
	start   geom.Point
	geo     layer.Geometry // at gesture start
	anchorL geom.Point     // fixed point in box space
	anchor  geom.Point     // fixed point in canvas space
	v0      geom.Point     // grabbed handle minus anchor, canvas space
	axis    geom.Point     // unit scale axis, canvas space
	changed bool
}

// handlePoints returns the box-space position and the opposite anchor of
// each scale handle.
func handlePoints(size geom.Size) map[handle][2]geom.Point {
	w, h := size.Width, size.Height
	return map[handle][2]geom.Point{
		handleTopLeft:     {geom.Pt(0, 0), geom.Pt(w, h)},
		handleTopRight:    {geom.Pt(w, 0), geom.Pt(0, h)},
		handleBottomLeft:  {geom.Pt(0, h), geom.Pt(w, 0)},
		handleBottomRight: {geom.Pt(w, h), geom.Pt(0, 0)},
		handleTop:         {geom.Pt(w/2, 0), geom.Pt(w/2, h)},
		handleBottom:      {geom.Pt(w/2, h), geom.Pt(w/2, 0)},
		handleLeft:        {geom.Pt(0, h/2), geom.Pt(w, h/2)},
		handleRight:       {geom.Pt(w, h/2), geom.Pt(0, h/2)},
	}
}

// rotatePoint is the rotate handle position in canvas space.
func (s *Surface) rotatePoint(o *object) geom.Point {
	b := o.box()
	top := geom.Pt(b.Center().X, b.Y-s.style.RotateOffset)
	return geom.RotatePoint(top, o.geo.Rotation, b.Center())
}

// handleAtLocked hit-tests the handles of the selected object.
func (s *Surface) handleAtLocked(p geom.Point) handle {
	o, ok := s.objects[s.selected]
	if !ok {
		return handleNone
	}
	r := s.style.Size
	near := func(q geom.Point) bool { return math.Hypot(p.X-q.X, p.Y-q.Y) <= r }
	if near(s.rotatePoint(o)) {
		return handleRotate
	}
	a := o.affine()
	pts := handlePoints(o.size)
	for h := handleTopLeft; h <= handleRight; h++ {
		if near(a.Apply(pts[h][0])) {
			return h
		}
	}
	return handleNone
}

// hitLocked returns the topmost object under p.
func (s *Surface) hitLocked(p geom.Point) *object {
	for i := len(s.order) - 1; i >= 0; i-- {
		if o := s.objects[s.order[i]]; o.contains(p) {
			return o
		}
	}
	return nil
}

// HitTest returns the id of the topmost object under p.
func (s *Surface) HitTest(p geom.Point) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if o := s.hitLocked(p); o != nil {
		return o.id, true
	}
	return "", false
}

// Select makes id the active object. Unknown ids clear the selection.
func (s *Surface) Select(id string) {
	s.mu.Lock()
	if _, ok := s.objects[id]; !ok {
		id = ""
	}
	s.selectLocked(id)
	s.unlock()
}

// ClearSelection deselects the active object.
func (s *Surface) ClearSelection() { s.Select("") }

// Selected returns the active object id.
func (s *Surface) Selected() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected, s.selected != ""
}

func (s *Surface) selectLocked(id string) {
	if s.selected == id {
		return
	}
	s.selected = id
	if o, ok := s.objects[id]; ok {
		st := s.style
		o.decor = &st
	}
	s.emitLocked(Event{Kind: SelectionChanged, ID: id})
}

// SetOverlay installs ov above every object; nil removes it.
func (s *Surface) SetOverlay(ov Overlay) {
	s.mu.Lock()
	s.overlay = ov
	if s.gesture != nil && s.gesture.mode == modeOverlay {
		s.gesture = nil
	}
	s.mu.Unlock()
}

// PointerDown starts a gesture at canvas point p: the overlay first, then
// the handles of the selected object, then the topmost object body. A
// press on empty canvas clears the selection.
func (s *Surface) PointerDown(p geom.Point) {
	s.mu.Lock()
	ov := s.overlay
	s.mu.Unlock()
	if ov != nil && ov.PointerDown(p) {
		s.mu.Lock()
		s.gesture = &gesture{mode: modeOverlay, start: p}
		s.mu.Unlock()
		return
	}

	s.mu.Lock()
	s.gesture = nil
	if h := s.handleAtLocked(p); h != handleNone {
		s.gesture = s.startHandleLocked(s.objects[s.selected], h, p)
		s.unlock()
		return
	}
	o := s.hitLocked(p)
	if o == nil {
		s.selectLocked("")
		s.unlock()
		return
	}
	s.selectLocked(o.id)
	s.gesture = &gesture{id: o.id, mode: modeMove, start: p, geo: o.geo}
	s.unlock()
}

func (s *Surface) startHandleLocked(o *object, h handle, p geom.Point) *gesture {
	g := &gesture{id: o.id, start: p, geo: o.geo}
	if h == handleRotate {
		g.mode = modeRotate
		return g
	}
	a := o.affine()
	pts := handlePoints(o.size)[h]
	g.anchorL = pts[1]
	g.anchor = a.Apply(pts[1])
	g.v0 = a.Apply(pts[0]).Sub(g.anchor)
	switch h {
	case handleTop, handleBottom:
		g.mode = modeScaleY
	case handleLeft, handleRight:
		g.mode = modeScaleX
	default:
		g.mode = modeScale
	}
	if n := math.Hypot(g.v0.X, g.v0.Y); n > 0 {
		g.axis = g.v0.Mul(1 / n)
	}
	return g
}

// PointerMove continues the current gesture.
func (s *Surface) PointerMove(p geom.Point) {
	s.mu.Lock()
	g := s.gesture
	ov := s.overlay
	if g == nil {
		s.mu.Unlock()
		return
	}
	if g.mode == modeOverlay {
		s.mu.Unlock()
		if ov != nil {
			ov.PointerMove(p)
		}
		return
	}
	o, ok := s.objects[g.id]
	if !ok {
		s.gesture = nil
		s.mu.Unlock()
		return
	}
	o.geo = s.track(o, g, p)
	g.changed = g.changed || o.geo != g.geo
	s.mu.Unlock()
}

// PointerUp ends the gesture. A gesture that changed its object emits
// ObjectModified with the final geometry.
func (s *Surface) PointerUp(p geom.Point) {
	s.mu.Lock()
	g := s.gesture
	ov := s.overlay
	s.gesture = nil
	if g == nil {
		s.mu.Unlock()
		return
	}
	if g.mode == modeOverlay {
		s.mu.Unlock()
		if ov != nil {
			ov.PointerUp(p)
		}
		return
	}
	o, ok := s.objects[g.id]
	if !ok {
		s.mu.Unlock()
		return
	}
	o.geo = s.track(o, g, p)
	if g.changed || o.geo != g.geo {
		s.emitLocked(Event{Kind: ObjectModified, ID: o.id, Geometry: o.geo})
	}
	s.unlock()
}

// track computes the geometry of o for pointer position p.
func (s *Surface) track(o *object, g *gesture, p geom.Point) layer.Geometry {
	geo := g.geo
	switch g.mode {
	case modeMove:
		geo.Position = g.geo.Position.Add(p.Sub(g.start))
		return geo

	case modeRotate:
		c := objectBox(g.geo, o.size).Center()
		geo.Rotation = geom.NormalizeDegrees(geom.Degrees(math.Atan2(p.Y-c.Y, p.X-c.X)) + 90)
		return geo

	case modeScale:
		d := p.Sub(g.anchor)
		n2 := g.v0.X*g.v0.X + g.v0.Y*g.v0.Y
		if n2 == 0 {
			return geo
		}
		k := (d.X*g.v0.X + d.Y*g.v0.Y) / n2
		w0, h0 := o.size.Width*g.geo.Scale.X, o.size.Height*g.geo.Scale.Y
		if m := min(w0, h0); m > 0 {
			k = max(k, minExtent/m)
		}
		geo.Scale = layer.Scale{X: g.geo.Scale.X * k, Y: g.geo.Scale.Y * k}

	case modeScaleX, modeScaleY:
		d := p.Sub(g.anchor)
		ext := max(d.X*g.axis.X+d.Y*g.axis.Y, minExtent)
		if g.mode == modeScaleX && o.size.Width > 0 {
			geo.Scale.X = ext / o.size.Width
		}
		if g.mode == modeScaleY && o.size.Height > 0 {
			geo.Scale.Y = ext / o.size.Height
		}
	}

	// Keep the anchor where it was.
	moved := objectAffine(geo, o.size).Apply(g.anchorL)
	geo.Position = geo.Position.Add(g.anchor.Sub(moved))
	return geo
}

func objectBox(g layer.Geometry, size geom.Size) geom.Rect {
	return geom.R(g.Position.X, g.Position.Y, size.Width*g.Scale.X, size.Height*g.Scale.Y)
}

// Focus sets whether keyboard commands are accepted.
func (s *Surface) Focus(focused bool) {
	s.mu.Lock()
	s.focused = focused
	s.mu.Unlock()
}

// KeyDown handles a keyboard command. It reports whether the key was
// consumed; keys are ignored without focus.
func (s *Surface) KeyDown(k Key) bool {
	s.mu.Lock()
	if !s.focused {
		s.mu.Unlock()
		return false
	}
	switch k {
	case KeyEscape:
		if s.selected == "" {
			s.mu.Unlock()
			return false
		}
		s.selectLocked("")
	case KeySendToBack, KeyBringToFront:
		d := Front
		if k == KeySendToBack {
			d = Back
		}
		if !s.reorderLocked(s.selected, d) {
			s.mu.Unlock()
			return false
		}
		s.emitLocked(Event{Kind: Reordered, ID: s.selected})
	default:
		s.mu.Unlock()
		return false
	}
	s.unlock()
	return true
}
