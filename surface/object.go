// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package surface

import (
	"context"
	"image"
	"slices"

	"github.com/gogpu/gg/text"
	"github.com/gogpu/ggedit/geom"
	"github.com/gogpu/ggedit/internal/fonts"
	"github.com/gogpu/ggedit/layer"
)

// Kind distinguishes text objects from media objects.
type Kind int

const (
	KindText Kind = iota
	KindMedia
)

func (k Kind) String() string {
	if k == KindMedia {
		return "media"
	}
	return "text"
}

// Direction is a z-order move.
type Direction int

const (
	Front Direction = iota
	Back
)

// GeometryPatch is a partial transform update. Nil fields are unchanged.
type GeometryPatch struct {
	Position *geom.Point
	Scale    *layer.Scale
	Rotation *float64
	Opacity  *float64
}

// FullPatch returns a patch that sets every field of g.
func FullPatch(g layer.Geometry) GeometryPatch {
	return GeometryPatch{Position: &g.Position, Scale: &g.Scale, Rotation: &g.Rotation, Opacity: &g.Opacity}
}

func (p GeometryPatch) apply(g layer.Geometry) layer.Geometry {
	if p.Position != nil {
		g.Position = *p.Position
	}
	if p.Scale != nil && p.Scale.X > 0 && p.Scale.Y > 0 {
		g.Scale = *p.Scale
	}
	if p.Rotation != nil {
		g.Rotation = *p.Rotation
	}
	if p.Opacity != nil {
		g.Opacity = *p.Opacity
	}
	return g.Normalize()
}

// ObjectInfo is a read-only view of an object.
type ObjectInfo struct {
	ID       string
	Kind     Kind
	TextKind layer.TextKind // text objects only
	Geometry layer.Geometry
	// Size is the unscaled box.
	Size geom.Size
	// Bounds is the axis-aligned box of the transformed object in canvas
	// space.
	Bounds geom.Rect
}

type object struct {
	id   string
	kind Kind
	geo  layer.Geometry
	size geom.Size

	text   layer.TextLayer
	source *text.FontSource
	family string // family and weight source was resolved for
	weight layer.FontWeight
	sprite *sprite

	media    layer.MediaLayer
	pixels   image.Image
	mediaErr error
	mediaGen uint64

	decor *HandleStyle
}

type sprite struct {
	img *image.RGBA
	res float64 // sprite pixels per unscaled unit
	pad float64 // unscaled units around the box
}

// affine maps the unscaled box [0,w]x[0,h] to canvas space: scale, then
// rotate about the center of the scaled box, then move to the position.
func (o *object) affine() geom.Affine {
	return objectAffine(o.geo, o.size)
}

func objectAffine(g layer.Geometry, size geom.Size) geom.Affine {
	w, h := size.Width*g.Scale.X, size.Height*g.Scale.Y
	return geom.Scaling(g.Scale.X, g.Scale.Y).
		Then(geom.Translation(-w/2, -h/2)).
		Then(geom.Rotation(g.Rotation)).
		Then(geom.Translation(g.Position.X+w/2, g.Position.Y+h/2))
}

// box returns the scaled, unrotated box in canvas space.
func (o *object) box() geom.Rect { return objectBox(o.geo, o.size) }

func (o *object) bounds() geom.Rect {
	return geom.RotatedBounds(o.box(), o.geo.Rotation)
}

// contains reports whether canvas point p is inside the rotated box.
func (o *object) contains(p geom.Point) bool {
	inv, ok := o.affine().Invert()
	if !ok {
		return false
	}
	l := inv.Apply(p)
	return geom.R(0, 0, o.size.Width, o.size.Height).Contains(l)
}

func (o *object) info() ObjectInfo {
	in := ObjectInfo{ID: o.id, Kind: o.kind, Geometry: o.geo, Size: o.size, Bounds: o.bounds()}
	if o.kind == KindText {
		in.TextKind = o.text.Kind
	}
	return in
}

// AddText creates a text object for l. It renders at once with a fallback
// face; a requested family that is not cached yet loads in the background
// and replaces the face when it arrives.
func (s *Surface) AddText(l layer.TextLayer) {
	s.mu.Lock()
	if _, dup := s.objects[l.ID]; dup {
		s.mu.Unlock()
		s.log.Debug("add text: id exists", "id", l.ID)
		return
	}
	o := &object{id: l.ID, kind: KindText}
	s.setTextLocked(o, l)
	s.objects[l.ID] = o
	s.order = append(s.order, l.ID)
	s.unlock()
}

// UpdateText replaces the text properties and geometry of an existing
// text object.
func (s *Surface) UpdateText(l layer.TextLayer) {
	s.mu.Lock()
	o, ok := s.objects[l.ID]
	if !ok || o.kind != KindText {
		s.mu.Unlock()
		s.log.Debug("update text: unknown id", "id", l.ID)
		return
	}
	s.setTextLocked(o, l)
	s.unlock()
}

func (s *Surface) setTextLocked(o *object, l layer.TextLayer) {
	o.text = l
	o.geo = l.Geometry().Normalize()
	o.sprite = nil
	if o.source == nil || o.family != l.FontFamily || o.weight != l.FontWeight {
		o.source, o.family = s.resolveFontLocked(o.id, l)
		o.weight = l.FontWeight
	}
	o.size = measureText(o.source, l)
}

// resolveFontLocked returns the best source available without I/O and,
// when that is a fallback, starts the real load.
func (s *Surface) resolveFontLocked(id string, l layer.TextLayer) (*text.FontSource, string) {
	fallback := fonts.Fallback(int(l.FontWeight))
	if s.fonts == nil || fonts.IsFallback(l.FontFamily) {
		return fallback, l.FontFamily
	}
	if src, ok := s.fonts.Cached(l.FontFamily); ok {
		return src, l.FontFamily
	}
	family := l.FontFamily
	s.spawn(func(base context.Context) {
		ctx, cancel := context.WithTimeout(base, s.fontTimeout)
		defer cancel()
		src, err := s.fonts.Load(ctx, family)
		if err != nil {
			s.log.Warn("font fallback", "family", family, "id", id, "err", err)
			return
		}
		s.mu.Lock()
		o, ok := s.objects[id]
		if !ok || o.text.FontFamily != family {
			s.mu.Unlock()
			s.log.Debug("font upgrade: object gone", "id", id, "family", family)
			return
		}
		o.source = src
		o.size = measureText(src, o.text)
		o.sprite = nil
		s.emitLocked(Event{Kind: FontUpgraded, ID: id})
		s.unlock()
	})
	return fallback, family
}

// AddMedia creates a media object for m. Its pixels load in the
// background; a placeholder is drawn until then.
func (s *Surface) AddMedia(m layer.MediaLayer) {
	s.mu.Lock()
	if _, dup := s.objects[m.ID]; dup {
		s.mu.Unlock()
		s.log.Debug("add media: id exists", "id", m.ID)
		return
	}
	o := &object{id: m.ID, kind: KindMedia, media: m, geo: m.Geometry().Normalize(), size: geom.Sz(m.Width, m.Height)}
	s.objects[m.ID] = o
	s.order = append(s.order, m.ID)
	s.loadMediaLocked(o)
	s.unlock()
}

// AddMediaImage creates a media object whose pixels are already decoded.
func (s *Surface) AddMediaImage(m layer.MediaLayer, img image.Image) {
	s.mu.Lock()
	if _, dup := s.objects[m.ID]; dup {
		s.mu.Unlock()
		return
	}
	o := &object{id: m.ID, kind: KindMedia, media: m, geo: m.Geometry().Normalize(), size: geom.Sz(m.Width, m.Height), pixels: img}
	s.objects[m.ID] = o
	s.order = append(s.order, m.ID)
	s.unlock()
}

// Update applies a geometry patch. It never emits ObjectModified.
func (s *Surface) Update(id string, p GeometryPatch) {
	s.mu.Lock()
	o, ok := s.objects[id]
	if !ok {
		s.mu.Unlock()
		s.log.Debug("update: unknown id", "id", id)
		return
	}
	o.geo = p.apply(o.geo)
	s.unlock()
}

// Remove deletes an object. Unknown ids are ignored.
func (s *Surface) Remove(id string) {
	s.mu.Lock()
	if _, ok := s.objects[id]; !ok {
		s.mu.Unlock()
		s.log.Debug("remove: unknown id", "id", id)
		return
	}
	delete(s.objects, id)
	s.order = slices.DeleteFunc(s.order, func(v string) bool { return v == id })
	if s.gesture != nil && s.gesture.id == id {
		s.gesture = nil
	}
	if s.selected == id {
		s.selected = ""
		s.emitLocked(Event{Kind: SelectionChanged})
	}
	s.unlock()
}

// Reorder moves one object to the top of the stack, or to the bottom
// directly above the background. Other objects keep their relative order.
func (s *Surface) Reorder(id string, d Direction) {
	s.mu.Lock()
	if !s.reorderLocked(id, d) {
		s.mu.Unlock()
		s.log.Debug("reorder: unknown id", "id", id)
		return
	}
	s.unlock()
}

func (s *Surface) reorderLocked(id string, d Direction) bool {
	i := slices.Index(s.order, id)
	if i < 0 {
		return false
	}
	s.order = slices.Delete(s.order, i, i+1)
	if d == Back {
		s.order = slices.Insert(s.order, 0, id)
	} else {
		s.order = append(s.order, id)
	}
	return true
}

// Object returns a view of one object.
func (s *Surface) Object(id string) (ObjectInfo, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.objects[id]
	if !ok {
		return ObjectInfo{}, false
	}
	return o.info(), true
}

// Objects returns all objects from bottom to top.
func (s *Surface) Objects() []ObjectInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ObjectInfo, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.objects[id].info())
	}
	return out
}

// MeasureText returns the unscaled box l would occupy with the face that
// is available right now.
func (s *Surface) MeasureText(l layer.TextLayer) geom.Size {
	src := fonts.Fallback(int(l.FontWeight))
	if s.fonts != nil && !fonts.IsFallback(l.FontFamily) {
		if cached, ok := s.fonts.Cached(l.FontFamily); ok {
			src = cached
		}
	}
	return measureText(src, l)
}
