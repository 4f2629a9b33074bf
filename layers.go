// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package ggedit

import (
	"context"
	"fmt"
	"image"

	"github.com/gogpu/ggedit/geom"
	"github.com/gogpu/ggedit/layer"
	"github.com/gogpu/ggedit/placement"
	"github.com/gogpu/ggedit/surface"
	"github.com/samber/lo"
)

// mediaFraction is the share of the canvas a media layer of unknown size
// is fitted into.
const mediaFraction = 1.0 / 3

// MediaDescriptor describes a media layer to add. Width and Height are the
// intrinsic size; when either is zero the source is decoded to find it.
type MediaDescriptor struct {
	Kind      layer.MediaKind `json:"kind"`
	SourceURL string          `json:"sourceUrl"`
	Width     float64         `json:"width,omitempty"`
	Height    float64         `json:"height,omitempty"`
}

func roleOf(k layer.TextKind) placement.Role {
	switch k {
	case layer.Heading:
		return placement.RoleHeading
	case layer.Paragraph:
		return placement.RoleParagraph
	}
	return placement.RoleNone
}

// placed returns the placement inputs for the current scene.
func (e *Editor) placed() []placement.Object {
	return lo.Map(e.surf.Objects(), func(o surface.ObjectInfo, _ int) placement.Object {
		return placement.Object{Bounds: o.Bounds, Role: roleOf(o.TextKind)}
	})
}

// AddTextLayer adds a text layer of kind k with the preset style for that
// kind. An empty content keeps the preset text. The layer is placed by the
// placement engine and selected.
func (e *Editor) AddTextLayer(k layer.TextKind, content string) (layer.TextLayer, error) {
	l := layer.DefaultText(k)
	if content != "" {
		l.Content = content
	}
	size := e.surf.MeasureText(l)

	e.addMu.Lock()
	defer e.addMu.Unlock()
	l.Position = e.place.Position(e.placed(), size, roleOf(l.Kind))

	l, err := e.model.AddText(l)
	if err != nil {
		return layer.TextLayer{}, observe("add_text", err)
	}
	e.surf.AddText(l)
	e.surf.Select(l.ID)
	e.log.Debug("text layer added", "id", l.ID, "kind", l.Kind, "position", l.Position)
	return l, observe("add_text", nil)
}

// AddMediaLayer adds a media layer. Without an intrinsic size the source
// is loaded first and fitted into a third of the canvas; otherwise the
// pixels load in the background.
func (e *Editor) AddMediaLayer(ctx context.Context, d MediaDescriptor) (layer.MediaLayer, error) {
	m := layer.DefaultMedia(d.Kind, d.SourceURL, d.Width, d.Height)

	var img image.Image
	if m.Width <= 0 || m.Height <= 0 {
		var err error
		if img, err = e.loader.Load(ctx, m.SourceURL); err != nil {
			return layer.MediaLayer{}, observe("add_media", fmt.Errorf("ggedit: media size: %w", err))
		}
		b := img.Bounds()
		native := geom.Sz(float64(b.Dx()), float64(b.Dy()))
		k := min(geom.FitScale(native, e.size.Scale(mediaFraction)), 1)
		m.Width, m.Height = native.Width*k, native.Height*k
	}

	e.addMu.Lock()
	defer e.addMu.Unlock()
	m.Position = e.place.Position(e.placed(), geom.Sz(m.Width, m.Height), placement.RoleNone)

	m, err := e.model.AddMedia(m)
	if err != nil {
		return layer.MediaLayer{}, observe("add_media", err)
	}
	if img != nil {
		e.surf.AddMediaImage(m, img)
	} else {
		e.surf.AddMedia(m)
	}
	e.surf.Select(m.ID)
	e.log.Debug("media layer added", "id", m.ID, "size", geom.Sz(m.Width, m.Height))
	return m, observe("add_media", nil)
}

// UpdateLayer applies p to the layer named id and pushes the result to
// the surface. Text-only fields are ignored for media layers.
func (e *Editor) UpdateLayer(id string, p layer.Patch) error {
	if err := e.model.Update(id, p); err != nil {
		if notFound(err) {
			e.log.Debug("update: unknown layer", "id", id)
		}
		return observe("update", err)
	}
	if l, ok := e.model.TextLayer(id); ok {
		e.surf.UpdateText(l)
	} else if m, ok := e.model.MediaLayer(id); ok {
		e.surf.UpdateMedia(m)
	}
	return observe("update", nil)
}

// RemoveLayer deletes the layer named id from the model and the surface.
// Unknown ids are a no-op.
func (e *Editor) RemoveLayer(id string) {
	if !e.model.Remove(id) {
		e.log.Debug("remove: unknown layer", "id", id)
	}
	e.surf.Remove(id)
	observe("remove", nil)
}

// SendToBack moves the layer named id to the bottom of the stack, directly
// above the background.
func (e *Editor) SendToBack(id string) {
	e.surf.Reorder(id, surface.Back)
	observe("send_to_back", nil)
}

// BringToFront moves the layer named id to the top of the stack.
func (e *Editor) BringToFront(id string) {
	e.surf.Reorder(id, surface.Front)
	observe("bring_to_front", nil)
}

// UpdateFilters merges p into the background filters and returns the
// result. Values are clamped to their ranges.
func (e *Editor) UpdateFilters(p layer.FiltersPatch) layer.ImageFilters {
	f := e.model.UpdateFilters(p)
	observe("filters", nil)
	return f
}

// Layers returns the stacking order of the layers, bottom to top.
func (e *Editor) Layers() []string { return e.surf.Order() }
