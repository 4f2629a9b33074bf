// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package surface

import (
	"context"
	"image"
	"image/color"

	"github.com/gogpu/gg"
	"github.com/gogpu/ggedit/layer"
)

var (
	placeholderFill   = color.NRGBA{R: 0xe5, G: 0xe7, B: 0xeb, A: 0xff}
	placeholderStroke = gg.Hex("#9ca3af")
)

// loadMediaLocked fetches the pixels of o in the background.
func (s *Surface) loadMediaLocked(o *object) {
	o.mediaGen++
	gen, id, ref := o.mediaGen, o.id, o.media.SourceURL
	s.spawn(func(ctx context.Context) {
		img, err := s.loader.Load(ctx, ref)

		s.mu.Lock()
		cur, ok := s.objects[id]
		if !ok || cur.mediaGen != gen {
			s.mu.Unlock()
			s.log.Debug("stale media discarded", "id", id)
			return
		}
		if err != nil {
			cur.mediaErr = err
			s.emitLocked(Event{Kind: MediaFailed, ID: id, Err: err})
			s.unlock()
			s.log.Warn("media load failed", "id", id, "ref", shortRef(ref), "err", err)
			return
		}
		cur.pixels = img
		cur.mediaErr = nil
		s.emitLocked(Event{Kind: MediaLoaded, ID: id})
		s.unlock()
	})
}

// UpdateMedia replaces the media properties and geometry of an existing
// media object, reloading its pixels when the source changed.
func (s *Surface) UpdateMedia(m layer.MediaLayer) {
	s.mu.Lock()
	o, ok := s.objects[m.ID]
	if !ok || o.kind != KindMedia {
		s.mu.Unlock()
		s.log.Debug("update media: unknown id", "id", m.ID)
		return
	}
	reload := o.media.SourceURL != m.SourceURL
	o.media = m
	o.geo = m.Geometry().Normalize()
	o.size.Width, o.size.Height = m.Width, m.Height
	if reload {
		o.pixels = nil
		s.loadMediaLocked(o)
	}
	s.unlock()
}

// MediaErr returns the load error of a media object, if any.
func (s *Surface) MediaErr(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if o, ok := s.objects[id]; ok {
		return o.mediaErr
	}
	return nil
}

// placeholder draws a neutral box with a border for media that has not
// loaded, sized w x h sprite pixels.
func placeholder(w, h int) *image.RGBA {
	dc := gg.NewContext(max(w, 1), max(h, 1))
	defer dc.Close()
	dc.SetColor(placeholderFill)
	dc.DrawRectangle(0, 0, float64(w), float64(h))
	_ = dc.Fill()
	dc.SetColor(placeholderStroke.Color())
	dc.SetLineWidth(2)
	dc.DrawRectangle(1, 1, float64(w)-2, float64(h)-2)
	_ = dc.Stroke()
	dc.DrawLine(0, 0, float64(w), float64(h))
	dc.DrawLine(float64(w), 0, 0, float64(h))
	_ = dc.Stroke()
	img, _ := dc.Image().(*image.RGBA)
	return img
}
