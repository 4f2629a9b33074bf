// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package ggedit

import (
	"github.com/gogpu/ggedit/crop"
	"github.com/gogpu/ggedit/layer"
	"github.com/gogpu/ggedit/surface"
)

// Snapshot is a read-only view of the whole session.
type Snapshot struct {
	Width        float64             `json:"width"`
	Height       float64             `json:"height"`
	Background   *surface.Background `json:"background,omitempty"`
	TextLayers   []layer.TextLayer   `json:"textLayers"`
	MediaLayers  []layer.MediaLayer  `json:"mediaLayers"`
	ImageFilters layer.ImageFilters  `json:"imageFilters"`
	Order        []string            `json:"order"`
	Selected     string              `json:"selected,omitempty"`
	Crop         CropSnapshot        `json:"crop"`
	Revision     uint64              `json:"revision"`
}

// CropSnapshot is the crop part of a Snapshot.
type CropSnapshot struct {
	Active bool         `json:"active"`
	Aspect crop.Aspect  `json:"aspect"`
	Region *crop.Region `json:"region,omitempty"`
}

// Snapshot captures the session.
func (e *Editor) Snapshot() Snapshot {
	s := Snapshot{
		Width:        e.size.Width,
		Height:       e.size.Height,
		TextLayers:   e.model.TextLayers(),
		MediaLayers:  e.model.MediaLayers(),
		ImageFilters: e.model.Filters(),
		Order:        e.surf.Order(),
		Revision:     e.model.Revision(),
	}
	if bg, ok := e.surf.Background(); ok {
		s.Background = &bg
	}
	s.Selected, _ = e.surf.Selected()

	e.mu.Lock()
	s.Crop.Aspect = e.aspect
	e.mu.Unlock()
	if r, err := e.crop.Region(); err == nil {
		s.Crop.Active = true
		s.Crop.Aspect = r.Aspect
		s.Crop.Region = &r
	}
	return s
}
