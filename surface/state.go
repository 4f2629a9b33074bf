// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package surface

import (
	"slices"

	"github.com/gogpu/ggedit/geom"
	"github.com/gogpu/ggedit/layer"
)

// State is the serializable scene: canvas size, background placement and
// the z-ordered objects. Drafts store it as their canvas state.
type State struct {
	Width      float64       `json:"width"`
	Height     float64       `json:"height"`
	Background *Background   `json:"background,omitempty"`
	Objects    []ObjectState `json:"objects"`
}

// ObjectState is one entry of State, bottom to top.
type ObjectState struct {
	ID       string         `json:"id"`
	Kind     string         `json:"kind"`
	Geometry layer.Geometry `json:"geometry"`
	Size     geom.Size      `json:"size"`
}

// Order returns the object ids of st from bottom to top.
func (st State) Order() []string {
	ids := make([]string, len(st.Objects))
	for i, o := range st.Objects {
		ids[i] = o.ID
	}
	return ids
}

// State captures the scene.
func (s *Surface) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := State{Width: s.size.Width, Height: s.size.Height, Objects: make([]ObjectState, 0, len(s.order))}
	if s.bg.img != nil {
		st.Background = &Background{Ref: s.bg.ref, Bounds: s.bg.bounds, Native: s.bg.native}
	}
	for _, id := range s.order {
		o := s.objects[id]
		st.Objects = append(st.Objects, ObjectState{ID: id, Kind: o.kind.String(), Geometry: o.geo, Size: o.size})
	}
	return st
}

// RestoreOrder stacks the listed objects bottom to top in the given
// order. Unknown ids are skipped; objects not listed go on top in their
// current relative order.
func (s *Surface) RestoreOrder(ids []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := make([]string, 0, len(s.order))
	for _, id := range ids {
		if _, ok := s.objects[id]; ok && !slices.Contains(next, id) {
			next = append(next, id)
		}
	}
	for _, id := range s.order {
		if !slices.Contains(next, id) {
			next = append(next, id)
		}
	}
	s.order = next
}
