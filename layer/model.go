// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package layer

import (
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/samber/lo"
)

// ChangeKind identifies what a Change notification describes.
type ChangeKind int

const (
	Added ChangeKind = iota
	Updated
	Removed
	FiltersChanged
	Cleared
	Restored
)

func (k ChangeKind) String() string {
	switch k {
	case Added:
		return "added"
	case Updated:
		return "updated"
	case Removed:
		return "removed"
	case FiltersChanged:
		return "filters"
	case Cleared:
		return "cleared"
	case Restored:
		return "restored"
	}
	return fmt.Sprintf("ChangeKind(%d)", int(k))
}

// Change is delivered to observers after every successful mutation.
type Change struct {
	Kind     ChangeKind
	ID       string
	Revision uint64
}

// Model is the observable container for layers and filters. It is safe for
// concurrent use. Observers run after the model lock is released.
type Model struct {
	mu        sync.RWMutex
	text      []TextLayer
	media     []MediaLayer
	filters   ImageFilters
	revision  uint64
	observers map[int]func(Change)
	nextObs   int
}

// NewModel returns an empty model.
func NewModel() *Model {
	return &Model{observers: make(map[int]func(Change))}
}

// Observe registers fn for change notifications and returns a function that
// unregisters it.
func (m *Model) Observe(fn func(Change)) (cancel func()) {
	m.mu.Lock()
	id := m.nextObs
	m.nextObs++
	m.observers[id] = fn
	m.mu.Unlock()
	return func() {
		m.mu.Lock()
		delete(m.observers, id)
		m.mu.Unlock()
	}
}

// commit bumps the revision and returns the observers to notify. Callers
// hold m.mu.
func (m *Model) commit(kind ChangeKind, id string) (Change, []func(Change)) {
	m.revision++
	fns := make([]func(Change), 0, len(m.observers))
	for _, k := range slices.Sorted(maps.Keys(m.observers)) {
		fns = append(fns, m.observers[k])
	}
	return Change{Kind: kind, ID: id, Revision: m.revision}, fns
}

func notify(c Change, fns []func(Change)) {
	for _, fn := range fns {
		fn(c)
	}
}

// Revision returns a counter incremented by every mutation.
func (m *Model) Revision() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.revision
}

// Has reports whether id names a text or media layer.
func (m *Model) Has(id string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.hasLocked(id)
}

func (m *Model) hasLocked(id string) bool {
	return lo.ContainsBy(m.text, func(l TextLayer) bool { return l.ID == id }) ||
		lo.ContainsBy(m.media, func(l MediaLayer) bool { return l.ID == id })
}

// Len returns the total number of layers.
func (m *Model) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.text) + len(m.media)
}

// AddText validates l and appends it. The stored layer is returned.
func (m *Model) AddText(l TextLayer) (TextLayer, error) {
	l, err := normalizeText(l)
	if err != nil {
		return TextLayer{}, err
	}
	m.mu.Lock()
	if m.hasLocked(l.ID) {
		m.mu.Unlock()
		return TextLayer{}, fmt.Errorf("%w: %s", ErrDuplicateID, l.ID)
	}
	m.text = append(m.text, l)
	c, fns := m.commit(Added, l.ID)
	m.mu.Unlock()
	notify(c, fns)
	return l, nil
}

// AddMedia validates l and appends it. The stored layer is returned.
func (m *Model) AddMedia(l MediaLayer) (MediaLayer, error) {
	l, err := normalizeMedia(l)
	if err != nil {
		return MediaLayer{}, err
	}
	m.mu.Lock()
	if m.hasLocked(l.ID) {
		m.mu.Unlock()
		return MediaLayer{}, fmt.Errorf("%w: %s", ErrDuplicateID, l.ID)
	}
	m.media = append(m.media, l)
	c, fns := m.commit(Added, l.ID)
	m.mu.Unlock()
	notify(c, fns)
	return l, nil
}

// Update applies p to the layer named id. Text-only fields of p are ignored
// when id names a media layer.
func (m *Model) Update(id string, p Patch) error {
	m.mu.Lock()
	if _, i, ok := lo.FindIndexOf(m.text, func(l TextLayer) bool { return l.ID == id }); ok {
		l, err := normalizeText(p.applyText(m.text[i]))
		if err != nil {
			m.mu.Unlock()
			return err
		}
		m.text[i] = l
		c, fns := m.commit(Updated, id)
		m.mu.Unlock()
		notify(c, fns)
		return nil
	}
	if _, i, ok := lo.FindIndexOf(m.media, func(l MediaLayer) bool { return l.ID == id }); ok {
		l, err := normalizeMedia(p.applyMedia(m.media[i]))
		if err != nil {
			m.mu.Unlock()
			return err
		}
		m.media[i] = l
		c, fns := m.commit(Updated, id)
		m.mu.Unlock()
		notify(c, fns)
		return nil
	}
	m.mu.Unlock()
	return fmt.Errorf("%w: %s", ErrNotFound, id)
}

// ApplyGeometry replaces the transform of the layer named id. It is the
// entry point for geometry reported by the render surface.
func (m *Model) ApplyGeometry(id string, g Geometry) error {
	p := Patch{Position: &g.Position, Scale: &g.Scale, Rotation: &g.Rotation, Opacity: &g.Opacity}
	return m.Update(id, p)
}

// Remove deletes the layer named id and reports whether it existed.
func (m *Model) Remove(id string) bool {
	m.mu.Lock()
	before := len(m.text) + len(m.media)
	m.text = slices.DeleteFunc(m.text, func(l TextLayer) bool { return l.ID == id })
	m.media = slices.DeleteFunc(m.media, func(l MediaLayer) bool { return l.ID == id })
	if len(m.text)+len(m.media) == before {
		m.mu.Unlock()
		return false
	}
	c, fns := m.commit(Removed, id)
	m.mu.Unlock()
	notify(c, fns)
	return true
}

// TextLayer returns the text layer named id.
func (m *Model) TextLayer(id string) (TextLayer, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	l, ok := lo.Find(m.text, func(l TextLayer) bool { return l.ID == id })
	return l, ok
}

// MediaLayer returns the media layer named id.
func (m *Model) MediaLayer(id string) (MediaLayer, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	l, ok := lo.Find(m.media, func(l MediaLayer) bool { return l.ID == id })
	return l, ok
}

// TextLayers returns a copy of the text layers in insertion order. The result
// is never nil.
func (m *Model) TextLayers() []TextLayer {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return lo.Map(m.text, func(l TextLayer, _ int) TextLayer { return cloneText(l) })
}

// MediaLayers returns a copy of the media layers in insertion order. The
// result is never nil.
func (m *Model) MediaLayers() []MediaLayer {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]MediaLayer, len(m.media))
	copy(out, m.media)
	return out
}

// Filters returns the current image filters.
func (m *Model) Filters() ImageFilters {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.filters
}

// UpdateFilters merges p into the filters and returns the result.
func (m *Model) UpdateFilters(p FiltersPatch) ImageFilters {
	m.mu.Lock()
	m.filters = p.Apply(m.filters)
	f := m.filters
	c, fns := m.commit(FiltersChanged, "")
	m.mu.Unlock()
	notify(c, fns)
	return f
}

// Clear removes every layer. Filters are kept.
func (m *Model) Clear() {
	m.mu.Lock()
	m.text = nil
	m.media = nil
	c, fns := m.commit(Cleared, "")
	m.mu.Unlock()
	notify(c, fns)
}

// Restore replaces the whole state, as when loading a draft. Ids must be
// unique across both collections.
func (m *Model) Restore(text []TextLayer, media []MediaLayer, filters ImageFilters) error {
	ids := append(
		lo.Map(text, func(l TextLayer, _ int) string { return l.ID }),
		lo.Map(media, func(l MediaLayer, _ int) string { return l.ID })...,
	)
	if dups := lo.FindDuplicates(ids); len(dups) > 0 {
		return fmt.Errorf("%w: %v", ErrDuplicateID, dups)
	}
	nt := make([]TextLayer, 0, len(text))
	for _, l := range text {
		l, err := normalizeText(l)
		if err != nil {
			return err
		}
		nt = append(nt, l)
	}
	nm := make([]MediaLayer, 0, len(media))
	for _, l := range media {
		l, err := normalizeMedia(l)
		if err != nil {
			return err
		}
		nm = append(nm, l)
	}

	m.mu.Lock()
	m.text, m.media, m.filters = nt, nm, filters.Clamp()
	c, fns := m.commit(Restored, "")
	m.mu.Unlock()
	notify(c, fns)
	return nil
}

func normalizeText(l TextLayer) (TextLayer, error) {
	if l.ID == "" {
		return l, fmt.Errorf("%w: empty id", ErrInvalid)
	}
	if !l.Kind.Valid() {
		return l, fmt.Errorf("%w: text kind %q", ErrInvalid, l.Kind)
	}
	if !(l.FontSize > 0) {
		return l, fmt.Errorf("%w: font size %v", ErrInvalid, l.FontSize)
	}
	if l.FontWeight == 0 {
		l.FontWeight = WeightNormal
	}
	if !l.FontWeight.Valid() {
		return l, fmt.Errorf("%w: font weight %d", ErrInvalid, l.FontWeight)
	}
	if l.TextAlign == "" {
		l.TextAlign = AlignLeft
	}
	if !l.TextAlign.Valid() {
		return l, fmt.Errorf("%w: text align %q", ErrInvalid, l.TextAlign)
	}
	if l.Scale == (Scale{}) {
		l.Scale = Scale{1, 1}
	}
	if l.Shadow != nil {
		s := *l.Shadow
		s.Blur = max(s.Blur, 0)
		l.Shadow = &s
	}
	g := l.Geometry()
	if err := g.Validate(); err != nil {
		return l, err
	}
	l.setGeometry(g.Normalize())
	return l, nil
}

func normalizeMedia(l MediaLayer) (MediaLayer, error) {
	if l.ID == "" {
		return l, fmt.Errorf("%w: empty id", ErrInvalid)
	}
	if !l.Kind.Valid() {
		return l, fmt.Errorf("%w: media kind %q", ErrInvalid, l.Kind)
	}
	if l.Width < 0 || l.Height < 0 {
		return l, fmt.Errorf("%w: media size %vx%v", ErrInvalid, l.Width, l.Height)
	}
	if l.Scale == (Scale{}) {
		l.Scale = Scale{1, 1}
	}
	g := l.Geometry()
	if err := g.Validate(); err != nil {
		return l, err
	}
	l.setGeometry(g.Normalize())
	return l, nil
}

func cloneText(l TextLayer) TextLayer {
	if l.Shadow != nil {
		s := *l.Shadow
		l.Shadow = &s
	}
	if l.Color.Gradient != nil {
		g := *l.Color.Gradient
		l.Color.Gradient = &g
	}
	return l
}
