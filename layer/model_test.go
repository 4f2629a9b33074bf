// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package layer

import (
	"errors"
	"testing"

	"github.com/gogpu/ggedit/geom"
)

func newText(id string) TextLayer {
	l := DefaultText(Heading)
	l.ID = id
	return l
}

func newMedia(id string) MediaLayer {
	m := DefaultMedia(Image, "file:///tmp/a.png", 100, 50)
	m.ID = id
	return m
}

func TestModelAddUniqueIDs(t *testing.T) {
	m := NewModel()
	if _, err := m.AddText(newText("a")); err != nil {
		t.Fatalf("AddText: %v", err)
	}
	if _, err := m.AddMedia(newMedia("a")); !errors.Is(err, ErrDuplicateID) {
		t.Errorf("AddMedia with text id: err = %v, want ErrDuplicateID", err)
	}
	if _, err := m.AddMedia(newMedia("b")); err != nil {
		t.Fatalf("AddMedia: %v", err)
	}
	if _, err := m.AddText(newText("b")); !errors.Is(err, ErrDuplicateID) {
		t.Errorf("AddText with media id: err = %v, want ErrDuplicateID", err)
	}
	if got := m.Len(); got != 2 {
		t.Errorf("Len() = %d, want 2", got)
	}
}

func TestModelValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*TextLayer)
	}{
		{"empty id", func(l *TextLayer) { l.ID = "" }},
		{"bad kind", func(l *TextLayer) { l.Kind = "banner" }},
		{"zero font", func(l *TextLayer) { l.FontSize = 0 }},
		{"bad weight", func(l *TextLayer) { l.FontWeight = 450 }},
		{"bad align", func(l *TextLayer) { l.TextAlign = "middle" }},
		{"negative scale", func(l *TextLayer) { l.Scale = Scale{-1, 1} }},
		{"zero y scale", func(l *TextLayer) { l.Scale = Scale{1, 0} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := newText("x")
			tt.mutate(&l)
			if _, err := NewModel().AddText(l); !errors.Is(err, ErrInvalid) {
				t.Errorf("AddText err = %v, want ErrInvalid", err)
			}
		})
	}
}

func TestModelNormalizes(t *testing.T) {
	l := newText("a")
	l.Rotation = -90
	l.Opacity = 3
	l.Scale = Scale{}
	l.Shadow = &Shadow{Color: "#000", Blur: -4}

	got, err := NewModel().AddText(l)
	if err != nil {
		t.Fatalf("AddText: %v", err)
	}
	if got.Rotation != 270 {
		t.Errorf("Rotation = %v, want 270", got.Rotation)
	}
	if got.Opacity != 1 {
		t.Errorf("Opacity = %v, want 1", got.Opacity)
	}
	if got.Scale != (Scale{1, 1}) {
		t.Errorf("Scale = %v, want {1 1}", got.Scale)
	}
	if got.Shadow.Blur != 0 {
		t.Errorf("Shadow.Blur = %v, want 0", got.Shadow.Blur)
	}
}

func TestModelUpdate(t *testing.T) {
	m := NewModel()
	m.AddText(newText("t"))
	m.AddMedia(newMedia("m"))

	content := "Hello"
	rot := 450.0
	pos := geom.Pt(10, 20)
	if err := m.Update("t", Patch{Content: &content, Rotation: &rot, Position: &pos}); err != nil {
		t.Fatalf("Update text: %v", err)
	}
	tl, _ := m.TextLayer("t")
	if tl.Content != "Hello" || tl.Rotation != 90 || tl.Position != pos {
		t.Errorf("updated text = %+v", tl)
	}

	// Text-only fields are ignored for media.
	if err := m.Update("m", Patch{Content: &content, Position: &pos}); err != nil {
		t.Fatalf("Update media: %v", err)
	}
	ml, _ := m.MediaLayer("m")
	if ml.Position != pos {
		t.Errorf("media position = %v, want %v", ml.Position, pos)
	}

	if err := m.Update("missing", Patch{Content: &content}); !errors.Is(err, ErrNotFound) {
		t.Errorf("Update missing err = %v, want ErrNotFound", err)
	}

	bad := Scale{0, 1}
	if err := m.Update("t", Patch{Scale: &bad}); !errors.Is(err, ErrInvalid) {
		t.Errorf("Update with zero scale err = %v, want ErrInvalid", err)
	}
	if tl, _ := m.TextLayer("t"); tl.Scale != (Scale{1, 1}) {
		t.Errorf("rejected update changed scale to %v", tl.Scale)
	}
}

func TestModelShadowPatch(t *testing.T) {
	m := NewModel()
	m.AddText(newText("t"))
	m.Update("t", Patch{Shadow: &Shadow{Color: "#333", Blur: 4, OffsetX: 2, OffsetY: 2}})
	if l, _ := m.TextLayer("t"); l.Shadow == nil || l.Shadow.Blur != 4 {
		t.Fatalf("shadow not applied: %+v", l.Shadow)
	}
	m.Update("t", Patch{ClearShadow: true})
	if l, _ := m.TextLayer("t"); l.Shadow != nil {
		t.Errorf("shadow not cleared: %+v", l.Shadow)
	}
}

func TestModelRemoveIdempotent(t *testing.T) {
	m := NewModel()
	m.AddText(newText("t"))
	if !m.Remove("t") {
		t.Error("first Remove = false, want true")
	}
	if m.Remove("t") {
		t.Error("second Remove = true, want false")
	}
	if m.Has("t") {
		t.Error("Has after Remove = true")
	}
}

func TestModelFilters(t *testing.T) {
	m := NewModel()
	b, blur := 150.0, 30.0
	got := m.UpdateFilters(FiltersPatch{Brightness: &b, Blur: &blur})
	want := ImageFilters{Brightness: 100, Blur: 30}
	if got != want {
		t.Errorf("UpdateFilters = %+v, want %+v", got, want)
	}
	s := -5.0
	got = m.UpdateFilters(FiltersPatch{Sepia: &s})
	if got.Sepia != 0 || got.Brightness != 100 {
		t.Errorf("second UpdateFilters = %+v", got)
	}
	if !(ImageFilters{}).Neutral() || got.Neutral() {
		t.Error("Neutral mismatch")
	}
}

func TestModelObserve(t *testing.T) {
	m := NewModel()
	var got []Change
	cancel := m.Observe(func(c Change) {
		// Observers run outside the lock, so reading back is allowed.
		_ = m.Len()
		got = append(got, c)
	})
	m.AddText(newText("t"))
	m.Remove("t")
	m.Remove("t")
	cancel()
	m.AddText(newText("u"))

	if len(got) != 2 {
		t.Fatalf("got %d changes, want 2: %+v", len(got), got)
	}
	if got[0].Kind != Added || got[1].Kind != Removed || got[1].ID != "t" {
		t.Errorf("changes = %+v", got)
	}
	if got[1].Revision <= got[0].Revision {
		t.Errorf("revisions not increasing: %+v", got)
	}
}

func TestModelRestore(t *testing.T) {
	m := NewModel()
	m.AddText(newText("old"))

	err := m.Restore([]TextLayer{newText("a")}, []MediaLayer{newMedia("a")}, ImageFilters{})
	if !errors.Is(err, ErrDuplicateID) {
		t.Fatalf("Restore with duplicate ids err = %v", err)
	}
	if !m.Has("old") {
		t.Error("failed Restore modified state")
	}

	if err := m.Restore([]TextLayer{newText("a")}, []MediaLayer{newMedia("b")}, ImageFilters{Sepia: 40}); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if m.Has("old") || !m.Has("a") || !m.Has("b") || m.Filters().Sepia != 40 {
		t.Errorf("Restore state: text=%v media=%v filters=%+v", m.TextLayers(), m.MediaLayers(), m.Filters())
	}

	m.Clear()
	if m.Len() != 0 || m.Filters().Sepia != 40 {
		t.Errorf("Clear: len=%d filters=%+v", m.Len(), m.Filters())
	}
	if m.TextLayers() == nil || m.MediaLayers() == nil {
		t.Error("collections must be non-nil after Clear")
	}
}

func TestTextLayersAreCopies(t *testing.T) {
	m := NewModel()
	l := newText("t")
	l.Shadow = &Shadow{Color: "#000", Blur: 2}
	m.AddText(l)

	got := m.TextLayers()
	got[0].Shadow.Blur = 99
	got[0].Content = "changed"

	again, _ := m.TextLayer("t")
	if again.Content == "changed" || m.TextLayers()[0].Shadow.Blur != 2 {
		t.Error("TextLayers leaked internal state")
	}
}

func TestLabels(t *testing.T) {
	if got := Heading.Label(); got != "Heading" {
		t.Errorf("Heading.Label() = %q", got)
	}
	if got := EmojiMedia.Label(); got != "Emoji Media" {
		t.Errorf("EmojiMedia.Label() = %q", got)
	}
}

func TestDefaultText(t *testing.T) {
	for _, k := range []TextKind{Heading, Paragraph, Emoji, Custom} {
		l := DefaultText(k)
		if l.Kind != k || l.Content == "" || l.FontSize <= 0 || l.ID == "" {
			t.Errorf("DefaultText(%s) = %+v", k, l)
		}
		if _, err := NewModel().AddText(l); err != nil {
			t.Errorf("DefaultText(%s) rejected: %v", k, err)
		}
	}
	if l := DefaultText("banner"); l.Kind != Custom {
		t.Errorf("unknown kind mapped to %q", l.Kind)
	}
	if a, b := DefaultText(Heading), DefaultText(Heading); a.ID == b.ID {
		t.Error("DefaultText ids not unique")
	}
}
