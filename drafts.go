// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package ggedit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/gogpu/ggedit/draft"
	"github.com/gogpu/ggedit/surface"
)

// SaveDraft stores the current session under name. An empty name gets a
// timestamped default.
func (e *Editor) SaveDraft(ctx context.Context, name string) (draft.Draft, error) {
	if e.drafts == nil {
		return draft.Draft{}, observe("draft_save", ErrNoDraftStore)
	}
	if e.closed.Load() {
		return draft.Draft{}, ErrClosed
	}
	canvas, err := json.Marshal(e.surf.State())
	if err != nil {
		return draft.Draft{}, observe("draft_save", fmt.Errorf("ggedit: encode canvas state: %w", err))
	}
	ref, _ := e.backgroundRef()
	d, err := e.drafts.Save(ctx, name, draft.State{
		OriginalImageURL: ref,
		CanvasState:      canvas,
		TextLayers:       e.model.TextLayers(),
		MediaLayers:      e.model.MediaLayers(),
		ImageFilters:     e.model.Filters(),
		CanvasWidth:      e.size.Width,
		CanvasHeight:     e.size.Height,
	})
	if err != nil {
		return draft.Draft{}, observe("draft_save", err)
	}
	e.log.Info("draft saved", "id", d.ID, "name", d.Name)
	return d, observe("draft_save", nil)
}

// LoadDraft replaces the session with the draft named id: layers, filters,
// background and stacking order. A background that fails to load is
// logged and left empty; the layers are restored regardless.
func (e *Editor) LoadDraft(ctx context.Context, id string) error {
	if e.drafts == nil {
		return observe("draft_load", ErrNoDraftStore)
	}
	if e.closed.Load() {
		return ErrClosed
	}
	d, err := e.drafts.Load(ctx, id)
	if err != nil {
		return observe("draft_load", err)
	}
	if err := e.model.Restore(d.TextLayers, d.MediaLayers, d.ImageFilters); err != nil {
		return observe("draft_load", fmt.Errorf("ggedit: draft %s: %w", id, err))
	}

	e.CancelCrop()
	e.surf.Clear()
	if d.OriginalImageURL != "" {
		if err := e.surf.LoadBackground(ctx, d.OriginalImageURL); err != nil {
			e.log.Warn("draft background failed", "id", id, "err", err)
		}
	}
	for _, l := range e.model.TextLayers() {
		e.surf.AddText(l)
	}
	for _, m := range e.model.MediaLayers() {
		e.surf.AddMedia(m)
	}

	var st surface.State
	if len(d.CanvasState) > 0 && json.Unmarshal(d.CanvasState, &st) == nil {
		e.surf.RestoreOrder(st.Order())
	} else {
		e.log.Debug("draft without canvas state", "id", id)
	}
	e.log.Info("draft loaded", "id", id, "name", d.Name, "layers", e.model.Len())
	return observe("draft_load", nil)
}

// Drafts lists the stored drafts, oldest first. Storage errors yield an
// empty list.
func (e *Editor) Drafts(ctx context.Context) []draft.Draft {
	if e.drafts == nil {
		return []draft.Draft{}
	}
	return e.drafts.List(ctx)
}

// RenameDraft changes the name of the draft named id.
func (e *Editor) RenameDraft(ctx context.Context, id, name string) error {
	if e.drafts == nil {
		return observe("draft_rename", ErrNoDraftStore)
	}
	return observe("draft_rename", e.drafts.Rename(ctx, id, name))
}

// DeleteDraft removes the draft named id. Unknown ids are a no-op.
func (e *Editor) DeleteDraft(ctx context.Context, id string) error {
	if e.drafts == nil {
		return observe("draft_delete", ErrNoDraftStore)
	}
	return observe("draft_delete", e.drafts.Delete(ctx, id))
}
