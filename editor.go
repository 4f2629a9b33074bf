// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package ggedit

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/gogpu/ggedit/crop"
	"github.com/gogpu/ggedit/draft"
	"github.com/gogpu/ggedit/geom"
	"github.com/gogpu/ggedit/imageio"
	"github.com/gogpu/ggedit/internal/logx"
	"github.com/gogpu/ggedit/layer"
	"github.com/gogpu/ggedit/placement"
	"github.com/gogpu/ggedit/surface"
)

// Editor is one editing session. All methods are safe for concurrent use.
type Editor struct {
	size       geom.Size
	model      *layer.Model
	surf       *surface.Surface
	crop       *crop.Controller
	place      placement.Engine
	loader     imageio.Loader
	drafts     *draft.Store
	ai         AIEditor
	multiplier float64
	log        *slog.Logger

	mu     sync.Mutex
	aspect crop.Aspect

	// addMu serializes placement with the add that uses its result.
	addMu sync.Mutex

	unsubscribe func()
	closed      atomic.Bool
}

// New returns an editor for a canvas of the given logical size. The canvas
// is empty until Open or OpenImage installs a background.
func New(size geom.Size, opts ...Option) *Editor {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	sopts := []surface.Option{surface.WithLoader(o.loader)}
	if o.fonts != nil {
		sopts = append(sopts, surface.WithFonts(o.fonts))
	}
	if o.fontTimeout > 0 {
		sopts = append(sopts, surface.WithFontTimeout(o.fontTimeout))
	}
	if o.style != nil {
		sopts = append(sopts, surface.WithHandleStyle(*o.style))
	}

	e := &Editor{
		size:       size,
		model:      layer.NewModel(),
		surf:       surface.New(size, sopts...),
		crop:       crop.New(),
		place:      placement.NewEngine(size),
		loader:     o.loader,
		drafts:     o.drafts,
		ai:         o.ai,
		multiplier: o.multiplier,
		aspect:     o.aspect,
		log:        logx.With("editor"),
	}
	e.unsubscribe = e.surf.Subscribe(e.onSurfaceEvent)
	return e
}

// onSurfaceEvent carries gesture results into the model. The model does
// not push them back.
func (e *Editor) onSurfaceEvent(ev surface.Event) {
	switch ev.Kind {
	case surface.ObjectModified:
		if err := e.model.ApplyGeometry(ev.ID, ev.Geometry); err != nil {
			e.log.Debug("gesture on unknown layer", "id", ev.ID, "err", err)
		}
	case surface.BackgroundFailed, surface.MediaFailed:
		e.log.Warn("load failed", "event", ev.Kind, "id", ev.ID, "err", ev.Err)
	}
}

// Size returns the logical canvas size.
func (e *Editor) Size() geom.Size { return e.size }

// Model returns the layer state.
func (e *Editor) Model() *layer.Model { return e.model }

// Surface returns the scene, for pointer input and rendering.
func (e *Editor) Surface() *surface.Surface { return e.surf }

// Crop returns the crop controller.
func (e *Editor) Crop() *crop.Controller { return e.crop }

// Open loads the background image named by ref and waits for it. Layers
// are kept. An active crop is cancelled. When a later Open wins the race
// the error is surface.ErrSuperseded.
func (e *Editor) Open(ctx context.Context, ref string) error {
	if e.closed.Load() {
		return ErrClosed
	}
	e.CancelCrop()
	return observe("open", e.surf.LoadBackground(ctx, ref))
}

// OpenImage installs img as the background. Its reference is a PNG data
// URL so that drafts and crops can reload it.
func (e *Editor) OpenImage(img image.Image) error {
	if e.closed.Load() {
		return ErrClosed
	}
	if img == nil || img.Bounds().Empty() {
		return observe("open", ErrNoBackground)
	}
	ref, err := imageio.EncodeDataURL(img, imageio.MIMEPNG)
	if err != nil {
		return observe("open", fmt.Errorf("ggedit: encode background: %w", err))
	}
	e.CancelCrop()
	e.surf.SetBackgroundImage(img, ref)
	return observe("open", nil)
}

// Wait blocks until pending background, font and media loads are applied.
func (e *Editor) Wait() { e.surf.Wait() }

// Close stops pending loads and releases the surface. It is safe to call
// more than once.
func (e *Editor) Close() error {
	if e.closed.Swap(true) {
		return nil
	}
	e.unsubscribe()
	e.crop.Cancel()
	return e.surf.Close()
}

// backgroundRef returns the reference of the installed background.
func (e *Editor) backgroundRef() (string, bool) {
	bg, ok := e.surf.Background()
	return bg.Ref, ok
}

func notFound(err error) bool { return errors.Is(err, layer.ErrNotFound) }
