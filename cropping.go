// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package ggedit

import (
	"context"
	"errors"
	"fmt"

	"github.com/gogpu/ggedit/crop"
	"github.com/gogpu/ggedit/geom"
	"github.com/gogpu/ggedit/imageio"
)

// ToggleCrop enters crop mode over the background, or cancels it when
// active. The overlay starts with the last selected aspect ratio.
func (e *Editor) ToggleCrop() error {
	if e.crop.Active() {
		e.CancelCrop()
		return nil
	}
	bg, ok := e.surf.Background()
	if !ok {
		return observe("crop_begin", ErrNoBackground)
	}
	e.mu.Lock()
	aspect := e.aspect
	e.mu.Unlock()
	if err := e.crop.Begin(bg.Bounds, bg.Native, aspect); err != nil {
		return observe("crop_begin", err)
	}
	e.surf.ClearSelection()
	e.surf.SetOverlay(e.crop)
	return observe("crop_begin", nil)
}

// SetCropAspect selects the aspect ratio of the crop overlay. It is
// remembered for the next ToggleCrop and applied at once when active.
func (e *Editor) SetCropAspect(a crop.Aspect) error {
	a, err := crop.ParseAspect(string(a))
	if err != nil {
		return err
	}
	e.mu.Lock()
	e.aspect = a
	e.mu.Unlock()
	if !e.crop.Active() {
		return nil
	}
	if err := e.crop.SetAspect(a); err != nil && !errors.Is(err, crop.ErrInactive) {
		return err
	}
	return nil
}

// CancelCrop leaves crop mode without touching the background or layers.
func (e *Editor) CancelCrop() {
	if !e.crop.Active() {
		return
	}
	e.crop.Cancel()
	e.surf.SetOverlay(nil)
	observe("crop_cancel", nil)
}

// ApplyCrop reloads the background, cuts the crop region out of it at
// native resolution and installs the result as the new background. All
// layers are discarded. On failure the editor stays in crop mode; a
// CancelCrop or ToggleCrop that happens meanwhile makes the commit fail
// with crop.ErrStale and leaves everything unchanged.
func (e *Editor) ApplyCrop(ctx context.Context) (geom.Size, error) {
	if e.closed.Load() {
		return geom.Size{}, ErrClosed
	}
	t, err := e.crop.Prepare()
	if err != nil {
		return geom.Size{}, observe("crop_apply", err)
	}
	ref, ok := e.backgroundRef()
	if !ok {
		return geom.Size{}, observe("crop_apply", fmt.Errorf("%w: %w", ErrCropSource, ErrNoBackground))
	}
	src, err := e.loader.Load(ctx, ref)
	if err != nil {
		e.log.Warn("crop source reload failed", "err", err)
		return geom.Size{}, observe("crop_apply", fmt.Errorf("%w: %w", ErrCropSource, err))
	}
	img, err := crop.Rasterize(src, t.Region.Image)
	if err != nil {
		return geom.Size{}, observe("crop_apply", fmt.Errorf("%w: %w", ErrCropSource, err))
	}
	data, err := imageio.EncodeDataURL(img, imageio.MIMEPNG)
	if err != nil {
		return geom.Size{}, observe("crop_apply", fmt.Errorf("%w: %w", ErrCropSource, err))
	}
	if err := e.crop.Complete(t); err != nil {
		return geom.Size{}, observe("crop_apply", err)
	}

	e.surf.SetOverlay(nil)
	e.model.Clear()
	e.surf.Clear()
	e.surf.SetBackgroundImage(img, data)

	b := img.Bounds()
	size := geom.Sz(float64(b.Dx()), float64(b.Dy()))
	e.log.Info("crop applied", "region", t.Region.Image, "size", size)
	return size, observe("crop_apply", nil)
}
