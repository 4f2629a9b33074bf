// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package ggedit

import (
	"context"
	"fmt"

	"github.com/gogpu/ggedit/imageio"
	"github.com/gogpu/ggedit/layer"
)

// EditWithAI sends the rendered composition with instruction to the AI
// editor and installs the result as the new background. Layers and
// filters are baked into the sent image, so both are reset.
func (e *Editor) EditWithAI(ctx context.Context, instruction string) error {
	if e.ai == nil {
		return observe("ai_edit", ErrNoAI)
	}
	img, err := e.Raster(ctx)
	if err != nil {
		return observe("ai_edit", err)
	}
	src, err := imageio.EncodeDataURL(img, imageio.MIMEPNG)
	if err != nil {
		return observe("ai_edit", fmt.Errorf("ggedit: encode raster: %w", err))
	}
	ref, err := e.ai.Edit(ctx, src, instruction)
	if err != nil {
		return observe("ai_edit", err)
	}
	result, err := e.loader.Load(ctx, ref)
	if err != nil {
		return observe("ai_edit", fmt.Errorf("ggedit: load AI result: %w", err))
	}

	e.CancelCrop()
	if err := e.model.Restore(nil, nil, layer.ImageFilters{}); err != nil {
		return observe("ai_edit", err)
	}
	e.surf.Clear()
	e.surf.SetBackgroundImage(result, ref)
	e.log.Info("AI edit applied", "instruction", instruction)
	return observe("ai_edit", nil)
}
