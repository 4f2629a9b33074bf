// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package filter implements the background image adjustments as gg scene
// filters: a 4x5 color matrix for brightness, contrast, sepia and grayscale,
// and a separable Gaussian blur.
//
// Pixels are premultiplied RGBA bytes, as stored by gg.Pixmap and
// image.RGBA.
package filter
