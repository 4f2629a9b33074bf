// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package surface is the interactive scene behind the editor: a background
// image with text and media objects stacked over it.
//
// # Objects
//
// Every object is bound to the id of a layer in package layer. The surface
// keeps its own copy of the geometry; callers push programmatic edits with
// Update and UpdateText, and learn about user edits from ObjectModified
// events. The surface never reads layer state back on its own.
//
// # Gestures
//
// PointerDown, PointerMove and PointerUp drive selection, dragging, the
// eight scale handles and the rotate handle. A gesture that changed an
// object ends with exactly one ObjectModified event. An Overlay, such as
// the crop controller, sees pointer events before objects do.
//
// # Rendering
//
// Render composites the scene into an *image.RGBA at any multiplier. The
// background is drawn with gg and run through the filter primitives in
// internal/filter; objects are rasterized to sprites (text with gg and the
// gg/text faces, media from their decoded pixels) and composited with
// their full affine transform using golang.org/x/image/draw.
//
// # Concurrency
//
// A Surface is safe for concurrent use. Background, font and media loads
// run in goroutines; their results are applied under the surface lock and
// dropped when they have been superseded. Events are delivered in order,
// after the lock is released, so handlers may call back into the surface.
package surface
