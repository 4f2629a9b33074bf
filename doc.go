// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package ggedit is the core of a layered image editor: text and media
// layers over a background image, interactive move/scale/rotate,
// non-destructive background filters, aspect-constrained cropping, export
// to PNG, JPEG and PDF, publish/schedule hand-off and named drafts.
//
// # Quick Start
//
//	ed := ggedit.New(geom.Sz(800, 600), ggedit.WithDraftStore(store))
//	defer ed.Close()
//
//	if err := ed.Open(ctx, "https://example.com/photo.jpg"); err != nil {
//	    return err
//	}
//	ed.AddTextLayer(layer.Heading, "Summer sale")
//	ed.UpdateFilters(layer.FiltersPatch{Contrast: ptr(20.0)})
//
//	f, _ := os.Create("out.png")
//	defer f.Close()
//	err := ed.ExportRaster(ctx, f, ggedit.FormatPNG)
//
// # Architecture
//
// An Editor composes:
//   - [layer.Model]: the serializable layer state
//   - [surface.Surface]: the drawable scene, hit testing and gestures
//   - [placement.Engine]: initial positions for new layers
//   - [crop.Controller]: the crop overlay state machine
//   - [draft.Store]: persisted drafts
//
// Synchronization is one-way in each direction. Gestures on the surface
// report their final geometry to the model; commands change the model
// first and then push the result to the surface. The surface never reads
// the model in response to its own events.
//
// # Logging
//
// ggedit is silent by default. Call [SetLogger] to enable output for
// this package and all its sub-packages.
package ggedit
