// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package ggedit

import (
	"context"
	"time"

	"github.com/gogpu/ggedit/crop"
	"github.com/gogpu/ggedit/draft"
	"github.com/gogpu/ggedit/imageio"
	"github.com/gogpu/ggedit/internal/fonts"
	"github.com/gogpu/ggedit/surface"
)

// DefaultExportMultiplier is the oversampling factor of exports, publish
// and schedule rasters.
const DefaultExportMultiplier = 2

// AIEditor edits an image according to a plain-language instruction and
// returns a reference to the result. aiedit.Client implements it.
type AIEditor interface {
	Edit(ctx context.Context, image, instruction string) (resultURL string, err error)
}

// Option configures an Editor during creation.
//
// Example:
//
//	ed := ggedit.New(geom.Sz(1080, 1080),
//	    ggedit.WithDraftStore(draft.NewStore(kv.NewMemory())),
//	    ggedit.WithExportMultiplier(3),
//	)
type Option func(*options)

type options struct {
	loader      imageio.Loader
	drafts      *draft.Store
	fonts       *fonts.Registry
	fontTimeout time.Duration
	multiplier  float64
	ai          AIEditor
	style       *surface.HandleStyle
	aspect      crop.Aspect
}

func defaultOptions() options {
	return options{
		loader:     imageio.NewLoader(),
		multiplier: DefaultExportMultiplier,
		aspect:     crop.Freeform,
	}
}

// WithLoader sets the loader for backgrounds, media and AI results.
func WithLoader(l imageio.Loader) Option {
	return func(o *options) {
		if l != nil {
			o.loader = l
		}
	}
}

// WithDraftStore enables the draft commands.
func WithDraftStore(s *draft.Store) Option {
	return func(o *options) { o.drafts = s }
}

// WithFontFinder resolves font families to font files with find. Families
// that find does not know render with the built-in Go fonts.
func WithFontFinder(find func(family string) (path string, ok bool)) Option {
	return func(o *options) { o.fonts = fonts.NewRegistry(fonts.FinderFunc(find)) }
}

// WithSystemFonts resolves font families among the fonts installed on the
// system. cacheDir holds the scan index; empty means the user cache dir.
func WithSystemFonts(cacheDir string) Option {
	return func(o *options) { o.fonts = fonts.NewRegistry(&fonts.SystemFinder{CacheDir: cacheDir}) }
}

// WithFontTimeout bounds each font load. Non-positive values are ignored.
func WithFontTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.fontTimeout = d
		}
	}
}

// WithExportMultiplier sets the oversampling factor of exported rasters.
// Values below 1 are ignored.
func WithExportMultiplier(m float64) Option {
	return func(o *options) {
		if m >= 1 {
			o.multiplier = m
		}
	}
}

// WithAI enables EditWithAI.
func WithAI(ai AIEditor) Option {
	return func(o *options) { o.ai = ai }
}

// WithHandleStyle sets the look of the selection handles.
func WithHandleStyle(st surface.HandleStyle) Option {
	return func(o *options) { o.style = &st }
}

// WithCropAspect sets the aspect ratio the crop overlay starts with.
func WithCropAspect(a crop.Aspect) Option {
	return func(o *options) { o.aspect = a }
}
