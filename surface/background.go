// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package surface

import (
	"context"
	"errors"
	"image"

	"github.com/gogpu/ggedit/geom"
	"github.com/gogpu/ggedit/internal/filter"
	"github.com/gogpu/ggedit/layer"
)

// ErrNoBackground is reported by BackgroundErr before any background was
// requested.
var ErrNoBackground = errors.New("surface: no background")

// ErrSuperseded is returned by LoadBackground when a later background
// request replaced this one before it finished.
var ErrSuperseded = errors.New("surface: background superseded")

type background struct {
	ref    string
	gen    uint64
	img    image.Image
	native geom.Size
	bounds geom.Rect
	err    error

	filters  layer.ImageFilters
	filtered *image.RGBA
}

// Background describes the installed background.
type Background struct {
	Ref    string    `json:"ref"`
	Bounds geom.Rect `json:"bounds"`
	Native geom.Size `json:"native"`
}

// SetBackground starts loading ref and returns immediately. A later call
// supersedes an earlier one that has not finished.
func (s *Surface) SetBackground(ctx context.Context, ref string) {
	gen := s.beginBackground(ref)
	s.spawn(func(base context.Context) {
		ctx, cancel := mergeCancel(ctx, base)
		defer cancel()
		_ = s.loadBackground(ctx, ref, gen)
	})
}

// LoadBackground loads ref and installs it before returning. Load errors
// are also reported as a BackgroundFailed event. If a later request wins,
// nothing is installed and the error is ErrSuperseded.
func (s *Surface) LoadBackground(ctx context.Context, ref string) error {
	gen := s.beginBackground(ref)
	return s.loadBackground(ctx, ref, gen)
}

// SetBackgroundImage installs an already decoded image as the background.
func (s *Surface) SetBackgroundImage(img image.Image, ref string) {
	s.mu.Lock()
	s.bg.gen++
	s.bg.ref = ref
	s.installLocked(img)
	s.unlock()
}

func (s *Surface) beginBackground(ref string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bg.gen++
	s.bg.ref = ref
	return s.bg.gen
}

func (s *Surface) loadBackground(ctx context.Context, ref string, gen uint64) error {
	img, err := s.loader.Load(ctx, ref)

	s.mu.Lock()
	if gen != s.bg.gen {
		s.mu.Unlock()
		s.log.Debug("stale background discarded", "ref", shortRef(ref))
		return ErrSuperseded
	}
	if err != nil {
		s.bg.err = err
		s.emitLocked(Event{Kind: BackgroundFailed, Err: err})
		s.unlock()
		s.log.Warn("background load failed", "ref", shortRef(ref), "err", err)
		return err
	}
	s.installLocked(img)
	s.unlock()
	return nil
}

// installLocked fits img into the canvas, centered, at the uniform scale
// min(cw/iw, ch/ih).
func (s *Surface) installLocked(img image.Image) {
	b := img.Bounds()
	native := geom.Sz(float64(b.Dx()), float64(b.Dy()))
	k := geom.FitScale(native, s.size)
	s.bg.img = img
	s.bg.native = native
	s.bg.bounds = geom.CenterIn(native.Scale(k), geom.R(0, 0, s.size.Width, s.size.Height))
	s.bg.err = nil
	s.bg.filtered = nil
	s.emitLocked(Event{Kind: BackgroundLoaded})
	s.log.Info("background loaded", "ref", shortRef(s.bg.ref), "native", native, "scale", k)
}

// BackgroundErr returns the error of the last background load, or
// ErrNoBackground when none was requested.
func (s *Surface) BackgroundErr() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.bg.gen == 0 {
		return ErrNoBackground
	}
	return s.bg.err
}

// Background returns the installed background. ok is false until one has
// loaded.
func (s *Surface) Background() (bg Background, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.bg.img == nil {
		return Background{}, false
	}
	return Background{Ref: s.bg.ref, Bounds: s.bg.bounds, Native: s.bg.native}, true
}

// filteredLocked returns the background with f applied, reusing the last
// result while f is unchanged.
func (s *Surface) filteredLocked(f layer.ImageFilters) image.Image {
	if s.bg.img == nil {
		return nil
	}
	f = f.Clamp()
	if f.Neutral() {
		return s.bg.img
	}
	if s.bg.filtered != nil && s.bg.filters == f {
		return s.bg.filtered
	}
	perPixel := 0.0
	if s.bg.native.Width > 0 {
		perPixel = s.bg.bounds.Width / s.bg.native.Width
	}
	s.bg.filtered = filter.ApplyImage(s.bg.img, f, perPixel)
	s.bg.filters = f
	return s.bg.filtered
}

// mergeCancel returns a context that carries the values of ctx and is
// cancelled when either ctx or base is.
func mergeCancel(ctx, base context.Context) (context.Context, context.CancelFunc) {
	merged, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(base, cancel)
	return merged, func() {
		stop()
		cancel()
	}
}

func shortRef(ref string) string {
	if len(ref) > 64 {
		return ref[:61] + "..."
	}
	return ref
}
