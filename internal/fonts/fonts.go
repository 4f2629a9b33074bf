// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package fonts resolves font families to gg font sources.
//
// Every lookup has a fallback: the Go fonts bundled with golang.org/x/image
// are always available, so text can be drawn before (or without) the
// requested family.
package fonts

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/go-text/typesetting/fontscan"
	"github.com/gogpu/gg/text"
	"github.com/gogpu/ggedit/internal/logx"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomedium"
	"golang.org/x/image/font/gofont/goregular"
)

// ErrUnknownFamily is returned when no source for a family can be found.
var ErrUnknownFamily = errors.New("fonts: unknown family")

// Finder locates the font file for a family name.
type Finder interface {
	Find(family string) (path string, ok bool)
}

// FinderFunc adapts a function to Finder.
type FinderFunc func(family string) (string, bool)

// Find implements Finder.
func (f FinderFunc) Find(family string) (string, bool) { return f(family) }

var (
	fallbackOnce sync.Once
	fallbacks    [3]*text.FontSource
	fallbackErr  error
)

func loadFallbacks() {
	for i, data := range [][]byte{goregular.TTF, gomedium.TTF, gobold.TTF} {
		src, err := text.NewFontSource(data)
		if err != nil {
			fallbackErr = fmt.Errorf("fonts: go font: %w", err)
			return
		}
		fallbacks[i] = src
	}
}

// Fallback returns the bundled Go font closest to weight (100..900).
func Fallback(weight int) *text.FontSource {
	fallbackOnce.Do(loadFallbacks)
	if fallbackErr != nil {
		panic(fallbackErr)
	}
	switch {
	case weight >= 700:
		return fallbacks[2]
	case weight >= 500:
		return fallbacks[1]
	}
	return fallbacks[0]
}

// Registry caches font sources by family. It is safe for concurrent use.
type Registry struct {
	finder Finder

	mu      sync.Mutex
	sources map[string]*text.FontSource
	failed  map[string]error
}

// NewRegistry returns a registry that consults finder for unknown families.
// A nil finder resolves registered families only.
func NewRegistry(finder Finder) *Registry {
	return &Registry{
		finder:  finder,
		sources: make(map[string]*text.FontSource),
		failed:  make(map[string]error),
	}
}

func key(family string) string { return strings.ToLower(strings.TrimSpace(family)) }

// IsFallback reports whether family names the bundled Go fonts.
func IsFallback(family string) bool {
	k := key(family)
	return k == "" || k == "go" || k == "go regular" || k == "sans-serif"
}

// Register parses data and associates it with family.
func (r *Registry) Register(family string, data []byte) error {
	src, err := text.NewFontSource(data)
	if err != nil {
		return fmt.Errorf("fonts: register %q: %w", family, err)
	}
	r.mu.Lock()
	r.sources[key(family)] = src
	delete(r.failed, key(family))
	r.mu.Unlock()
	return nil
}

// Cached returns a source for family without doing any I/O.
func (r *Registry) Cached(family string) (*text.FontSource, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	src, ok := r.sources[key(family)]
	return src, ok
}

// Load resolves family, reading the font file if needed. It honors ctx
// cancellation; the underlying read may still complete in the background
// and is cached for the next call. Failed families are remembered.
func (r *Registry) Load(ctx context.Context, family string) (*text.FontSource, error) {
	if src, ok := r.Cached(family); ok {
		return src, nil
	}
	k := key(family)
	r.mu.Lock()
	err, failed := r.failed[k]
	r.mu.Unlock()
	if failed {
		return nil, err
	}
	if r.finder == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFamily, family)
	}

	type result struct {
		src *text.FontSource
		err error
	}
	ch := make(chan result, 1)
	go func() {
		src, err := r.read(family)
		ch <- result{src, err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		return res.src, res.err
	}
}

func (r *Registry) read(family string) (*text.FontSource, error) {
	k := key(family)
	path, ok := r.finder.Find(family)
	if !ok {
		err := fmt.Errorf("%w: %s", ErrUnknownFamily, family)
		r.mu.Lock()
		r.failed[k] = err
		r.mu.Unlock()
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err == nil {
		var src *text.FontSource
		src, err = text.NewFontSource(data)
		if err == nil {
			r.mu.Lock()
			r.sources[k] = src
			r.mu.Unlock()
			logx.With("fonts").Debug("font loaded", "family", family, "path", path)
			return src, nil
		}
	}
	err = fmt.Errorf("fonts: load %q from %s: %w", family, path, err)
	r.mu.Lock()
	r.failed[k] = err
	r.mu.Unlock()
	return nil, err
}

// SystemFinder looks families up in the installed system fonts. The index
// is built lazily on first use and cached under CacheDir.
type SystemFinder struct {
	CacheDir string

	once sync.Once
	fm   *fontscan.FontMap
	err  error
}

// Find implements Finder.
func (s *SystemFinder) Find(family string) (string, bool) {
	s.once.Do(func() {
		s.fm = fontscan.NewFontMap(logx.Std("fonts"))
		s.err = s.fm.UseSystemFonts(s.CacheDir)
		if s.err != nil {
			logx.With("fonts").Warn("system font scan failed", "err", s.err)
		}
	})
	if s.err != nil {
		return "", false
	}
	loc, ok := s.fm.FindSystemFont(family)
	if !ok {
		return "", false
	}
	return loc.File, true
}
