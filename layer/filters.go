// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package layer

import "github.com/gogpu/ggedit/geom"

// ImageFilters are the non-destructive adjustments applied to the background
// image. Brightness and contrast range over [-100, 100] with 0 neutral; the
// other values range over [0, 100] with 0 meaning off.
type ImageFilters struct {
	Brightness float64 `json:"brightness"`
	Contrast   float64 `json:"contrast"`
	Sepia      float64 `json:"sepia"`
	Blur       float64 `json:"blur"`
	Grayscale  float64 `json:"grayscale"`
}

// Clamp returns f with every value forced into its valid range.
func (f ImageFilters) Clamp() ImageFilters {
	f.Brightness = geom.Clamp(f.Brightness, -100, 100)
	f.Contrast = geom.Clamp(f.Contrast, -100, 100)
	f.Sepia = geom.Clamp(f.Sepia, 0, 100)
	f.Blur = geom.Clamp(f.Blur, 0, 100)
	f.Grayscale = geom.Clamp(f.Grayscale, 0, 100)
	return f
}

// Neutral reports whether f leaves the image unchanged.
func (f ImageFilters) Neutral() bool { return f == ImageFilters{} }

// FiltersPatch is a partial update of ImageFilters. Nil fields are kept.
type FiltersPatch struct {
	Brightness *float64 `json:"brightness,omitempty"`
	Contrast   *float64 `json:"contrast,omitempty"`
	Sepia      *float64 `json:"sepia,omitempty"`
	Blur       *float64 `json:"blur,omitempty"`
	Grayscale  *float64 `json:"grayscale,omitempty"`
}

// Apply returns f with p's non-nil fields written over it, clamped.
func (p FiltersPatch) Apply(f ImageFilters) ImageFilters {
	set := func(dst *float64, v *float64) {
		if v != nil {
			*dst = *v
		}
	}
	set(&f.Brightness, p.Brightness)
	set(&f.Contrast, p.Contrast)
	set(&f.Sepia, p.Sepia)
	set(&f.Blur, p.Blur)
	set(&f.Grayscale, p.Grayscale)
	return f.Clamp()
}
