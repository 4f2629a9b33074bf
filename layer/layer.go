// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package layer holds the canonical, serializable editor state: text layers,
// media layers and the background image filters.
//
// The types in this package are pure data. JSON encodings are the persisted
// draft shape and must stay stable.
package layer

import (
	"errors"
	"fmt"

	"github.com/gogpu/ggedit/geom"
	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when a layer id is not present in the model.
	ErrNotFound = errors.New("layer: not found")

	// ErrDuplicateID is returned when an id is already used by a text or
	// media layer.
	ErrDuplicateID = errors.New("layer: duplicate id")

	// ErrInvalid is returned for layers that violate a model invariant.
	ErrInvalid = errors.New("layer: invalid layer")
)

// TextKind is the role of a text layer.
type TextKind string

const (
	Heading   TextKind = "heading"
	Paragraph TextKind = "paragraph"
	Emoji     TextKind = "emoji"
	Custom    TextKind = "custom"
)

// Valid reports whether k is a known text kind.
func (k TextKind) Valid() bool {
	switch k {
	case Heading, Paragraph, Emoji, Custom:
		return true
	}
	return false
}

// MediaKind is the role of a media layer.
type MediaKind string

const (
	Image      MediaKind = "image"
	EmojiMedia MediaKind = "emoji-media"
)

// Valid reports whether k is a known media kind.
func (k MediaKind) Valid() bool { return k == Image || k == EmojiMedia }

// FontWeight is a CSS-style weight from 100 to 900 in steps of 100.
type FontWeight int

const (
	WeightThin      FontWeight = 100
	WeightLight     FontWeight = 300
	WeightNormal    FontWeight = 400
	WeightMedium    FontWeight = 500
	WeightSemiBold  FontWeight = 600
	WeightBold      FontWeight = 700
	WeightExtraBold FontWeight = 800
	WeightBlack     FontWeight = 900
)

// Valid reports whether w is on the 100..900 scale.
func (w FontWeight) Valid() bool { return w >= 100 && w <= 900 && w%100 == 0 }

// TextAlign is the horizontal alignment of lines inside a text box.
type TextAlign string

const (
	AlignLeft    TextAlign = "left"
	AlignCenter  TextAlign = "center"
	AlignRight   TextAlign = "right"
	AlignJustify TextAlign = "justify"
)

// Valid reports whether a is a known alignment.
func (a TextAlign) Valid() bool {
	switch a {
	case AlignLeft, AlignCenter, AlignRight, AlignJustify:
		return true
	}
	return false
}

// Scale is an independent per-axis scale factor.
type Scale struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Shadow is an optional drop shadow behind a text layer.
type Shadow struct {
	Color   string  `json:"color"`
	Blur    float64 `json:"blur"`
	OffsetX float64 `json:"offsetX"`
	OffsetY float64 `json:"offsetY"`
}

// Transparent is the background color value meaning "no fill".
const Transparent = "transparent"

// TextLayer is an editable text object.
type TextLayer struct {
	ID              string     `json:"id"`
	Kind            TextKind   `json:"kind"`
	Content         string     `json:"content"`
	Position        geom.Point `json:"position"`
	FontSize        float64    `json:"fontSize"`
	Color           Color      `json:"color"`
	FontFamily      string     `json:"fontFamily"`
	FontWeight      FontWeight `json:"fontWeight"`
	TextAlign       TextAlign  `json:"textAlign"`
	BackgroundColor string     `json:"backgroundColor"`
	Scale           Scale      `json:"scale"`
	Rotation        float64    `json:"rotation"`
	Opacity         float64    `json:"opacity"`
	Shadow          *Shadow    `json:"shadow,omitempty"`
}

// Geometry returns the transform part of l.
func (l TextLayer) Geometry() Geometry {
	return Geometry{Position: l.Position, Scale: l.Scale, Rotation: l.Rotation, Opacity: l.Opacity}
}

// MediaLayer is an image placed over the background.
type MediaLayer struct {
	ID        string     `json:"id"`
	Kind      MediaKind  `json:"kind"`
	SourceURL string     `json:"sourceUrl"`
	Position  geom.Point `json:"position"`
	Width     float64    `json:"width"`
	Height    float64    `json:"height"`
	Scale     Scale      `json:"scale"`
	Rotation  float64    `json:"rotation"`
	Opacity   float64    `json:"opacity"`
}

// Geometry returns the transform part of m.
func (m MediaLayer) Geometry() Geometry {
	return Geometry{Position: m.Position, Scale: m.Scale, Rotation: m.Rotation, Opacity: m.Opacity}
}

// Geometry is the transform shared by all layers. The render surface emits
// it at the end of a gesture and the model applies it.
type Geometry struct {
	Position geom.Point `json:"position"`
	Scale    Scale      `json:"scale"`
	Rotation float64    `json:"rotation"`
	Opacity  float64    `json:"opacity"`
}

// Normalize returns g with rotation in [0, 360) and opacity in [0, 1].
func (g Geometry) Normalize() Geometry {
	g.Rotation = geom.NormalizeDegrees(g.Rotation)
	g.Opacity = geom.Clamp(g.Opacity, 0, 1)
	return g
}

// Validate reports whether g satisfies the scale invariant.
func (g Geometry) Validate() error {
	if !(g.Scale.X > 0) || !(g.Scale.Y > 0) {
		return fmt.Errorf("%w: scale %vx%v must be positive", ErrInvalid, g.Scale.X, g.Scale.Y)
	}
	return nil
}

// NewID returns a fresh layer id with the given prefix.
func NewID(prefix string) string {
	if prefix == "" {
		return uuid.NewString()
	}
	return prefix + "-" + uuid.NewString()
}
