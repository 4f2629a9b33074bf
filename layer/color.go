// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package layer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/gogpu/gg"
)

// Direction is the axis of a linear gradient.
type Direction string

const (
	Horizontal Direction = "horizontal"
	Vertical   Direction = "vertical"
)

// Gradient is a two-stop linear gradient fill.
type Gradient struct {
	Enabled    bool      `json:"enabled"`
	StartColor string    `json:"startColor"`
	EndColor   string    `json:"endColor"`
	Direction  Direction `json:"direction"`
}

// Color is either a solid color string or a gradient descriptor. It encodes
// to a JSON string or object accordingly.
type Color struct {
	Solid    string
	Gradient *Gradient
}

// SolidColor returns a Color holding s.
func SolidColor(s string) Color { return Color{Solid: s} }

// GradientColor returns a Color holding an enabled gradient.
func GradientColor(start, end string, dir Direction) Color {
	return Color{Gradient: &Gradient{Enabled: true, StartColor: start, EndColor: end, Direction: dir}}
}

// IsGradient reports whether c should be drawn as a gradient.
func (c Color) IsGradient() bool { return c.Gradient != nil && c.Gradient.Enabled }

// MarshalJSON implements json.Marshaler.
func (c Color) MarshalJSON() ([]byte, error) {
	if c.Gradient != nil {
		return json.Marshal(c.Gradient)
	}
	return json.Marshal(c.Solid)
}

// UnmarshalJSON implements json.Unmarshaler.
func (c *Color) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*c = Color{}
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*c = Color{Solid: s}
		return nil
	}
	var g Gradient
	if err := json.Unmarshal(data, &g); err != nil {
		return fmt.Errorf("layer: color: %w", err)
	}
	*c = Color{Gradient: &g}
	return nil
}

var namedColors = map[string]string{
	"black":   "#000000",
	"white":   "#ffffff",
	"red":     "#ff0000",
	"green":   "#008000",
	"blue":    "#0000ff",
	"yellow":  "#ffff00",
	"orange":  "#ffa500",
	"purple":  "#800080",
	"gray":    "#808080",
	"grey":    "#808080",
	"pink":    "#ffc0cb",
	"cyan":    "#00ffff",
	"magenta": "#ff00ff",
}

// ParseColor converts a CSS-like color string into a gg color. It accepts
// "#rgb", "#rrggbb", "#rrggbbaa", "rgb(r,g,b)", "rgba(r,g,b,a)", a few
// named colors and "transparent".
func ParseColor(s string) (gg.RGBA, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	if v == "" {
		return gg.RGBA{}, fmt.Errorf("layer: empty color")
	}
	if v == Transparent {
		return gg.RGBA{}, nil
	}
	if hex, ok := namedColors[v]; ok {
		v = hex
	}
	if strings.HasPrefix(v, "#") {
		switch len(v) {
		case 4, 7, 9:
			for _, r := range v[1:] {
				if !strings.ContainsRune("0123456789abcdef", r) {
					return gg.RGBA{}, fmt.Errorf("layer: bad hex color %q", s)
				}
			}
			return gg.Hex(v), nil
		}
		return gg.RGBA{}, fmt.Errorf("layer: bad hex color %q", s)
	}
	for _, fn := range []string{"rgba(", "rgb("} {
		if !strings.HasPrefix(v, fn) || !strings.HasSuffix(v, ")") {
			continue
		}
		parts := strings.Split(v[len(fn):len(v)-1], ",")
		if len(parts) != 3 && len(parts) != 4 {
			return gg.RGBA{}, fmt.Errorf("layer: bad color %q", s)
		}
		var ch [4]float64
		ch[3] = 1
		for i, p := range parts {
			f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
			if err != nil {
				return gg.RGBA{}, fmt.Errorf("layer: bad color %q: %w", s, err)
			}
			if i < 3 {
				f /= 255
			}
			ch[i] = min(max(f, 0), 1)
		}
		return gg.RGBA{R: ch[0], G: ch[1], B: ch[2], A: ch[3]}, nil
	}
	return gg.RGBA{}, fmt.Errorf("layer: unknown color %q", s)
}
