// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package layer

import "github.com/gogpu/ggedit/geom"

// Patch is a partial layer update as sent by a control panel. Nil fields are
// left unchanged. Text-only fields are ignored for media layers.
type Patch struct {
	Content         *string     `json:"content,omitempty"`
	Position        *geom.Point `json:"position,omitempty"`
	FontSize        *float64    `json:"fontSize,omitempty"`
	Color           *Color      `json:"color,omitempty"`
	FontFamily      *string     `json:"fontFamily,omitempty"`
	FontWeight      *FontWeight `json:"fontWeight,omitempty"`
	TextAlign       *TextAlign  `json:"textAlign,omitempty"`
	BackgroundColor *string     `json:"backgroundColor,omitempty"`
	Scale           *Scale      `json:"scale,omitempty"`
	Rotation        *float64    `json:"rotation,omitempty"`
	Opacity         *float64    `json:"opacity,omitempty"`
	Shadow          *Shadow     `json:"shadow,omitempty"`
	// ClearShadow removes the shadow. It wins over Shadow.
	ClearShadow bool `json:"clearShadow,omitempty"`
}

// GeometryOnly reports whether p touches nothing but the transform.
func (p Patch) GeometryOnly() bool {
	return p.Content == nil && p.FontSize == nil && p.Color == nil &&
		p.FontFamily == nil && p.FontWeight == nil && p.TextAlign == nil &&
		p.BackgroundColor == nil && p.Shadow == nil && !p.ClearShadow
}

func (p Patch) applyGeometry(g Geometry) Geometry {
	if p.Position != nil {
		g.Position = *p.Position
	}
	if p.Scale != nil {
		g.Scale = *p.Scale
	}
	if p.Rotation != nil {
		g.Rotation = *p.Rotation
	}
	if p.Opacity != nil {
		g.Opacity = *p.Opacity
	}
	return g
}

func (p Patch) applyText(l TextLayer) TextLayer {
	if p.Content != nil {
		l.Content = *p.Content
	}
	if p.FontSize != nil {
		l.FontSize = *p.FontSize
	}
	if p.Color != nil {
		l.Color = *p.Color
	}
	if p.FontFamily != nil {
		l.FontFamily = *p.FontFamily
	}
	if p.FontWeight != nil {
		l.FontWeight = *p.FontWeight
	}
	if p.TextAlign != nil {
		l.TextAlign = *p.TextAlign
	}
	if p.BackgroundColor != nil {
		l.BackgroundColor = *p.BackgroundColor
	}
	if p.Shadow != nil {
		s := *p.Shadow
		l.Shadow = &s
	}
	if p.ClearShadow {
		l.Shadow = nil
	}
	l.setGeometry(p.applyGeometry(l.Geometry()))
	return l
}

func (p Patch) applyMedia(m MediaLayer) MediaLayer {
	m.setGeometry(p.applyGeometry(m.Geometry()))
	return m
}

func (l *TextLayer) setGeometry(g Geometry) {
	l.Position, l.Scale, l.Rotation, l.Opacity = g.Position, g.Scale, g.Rotation, g.Opacity
}

func (m *MediaLayer) setGeometry(g Geometry) {
	m.Position, m.Scale, m.Rotation, m.Opacity = g.Position, g.Scale, g.Rotation, g.Opacity
}
