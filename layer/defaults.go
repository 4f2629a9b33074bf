// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package layer

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.English)

// Label returns a human-readable name for k, e.g. "Heading".
func (k TextKind) Label() string { return titleCaser.String(string(k)) }

// Label returns a human-readable name for k, e.g. "Emoji Media".
func (k MediaKind) Label() string {
	return titleCaser.String(strings.ReplaceAll(string(k), "-", " "))
}

type textPreset struct {
	content string
	size    float64
	weight  FontWeight
	align   TextAlign
}

var presets = map[TextKind]textPreset{
	Heading:   {"Your Heading Here", 36, WeightBold, AlignCenter},
	Paragraph: {"Add your paragraph text here", 18, WeightNormal, AlignLeft},
	Emoji:     {"\U0001F600", 48, WeightNormal, AlignCenter},
	Custom:    {"Custom Text", 24, WeightNormal, AlignLeft},
}

// DefaultFontFamily is used when a text layer does not name a family.
const DefaultFontFamily = "Go"

// DefaultText returns a new text layer of kind k with the preset content,
// size and weight for that kind and a fresh id. Unknown kinds use the custom
// preset.
func DefaultText(k TextKind) TextLayer {
	p, ok := presets[k]
	if !ok {
		k = Custom
		p = presets[Custom]
	}
	return TextLayer{
		ID:              NewID("text"),
		Kind:            k,
		Content:         p.content,
		FontSize:        p.size,
		Color:           SolidColor("#000000"),
		FontFamily:      DefaultFontFamily,
		FontWeight:      p.weight,
		TextAlign:       p.align,
		BackgroundColor: Transparent,
		Scale:           Scale{1, 1},
		Opacity:         1,
	}
}

// DefaultMedia returns a new media layer for src with a fresh id.
func DefaultMedia(k MediaKind, src string, width, height float64) MediaLayer {
	if !k.Valid() {
		k = Image
	}
	return MediaLayer{
		ID:        NewID("media"),
		Kind:      k,
		SourceURL: src,
		Width:     width,
		Height:    height,
		Scale:     Scale{1, 1},
		Opacity:   1,
	}
}
