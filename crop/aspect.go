// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package crop

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gogpu/ggedit/geom"
)

// Aspect is an overlay aspect-ratio constraint.
type Aspect string

const (
	Freeform Aspect = "freeform"
	Original Aspect = "original"
	Square   Aspect = "1:1"
	Wide     Aspect = "16:9"
	Tall     Aspect = "9:16"
	R5x4     Aspect = "5:4"
	R4x5     Aspect = "4:5"
	R4x3     Aspect = "4:3"
	R3x4     Aspect = "3:4"
	R3x2     Aspect = "3:2"
	R2x3     Aspect = "2:3"
)

// Aspects lists the supported constraints in menu order.
var Aspects = []Aspect{Freeform, Original, Square, Wide, Tall, R5x4, R4x5, R4x3, R3x4, R3x2, R2x3}

// ParseAspect validates s. The empty string means Freeform.
func ParseAspect(s string) (Aspect, error) {
	if s == "" {
		return Freeform, nil
	}
	a := Aspect(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Aspects {
		if a == known {
			return a, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrAspect, s)
}

// Ratio returns width/height for a. original is the displayed size of the
// background. ok is false for Freeform.
func (a Aspect) Ratio(original geom.Size) (ratio float64, ok bool) {
	switch a {
	case Freeform, "":
		return 0, false
	case Original:
		r := original.Ratio()
		return r, r > 0
	}
	w, h, found := strings.Cut(string(a), ":")
	if !found {
		return 0, false
	}
	fw, err1 := strconv.ParseFloat(w, 64)
	fh, err2 := strconv.ParseFloat(h, 64)
	if err1 != nil || err2 != nil || fw <= 0 || fh <= 0 {
		return 0, false
	}
	return fw / fh, true
}
